// Package logging builds the structured loggers used across the console.
// The TUI owns the terminal, so logs go to a size-rotated file.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	File       string // empty logs to stderr
	Level      string
	MaxSizeMB  int
	MaxBackups int
	Prefix     string
}

// New returns a logger and the closer of its file, if any.
func New(opts Options) (*log.Logger, io.Closer) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    max(opts.MaxSizeMB, 1), // megabytes
			MaxBackups: opts.MaxBackups,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = rotating
		closer = rotating
	}
	return NewWriter(w, opts.Level, opts.Prefix), closer
}

// NewWriter returns a logger writing to w.
func NewWriter(w io.Writer, level, prefix string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
