// Package config resolves console settings from .env, the environment and
// command-line flags, in increasing order of precedence.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL  = "http://localhost:8085/api/v1"
	defaultDBPath  = "backoffice.db"
	defaultLogFile = "backoffice.log"
)

// Config holds every runtime setting.
type Config struct {
	APIURL         string
	DBPath         string
	Profile        string
	LogFile        string
	LogLevel       string
	LogMaxSizeMB   int
	LogMaxBackups  int
	RateLimit      float64 // requests per second, 0 disables
	RateBurst      int
	RequestTimeout time.Duration
	CacheSize      int
	CacheTTL       time.Duration
	PageSizes      []int
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		DBPath:         defaultDBPath,
		Profile:        "default",
		LogFile:        defaultLogFile,
		LogLevel:       "info",
		LogMaxSizeMB:   10,
		LogMaxBackups:  3,
		RateLimit:      10,
		RateBurst:      5,
		RequestTimeout: 30 * time.Second,
		CacheSize:      256,
		CacheTTL:       2 * time.Minute,
		PageSizes:      []int{10, 20, 50},
	}
}

// Load reads .env files (missing files are ignored) and the environment.
func Load(envFiles ...string) (Config, error) {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load(envFiles...)

	cfg := Default()
	cfg.APIURL = envString("BACKOFFICE_API_URL", cfg.APIURL)
	cfg.DBPath = envString("BACKOFFICE_DB", cfg.DBPath)
	cfg.Profile = envString("BACKOFFICE_PROFILE", cfg.Profile)
	cfg.LogFile = envString("BACKOFFICE_LOG", cfg.LogFile)
	cfg.LogLevel = envString("BACKOFFICE_LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.RateLimit, err = envFloat("BACKOFFICE_RATE", cfg.RateLimit); err != nil {
		return cfg, err
	}
	if cfg.RateBurst, err = envInt("BACKOFFICE_RATE_BURST", cfg.RateBurst); err != nil {
		return cfg, err
	}
	if cfg.RequestTimeout, err = envDuration("BACKOFFICE_TIMEOUT", cfg.RequestTimeout); err != nil {
		return cfg, err
	}
	if cfg.CacheTTL, err = envDuration("BACKOFFICE_CACHE_TTL", cfg.CacheTTL); err != nil {
		return cfg, err
	}
	if v := os.Getenv("BACKOFFICE_PAGE_SIZES"); v != "" {
		sizes, err := ParsePageSizes(v)
		if err != nil {
			return cfg, err
		}
		cfg.PageSizes = sizes
	}
	return cfg, nil
}

// RegisterFlags binds flags that override cfg. Call before fs.Parse.
func (cfg *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "Backend API base URL")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database file (bypasses profile selector)")
	fs.StringVar(&cfg.Profile, "profile", cfg.Profile, "Session profile name")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Log file path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Float64Var(&cfg.RateLimit, "rate", cfg.RateLimit, "Maximum API requests per second (0 = unlimited)")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "HTTP request timeout")
	fs.Func("page-sizes", "Comma separated page size allow-list", func(s string) error {
		sizes, err := ParsePageSizes(s)
		if err != nil {
			return err
		}
		cfg.PageSizes = sizes
		return nil
	})
}

// ParsePageSizes parses "10,20,50".
func ParsePageSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid page size %q", part)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no page sizes in %q", s)
	}
	return sizes, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
