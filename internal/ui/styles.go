package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Layout constants - single source of truth for all viewport dimensions
const (
	MinViewportWidth  = 100
	MaxViewportWidth  = 160
	DefaultWidth      = 110 // Used when terminal size is unknown
	DefaultHeight     = 32
	MinViewportHeight = 20
	MinTableHeight    = 5

	// rows used around the table: title, divider, query info, summary,
	// status and the two-box frame
	tableChrome = 16
)

// Layout holds computed dimensions for the current terminal size
type Layout struct {
	ViewportWidth  int // clamped terminal width
	ViewportHeight int // terminal height, at least MinViewportHeight
	InnerWidth     int // exact width for content inside borders
	TableWidth     int // sum of column widths
	TableHeight    int // visible table rows
}

// NewLayout creates a Layout from the terminal size. Zero values fall back
// to the defaults.
func NewLayout(terminalWidth, terminalHeight int) Layout {
	if terminalWidth <= 0 {
		terminalWidth = DefaultWidth
	}
	if terminalHeight <= 0 {
		terminalHeight = DefaultHeight
	}
	width := clamp(terminalWidth, MinViewportWidth, MaxViewportWidth)
	height := max(terminalHeight, MinViewportHeight)
	return Layout{
		ViewportWidth:  width,
		ViewportHeight: height,
		InnerWidth:     width - 2,
		TableWidth:     width - 4,
		TableHeight:    max(height-tableChrome, MinTableHeight),
	}
}

// DefaultLayout returns a layout using the default size
func DefaultLayout() Layout {
	return NewLayout(DefaultWidth, DefaultHeight)
}

// TabbedTableHeight leaves room for the tab indicator row.
func (l Layout) TabbedTableHeight() int {
	return max(l.TableHeight-2, MinTableHeight)
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Color palette - centralized color definitions
var (
	ColorBorder    = lipgloss.Color("196") // red
	ColorHighlight = lipgloss.Color("88")  // dark red background
	ColorText      = lipgloss.Color("15")  // bright white
	ColorAccent    = lipgloss.Color("226") // bright yellow
	ColorAccentDim = lipgloss.Color("220") // yellow (progress)
	ColorTextDim   = lipgloss.Color("241") // gray
	ColorSuccess   = lipgloss.Color("82")  // green
)

// Common styles
var (
	// Main viewport border. Render with .Width(layout.InnerWidth).
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	// Footer box holding the centered help line
	HelpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorText)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorHighlight).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	HintStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Italic(true)

	// Accent style for query info and figures (yellow)
	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	StatusMsgStyle = lipgloss.NewStyle().
			Foreground(ColorAccentDim).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorBorder).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorHighlight).
			Bold(true).
			Padding(0, 2)

	TabInactiveStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Padding(0, 2)

	// Dashboard figure style
	StatsStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)
)

// =============================================================================
// Render helpers
// =============================================================================

func RenderTitle(s string) string       { return TitleStyle.Render(s) }
func RenderDim(s string) string         { return DimStyle.Render(s) }
func RenderNormal(s string) string      { return NormalStyle.Render(s) }
func RenderError(s string) string       { return ErrorStyle.Render(s) }
func RenderTabActive(s string) string   { return TabActiveStyle.Render(s) }
func RenderTabInactive(s string) string { return TabInactiveStyle.Render(s) }

// RenderSelectedWidth renders s highlighted across width cells.
func RenderSelectedWidth(s string, width int) string {
	return SelectedStyle.Width(width).Render(s)
}

// StringWidth returns the display width of s, ignoring ANSI sequences.
func StringWidth(s string) int {
	return lipgloss.Width(s)
}

// Truncate shortens s to width cells, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

func stripEscapeCodes(s string) string {
	return ansi.Strip(s)
}

func truncateToWidth(s string, width int) string {
	return ansi.Truncate(s, width, "")
}

// PadContentToHeight pads content with blank lines to exactly height lines,
// dropping lines past the bottom.
func PadContentToHeight(content string, height int) string {
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// BuildTwoBoxView renders the main bordered box with a one-row help box
// underneath, together filling the viewport height.
func BuildTwoBoxView(content, helpText string, layout Layout) string {
	mainHeight := max(layout.ViewportHeight-5, MinTableHeight)
	main := BorderStyle.
		Width(layout.InnerWidth).
		Render(PadContentToHeight(content, mainHeight))

	help := HelpBoxStyle.
		Width(layout.InnerWidth).
		Render(CenterTextPadded(HintStyle.Render(helpText), layout.InnerWidth))

	return lipgloss.JoinVertical(lipgloss.Left, main, help)
}

// ApplyTableStyles applies the header divider and a neutral selection
// style. RenderTableWithSelection draws the visible highlight.
func ApplyTableStyles(t *table.Model) {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Bold(true).
		Foreground(ColorText).
		BorderForeground(ColorBorder)
	s.Cell = s.Cell.Foreground(ColorText)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
}

// NewAppSpinner returns the white dot spinner used on every page.
func NewAppSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(NormalStyle),
	)
}

// NewAppTheme creates a huh theme matching the app's palette:
// white text with red highlights.
func NewAppTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().
		Foreground(ColorText).
		Bold(true)
	t.Blurred.Title = t.Focused.Title

	t.Focused.Description = lipgloss.NewStyle().
		Foreground(ColorTextDim)
	t.Blurred.Description = t.Focused.Description

	t.Focused.Base = lipgloss.NewStyle().
		Foreground(ColorText)
	t.Blurred.Base = t.Focused.Base

	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBorder).
		Bold(true).
		Padding(0, 1)
	t.Focused.UnselectedOption = lipgloss.NewStyle().
		Foreground(ColorText).
		Padding(0, 1)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBorder).
		Bold(true).
		Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(ColorText).
		Padding(0, 1)

	t.Focused.ErrorMessage = ErrorStyle
	t.Focused.ErrorIndicator = ErrorStyle

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(ColorBorder)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(ColorTextDim)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(ColorBorder)

	return t
}
