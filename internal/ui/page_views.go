package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
)

// PageViewBuilder builds page views with the standard layout.
//
//	return NewPageView(m.Layout).
//	    Title("Merchants").
//	    Divider().
//	    QueryInfo("Page 1/3").
//	    Table(m.table).
//	    Status(m.StatusMsg).
//	    Help("↑/↓: navigate | Enter: open").
//	    Build()
type PageViewBuilder struct {
	layout     Layout
	content    strings.Builder
	helpText   string
	hadContent bool
}

// NewPageView creates a PageViewBuilder with the given layout.
func NewPageView(layout Layout) *PageViewBuilder {
	return &PageViewBuilder{layout: layout}
}

func (b *PageViewBuilder) line(s string) *PageViewBuilder {
	b.content.WriteString(s)
	b.content.WriteString("\n")
	b.hadContent = true
	return b
}

// Title adds a bold title line.
func (b *PageViewBuilder) Title(title string) *PageViewBuilder {
	return b.line(RenderTitle(title))
}

// Subtitle adds a dim subtitle line.
func (b *PageViewBuilder) Subtitle(subtitle string) *PageViewBuilder {
	if subtitle == "" {
		return b
	}
	return b.line(RenderDim(subtitle))
}

// Divider adds a full-width horizontal divider.
func (b *PageViewBuilder) Divider() *PageViewBuilder {
	return b.line(FullWidthDivider(b.layout.InnerWidth))
}

// Spacing adds blank lines.
func (b *PageViewBuilder) Spacing(lines int) *PageViewBuilder {
	b.content.WriteString(strings.Repeat("\n", lines))
	return b
}

// QueryInfo adds a filter/pagination line in the accent color.
func (b *PageViewBuilder) QueryInfo(info string) *PageViewBuilder {
	return b.line(AccentStyle.Render(info))
}

// Text adds normal text content.
func (b *PageViewBuilder) Text(text string) *PageViewBuilder {
	return b.line(NormalStyle.Render(text))
}

// DimText adds dimmed text content.
func (b *PageViewBuilder) DimText(text string) *PageViewBuilder {
	return b.line(DimStyle.Render(text))
}

// CustomContent adds pre-rendered content.
func (b *PageViewBuilder) CustomContent(content string) *PageViewBuilder {
	b.content.WriteString(content)
	b.hadContent = true
	return b
}

// Table adds a table with full-width selection highlighting.
func (b *PageViewBuilder) Table(t table.Model) *PageViewBuilder {
	if b.hadContent {
		b.content.WriteString("\n")
	}
	return b.line(RenderTableWithSelection(t, b.layout))
}

// Status adds a status message when msg is not empty.
func (b *PageViewBuilder) Status(msg string) *PageViewBuilder {
	if msg == "" {
		return b
	}
	if b.hadContent {
		b.content.WriteString("\n")
	}
	return b.line(StatusMsgStyle.Render(msg))
}

// Error adds an error message when err is not nil.
func (b *PageViewBuilder) Error(err error) *PageViewBuilder {
	if err == nil {
		return b
	}
	if b.hadContent {
		b.content.WriteString("\n")
	}
	return b.line(RenderError("Error: " + err.Error()))
}

// Help sets the footer help text.
func (b *PageViewBuilder) Help(helpText string) *PageViewBuilder {
	b.helpText = helpText
	return b
}

// Build renders the two-box view.
func (b *PageViewBuilder) Build() string {
	return TwoBoxView(b.content.String(), b.helpText, b.layout)
}

// BuildContent returns the main box content without the frame.
func (b *PageViewBuilder) BuildContent() string {
	return b.content.String()
}
