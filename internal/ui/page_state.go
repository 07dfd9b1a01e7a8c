package ui

import (
	"time"
)

// PageState contains state every page needs. Embed it in page models.
type PageState struct {
	Layout       Layout
	StatusMsg    string
	StatusExpiry time.Time
	Quitting     bool

	now func() time.Time
}

// NewPageState creates a PageState with the given layout.
func NewPageState(layout Layout) PageState {
	return PageState{Layout: layout, now: time.Now}
}

// SetStatus sets a status message that expires after d. A zero d never
// expires.
func (p *PageState) SetStatus(msg string, d time.Duration) {
	p.StatusMsg = msg
	p.StatusExpiry = time.Time{}
	if d > 0 {
		p.StatusExpiry = p.clock().Add(d)
	}
}

// ClearExpiredStatus clears the status message once it has expired.
func (p *PageState) ClearExpiredStatus() {
	if !p.StatusExpiry.IsZero() && p.clock().After(p.StatusExpiry) {
		p.StatusMsg = ""
		p.StatusExpiry = time.Time{}
	}
}

// UpdateLayout updates the layout and reports whether it changed.
func (p *PageState) UpdateLayout(width, height int) bool {
	l := NewLayout(width, height)
	if l == p.Layout {
		return false
	}
	p.Layout = l
	return true
}

func (p *PageState) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}
