package domain

import "time"

// Page is a rendered web page, identified by its URL.
// Content is absent for event-only records and is filled at most once.
type Page struct {
	// URL is the identity key of the page.
	URL string

	// Content is the raw markup, nil when never observed.
	Content *string

	// ObservedAt is when the page was first recorded.
	ObservedAt time.Time
}

// HasContent reports whether the page carries non-empty markup.
func (p *Page) HasContent() bool {
	return p != nil && p.Content != nil && *p.Content != ""
}

// Text returns the page markup, or an empty string.
func (p *Page) Text() string {
	if p == nil || p.Content == nil {
		return ""
	}
	return *p.Content
}
