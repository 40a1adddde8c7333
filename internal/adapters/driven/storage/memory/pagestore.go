package memory

import (
	"context"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// Ensure PageStore implements the interface.
var _ driven.PageStore = (*PageStore)(nil)

// PageStore is an in-memory implementation of driven.PageStore.
type PageStore struct {
	s *Store
}

// Get retrieves a page by URL.
func (p *PageStore) Get(_ context.Context, url string) (*domain.Page, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	page, ok := p.s.pages[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyPage(page), nil
}

// Save records a page, filling content only when none is stored.
func (p *PageStore) Save(_ context.Context, page domain.Page) error {
	if page.URL == "" {
		return domain.ErrInvalidInput
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	existing, ok := p.s.pages[page.URL]
	if !ok {
		if page.ObservedAt.IsZero() {
			page.ObservedAt = time.Now()
		}
		p.s.pages[page.URL] = *copyPage(page)
		return nil
	}
	if !existing.HasContent() && page.HasContent() {
		content := *page.Content
		existing.Content = &content
		p.s.pages[page.URL] = existing
	}
	return nil
}

func copyPage(page domain.Page) *domain.Page {
	out := page
	if page.Content != nil {
		content := *page.Content
		out.Content = &content
	}
	return &out
}
