package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// ==================== Page Store ====================

// pageStore implements driven.PageStore.
type pageStore struct {
	store *Store
}

var _ driven.PageStore = (*pageStore)(nil)

// Get retrieves a page by URL.
func (p *pageStore) Get(ctx context.Context, url string) (*domain.Page, error) {
	row := p.store.db.QueryRowContext(ctx, `
		SELECT url, content, observed_at FROM pages WHERE url = ?
	`, url)

	var page domain.Page
	var content sql.NullString
	if err := row.Scan(&page.URL, &content, &page.ObservedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning page: %w", domain.ErrRowStore, err)
	}
	if content.Valid {
		page.Content = &content.String
	}
	return &page, nil
}

// Save inserts a page, or fills in content for a page stored without any.
func (p *pageStore) Save(ctx context.Context, page domain.Page) error {
	if page.URL == "" {
		return domain.ErrInvalidInput
	}
	if page.ObservedAt.IsZero() {
		page.ObservedAt = time.Now()
	}

	var content sql.NullString
	if page.HasContent() {
		content = sql.NullString{String: *page.Content, Valid: true}
	}

	_, err := p.store.db.ExecContext(ctx, `
		INSERT INTO pages (url, content, observed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET content = excluded.content
		WHERE (pages.content IS NULL OR pages.content = '')
			AND excluded.content IS NOT NULL
	`, page.URL, content, page.ObservedAt.UTC())
	if err != nil {
		return fmt.Errorf("%w: saving page: %w", domain.ErrRowStore, err)
	}
	return nil
}
