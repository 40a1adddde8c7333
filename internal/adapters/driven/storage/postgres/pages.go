package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

type pageStore struct {
	store *Store
}

var _ driven.PageStore = (*pageStore)(nil)

func (p *pageStore) Get(ctx context.Context, url string) (*domain.Page, error) {
	var page domain.Page
	var content sql.NullString
	err := p.store.db.QueryRowContext(ctx,
		`SELECT url, content, observed_at FROM pages WHERE url = $1`, url,
	).Scan(&page.URL, &content, &page.ObservedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get page: %w", domain.ErrRowStore, err)
	}
	if content.Valid {
		page.Content = &content.String
	}
	return &page, nil
}

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
INSERT INTO pages (url, content, observed_at) VALUES ($1, $2, $3)
ON CONFLICT (url) DO UPDATE SET content = EXCLUDED.content
WHERE (pages.content IS NULL OR pages.content = '') AND EXCLUDED.content IS NOT NULL`,
		page.URL, content, page.ObservedAt.UTC())
	if err != nil {
		return fmt.Errorf("%w: save page: %w", domain.ErrRowStore, err)
	}
	return nil
}
