package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// ==================== Event Store ====================

// eventStore implements driven.EventStore.
type eventStore struct {
	store *Store
}

var _ driven.EventStore = (*eventStore)(nil)

// Save appends an event. Page content lives in the pages table.
func (e *eventStore) Save(ctx context.Context, event domain.BrowseEvent) error {
	if event.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := e.store.db.ExecContext(ctx, `
		INSERT INTO events (id, tab_id, timestamp, page_url, page_title, event_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.ID, event.TabID, event.Timestamp.UTC(), event.URL, event.Title, event.EventType)
	if err != nil {
		return fmt.Errorf("%w: saving event: %w", domain.ErrRowStore, err)
	}
	return nil
}

// List returns every event in arrival order with its page's clusters.
func (e *eventStore) List(ctx context.Context) ([]domain.EventWithClusters, error) {
	rows, err := e.store.db.QueryContext(ctx, `
		SELECT ev.id, ev.tab_id, ev.timestamp, ev.page_url, ev.page_title, ev.event_type,
			a.run_id, a.cluster_id
		FROM events ev
		LEFT JOIN cluster_assignments a ON a.document_key = ev.page_url
		ORDER BY ev.rowid, a.run_id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying events: %w", domain.ErrRowStore, err)
	}
	defer rows.Close()

	out := []domain.EventWithClusters{}
	for rows.Next() {
		var ev domain.BrowseEvent
		var runID, clusterID sql.NullString
		if err := rows.Scan(&ev.ID, &ev.TabID, &ev.Timestamp, &ev.URL, &ev.Title, &ev.EventType,
			&runID, &clusterID); err != nil {
			return nil, fmt.Errorf("%w: scanning event: %w", domain.ErrRowStore, err)
		}

		if n := len(out); n == 0 || out[n-1].Event.ID != ev.ID {
			out = append(out, domain.EventWithClusters{Event: ev})
		}
		if runID.Valid {
			last := &out[len(out)-1]
			if last.Clusters == nil {
				last.Clusters = make(map[string]string)
			}
			last.Clusters[runID.String] = clusterID.String
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating events: %w", domain.ErrRowStore, err)
	}
	return out, nil
}
