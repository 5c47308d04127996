package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimelineEntry is an append-only system message on a case. Entries are
// best-effort side effects of lifecycle transitions and never block them.
type TimelineEntry struct {
	ID        uuid.UUID  `db:"id"`
	CaseID    uuid.UUID  `db:"case_id"`
	ActorID   *uuid.UUID `db:"actor_id"`
	EventType string     `db:"event_type"`
	Message   string     `db:"message"`
	CreatedAt time.Time  `db:"created_at"`
}

// AppendTimeline inserts a system message for a case.
func (r *Repository) AppendTimeline(ctx context.Context, entry TimelineEntry) error {
	query := `
		INSERT INTO case_timeline (id, case_id, actor_id, event_type, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.pool.Exec(ctx, query,
		entry.ID, entry.CaseID, entry.ActorID, entry.EventType, entry.Message, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to append case timeline entry: %w", err)
	}
	return nil
}

// ListTimeline returns the case timeline oldest first.
func (r *Repository) ListTimeline(ctx context.Context, caseID uuid.UUID) ([]TimelineEntry, error) {
	query := `
		SELECT id, case_id, actor_id, event_type, message, created_at
		FROM case_timeline WHERE case_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query case timeline: %w", err)
	}
	defer rows.Close()

	var items []TimelineEntry
	for rows.Next() {
		var e TimelineEntry
		if err := rows.Scan(&e.ID, &e.CaseID, &e.ActorID, &e.EventType, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan timeline entry: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate case timeline: %w", err)
	}
	return items, nil
}
