package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Listing is a marketplace view of a posted, unassigned case.
type Listing struct {
	CaseID      uuid.UUID
	Title       string
	Description string
	Category    string
	Priority    string
	PostedAt    time.Time
	CreatedAt   time.Time
}

// Repository provides marketplace data access: the eligible-case feed and
// per-contractor dismissals. Assignment writes go through the work-orders
// repository so the state machine stays in one place.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new marketplace repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListEligible returns posted, unassigned cases the contractor has not
// dismissed, urgent-class work first, newest postings next. Categories
// narrows the feed to the contractor's service scope when non-empty.
func (r *Repository) ListEligible(ctx context.Context, contractorID uuid.UUID, categories []string, limit int) ([]Listing, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT w.id, w.title, w.description, w.category, w.priority, w.posted_at, w.created_at
		FROM work_orders w
		WHERE w.posted_at IS NOT NULL
		  AND w.status = 'new'
		  AND w.assigned_contractor_id IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM marketplace_dismissals d
			WHERE d.case_id = w.id AND d.contractor_id = $1
		  )
		  AND (cardinality($2::text[]) = 0 OR w.category = ANY($2::text[]))
		ORDER BY (w.priority IN ('urgent', 'emergency', 'emergent')) DESC, w.posted_at DESC
		LIMIT $3`

	if categories == nil {
		categories = []string{}
	}

	rows, err := r.pool.Query(ctx, query, contractorID, categories, limit)
	if err != nil {
		return nil, fmt.Errorf("list eligible cases: %w", err)
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.CaseID, &l.Title, &l.Description, &l.Category, &l.Priority, &l.PostedAt, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Dismiss hides a case from the contractor's feed. Dismissing twice is a
// no-op success.
func (r *Repository) Dismiss(ctx context.Context, contractorID, caseID uuid.UUID, reason string) error {
	query := `
		INSERT INTO marketplace_dismissals (case_id, contractor_id, reason, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (case_id, contractor_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, caseID, contractorID, reason); err != nil {
		return fmt.Errorf("dismiss case: %w", err)
	}
	return nil
}

// UndoDismiss restores a dismissed case to the contractor's feed.
func (r *Repository) UndoDismiss(ctx context.Context, contractorID, caseID uuid.UUID) error {
	query := `DELETE FROM marketplace_dismissals WHERE case_id = $1 AND contractor_id = $2`

	if _, err := r.pool.Exec(ctx, query, caseID, contractorID); err != nil {
		return fmt.Errorf("undo dismissal: %w", err)
	}
	return nil
}
