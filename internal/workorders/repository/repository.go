package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caseflow_backend/internal/workorders/domain"
	"caseflow_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// WorkOrder is the database model for a maintenance case.
type WorkOrder struct {
	ID                   uuid.UUID  `db:"id"`
	LandlordID           uuid.UUID  `db:"landlord_id"`
	PropertyID           *uuid.UUID `db:"property_id"`
	Title                string     `db:"title"`
	Description          string     `db:"description"`
	Category             string     `db:"category"`
	Priority             string     `db:"priority"`
	Status               string     `db:"status"`
	AssignedContractorID *uuid.UUID `db:"assigned_contractor_id"`
	PostedAt             *time.Time `db:"posted_at"`
	ScheduledStartAt     *time.Time `db:"scheduled_start_at"`
	ScheduledEndAt       *time.Time `db:"scheduled_end_at"`
	OnHoldResumeStatus   *string    `db:"on_hold_resume_status"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

// ListParams filters case listings for a landlord.
type ListParams struct {
	LandlordID uuid.UUID
	Status     *string
	Page       int
	PageSize   int
}

const caseNotFoundMsg = "case not found"

const workOrderColumns = `id, landlord_id, property_id, title, description, category, priority, status,
	assigned_contractor_id, posted_at, scheduled_start_at, scheduled_end_at,
	on_hold_resume_status, created_at, updated_at`

// ── Repository ────────────────────────────────────────────────────────────────

// Repository provides database operations for work orders.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new work-order repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new work order in status New.
func (r *Repository) Create(ctx context.Context, wo *WorkOrder) error {
	query := `
		INSERT INTO work_orders (
			id, landlord_id, property_id, title, description, category, priority, status,
			posted_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if _, err := r.pool.Exec(ctx, query,
		wo.ID, wo.LandlordID, wo.PropertyID, wo.Title, wo.Description, wo.Category,
		wo.Priority, wo.Status, wo.PostedAt, wo.CreatedAt, wo.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert work order: %w", err)
	}
	return nil
}

// GetByID retrieves a work order by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id = $1`

	wo, err := scanWorkOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(caseNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}
	return wo, nil
}

// List retrieves work orders for a landlord, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]WorkOrder, error) {
	var statusParam interface{}
	if params.Status != nil {
		statusParam = *params.Status
	}

	pageSize := params.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	page := params.Page
	if page < 1 {
		page = 1
	}

	query := `SELECT ` + workOrderColumns + `
		FROM work_orders
		WHERE landlord_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, params.LandlordID, statusParam, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}
	defer rows.Close()

	var items []WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work order: %w", err)
		}
		items = append(items, *wo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work orders: %w", err)
	}
	return items, nil
}

// TransitionStatus moves the case from one of the expected statuses to the
// target status in a single conditional update. Returns false when no row
// matched, meaning the case does not exist or is not in an expected status.
// The WHERE clause is the serialization point: within one work order, no two
// transitions can both see their expected status.
func (r *Repository) TransitionStatus(ctx context.Context, id uuid.UUID, from []domain.Status, to domain.Status) (bool, error) {
	query := `
		UPDATE work_orders
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = ANY($2)`

	result, err := r.pool.Exec(ctx, query, id, statusStrings(from), string(to), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to transition work order status: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ConfirmSchedule writes the confirmed window and flips the case to Scheduled
// in one conditional update. The case must hold an assignment and be In
// Review or already Scheduled (re-confirmation moves the window).
func (r *Repository) ConfirmSchedule(ctx context.Context, id uuid.UUID, startAt, endAt time.Time) (bool, error) {
	query := `
		UPDATE work_orders
		SET status = $4, scheduled_start_at = $2, scheduled_end_at = $3, updated_at = $5
		WHERE id = $1
			AND assigned_contractor_id IS NOT NULL
			AND status = ANY($6)`

	result, err := r.pool.Exec(ctx, query,
		id, startAt, endAt, string(domain.StatusScheduled), time.Now().UTC(),
		statusStrings([]domain.Status{domain.StatusInReview, domain.StatusScheduled}),
	)
	if err != nil {
		return false, fmt.Errorf("failed to confirm schedule: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Assign atomically claims an unassigned New case for a contractor.
// First writer wins: the status and assignment check happen inside the same
// conditional update, so a concurrent accept sees zero rows.
func (r *Repository) Assign(ctx context.Context, id, contractorID uuid.UUID) (bool, error) {
	query := `
		UPDATE work_orders
		SET assigned_contractor_id = $2, status = $3, updated_at = $4
		WHERE id = $1 AND status = $5 AND assigned_contractor_id IS NULL`

	result, err := r.pool.Exec(ctx, query,
		id, contractorID, string(domain.StatusInReview), time.Now().UTC(), string(domain.StatusNew),
	)
	if err != nil {
		return false, fmt.Errorf("failed to assign work order: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Hold pauses the case, saving the current status as the resume target.
func (r *Repository) Hold(ctx context.Context, id uuid.UUID) (bool, error) {
	holdable := []domain.Status{domain.StatusNew, domain.StatusInReview, domain.StatusScheduled, domain.StatusInProgress}
	query := `
		UPDATE work_orders
		SET on_hold_resume_status = status, status = $2, updated_at = $3
		WHERE id = $1 AND status = ANY($4)`

	result, err := r.pool.Exec(ctx, query, id, string(domain.StatusOnHold), time.Now().UTC(), statusStrings(holdable))
	if err != nil {
		return false, fmt.Errorf("failed to hold work order: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Resume restores the status saved when the case was put on hold.
func (r *Repository) Resume(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE work_orders
		SET status = on_hold_resume_status, on_hold_resume_status = NULL, updated_at = $2
		WHERE id = $1 AND status = $3 AND on_hold_resume_status IS NOT NULL`

	result, err := r.pool.Exec(ctx, query, id, time.Now().UTC(), string(domain.StatusOnHold))
	if err != nil {
		return false, fmt.Errorf("failed to resume work order: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Close performs administrative closure from any non-closed status.
func (r *Repository) Close(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE work_orders
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status <> $2`

	result, err := r.pool.Exec(ctx, query, id, string(domain.StatusClosed), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to close work order: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkOrder(row rowScanner) (*WorkOrder, error) {
	var wo WorkOrder
	err := row.Scan(
		&wo.ID, &wo.LandlordID, &wo.PropertyID, &wo.Title, &wo.Description, &wo.Category,
		&wo.Priority, &wo.Status, &wo.AssignedContractorID, &wo.PostedAt,
		&wo.ScheduledStartAt, &wo.ScheduledEndAt, &wo.OnHoldResumeStatus,
		&wo.CreatedAt, &wo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wo, nil
}
