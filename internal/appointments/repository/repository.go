package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caseflow_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Appointment is the database model for a calendar commitment. CaseID and
// QuoteID are nullable: quick jobs belong to neither.
type Appointment struct {
	ID           uuid.UUID  `db:"id"`
	CaseID       *uuid.UUID `db:"case_id"`
	QuoteID      *uuid.UUID `db:"quote_id"`
	ContractorID uuid.UUID  `db:"contractor_id"`
	TeamID       *uuid.UUID `db:"team_id"`
	Title        string     `db:"title"`
	Notes        *string    `db:"notes"`
	StartAt      time.Time  `db:"start_at"`
	EndAt        time.Time  `db:"end_at"`
	Status       string     `db:"status"`
	IsAllDay     bool       `db:"is_all_day"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

const appointmentNotFoundMsg = "appointment not found"

const appointmentColumns = `id, case_id, quote_id, contractor_id, team_id,
	title, notes, start_at, end_at, status, is_all_day, created_at, updated_at`

// Repository provides database operations for appointments. Overlap
// detection is delegated to an exclusion constraint on the contractor's time
// range; a violation surfaces as a slot conflict, never a partial write.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new appointments repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an appointment. Overlapping commitments for the same
// contractor are rejected by the storage constraint.
func (r *Repository) Create(ctx context.Context, a *Appointment) error {
	query := `
		INSERT INTO appointments (
			id, case_id, quote_id, contractor_id, team_id,
			title, notes, start_at, end_at, status, is_all_day, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	if _, err := r.pool.Exec(ctx, query,
		a.ID, a.CaseID, a.QuoteID, a.ContractorID, a.TeamID,
		a.Title, a.Notes, a.StartAt, a.EndAt, a.Status, a.IsAllDay, a.CreatedAt, a.UpdatedAt,
	); err != nil {
		return mapSlotConstraint(err, "failed to insert appointment")
	}
	return nil
}

// GetByID retrieves an appointment.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var a Appointment
	err := r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id).
		Scan(appointmentFields(&a)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(appointmentNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &a, nil
}

// GetActiveByCase returns the case's current scheduled appointment, if any.
func (r *Repository) GetActiveByCase(ctx context.Context, caseID uuid.UUID) (*Appointment, error) {
	var a Appointment
	err := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE case_id = $1 AND status NOT IN ('cancelled', 'completed')
		ORDER BY start_at
		LIMIT 1`, caseID).Scan(appointmentFields(&a)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get case appointment: %w", err)
	}
	return &a, nil
}

// ListForContractor returns the contractor's appointments overlapping the
// window, earliest first.
func (r *Repository) ListForContractor(ctx context.Context, contractorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE contractor_id = $1
		  AND status <> 'cancelled'
		  AND start_at < $3 AND end_at > $2
		ORDER BY start_at`, contractorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(appointmentFields(&a)...); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Reschedule moves an appointment to a new window. The exclusion constraint
// still applies; false means the appointment was missing or cancelled.
func (r *Repository) Reschedule(ctx context.Context, id uuid.UUID, startAt, endAt time.Time) (bool, error) {
	query := `
		UPDATE appointments
		SET start_at = $2, end_at = $3, updated_at = NOW()
		WHERE id = $1 AND status <> 'cancelled'`

	result, err := r.pool.Exec(ctx, query, id, startAt, endAt)
	if err != nil {
		return false, mapSlotConstraint(err, "failed to reschedule appointment")
	}
	return result.RowsAffected() > 0, nil
}

// UpdateStatus sets an appointment's status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE appointments SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return false, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Cancel marks an appointment cancelled, freeing its slot.
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE appointments SET status = 'cancelled', updated_at = NOW() WHERE id = $1 AND status <> 'cancelled'`, id)
	if err != nil {
		return false, fmt.Errorf("failed to cancel appointment: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func appointmentFields(a *Appointment) []interface{} {
	return []interface{}{
		&a.ID, &a.CaseID, &a.QuoteID, &a.ContractorID, &a.TeamID,
		&a.Title, &a.Notes, &a.StartAt, &a.EndAt, &a.Status, &a.IsAllDay, &a.CreatedAt, &a.UpdatedAt,
	}
}

// mapSlotConstraint translates the contractor time-range exclusion
// constraint into a domain slot conflict.
func mapSlotConstraint(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "23P01" || pgErr.Code == "23505") {
		return apperr.SlotConflict("the contractor already has a commitment in this time range")
	}
	return fmt.Errorf("%s: %w", msg, err)
}
