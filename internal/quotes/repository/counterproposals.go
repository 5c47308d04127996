package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caseflow_backend/internal/quotes/domain"
	"caseflow_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CounterProposal is the database model for one negotiation round.
type CounterProposal struct {
	ID                 uuid.UUID  `db:"id"`
	QuoteID            uuid.UUID  `db:"quote_id"`
	ProposedBy         uuid.UUID  `db:"proposed_by"`
	ProposedByRole     string     `db:"proposed_by_role"`
	ProposedTotalCents *int64     `db:"proposed_total_cents"`
	ProposedStartDate  *time.Time `db:"proposed_start_date"`
	ProposedEndDate    *time.Time `db:"proposed_end_date"`
	ScopeChanges       *string    `db:"scope_changes"`
	Message            string     `db:"message"`
	Status             string     `db:"status"`
	ResponseReason     *string    `db:"response_reason"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// QuoteTermPatch carries the accepted round's terms onto the parent quote.
// Nil fields keep the quote's current values.
type QuoteTermPatch struct {
	TotalCents *int64
	StartDate  *time.Time
	EndDate    *time.Time
}

const counterNotFoundMsg = "counter-proposal not found"

const counterColumns = `id, quote_id, proposed_by, proposed_by_role,
	proposed_total_cents, proposed_start_date, proposed_end_date,
	scope_changes, message, status, response_reason, created_at, updated_at`

// CreateRound opens a negotiation round on a quote. The quote row is locked
// first, then the round is inserted; the partial unique index on pending
// rounds is the backstop against a concurrent round slipping in between.
// The quote's status, counter flag and round count are updated in the same
// transaction.
func (r *Repository) CreateRound(ctx context.Context, cp *CounterProposal, quoteStatusAfter domain.Status) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM quotes WHERE id = $1 FOR UPDATE`, cp.QuoteID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(quoteNotFoundMsg)
		}
		return fmt.Errorf("failed to lock quote: %w", err)
	}
	if !domain.Status(status).Decidable() {
		return apperr.InvalidState("quote is not open for negotiation")
	}

	if err := insertRound(ctx, tx, cp); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE quotes
		SET has_counter_proposal = true,
		    counter_proposal_count = counter_proposal_count + 1,
		    status = $2, updated_at = NOW()
		WHERE id = $1`, cp.QuoteID, string(quoteStatusAfter)); err != nil {
		return fmt.Errorf("failed to update quote for new round: %w", err)
	}

	return tx.Commit(ctx)
}

// GetRoundByID retrieves one negotiation round.
func (r *Repository) GetRoundByID(ctx context.Context, id uuid.UUID) (*CounterProposal, error) {
	var cp CounterProposal
	err := r.pool.QueryRow(ctx, `SELECT `+counterColumns+` FROM counter_proposals WHERE id = $1`, id).
		Scan(counterFields(&cp)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(counterNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get counter-proposal: %w", err)
	}
	return &cp, nil
}

// ListRoundsByQuote returns a quote's negotiation history, oldest first.
func (r *Repository) ListRoundsByQuote(ctx context.Context, quoteID uuid.UUID) ([]CounterProposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+counterColumns+`
		FROM counter_proposals
		WHERE quote_id = $1
		ORDER BY created_at`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list counter-proposals: %w", err)
	}
	defer rows.Close()

	var out []CounterProposal
	for rows.Next() {
		var cp CounterProposal
		if err := rows.Scan(counterFields(&cp)...); err != nil {
			return nil, fmt.Errorf("failed to scan counter-proposal: %w", err)
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// ResolveRound closes a pending round as accepted or rejected and resets the
// parent quote in the same transaction. On accept the patch overwrites the
// negotiated quote fields. Returns false when the round was no longer
// pending.
func (r *Repository) ResolveRound(ctx context.Context, id uuid.UUID, outcome domain.CounterStatus, reason *string, patch *QuoteTermPatch) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	quoteID, ok, err := lockRoundQuote(ctx, tx, id)
	if err != nil || !ok {
		return false, err
	}

	result, err := tx.Exec(ctx, `
		UPDATE counter_proposals
		SET status = $2, response_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, id, string(outcome), reason)
	if err != nil {
		return false, fmt.Errorf("failed to resolve counter-proposal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	// The status guard keeps terminal quotes terminal: a quote that expired
	// (or was decided) while this round sat pending must not come back to
	// life with the round's terms.
	quoteQuery := `
		UPDATE quotes
		SET has_counter_proposal = false, status = $2,
		    total_cents = COALESCE($3, total_cents),
		    available_start_date = COALESCE($4, available_start_date),
		    available_end_date = COALESCE($5, available_end_date),
		    updated_at = NOW()
		WHERE id = $1 AND status IN ('sent', 'awaiting_response')`

	var totalCents *int64
	var startDate, endDate *time.Time
	if patch != nil {
		totalCents, startDate, endDate = patch.TotalCents, patch.StartDate, patch.EndDate
	}
	quoteResult, err := tx.Exec(ctx, quoteQuery, quoteID, string(domain.StatusAfterResolve()), totalCents, startDate, endDate)
	if err != nil {
		return false, fmt.Errorf("failed to reset quote after round: %w", err)
	}
	if quoteResult.RowsAffected() == 0 {
		return false, apperr.InvalidState("quote is no longer open for negotiation")
	}

	return true, tx.Commit(ctx)
}

// ReplaceRound rejects the prior pending round with the standard re-counter
// reason and opens a new one from the other party, all in one transaction.
// Returns false when the prior round was no longer pending.
func (r *Repository) ReplaceRound(ctx context.Context, priorID uuid.UUID, next *CounterProposal, quoteStatusAfter domain.Status) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	quoteID, ok, err := lockRoundQuote(ctx, tx, priorID)
	if err != nil || !ok {
		return false, err
	}
	if next.QuoteID != quoteID {
		return false, apperr.BadRequest("counter-proposal does not belong to this quote")
	}

	result, err := tx.Exec(ctx, `
		UPDATE counter_proposals
		SET status = 'rejected', response_reason = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, priorID, domain.CounterRejectedReason)
	if err != nil {
		return false, fmt.Errorf("failed to supersede counter-proposal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	if err := insertRound(ctx, tx, next); err != nil {
		return false, err
	}

	quoteResult, err := tx.Exec(ctx, `
		UPDATE quotes
		SET has_counter_proposal = true,
		    counter_proposal_count = counter_proposal_count + 1,
		    status = $2, updated_at = NOW()
		WHERE id = $1 AND status IN ('sent', 'awaiting_response')`, quoteID, string(quoteStatusAfter))
	if err != nil {
		return false, fmt.Errorf("failed to update quote for re-counter: %w", err)
	}
	if quoteResult.RowsAffected() == 0 {
		return false, apperr.InvalidState("quote is no longer open for negotiation")
	}

	return true, tx.Commit(ctx)
}

// lockRoundQuote locks the parent quote of a round. Lock order is always
// quote first, then counter_proposals, to stay deadlock-free against
// CreateRound.
func lockRoundQuote(ctx context.Context, tx pgx.Tx, roundID uuid.UUID) (uuid.UUID, bool, error) {
	var quoteID uuid.UUID
	err := tx.QueryRow(ctx, `
		SELECT q.id
		FROM quotes q
		JOIN counter_proposals cp ON cp.quote_id = q.id
		WHERE cp.id = $1
		FOR UPDATE OF q`, roundID).Scan(&quoteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, false, apperr.NotFound(counterNotFoundMsg)
		}
		return uuid.Nil, false, fmt.Errorf("failed to lock quote for round: %w", err)
	}
	return quoteID, true, nil
}

func insertRound(ctx context.Context, tx pgx.Tx, cp *CounterProposal) error {
	query := `
		INSERT INTO counter_proposals (
			id, quote_id, proposed_by, proposed_by_role,
			proposed_total_cents, proposed_start_date, proposed_end_date,
			scope_changes, message, status, response_reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		cp.ID, cp.QuoteID, cp.ProposedBy, cp.ProposedByRole,
		cp.ProposedTotalCents, cp.ProposedStartDate, cp.ProposedEndDate,
		cp.ScopeChanges, cp.Message, cp.Status, cp.ResponseReason, cp.CreatedAt, cp.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.ConflictingRound("a counter-proposal is already awaiting a response on this quote")
		}
		return fmt.Errorf("failed to insert counter-proposal: %w", err)
	}
	return nil
}

func counterFields(cp *CounterProposal) []interface{} {
	return []interface{}{
		&cp.ID, &cp.QuoteID, &cp.ProposedBy, &cp.ProposedByRole,
		&cp.ProposedTotalCents, &cp.ProposedStartDate, &cp.ProposedEndDate,
		&cp.ScopeChanges, &cp.Message, &cp.Status, &cp.ResponseReason, &cp.CreatedAt, &cp.UpdatedAt,
	}
}
