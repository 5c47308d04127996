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
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Quote is the database model for a quote header.
type Quote struct {
	ID                   uuid.UUID  `db:"id"`
	CaseID               uuid.UUID  `db:"case_id"`
	ContractorID         uuid.UUID  `db:"contractor_id"`
	CustomerID           uuid.UUID  `db:"customer_id"`
	Status               string     `db:"status"`
	SubtotalCents        int64      `db:"subtotal_cents"`
	TaxAmountCents       int64      `db:"tax_amount_cents"`
	TotalCents           int64      `db:"total_cents"`
	DepositRequiredCents int64      `db:"deposit_required_cents"`
	AvailableStartDate   *time.Time `db:"available_start_date"`
	AvailableEndDate     *time.Time `db:"available_end_date"`
	EstimatedDays        int        `db:"estimated_days"`
	HasCounterProposal   bool       `db:"has_counter_proposal"`
	CounterProposalCount int        `db:"counter_proposal_count"`
	ApprovalToken        *string    `db:"approval_token"`
	ExpiresAt            *time.Time `db:"expires_at"`
	Notes                *string    `db:"notes"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

// QuoteItem is the database model for a quote line item.
type QuoteItem struct {
	ID             uuid.UUID `db:"id"`
	QuoteID        uuid.UUID `db:"quote_id"`
	Name           string    `db:"name"`
	Description    string    `db:"description"`
	Quantity       float64   `db:"quantity"`
	UnitPriceCents int64     `db:"unit_price_cents"`
	TotalCents     int64     `db:"total_cents"`
	DisplayOrder   int       `db:"display_order"`
	CreatedAt      time.Time `db:"created_at"`
}

// DeclinedSibling identifies a quote auto-declined by a competing approval.
type DeclinedSibling struct {
	QuoteID      uuid.UUID
	ContractorID uuid.UUID
}

// ListParams contains parameters for listing quotes.
type ListParams struct {
	CaseID       *uuid.UUID
	ContractorID *uuid.UUID
	CustomerID   *uuid.UUID
	Status       *string
	Page         int
	PageSize     int
}

// ── Repository ────────────────────────────────────────────────────────────────

const quoteNotFoundMsg = "quote not found"

const quoteColumns = `id, case_id, contractor_id, customer_id, status,
	subtotal_cents, tax_amount_cents, total_cents, deposit_required_cents,
	available_start_date, available_end_date, estimated_days,
	has_counter_proposal, counter_proposal_count, approval_token, expires_at,
	notes, created_at, updated_at`

// Repository provides database operations for quotes, line items and
// counter-proposal rounds.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateWithItems inserts a quote and its line items in a single transaction.
func (r *Repository) CreateWithItems(ctx context.Context, quote *Quote, items []QuoteItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	quoteQuery := `
		INSERT INTO quotes (
			id, case_id, contractor_id, customer_id, status,
			subtotal_cents, tax_amount_cents, total_cents, deposit_required_cents,
			available_start_date, available_end_date, estimated_days,
			has_counter_proposal, counter_proposal_count, approval_token, expires_at,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	if _, err := tx.Exec(ctx, quoteQuery,
		quote.ID, quote.CaseID, quote.ContractorID, quote.CustomerID, quote.Status,
		quote.SubtotalCents, quote.TaxAmountCents, quote.TotalCents, quote.DepositRequiredCents,
		quote.AvailableStartDate, quote.AvailableEndDate, quote.EstimatedDays,
		quote.HasCounterProposal, quote.CounterProposalCount, quote.ApprovalToken, quote.ExpiresAt,
		quote.Notes, quote.CreatedAt, quote.UpdatedAt,
	); err != nil {
		return mapQuoteConstraint(err, "failed to insert quote")
	}

	if err := r.insertItems(ctx, tx, items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateWithItems updates a draft quote's terms and replaces its line items
// as a set. Returns false when the quote is missing or no longer a draft.
func (r *Repository) UpdateWithItems(ctx context.Context, quote *Quote, items []QuoteItem) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE quotes SET
			subtotal_cents = $2, tax_amount_cents = $3, total_cents = $4,
			deposit_required_cents = $5, available_start_date = $6, available_end_date = $7,
			estimated_days = $8, notes = $9, updated_at = NOW()
		WHERE id = $1 AND status = 'draft'`

	result, err := tx.Exec(ctx, updateQuery,
		quote.ID, quote.SubtotalCents, quote.TaxAmountCents, quote.TotalCents,
		quote.DepositRequiredCents, quote.AvailableStartDate, quote.AvailableEndDate,
		quote.EstimatedDays, quote.Notes,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update quote: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM quote_items WHERE quote_id = $1`, quote.ID); err != nil {
		return false, fmt.Errorf("failed to delete old quote items: %w", err)
	}
	if err := r.insertItems(ctx, tx, items); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

func (r *Repository) insertItems(ctx context.Context, tx pgx.Tx, items []QuoteItem) error {
	itemQuery := `
		INSERT INTO quote_items (
			id, quote_id, name, description, quantity,
			unit_price_cents, total_cents, display_order, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, item := range items {
		if _, err := tx.Exec(ctx, itemQuery,
			item.ID, item.QuoteID, item.Name, item.Description, item.Quantity,
			item.UnitPriceCents, item.TotalCents, item.DisplayOrder, item.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert quote item: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a quote by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByApprovalToken retrieves a quote by its single-use approval token.
func (r *Repository) GetByApprovalToken(ctx context.Context, token string) (*Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE approval_token = $1`
	return r.getOne(ctx, query, token)
}

func (r *Repository) getOne(ctx context.Context, query string, arg interface{}) (*Quote, error) {
	var q Quote
	err := r.pool.QueryRow(ctx, query, arg).Scan(quoteFields(&q)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &q, nil
}

// GetItemsByQuoteID retrieves a quote's line items in display order.
func (r *Repository) GetItemsByQuoteID(ctx context.Context, quoteID uuid.UUID) ([]QuoteItem, error) {
	query := `
		SELECT id, quote_id, name, description, quantity,
			unit_price_cents, total_cents, display_order, created_at
		FROM quote_items
		WHERE quote_id = $1
		ORDER BY display_order, created_at`

	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quote items: %w", err)
	}
	defer rows.Close()

	var items []QuoteItem
	for rows.Next() {
		var it QuoteItem
		if err := rows.Scan(&it.ID, &it.QuoteID, &it.Name, &it.Description, &it.Quantity,
			&it.UnitPriceCents, &it.TotalCents, &it.DisplayOrder, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List retrieves quotes filtered by case, contractor, customer and status.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Quote, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 25
	}

	query := `
		SELECT ` + quoteColumns + `
		FROM quotes
		WHERE ($1::uuid IS NULL OR case_id = $1)
		  AND ($2::uuid IS NULL OR contractor_id = $2)
		  AND ($3::uuid IS NULL OR customer_id = $3)
		  AND ($4::text IS NULL OR status = $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6`

	rows, err := r.pool.Query(ctx, query,
		params.CaseID, params.ContractorID, params.CustomerID, params.Status,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		var q Quote
		if err := rows.Scan(quoteFields(&q)...); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// MarkSent moves a draft quote to sent, stamping the approval token and
// expiry. Returns false when the quote is missing or not a draft. A unique
// violation means another quote for the same case and contractor is already
// active.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, approvalToken string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE quotes
		SET status = 'sent', approval_token = $2, expires_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'draft'`

	result, err := r.pool.Exec(ctx, query, id, approvalToken, expiresAt)
	if err != nil {
		return false, mapQuoteConstraint(err, "failed to send quote")
	}
	return result.RowsAffected() > 0, nil
}

// Delete removes a draft quote and its line items. Returns false when the
// quote is missing or no longer a draft.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM quote_items WHERE quote_id = $1`, id); err != nil {
		return false, fmt.Errorf("failed to delete quote items: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM quotes WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete quote: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	return true, tx.Commit(ctx)
}

// Approve sets the quote to approved and, in the same transaction,
// auto-declines every other non-terminal quote for the same case and rejects
// any pending negotiation rounds on the case's quotes. Returns the declined
// siblings, or false when the quote was not in a decidable state.
func (r *Repository) Approve(ctx context.Context, id uuid.UUID) ([]DeclinedSibling, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var caseID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE quotes
		SET status = 'approved', has_counter_proposal = false, updated_at = NOW()
		WHERE id = $1 AND status IN ('sent', 'awaiting_response')
		RETURNING case_id`, id).Scan(&caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to approve quote: %w", err)
	}

	rows, err := tx.Query(ctx, `
		UPDATE quotes
		SET status = 'declined', has_counter_proposal = false, updated_at = NOW()
		WHERE case_id = $1 AND id <> $2 AND status IN ('sent', 'awaiting_response')
		RETURNING id, contractor_id`, caseID, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decline sibling quotes: %w", err)
	}

	var declined []DeclinedSibling
	for rows.Next() {
		var d DeclinedSibling
		if err := rows.Scan(&d.QuoteID, &d.ContractorID); err != nil {
			rows.Close()
			return nil, false, fmt.Errorf("failed to scan declined sibling: %w", err)
		}
		declined = append(declined, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	// Decided quotes cannot keep open negotiation rounds.
	if _, err := tx.Exec(ctx, `
		UPDATE counter_proposals
		SET status = 'rejected', response_reason = 'Quote decision supersedes negotiation', updated_at = NOW()
		WHERE status = 'pending'
		  AND quote_id IN (SELECT id FROM quotes WHERE case_id = $1)`, caseID); err != nil {
		return nil, false, fmt.Errorf("failed to close negotiation rounds: %w", err)
	}

	return declined, true, tx.Commit(ctx)
}

// Decline sets a decidable quote to declined. Returns false when the quote
// was not in a decidable state. No cascade to sibling quotes.
func (r *Repository) Decline(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE quotes
		SET status = 'declined', has_counter_proposal = false, updated_at = NOW()
		WHERE id = $1 AND status IN ('sent', 'awaiting_response')`, id)
	if err != nil {
		return false, fmt.Errorf("failed to decline quote: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE counter_proposals
		SET status = 'rejected', response_reason = 'Quote decision supersedes negotiation', updated_at = NOW()
		WHERE quote_id = $1 AND status = 'pending'`, id); err != nil {
		return false, fmt.Errorf("failed to close negotiation rounds: %w", err)
	}

	return true, tx.Commit(ctx)
}

// ExpireDue transitions overdue sent and awaiting quotes to expired and
// returns them for notification fan-out. Pending negotiation rounds on the
// expired quotes are rejected in the same transaction so no round outlives
// its quote.
func (r *Repository) ExpireDue(ctx context.Context, now time.Time) ([]Quote, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin expiry transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		UPDATE quotes
		SET status = 'expired', has_counter_proposal = false, updated_at = NOW()
		WHERE expires_at IS NOT NULL AND expires_at < $1
		  AND status IN ('sent', 'awaiting_response')
		RETURNING `+quoteColumns, now)
	if err != nil {
		return nil, fmt.Errorf("failed to expire quotes: %w", err)
	}

	var expired []Quote
	for rows.Next() {
		var q Quote
		if err := rows.Scan(quoteFields(&q)...); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expired quote: %w", err)
		}
		expired = append(expired, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expired quotes: %w", err)
	}

	if len(expired) > 0 {
		ids := make([]uuid.UUID, len(expired))
		for i, q := range expired {
			ids[i] = q.ID
		}
		if _, err := tx.Exec(ctx, `
			UPDATE counter_proposals
			SET status = 'rejected', response_reason = $2, updated_at = NOW()
			WHERE status = 'pending' AND quote_id = ANY($1)`, ids, domain.CounterExpiredReason); err != nil {
			return nil, fmt.Errorf("failed to close rounds on expired quotes: %w", err)
		}
	}

	return expired, tx.Commit(ctx)
}

func quoteFields(q *Quote) []interface{} {
	return []interface{}{
		&q.ID, &q.CaseID, &q.ContractorID, &q.CustomerID, &q.Status,
		&q.SubtotalCents, &q.TaxAmountCents, &q.TotalCents, &q.DepositRequiredCents,
		&q.AvailableStartDate, &q.AvailableEndDate, &q.EstimatedDays,
		&q.HasCounterProposal, &q.CounterProposalCount, &q.ApprovalToken, &q.ExpiresAt,
		&q.Notes, &q.CreatedAt, &q.UpdatedAt,
	}
}

// mapQuoteConstraint translates the one-active-quote unique index into a
// domain conflict.
func mapQuoteConstraint(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("an active quote already exists for this case and contractor").
			WithCode(apperr.CodeAlreadyExists)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
