package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"caseflow_backend/internal/events"
	"caseflow_backend/internal/quotes/domain"
	"caseflow_backend/internal/quotes/repository"
	"caseflow_backend/internal/quotes/transport"
	"caseflow_backend/platform/apperr"
	"caseflow_backend/platform/logger"

	"github.com/google/uuid"
)

// CaseGate is the narrow interface the quote ledger needs from the
// work-orders module: enough of a case to validate quoting against it.
// Implemented by an adapter in internal/adapters.
type CaseGate interface {
	CaseForQuoting(ctx context.Context, caseID uuid.UUID) (CaseInfo, error)
}

// CaseInfo is the slice of a case the ledger validates against.
type CaseInfo struct {
	ID         uuid.UUID
	LandlordID uuid.UUID
	Status     string
	Closed     bool
	Posted     bool
}

// Service provides business logic for quotes and their negotiation rounds.
type Service struct {
	repo          *repository.Repository
	cases         CaseGate
	bus           events.Bus
	log           *logger.Logger
	appBaseURL    string
	quoteValidity time.Duration
}

// New creates a new quotes service.
func New(repo *repository.Repository, cases CaseGate, bus events.Bus, log *logger.Logger, appBaseURL string, quoteValidity time.Duration) *Service {
	if quoteValidity <= 0 {
		quoteValidity = 14 * 24 * time.Hour
	}
	return &Service{
		repo:          repo,
		cases:         cases,
		bus:           bus,
		log:           log,
		appBaseURL:    appBaseURL,
		quoteValidity: quoteValidity,
	}
}

// Create opens a draft quote for a case. Totals are always computed
// server-side from the submitted line items.
func (s *Service) Create(ctx context.Context, contractorID uuid.UUID, req transport.CreateQuoteRequest) (*transport.QuoteResponse, error) {
	info, err := s.cases.CaseForQuoting(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}
	if info.Closed {
		return nil, apperr.InvalidState("case is closed for quoting")
	}
	if !info.Posted {
		return nil, apperr.Forbidden("case is not open to contractors")
	}

	calc := CalculateQuote(transport.QuoteCalculationRequest{TaxRateBps: req.TaxRateBps, Items: req.Items})

	now := time.Now().UTC()
	quote := repository.Quote{
		ID:                   uuid.New(),
		CaseID:               req.CaseID,
		ContractorID:         contractorID,
		CustomerID:           info.LandlordID,
		Status:               string(domain.StatusDraft),
		SubtotalCents:        calc.SubtotalCents,
		TaxAmountCents:       calc.TaxAmountCents,
		TotalCents:           calc.TotalCents,
		DepositRequiredCents: req.DepositRequiredCents,
		AvailableStartDate:   req.AvailableStartDate,
		AvailableEndDate:     req.AvailableEndDate,
		EstimatedDays:        req.EstimatedDays,
		Notes:                nilIfEmpty(req.Notes),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	items := buildItems(quote.ID, req.Items, now)
	if err := s.repo.CreateWithItems(ctx, &quote, items); err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, &quote)
}

// Update replaces a draft quote's terms and line items as a set.
func (s *Service) Update(ctx context.Context, contractorID, quoteID uuid.UUID, req transport.UpdateQuoteRequest) (*transport.QuoteResponse, error) {
	quote, err := s.authorizedQuote(ctx, quoteID, contractorID)
	if err != nil {
		return nil, err
	}

	calc := CalculateQuote(transport.QuoteCalculationRequest{TaxRateBps: req.TaxRateBps, Items: req.Items})

	quote.SubtotalCents = calc.SubtotalCents
	quote.TaxAmountCents = calc.TaxAmountCents
	quote.TotalCents = calc.TotalCents
	quote.DepositRequiredCents = req.DepositRequiredCents
	quote.AvailableStartDate = req.AvailableStartDate
	quote.AvailableEndDate = req.AvailableEndDate
	quote.EstimatedDays = req.EstimatedDays
	quote.Notes = nilIfEmpty(req.Notes)

	now := time.Now().UTC()
	items := buildItems(quote.ID, req.Items, now)

	ok, err := s.repo.UpdateWithItems(ctx, quote, items)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("only draft quotes can be edited")
	}

	return s.buildResponse(ctx, quote)
}

// Delete removes a draft quote and its line items.
func (s *Service) Delete(ctx context.Context, contractorID, quoteID uuid.UUID) error {
	if _, err := s.authorizedQuote(ctx, quoteID, contractorID); err != nil {
		return err
	}

	ok, err := s.repo.Delete(ctx, quoteID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.InvalidState("only draft quotes can be deleted")
	}
	return nil
}

// GetByID retrieves a quote for either negotiating party.
func (s *Service) GetByID(ctx context.Context, actorID, quoteID uuid.UUID) (*transport.QuoteResponse, error) {
	quote, err := s.repo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.ContractorID != actorID && quote.CustomerID != actorID {
		return nil, apperr.Forbidden("quote belongs to another party")
	}
	return s.buildResponse(ctx, quote)
}

// ListForContractor returns the contractor's quotes.
func (s *Service) ListForContractor(ctx context.Context, contractorID uuid.UUID, req transport.ListQuotesRequest) ([]transport.QuoteResponse, error) {
	return s.list(ctx, repository.ListParams{
		CaseID:       req.CaseID,
		ContractorID: &contractorID,
		Status:       nilIfEmpty(req.Status),
		Page:         req.Page,
		PageSize:     req.PageSize,
	})
}

// ListForCustomer returns the landlord's received quotes.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID, req transport.ListQuotesRequest) ([]transport.QuoteResponse, error) {
	return s.list(ctx, repository.ListParams{
		CaseID:     req.CaseID,
		CustomerID: &customerID,
		Status:     nilIfEmpty(req.Status),
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
}

func (s *Service) list(ctx context.Context, params repository.ListParams) ([]transport.QuoteResponse, error) {
	quotes, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	out := make([]transport.QuoteResponse, len(quotes))
	for i := range quotes {
		items, err := s.repo.GetItemsByQuoteID(ctx, quotes[i].ID)
		if err != nil {
			return nil, err
		}
		out[i] = *buildQuoteResponse(&quotes[i], items)
	}
	return out, nil
}

// Send moves a draft to sent, minting the single-use approval token and the
// expiry the background sweep enforces.
func (s *Service) Send(ctx context.Context, contractorID, quoteID uuid.UUID, req transport.SendQuoteRequest) (*transport.SendQuoteResponse, error) {
	quote, err := s.authorizedQuote(ctx, quoteID, contractorID)
	if err != nil {
		return nil, err
	}

	token, err := newApprovalToken()
	if err != nil {
		return nil, apperr.Internal("failed to generate approval token")
	}
	expiresAt := time.Now().UTC().Add(s.quoteValidity)

	ok, err := s.repo.MarkSent(ctx, quoteID, token, expiresAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("only draft quotes can be sent")
	}

	link := fmt.Sprintf("%s/quotes/approve/%s", s.appBaseURL, token)

	s.bus.Publish(ctx, events.QuoteSent{
		BaseEvent:    events.NewBaseEvent(),
		QuoteID:      quoteID,
		CaseID:       quote.CaseID,
		ContractorID: quote.ContractorID,
		CustomerID:   quote.CustomerID,
		TotalCents:   quote.TotalCents,
		ApprovalLink: link,
	})

	return &transport.SendQuoteResponse{
		QuoteID:      quoteID,
		Status:       string(domain.StatusSent),
		ApprovalLink: link,
		ExpiresAt:    expiresAt,
	}, nil
}

// Accept approves a quote on the landlord's behalf. Every competing
// non-terminal quote on the same case is auto-declined in the same
// transaction.
func (s *Service) Accept(ctx context.Context, customerID, quoteID uuid.UUID) (*transport.AcceptQuoteResponse, error) {
	quote, err := s.repo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.CustomerID != customerID {
		return nil, apperr.Forbidden("quote belongs to another landlord")
	}

	return s.accept(ctx, quote)
}

// AcceptByToken approves a quote through the approval link.
func (s *Service) AcceptByToken(ctx context.Context, token string) (*transport.AcceptQuoteResponse, error) {
	quote, err := s.repo.GetByApprovalToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if quote.ExpiresAt != nil && time.Now().UTC().After(*quote.ExpiresAt) {
		return nil, apperr.Gone("approval link has expired")
	}

	return s.accept(ctx, quote)
}

func (s *Service) accept(ctx context.Context, quote *repository.Quote) (*transport.AcceptQuoteResponse, error) {
	declined, ok, err := s.repo.Approve(ctx, quote.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState(
			fmt.Sprintf("a %s quote cannot be accepted", quote.Status))
	}

	declinedIDs := make([]uuid.UUID, len(declined))
	for i, d := range declined {
		declinedIDs[i] = d.QuoteID
	}

	s.bus.Publish(ctx, events.QuoteAccepted{
		BaseEvent:      events.NewBaseEvent(),
		QuoteID:        quote.ID,
		CaseID:         quote.CaseID,
		ContractorID:   quote.ContractorID,
		CustomerID:     quote.CustomerID,
		TotalCents:     quote.TotalCents,
		DeclinedQuotes: declinedIDs,
	})
	for _, d := range declined {
		s.bus.Publish(ctx, events.QuoteDeclined{
			BaseEvent:    events.NewBaseEvent(),
			QuoteID:      d.QuoteID,
			CaseID:       quote.CaseID,
			ContractorID: d.ContractorID,
			Reason:       "Another quote was accepted for this case",
		})
	}

	updated, err := s.repo.GetByID(ctx, quote.ID)
	if err != nil {
		return nil, err
	}
	resp, err := s.buildResponse(ctx, updated)
	if err != nil {
		return nil, err
	}

	return &transport.AcceptQuoteResponse{Quote: *resp, DeclinedQuotes: declinedIDs}, nil
}

// Decline refuses a quote. No cascade to sibling quotes.
func (s *Service) Decline(ctx context.Context, customerID, quoteID uuid.UUID, req transport.DeclineQuoteRequest) (*transport.QuoteResponse, error) {
	quote, err := s.repo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.CustomerID != customerID {
		return nil, apperr.Forbidden("quote belongs to another landlord")
	}

	ok, err := s.repo.Decline(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState(
			fmt.Sprintf("a %s quote cannot be declined", quote.Status))
	}

	s.bus.Publish(ctx, events.QuoteDeclined{
		BaseEvent:    events.NewBaseEvent(),
		QuoteID:      quoteID,
		CaseID:       quote.CaseID,
		ContractorID: quote.ContractorID,
		Reason:       req.Reason,
	})

	updated, err := s.repo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, updated)
}

// Calculate previews totals without persisting anything.
func (s *Service) Calculate(req transport.QuoteCalculationRequest) transport.QuoteCalculationResponse {
	return CalculateQuote(req)
}

// ExpireDue is called by the background sweep. Overdue sent and awaiting
// quotes become expired; one event per quote is published for notification
// fan-out.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.ExpireDue(ctx, now)
	if err != nil {
		return 0, err
	}

	for _, q := range expired {
		s.bus.Publish(ctx, events.QuoteExpired{
			BaseEvent:    events.NewBaseEvent(),
			QuoteID:      q.ID,
			CaseID:       q.CaseID,
			ContractorID: q.ContractorID,
		})
	}
	return len(expired), nil
}

func (s *Service) authorizedQuote(ctx context.Context, quoteID, contractorID uuid.UUID) (*repository.Quote, error) {
	quote, err := s.repo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.ContractorID != contractorID {
		return nil, apperr.Forbidden("quote belongs to another contractor")
	}
	return quote, nil
}

func (s *Service) buildResponse(ctx context.Context, quote *repository.Quote) (*transport.QuoteResponse, error) {
	items, err := s.repo.GetItemsByQuoteID(ctx, quote.ID)
	if err != nil {
		return nil, err
	}
	return buildQuoteResponse(quote, items), nil
}

func buildItems(quoteID uuid.UUID, reqs []transport.QuoteItemRequest, now time.Time) []repository.QuoteItem {
	items := make([]repository.QuoteItem, len(reqs))
	for i, it := range reqs {
		items[i] = repository.QuoteItem{
			ID:             uuid.New(),
			QuoteID:        quoteID,
			Name:           it.Name,
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			TotalCents:     roundCents(it.Quantity * float64(it.UnitPriceCents)),
			DisplayOrder:   i,
			CreatedAt:      now,
		}
	}
	return items
}

func buildQuoteResponse(q *repository.Quote, items []repository.QuoteItem) *transport.QuoteResponse {
	itemResponses := make([]transport.QuoteItemResponse, len(items))
	for i, it := range items {
		itemResponses[i] = transport.QuoteItemResponse{
			ID:             it.ID,
			Name:           it.Name,
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			TotalCents:     it.TotalCents,
			DisplayOrder:   it.DisplayOrder,
		}
	}

	resp := &transport.QuoteResponse{
		ID:                   q.ID,
		CaseID:               q.CaseID,
		ContractorID:         q.ContractorID,
		CustomerID:           q.CustomerID,
		Status:               q.Status,
		SubtotalCents:        q.SubtotalCents,
		TaxAmountCents:       q.TaxAmountCents,
		TotalCents:           q.TotalCents,
		DepositRequiredCents: q.DepositRequiredCents,
		AvailableStartDate:   q.AvailableStartDate,
		AvailableEndDate:     q.AvailableEndDate,
		EstimatedDays:        q.EstimatedDays,
		HasCounterProposal:   q.HasCounterProposal,
		CounterProposalCount: q.CounterProposalCount,
		ExpiresAt:            q.ExpiresAt,
		Items:                itemResponses,
		CreatedAt:            q.CreatedAt,
		UpdatedAt:            q.UpdatedAt,
	}
	if q.Notes != nil {
		resp.Notes = *q.Notes
	}
	return resp
}

func newApprovalToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
