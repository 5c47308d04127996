package service

import (
	"context"
	"time"

	"caseflow_backend/internal/events"
	"caseflow_backend/internal/quotes/domain"
	"caseflow_backend/internal/quotes/repository"
	"caseflow_backend/internal/quotes/transport"
	"caseflow_backend/platform/apperr"

	"github.com/google/uuid"
)

// roleOnQuote resolves which side of the negotiation the actor is on.
func roleOnQuote(quote *repository.Quote, actorID uuid.UUID) (domain.Role, error) {
	switch actorID {
	case quote.CustomerID:
		return domain.RoleLandlord, nil
	case quote.ContractorID:
		return domain.RoleContractor, nil
	}
	return "", apperr.Forbidden("quote belongs to other parties")
}

// ProposeCounter opens a negotiation round. At most one pending round may
// exist per quote; the partial unique index backs that invariant under
// concurrency.
func (s *Service) ProposeCounter(ctx context.Context, actorID, quoteID uuid.UUID, req transport.ProposeCounterRequest) (*transport.CounterProposalResponse, error) {
	quote, err := s.repo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	role, err := roleOnQuote(quote, actorID)
	if err != nil {
		return nil, err
	}
	if !domain.Status(quote.Status).Decidable() {
		return nil, apperr.InvalidState("quote is not open for negotiation")
	}
	if counterTermsOf(req).Empty() {
		return nil, apperr.Validation("a counter-proposal must change at least one term")
	}

	now := time.Now().UTC()
	cp := repository.CounterProposal{
		ID:                 uuid.New(),
		QuoteID:            quoteID,
		ProposedBy:         actorID,
		ProposedByRole:     string(role),
		ProposedTotalCents: req.ProposedTotalCents,
		ProposedStartDate:  req.ProposedStartDate,
		ProposedEndDate:    req.ProposedEndDate,
		ScopeChanges:       req.ScopeChanges,
		Message:            req.Message,
		Status:             string(domain.CounterPending),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.CreateRound(ctx, &cp, domain.StatusAfterPropose(role)); err != nil {
		return nil, err
	}

	s.publishProposed(ctx, &cp, quote)
	return buildCounterResponse(&cp), nil
}

// AcceptCounter resolves a pending round in its proposer's favour: the
// proposed terms overwrite the quote, which returns to sent so the revised
// terms can be decided on.
func (s *Service) AcceptCounter(ctx context.Context, actorID, proposalID uuid.UUID) (*transport.CounterProposalResponse, error) {
	cp, quote, err := s.roundForResponse(ctx, actorID, proposalID)
	if err != nil {
		return nil, err
	}

	patch := &repository.QuoteTermPatch{
		TotalCents: cp.ProposedTotalCents,
		StartDate:  cp.ProposedStartDate,
		EndDate:    cp.ProposedEndDate,
	}

	ok, err := s.repo.ResolveRound(ctx, proposalID, domain.CounterAccepted, nil, patch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("counter-proposal has already been resolved")
	}

	s.bus.Publish(ctx, events.CounterResolved{
		BaseEvent:  events.NewBaseEvent(),
		ProposalID: proposalID,
		QuoteID:    quote.ID,
		Outcome:    "accepted",
	})

	return s.refreshedRound(ctx, proposalID)
}

// DeclineCounter resolves a pending round against its proposer: the original
// quote terms stand and the quote returns to sent.
func (s *Service) DeclineCounter(ctx context.Context, actorID, proposalID uuid.UUID, req transport.DeclineCounterRequest) (*transport.CounterProposalResponse, error) {
	_, quote, err := s.roundForResponse(ctx, actorID, proposalID)
	if err != nil {
		return nil, err
	}

	reason := req.Reason
	ok, err := s.repo.ResolveRound(ctx, proposalID, domain.CounterRejected, &reason, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("counter-proposal has already been resolved")
	}

	s.bus.Publish(ctx, events.CounterResolved{
		BaseEvent:  events.NewBaseEvent(),
		ProposalID: proposalID,
		QuoteID:    quote.ID,
		Outcome:    "rejected",
		Reason:     reason,
	})

	return s.refreshedRound(ctx, proposalID)
}

// CounterAgain answers a pending round with new terms instead of a yes or
// no. The prior round is rejected with the standard supersede reason and a
// fresh round opens from the other party, keeping the history append-only.
func (s *Service) CounterAgain(ctx context.Context, actorID, proposalID uuid.UUID, req transport.ProposeCounterRequest) (*transport.CounterProposalResponse, error) {
	prior, quote, err := s.roundForResponse(ctx, actorID, proposalID)
	if err != nil {
		return nil, err
	}
	if counterTermsOf(req).Empty() {
		return nil, apperr.Validation("a counter-proposal must change at least one term")
	}

	role := domain.Role(prior.ProposedByRole).Opposite()

	now := time.Now().UTC()
	next := repository.CounterProposal{
		ID:                 uuid.New(),
		QuoteID:            quote.ID,
		ProposedBy:         actorID,
		ProposedByRole:     string(role),
		ProposedTotalCents: req.ProposedTotalCents,
		ProposedStartDate:  req.ProposedStartDate,
		ProposedEndDate:    req.ProposedEndDate,
		ScopeChanges:       req.ScopeChanges,
		Message:            req.Message,
		Status:             string(domain.CounterPending),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	ok, err := s.repo.ReplaceRound(ctx, proposalID, &next, domain.StatusAfterReCounter(domain.Status(quote.Status)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("counter-proposal has already been resolved")
	}

	s.bus.Publish(ctx, events.CounterResolved{
		BaseEvent:  events.NewBaseEvent(),
		ProposalID: proposalID,
		QuoteID:    quote.ID,
		Outcome:    "rejected",
		Reason:     domain.CounterRejectedReason,
	})
	s.publishProposed(ctx, &next, quote)

	return buildCounterResponse(&next), nil
}

// ListRounds returns a quote's negotiation history for either party.
func (s *Service) ListRounds(ctx context.Context, actorID, quoteID uuid.UUID) ([]transport.CounterProposalResponse, error) {
	quote, err := s.repo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if _, err := roleOnQuote(quote, actorID); err != nil {
		return nil, err
	}

	rounds, err := s.repo.ListRoundsByQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.CounterProposalResponse, len(rounds))
	for i := range rounds {
		out[i] = *buildCounterResponse(&rounds[i])
	}
	return out, nil
}

// roundForResponse loads a round and verifies the actor is the party the
// ball is with: only the opposite side of the proposer may respond.
func (s *Service) roundForResponse(ctx context.Context, actorID, proposalID uuid.UUID) (*repository.CounterProposal, *repository.Quote, error) {
	cp, err := s.repo.GetRoundByID(ctx, proposalID)
	if err != nil {
		return nil, nil, err
	}
	quote, err := s.repo.GetByID(ctx, cp.QuoteID)
	if err != nil {
		return nil, nil, err
	}

	actingRole, err := roleOnQuote(quote, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !domain.CanRespond(actingRole, domain.Role(cp.ProposedByRole)) {
		return nil, nil, apperr.Forbidden("only the other party can respond to this counter-proposal")
	}
	return cp, quote, nil
}

func (s *Service) refreshedRound(ctx context.Context, proposalID uuid.UUID) (*transport.CounterProposalResponse, error) {
	cp, err := s.repo.GetRoundByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	return buildCounterResponse(cp), nil
}

func (s *Service) publishProposed(ctx context.Context, cp *repository.CounterProposal, quote *repository.Quote) {
	s.bus.Publish(ctx, events.CounterProposed{
		BaseEvent:     events.NewBaseEvent(),
		ProposalID:    cp.ID,
		QuoteID:       quote.ID,
		CaseID:        quote.CaseID,
		ProposedBy:    cp.ProposedBy,
		ProposedRole:  cp.ProposedByRole,
		ProposedTotal: cp.ProposedTotalCents,
		Round:         quote.CounterProposalCount + 1,
	})
}

func counterTermsOf(req transport.ProposeCounterRequest) domain.CounterTerms {
	return domain.CounterTerms{
		ProposedTotalCents: req.ProposedTotalCents,
		ProposedStartDate:  req.ProposedStartDate,
		ProposedEndDate:    req.ProposedEndDate,
		ScopeChanges:       req.ScopeChanges,
	}
}

func buildCounterResponse(cp *repository.CounterProposal) *transport.CounterProposalResponse {
	return &transport.CounterProposalResponse{
		ID:                 cp.ID,
		QuoteID:            cp.QuoteID,
		ProposedBy:         cp.ProposedBy,
		ProposedByRole:     cp.ProposedByRole,
		ProposedTotalCents: cp.ProposedTotalCents,
		ProposedStartDate:  cp.ProposedStartDate,
		ProposedEndDate:    cp.ProposedEndDate,
		ScopeChanges:       cp.ScopeChanges,
		Message:            cp.Message,
		Status:             cp.Status,
		ResponseReason:     cp.ResponseReason,
		CreatedAt:          cp.CreatedAt,
		UpdatedAt:          cp.UpdatedAt,
	}
}
