package service

import (
	"context"
	"time"

	"caseflow_backend/internal/events"
	"caseflow_backend/internal/marketplace/repository"
	"caseflow_backend/internal/marketplace/transport"
	"caseflow_backend/internal/workorders/domain"
	"caseflow_backend/platform/apperr"
	"caseflow_backend/platform/logger"

	"github.com/google/uuid"
)

// CaseSummary is the slice of a work order the distributor needs for
// post-accept bookkeeping.
type CaseSummary struct {
	ID                   uuid.UUID
	LandlordID           uuid.UUID
	Title                string
	Status               string
	AssignedContractorID *uuid.UUID
}

// CaseDirectory is the narrow interface to the work-orders module. Assign is
// the first-writer-wins claim: it succeeds only when the case is still new
// and unassigned, in a single conditional write.
type CaseDirectory interface {
	Assign(ctx context.Context, caseID, contractorID uuid.UUID) (bool, error)
	Summary(ctx context.Context, caseID uuid.UUID) (*CaseSummary, error)
	AppendSystemMessage(ctx context.Context, caseID uuid.UUID, actorID *uuid.UUID, eventType, message string) error
}

// Service is the marketplace distributor.
type Service struct {
	repo  *repository.Repository
	cases CaseDirectory
	bus   events.Bus
	log   *logger.Logger
}

// New creates a new marketplace service.
func New(repo *repository.Repository, cases CaseDirectory, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cases: cases, bus: bus, log: log}
}

// ListFeed returns the contractor's eligible-case feed.
func (s *Service) ListFeed(ctx context.Context, contractorID uuid.UUID, req transport.ListFeedRequest) ([]transport.ListingResponse, error) {
	listings, err := s.repo.ListEligible(ctx, contractorID, req.Categories, req.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ListingResponse, len(listings))
	for i, l := range listings {
		out[i] = transport.ListingResponse{
			CaseID:          l.CaseID,
			Title:           l.Title,
			Description:     l.Description,
			Category:        l.Category,
			Priority:        l.Priority,
			PriorityDisplay: domain.Priority(l.Priority).Display(),
			PostedAt:        l.PostedAt,
			CreatedAt:       l.CreatedAt,
		}
	}
	return out, nil
}

// Accept claims a posted case for the contractor. The claim is a single
// conditional update; when it writes no row the loser of the race gets
// AlreadyAssigned, not a partial assignment.
func (s *Service) Accept(ctx context.Context, contractorID, caseID uuid.UUID, req transport.AcceptCaseRequest) (*transport.AcceptCaseResponse, error) {
	ok, err := s.cases.Assign(ctx, caseID, contractorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		summary, sumErr := s.cases.Summary(ctx, caseID)
		if sumErr != nil {
			return nil, sumErr
		}
		if summary.AssignedContractorID != nil {
			return nil, apperr.AlreadyAssigned("case has already been claimed")
		}
		return nil, apperr.InvalidState("case is no longer open for acceptance")
	}

	summary, err := s.cases.Summary(ctx, caseID)
	if err != nil {
		return nil, err
	}

	if msgErr := s.cases.AppendSystemMessage(ctx, caseID, &contractorID, "case_accepted", "A contractor accepted this case"); msgErr != nil {
		s.log.SideEffectFailure("append acceptance message", msgErr)
	}

	s.bus.Publish(ctx, events.CaseAccepted{
		BaseEvent:    events.NewBaseEvent(),
		CaseID:       caseID,
		LandlordID:   summary.LandlordID,
		ContractorID: contractorID,
		Title:        summary.Title,
		PricingHint:  req.PricingHintCents,
	})

	return &transport.AcceptCaseResponse{
		CaseID:     caseID,
		Status:     summary.Status,
		AcceptedAt: time.Now().UTC(),
	}, nil
}

// Dismiss hides a case from the contractor's feed. Idempotent.
func (s *Service) Dismiss(ctx context.Context, contractorID, caseID uuid.UUID, reason string) error {
	if _, err := s.cases.Summary(ctx, caseID); err != nil {
		return err
	}
	return s.repo.Dismiss(ctx, contractorID, caseID, reason)
}

// UndoDismiss restores a dismissed case to the feed.
func (s *Service) UndoDismiss(ctx context.Context, contractorID, caseID uuid.UUID) error {
	return s.repo.UndoDismiss(ctx, contractorID, caseID)
}
