package adapters

import (
	"context"
	"time"

	marketplaceservice "caseflow_backend/internal/marketplace/service"
	"caseflow_backend/internal/workorders/repository"

	"github.com/google/uuid"
)

// CaseDirectoryAdapter exposes work-order claims and lookups to the
// marketplace without coupling it to the work-orders repository types.
type CaseDirectoryAdapter struct {
	repo *repository.Repository
}

func NewCaseDirectoryAdapter(repo *repository.Repository) *CaseDirectoryAdapter {
	return &CaseDirectoryAdapter{repo: repo}
}

func (a *CaseDirectoryAdapter) Assign(ctx context.Context, caseID, contractorID uuid.UUID) (bool, error) {
	return a.repo.Assign(ctx, caseID, contractorID)
}

func (a *CaseDirectoryAdapter) Summary(ctx context.Context, caseID uuid.UUID) (*marketplaceservice.CaseSummary, error) {
	wo, err := a.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return &marketplaceservice.CaseSummary{
		ID:                   wo.ID,
		LandlordID:           wo.LandlordID,
		Title:                wo.Title,
		Status:               wo.Status,
		AssignedContractorID: wo.AssignedContractorID,
	}, nil
}

func (a *CaseDirectoryAdapter) AppendSystemMessage(ctx context.Context, caseID uuid.UUID, actorID *uuid.UUID, eventType, message string) error {
	return a.repo.AppendTimeline(ctx, repository.TimelineEntry{
		ID:        uuid.New(),
		CaseID:    caseID,
		ActorID:   actorID,
		EventType: eventType,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
}

var _ marketplaceservice.CaseDirectory = (*CaseDirectoryAdapter)(nil)
