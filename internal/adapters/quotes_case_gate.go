package adapters

import (
	"context"

	quotesservice "caseflow_backend/internal/quotes/service"
	"caseflow_backend/internal/workorders/domain"
	"caseflow_backend/internal/workorders/repository"

	"github.com/google/uuid"
)

// QuotesCaseGateAdapter lets the quote ledger validate a case without
// importing the work-orders repository types.
type QuotesCaseGateAdapter struct {
	repo *repository.Repository
}

func NewQuotesCaseGateAdapter(repo *repository.Repository) *QuotesCaseGateAdapter {
	return &QuotesCaseGateAdapter{repo: repo}
}

func (a *QuotesCaseGateAdapter) CaseForQuoting(ctx context.Context, caseID uuid.UUID) (quotesservice.CaseInfo, error) {
	wo, err := a.repo.GetByID(ctx, caseID)
	if err != nil {
		return quotesservice.CaseInfo{}, err
	}
	return quotesservice.CaseInfo{
		ID:         wo.ID,
		LandlordID: wo.LandlordID,
		Status:     wo.Status,
		Closed:     domain.Status(wo.Status).Terminal(),
		Posted:     wo.PostedAt != nil,
	}, nil
}

var _ quotesservice.CaseGate = (*QuotesCaseGateAdapter)(nil)
