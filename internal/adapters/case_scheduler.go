package adapters

import (
	"context"
	"time"

	appointmentsservice "caseflow_backend/internal/appointments/service"
	"caseflow_backend/internal/workorders/domain"
	"caseflow_backend/internal/workorders/repository"

	"github.com/google/uuid"
)

// CaseSchedulerAdapter exposes work-order schedule reads and the conditional
// schedule write to the appointments module.
type CaseSchedulerAdapter struct {
	repo *repository.Repository
}

func NewCaseSchedulerAdapter(repo *repository.Repository) *CaseSchedulerAdapter {
	return &CaseSchedulerAdapter{repo: repo}
}

func (a *CaseSchedulerAdapter) ScheduleInfo(ctx context.Context, caseID uuid.UUID) (appointmentsservice.CaseSchedule, error) {
	wo, err := a.repo.GetByID(ctx, caseID)
	if err != nil {
		return appointmentsservice.CaseSchedule{}, err
	}
	return appointmentsservice.CaseSchedule{
		ID:           wo.ID,
		LandlordID:   wo.LandlordID,
		ContractorID: wo.AssignedContractorID,
		Title:        wo.Title,
		Schedulable:  domain.Status(wo.Status).Confirmable(),
	}, nil
}

func (a *CaseSchedulerAdapter) ConfirmSchedule(ctx context.Context, caseID uuid.UUID, startAt, endAt time.Time) (bool, error) {
	return a.repo.ConfirmSchedule(ctx, caseID, startAt, endAt)
}

var _ appointmentsservice.CaseScheduler = (*CaseSchedulerAdapter)(nil)
