package adapters

import (
	"context"
	"time"

	appointmentsservice "caseflow_backend/internal/appointments/service"
	workordersservice "caseflow_backend/internal/workorders/service"

	"github.com/google/uuid"
)

// ScheduleConfirmerAdapter routes the lifecycle controller's confirm-job
// through the appointments service so both entry points share one
// scheduling path.
type ScheduleConfirmerAdapter struct {
	svc *appointmentsservice.Service
}

func NewScheduleConfirmerAdapter(svc *appointmentsservice.Service) *ScheduleConfirmerAdapter {
	return &ScheduleConfirmerAdapter{svc: svc}
}

func (a *ScheduleConfirmerAdapter) ConfirmCaseSchedule(ctx context.Context, caseID, actorID uuid.UUID, startAt time.Time, estimatedDays int, notes string) (time.Time, error) {
	return a.svc.ConfirmForCase(ctx, caseID, actorID, startAt, estimatedDays, notes)
}

var _ workordersservice.ScheduleConfirmer = (*ScheduleConfirmerAdapter)(nil)
