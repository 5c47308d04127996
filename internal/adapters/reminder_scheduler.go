package adapters

import (
	"context"
	"time"

	appointmentsservice "caseflow_backend/internal/appointments/service"
	"caseflow_backend/internal/scheduler"

	"github.com/google/uuid"
)

// ReminderSchedulerAdapter bridges the appointments service to the asynq
// queue client: booking a schedule window enqueues a delayed reminder task.
type ReminderSchedulerAdapter struct {
	client *scheduler.Client
}

func NewReminderSchedulerAdapter(client *scheduler.Client) *ReminderSchedulerAdapter {
	return &ReminderSchedulerAdapter{client: client}
}

var _ appointmentsservice.ReminderScheduler = (*ReminderSchedulerAdapter)(nil)

func (a *ReminderSchedulerAdapter) ScheduleReminder(ctx context.Context, appointmentID uuid.UUID, caseID *uuid.UUID, remindAt time.Time) error {
	if a == nil || a.client == nil {
		return nil
	}

	payload := scheduler.AppointmentReminderPayload{
		AppointmentID: appointmentID.String(),
	}
	if caseID != nil {
		s := caseID.String()
		payload.CaseID = &s
	}

	return a.client.ScheduleAppointmentReminder(ctx, payload, remindAt)
}
