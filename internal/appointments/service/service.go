package service

import (
	"context"
	"time"

	"caseflow_backend/internal/appointments/repository"
	"caseflow_backend/internal/appointments/transport"
	"caseflow_backend/internal/events"
	"caseflow_backend/platform/apperr"
	"caseflow_backend/platform/logger"

	"github.com/google/uuid"
)

// CaseSchedule is the slice of a work order the confirmer validates against.
type CaseSchedule struct {
	ID           uuid.UUID
	LandlordID   uuid.UUID
	ContractorID *uuid.UUID
	Title        string
	Schedulable  bool
}

// CaseScheduler is the narrow interface to the work-orders module.
// ConfirmSchedule is the conditional write that moves the case to Scheduled
// and stamps the window; it fails cleanly when the status raced away.
type CaseScheduler interface {
	ScheduleInfo(ctx context.Context, caseID uuid.UUID) (CaseSchedule, error)
	ConfirmSchedule(ctx context.Context, caseID uuid.UUID, startAt, endAt time.Time) (bool, error)
}

// ReminderScheduler enqueues a lead-time reminder. Optional: nil disables
// reminders, and failures never fail the confirmation.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, appointmentID uuid.UUID, caseID *uuid.UUID, remindAt time.Time) error
}

// AppointmentStore is the persistence surface the confirmer drives.
// Implemented by the appointments repository.
type AppointmentStore interface {
	Create(ctx context.Context, a *repository.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Appointment, error)
	GetActiveByCase(ctx context.Context, caseID uuid.UUID) (*repository.Appointment, error)
	ListForContractor(ctx context.Context, contractorID uuid.UUID, from, to time.Time) ([]repository.Appointment, error)
	Reschedule(ctx context.Context, id uuid.UUID, startAt, endAt time.Time) (bool, error)
	Cancel(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service is the scheduling confirmer. Interactive rescheduling and
// confirm-job go through the same Confirm path so the slot-conflict and
// status checks can never be bypassed.
type Service struct {
	repo         AppointmentStore
	cases        CaseScheduler
	reminders    ReminderScheduler
	bus          events.Bus
	log          *logger.Logger
	reminderLead time.Duration
}

// New creates a new appointments service.
func New(repo AppointmentStore, cases CaseScheduler, bus events.Bus, log *logger.Logger, reminderLead time.Duration) *Service {
	return &Service{repo: repo, cases: cases, bus: bus, log: log, reminderLead: reminderLead}
}

// SetReminderScheduler injects the reminder queue (set after construction).
func (s *Service) SetReminderScheduler(r ReminderScheduler) {
	s.reminders = r
}

// Confirm books a case onto the calendar: requires an assigned contractor
// and a schedulable status, computes the window from the estimate, and
// writes appointment and case atomically enough that a slot conflict leaves
// the case untouched. Re-confirming an already scheduled case moves its
// existing appointment.
func (s *Service) Confirm(ctx context.Context, actorID uuid.UUID, req transport.ConfirmJobRequest) (*transport.AppointmentResponse, error) {
	info, err := s.cases.ScheduleInfo(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}
	if info.ContractorID == nil {
		return nil, apperr.InvalidTransition("case has no assigned contractor to schedule")
	}
	if !info.Schedulable {
		return nil, apperr.InvalidTransition("case cannot be scheduled in its current status")
	}
	if actorID != *info.ContractorID && actorID != info.LandlordID {
		return nil, apperr.Forbidden("only the landlord or the assigned contractor can schedule this case")
	}

	startAt := req.StartAt.UTC()
	endAt := ScheduleWindow(startAt, req.EstimatedDays)
	now := time.Now().UTC()

	existing, err := s.repo.GetActiveByCase(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	var appt *repository.Appointment
	created := false
	var prevStart, prevEnd time.Time
	if existing != nil {
		prevStart, prevEnd = existing.StartAt, existing.EndAt

		// The slot constraint applies to the move as well.
		ok, err := s.repo.Reschedule(ctx, existing.ID, startAt, endAt)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.InvalidState("appointment is no longer active")
		}
		existing.StartAt = startAt
		existing.EndAt = endAt
		appt = existing
	} else {
		appt = &repository.Appointment{
			ID:           uuid.New(),
			CaseID:       &info.ID,
			ContractorID: *info.ContractorID,
			Title:        info.Title,
			Notes:        nilIfEmpty(req.Notes),
			StartAt:      startAt,
			EndAt:        endAt,
			Status:       "scheduled",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.Create(ctx, appt); err != nil {
			return nil, err
		}
		created = true
	}

	ok, err := s.cases.ConfirmSchedule(ctx, req.CaseID, startAt, endAt)
	if err != nil || !ok {
		// Undo the booking; the case status is the authoritative fact.
		if created {
			if _, cErr := s.repo.Cancel(ctx, appt.ID); cErr != nil {
				s.log.SideEffectFailure("cancel orphaned appointment", cErr)
			}
		} else {
			// A moved appointment goes back to its prior window.
			if _, rErr := s.repo.Reschedule(ctx, appt.ID, prevStart, prevEnd); rErr != nil {
				s.log.SideEffectFailure("restore appointment window", rErr)
			}
		}
		if err != nil {
			return nil, err
		}
		return nil, apperr.InvalidTransition("case cannot be scheduled in its current status")
	}

	s.scheduleReminder(ctx, appt, now)

	s.bus.Publish(ctx, events.AppointmentCreated{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: appt.ID,
		CaseID:        appt.CaseID,
		ContractorID:  appt.ContractorID,
		StartAt:       startAt,
		EndAt:         endAt,
	})
	s.bus.Publish(ctx, events.JobConfirmed{
		BaseEvent:    events.NewBaseEvent(),
		CaseID:       info.ID,
		LandlordID:   info.LandlordID,
		ContractorID: *info.ContractorID,
		StartAt:      startAt,
		EndAt:        endAt,
	})

	return buildResponse(appt), nil
}

// ConfirmForCase adapts Confirm for callers that only know the case. Returns
// the computed window end.
func (s *Service) ConfirmForCase(ctx context.Context, caseID, actorID uuid.UUID, startAt time.Time, estimatedDays int, notes string) (time.Time, error) {
	resp, err := s.Confirm(ctx, actorID, transport.ConfirmJobRequest{
		CaseID:        caseID,
		StartAt:       startAt,
		EstimatedDays: estimatedDays,
		Notes:         notes,
	})
	if err != nil {
		return time.Time{}, err
	}
	return resp.EndAt, nil
}

// Move reschedules an appointment to a new start, keeping its span. Case
// appointments go back through Confirm so the case window and status checks
// ride along; drag-and-drop has no private code path.
func (s *Service) Move(ctx context.Context, actorID, appointmentID uuid.UUID, req transport.MoveRequest) (*transport.AppointmentResponse, error) {
	appt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.ContractorID != actorID {
		return nil, apperr.Forbidden("appointment belongs to another contractor")
	}

	if appt.CaseID != nil {
		return s.Confirm(ctx, actorID, transport.ConfirmJobRequest{
			CaseID:        *appt.CaseID,
			StartAt:       req.StartAt,
			EstimatedDays: DaysSpanned(appt.StartAt, appt.EndAt),
		})
	}

	startAt := req.StartAt.UTC()
	endAt := startAt.Add(appt.EndAt.Sub(appt.StartAt))

	ok, err := s.repo.Reschedule(ctx, appointmentID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("appointment is no longer active")
	}

	appt.StartAt = startAt
	appt.EndAt = endAt
	return buildResponse(appt), nil
}

// QuickAdd creates a standalone calendar block. Conflict detection applies
// exactly as for case appointments.
func (s *Service) QuickAdd(ctx context.Context, contractorID uuid.UUID, req transport.QuickAddRequest) (*transport.AppointmentResponse, error) {
	if !req.EndAt.After(req.StartAt) {
		return nil, apperr.Validation("endAt must be after startAt")
	}

	now := time.Now().UTC()
	appt := &repository.Appointment{
		ID:           uuid.New(),
		ContractorID: contractorID,
		TeamID:       req.TeamID,
		Title:        req.Title,
		Notes:        nilIfEmpty(req.Notes),
		StartAt:      req.StartAt.UTC(),
		EndAt:        req.EndAt.UTC(),
		Status:       "scheduled",
		IsAllDay:     req.IsAllDay,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	return buildResponse(appt), nil
}

// Calendar lists the contractor's commitments inside a window.
func (s *Service) Calendar(ctx context.Context, contractorID uuid.UUID, req transport.CalendarRequest) ([]transport.AppointmentResponse, error) {
	if !req.To.After(req.From) {
		return nil, apperr.Validation("to must be after from")
	}

	items, err := s.repo.ListForContractor(ctx, contractorID, req.From, req.To)
	if err != nil {
		return nil, err
	}

	out := make([]transport.AppointmentResponse, len(items))
	for i := range items {
		out[i] = *buildResponse(&items[i])
	}
	return out, nil
}

// Cancel frees an appointment's slot.
func (s *Service) Cancel(ctx context.Context, actorID, appointmentID uuid.UUID) error {
	appt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.ContractorID != actorID {
		return apperr.Forbidden("appointment belongs to another contractor")
	}

	ok, err := s.repo.Cancel(ctx, appointmentID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.InvalidState("appointment is already cancelled")
	}
	return nil
}

// scheduleReminder enqueues the lead-time reminder. Best effort: a queue
// failure is logged, never surfaced.
func (s *Service) scheduleReminder(ctx context.Context, appt *repository.Appointment, now time.Time) {
	if s.reminders == nil {
		return
	}
	remindAt := ReminderAt(appt.StartAt, s.reminderLead, now)
	if remindAt.IsZero() {
		return
	}
	if err := s.reminders.ScheduleReminder(ctx, appt.ID, appt.CaseID, remindAt); err != nil {
		s.log.SideEffectFailure("schedule appointment reminder", err)
	}
}

func buildResponse(a *repository.Appointment) *transport.AppointmentResponse {
	resp := &transport.AppointmentResponse{
		ID:           a.ID,
		CaseID:       a.CaseID,
		QuoteID:      a.QuoteID,
		ContractorID: a.ContractorID,
		TeamID:       a.TeamID,
		Title:        a.Title,
		StartAt:      a.StartAt,
		EndAt:        a.EndAt,
		Status:       a.Status,
		IsAllDay:     a.IsAllDay,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.Notes != nil {
		resp.Notes = *a.Notes
	}
	return resp
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
