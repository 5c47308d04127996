package service

import (
	"context"
	"fmt"
	"time"

	"caseflow_backend/internal/events"
	"caseflow_backend/internal/workorders/domain"
	"caseflow_backend/internal/workorders/repository"
	"caseflow_backend/internal/workorders/transport"
	"caseflow_backend/platform/apperr"
	"caseflow_backend/platform/logger"

	"github.com/google/uuid"
)

// ScheduleConfirmer is the narrow interface the lifecycle controller uses to
// confirm a job's calendar window. Implemented by an adapter wrapping the
// appointments service so the two modules stay decoupled.
type ScheduleConfirmer interface {
	ConfirmCaseSchedule(ctx context.Context, caseID, actorID uuid.UUID, startAt time.Time, estimatedDays int, notes string) (time.Time, error)
}

// Service is the job lifecycle controller. It owns the work-order state
// machine; every status mutation in the system goes through here or through
// the marketplace accept (which uses the same conditional-update repository).
type Service struct {
	repo      *repository.Repository
	bus       events.Bus
	log       *logger.Logger
	confirmer ScheduleConfirmer // set after construction to break the module cycle
}

// New creates a new work-order service.
func New(repo *repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// SetScheduleConfirmer injects the scheduling confirmer adapter.
func (s *Service) SetScheduleConfirmer(confirmer ScheduleConfirmer) {
	s.confirmer = confirmer
}

// Repository exposes the repository for adapter wiring in the composition root.
func (s *Service) Repository() *repository.Repository {
	return s.repo
}

// Create files a new maintenance case in status New. Posting to the
// marketplace is controlled by the post flag; unposted cases stay private to
// the landlord until posted.
func (s *Service) Create(ctx context.Context, landlordID uuid.UUID, req transport.CreateCaseRequest) (*transport.CaseResponse, error) {
	priority, ok := domain.ParsePriority(req.Priority)
	if req.Priority != "" && !ok {
		return nil, apperr.Validation(fmt.Sprintf("unknown priority %q", req.Priority))
	}

	now := time.Now().UTC()
	wo := repository.WorkOrder{
		ID:          uuid.New(),
		LandlordID:  landlordID,
		PropertyID:  req.PropertyID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    string(priority),
		Status:      string(domain.StatusNew),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Post {
		wo.PostedAt = &now
	}

	if err := s.repo.Create(ctx, &wo); err != nil {
		return nil, err
	}

	s.publish(ctx, events.CaseCreated{
		BaseEvent:  events.NewBaseEvent(),
		CaseID:     wo.ID,
		LandlordID: landlordID,
		Title:      wo.Title,
		Category:   wo.Category,
		Priority:   wo.Priority,
		Posted:     req.Post,
	})

	return buildCaseResponse(&wo), nil
}

// GetByID retrieves a single case.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.CaseResponse, error) {
	wo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildCaseResponse(wo), nil
}

// List retrieves a landlord's cases.
func (s *Service) List(ctx context.Context, landlordID uuid.UUID, req transport.ListCasesRequest) ([]transport.CaseResponse, error) {
	var status *string
	if req.Status != "" {
		st := domain.Status(req.Status)
		if !st.Valid() {
			return nil, apperr.BadRequest("invalid status filter")
		}
		raw := string(st)
		status = &raw
	}

	items, err := s.repo.List(ctx, repository.ListParams{
		LandlordID: landlordID,
		Status:     status,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	out := make([]transport.CaseResponse, len(items))
	for i := range items {
		out[i] = *buildCaseResponse(&items[i])
	}
	return out, nil
}

// ConfirmJob converts an accepted case into a calendar-bound commitment.
// Requires an assigned contractor and status In Review or Scheduled; the
// window is start plus estimatedDays. Delegates to the scheduling confirmer
// so interactive rescheduling and this call share one code path.
func (s *Service) ConfirmJob(ctx context.Context, caseID uuid.UUID, actorID uuid.UUID, req transport.ConfirmJobRequest) (*transport.CaseResponse, error) {
	if s.confirmer == nil {
		return nil, apperr.Internal("scheduling is not configured")
	}
	if req.EstimatedDays < 1 {
		return nil, apperr.Validation("estimatedDays must be at least 1")
	}

	endAt, err := s.confirmer.ConfirmCaseSchedule(ctx, caseID, actorID, req.StartAt, req.EstimatedDays, req.Notes)
	if err != nil {
		return nil, err
	}

	wo, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	s.appendTimeline(ctx, caseID, &actorID, "job_confirmed",
		fmt.Sprintf("Job scheduled for %s through %s", req.StartAt.Format("2006-01-02"), endAt.Format("2006-01-02")))

	return buildCaseResponse(wo), nil
}

// StartJob moves a scheduled case into execution.
func (s *Service) StartJob(ctx context.Context, caseID uuid.UUID, actorID uuid.UUID) (*transport.CaseResponse, error) {
	return s.transition(ctx, caseID, actorID,
		[]domain.Status{domain.StatusScheduled}, domain.StatusInProgress, "job_started", "Work started")
}

// CompleteJob resolves a case that is in progress.
func (s *Service) CompleteJob(ctx context.Context, caseID uuid.UUID, actorID uuid.UUID) (*transport.CaseResponse, error) {
	return s.transition(ctx, caseID, actorID,
		[]domain.Status{domain.StatusInProgress}, domain.StatusResolved, "job_completed", "Work completed")
}

// CloseCase performs administrative closure; legal from every status except
// Closed itself.
func (s *Service) CloseCase(ctx context.Context, caseID uuid.UUID, actorID uuid.UUID) (*transport.CaseResponse, error) {
	before, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.Close(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidTransition("case is already closed")
	}

	s.afterTransition(ctx, caseID, actorID, before.LandlordID, before.Status, domain.StatusClosed, "case_closed", "Case closed")
	return s.GetByID(ctx, caseID)
}

// HoldCase pauses a case, remembering the status to resume into.
func (s *Service) HoldCase(ctx context.Context, caseID uuid.UUID, actorID uuid.UUID) (*transport.CaseResponse, error) {
	before, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.Hold(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidTransition(
			fmt.Sprintf("cannot place a %s case on hold", domain.Status(before.Status).Display()))
	}

	s.afterTransition(ctx, caseID, actorID, before.LandlordID, before.Status, domain.StatusOnHold, "case_held", "Case placed on hold")
	return s.GetByID(ctx, caseID)
}

// ResumeCase restores the status saved when the case was put on hold.
func (s *Service) ResumeCase(ctx context.Context, caseID uuid.UUID, actorID uuid.UUID) (*transport.CaseResponse, error) {
	before, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.Resume(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidTransition("case is not on hold")
	}

	after, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, caseID, actorID, before.LandlordID, before.Status, domain.Status(after.Status), "case_resumed", "Case resumed")
	return buildCaseResponse(after), nil
}

// Timeline returns the case's system-message history.
func (s *Service) Timeline(ctx context.Context, caseID uuid.UUID) ([]transport.TimelineEntryResponse, error) {
	if _, err := s.repo.GetByID(ctx, caseID); err != nil {
		return nil, err
	}

	entries, err := s.repo.ListTimeline(ctx, caseID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.TimelineEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = transport.TimelineEntryResponse{
			ID:        e.ID,
			EventType: e.EventType,
			Message:   e.Message,
			ActorID:   e.ActorID,
			CreatedAt: e.CreatedAt,
		}
	}
	return out, nil
}

// transition runs one conditional status update and classifies the failure
// when no row matched: a missing case is NotFound, everything else is an
// illegal transition from the current state.
func (s *Service) transition(ctx context.Context, caseID, actorID uuid.UUID, from []domain.Status, to domain.Status, eventType, message string) (*transport.CaseResponse, error) {
	ok, err := s.repo.TransitionStatus(ctx, caseID, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, getErr := s.repo.GetByID(ctx, caseID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, apperr.InvalidTransition(
			fmt.Sprintf("cannot move a %s case to %s", domain.Status(current.Status).Display(), to.Display()))
	}

	wo, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	// from[] transitions have exactly one legal source.
	s.afterTransition(ctx, caseID, actorID, wo.LandlordID, string(from[0]), to, eventType, message)
	return buildCaseResponse(wo), nil
}

// afterTransition performs the best-effort side effects of a committed
// transition. The status change is the authoritative fact; a failed timeline
// write or event delivery is logged and never propagated.
func (s *Service) afterTransition(ctx context.Context, caseID, actorID, landlordID uuid.UUID, oldStatus string, newStatus domain.Status, eventType, message string) {
	if s.log != nil {
		s.log.StateTransition(caseID.String(), oldStatus, string(newStatus), actorID.String())
	}

	s.appendTimeline(ctx, caseID, &actorID, eventType, message)

	s.publish(ctx, events.CaseStatusChanged{
		BaseEvent:  events.NewBaseEvent(),
		CaseID:     caseID,
		LandlordID: landlordID,
		ActorID:    &actorID,
		OldStatus:  oldStatus,
		NewStatus:  string(newStatus),
	})
}

func (s *Service) appendTimeline(ctx context.Context, caseID uuid.UUID, actorID *uuid.UUID, eventType, message string) {
	err := s.repo.AppendTimeline(ctx, repository.TimelineEntry{
		ID:        uuid.New(),
		CaseID:    caseID,
		ActorID:   actorID,
		EventType: eventType,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil && s.log != nil {
		s.log.SideEffectFailure("append case timeline", err)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event)
}

func buildCaseResponse(wo *repository.WorkOrder) *transport.CaseResponse {
	priority := domain.Priority(wo.Priority)
	status := domain.Status(wo.Status)

	return &transport.CaseResponse{
		ID:                   wo.ID,
		LandlordID:           wo.LandlordID,
		PropertyID:           wo.PropertyID,
		Title:                wo.Title,
		Description:          wo.Description,
		Category:             wo.Category,
		Priority:             wo.Priority,
		PriorityDisplay:      priority.Display(),
		Status:               wo.Status,
		StatusDisplay:        status.Display(),
		AssignedContractorID: wo.AssignedContractorID,
		PostedAt:             wo.PostedAt,
		ScheduledStartAt:     wo.ScheduledStartAt,
		ScheduledEndAt:       wo.ScheduledEndAt,
		CreatedAt:            wo.CreatedAt,
		UpdatedAt:            wo.UpdatedAt,
	}
}
