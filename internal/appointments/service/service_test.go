package service

import (
	"context"
	"testing"
	"time"

	"caseflow_backend/internal/appointments/repository"
	"caseflow_backend/internal/appointments/transport"
	"caseflow_backend/platform/logger"

	"github.com/google/uuid"
)

type stubCaseScheduler struct {
	info      CaseSchedule
	confirmed bool
}

func (s *stubCaseScheduler) ScheduleInfo(ctx context.Context, caseID uuid.UUID) (CaseSchedule, error) {
	return s.info, nil
}

func (s *stubCaseScheduler) ConfirmSchedule(ctx context.Context, caseID uuid.UUID, startAt, endAt time.Time) (bool, error) {
	return s.confirmed, nil
}

type window struct {
	startAt, endAt time.Time
}

type fakeStore struct {
	active      *repository.Appointment
	reschedules []window
	cancelled   []uuid.UUID
	created     []uuid.UUID
}

func (f *fakeStore) Create(ctx context.Context, a *repository.Appointment) error {
	f.created = append(f.created, a.ID)
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*repository.Appointment, error) {
	return f.active, nil
}

func (f *fakeStore) GetActiveByCase(ctx context.Context, caseID uuid.UUID) (*repository.Appointment, error) {
	return f.active, nil
}

func (f *fakeStore) ListForContractor(ctx context.Context, contractorID uuid.UUID, from, to time.Time) ([]repository.Appointment, error) {
	return nil, nil
}

func (f *fakeStore) Reschedule(ctx context.Context, id uuid.UUID, startAt, endAt time.Time) (bool, error) {
	f.reschedules = append(f.reschedules, window{startAt, endAt})
	return true, nil
}

func (f *fakeStore) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	f.cancelled = append(f.cancelled, id)
	return true, nil
}

func TestConfirm_RestoresWindowWhenCaseWriteFails(t *testing.T) {
	contractorID := uuid.New()
	caseID := uuid.New()
	prevStart := date(2026, time.March, 2)
	prevEnd := prevStart.AddDate(0, 0, 2)

	store := &fakeStore{active: &repository.Appointment{
		ID:           uuid.New(),
		CaseID:       &caseID,
		ContractorID: contractorID,
		StartAt:      prevStart,
		EndAt:        prevEnd,
		Status:       "scheduled",
	}}
	cases := &stubCaseScheduler{info: CaseSchedule{
		ID:           caseID,
		LandlordID:   uuid.New(),
		ContractorID: &contractorID,
		Schedulable:  true,
	}}

	svc := New(store, cases, nil, logger.New("test"), 24*time.Hour)

	// The case status raced away between the move and the case write.
	_, err := svc.Confirm(context.Background(), contractorID, transport.ConfirmJobRequest{
		CaseID:        caseID,
		StartAt:       date(2026, time.March, 9),
		EstimatedDays: 2,
	})
	if err == nil {
		t.Fatal("expected confirmation to fail when the case write misses")
	}

	if len(store.reschedules) != 2 {
		t.Fatalf("expected move plus restore, got %d reschedules", len(store.reschedules))
	}
	restored := store.reschedules[1]
	if !restored.startAt.Equal(prevStart) || !restored.endAt.Equal(prevEnd) {
		t.Fatalf("expected the prior window %s-%s back, got %s-%s",
			prevStart, prevEnd, restored.startAt, restored.endAt)
	}
	if len(store.cancelled) != 0 {
		t.Fatal("a pre-existing appointment must be restored, not cancelled")
	}
}

func TestConfirm_CancelsFreshAppointmentWhenCaseWriteFails(t *testing.T) {
	contractorID := uuid.New()
	caseID := uuid.New()

	store := &fakeStore{}
	cases := &stubCaseScheduler{info: CaseSchedule{
		ID:           caseID,
		LandlordID:   uuid.New(),
		ContractorID: &contractorID,
		Schedulable:  true,
	}}

	svc := New(store, cases, nil, logger.New("test"), 24*time.Hour)

	_, err := svc.Confirm(context.Background(), contractorID, transport.ConfirmJobRequest{
		CaseID:        caseID,
		StartAt:       date(2026, time.March, 9),
		EstimatedDays: 1,
	})
	if err == nil {
		t.Fatal("expected confirmation to fail when the case write misses")
	}

	if len(store.created) != 1 || len(store.cancelled) != 1 || store.cancelled[0] != store.created[0] {
		t.Fatalf("expected the fresh appointment to be cancelled, created=%v cancelled=%v",
			store.created, store.cancelled)
	}
	if len(store.reschedules) != 0 {
		t.Fatal("nothing to restore when no appointment existed before")
	}
}
