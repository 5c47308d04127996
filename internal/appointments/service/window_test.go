package service

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func TestScheduleWindow_AddsEstimatedDays(t *testing.T) {
	start := date(2026, time.March, 2)

	end := ScheduleWindow(start, 3)
	if !end.Equal(date(2026, time.March, 5)) {
		t.Fatalf("expected window to end March 5, got %s", end)
	}
}

func TestScheduleWindow_MinimumOneDay(t *testing.T) {
	start := date(2026, time.March, 2)

	end := ScheduleWindow(start, 0)
	if !end.Equal(start.AddDate(0, 0, 1)) {
		t.Fatalf("expected a one-day floor, got %s", end)
	}
}

func TestDaysSpanned_RoundsPartialDaysUp(t *testing.T) {
	start := date(2026, time.March, 2)

	if got := DaysSpanned(start, start.AddDate(0, 0, 2)); got != 2 {
		t.Fatalf("expected 2 days, got %d", got)
	}
	if got := DaysSpanned(start, start.Add(30*time.Hour)); got != 2 {
		t.Fatalf("expected partial day to round up to 2, got %d", got)
	}
	if got := DaysSpanned(start, start); got != 1 {
		t.Fatalf("expected degenerate window to span 1 day, got %d", got)
	}
}

func TestReminderAt_SkipsTooCloseStarts(t *testing.T) {
	now := date(2026, time.March, 2)
	lead := 24 * time.Hour

	at := ReminderAt(now.AddDate(0, 0, 7), lead, now)
	if !at.Equal(now.AddDate(0, 0, 6)) {
		t.Fatalf("expected reminder one day before start, got %s", at)
	}

	if at := ReminderAt(now.Add(2*time.Hour), lead, now); !at.IsZero() {
		t.Fatalf("expected no reminder inside the lead window, got %s", at)
	}
	if at := ReminderAt(now.AddDate(0, 0, 7), 0, now); !at.IsZero() {
		t.Fatalf("expected no reminder with zero lead, got %s", at)
	}
}

func TestOverlaps_HalfOpenWindows(t *testing.T) {
	a := date(2026, time.March, 2)

	if !Overlaps(a, a.AddDate(0, 0, 3), a.AddDate(0, 0, 2), a.AddDate(0, 0, 4)) {
		t.Fatal("expected overlapping windows to conflict")
	}
	// Back-to-back windows share a boundary instant but no time.
	if Overlaps(a, a.AddDate(0, 0, 2), a.AddDate(0, 0, 2), a.AddDate(0, 0, 4)) {
		t.Fatal("expected adjacent windows not to conflict")
	}
	if Overlaps(a, a.AddDate(0, 0, 1), a.AddDate(0, 0, 2), a.AddDate(0, 0, 3)) {
		t.Fatal("expected disjoint windows not to conflict")
	}
}
