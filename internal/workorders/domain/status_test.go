package domain

import "testing"

func TestHappyPathTransitions(t *testing.T) {
	path := []Status{StatusNew, StatusInReview, StatusScheduled, StatusInProgress, StatusResolved, StatusClosed}
	for i := 0; i < len(path)-1; i++ {
		if !path[i].CanTransition(path[i+1]) {
			t.Fatalf("expected %s -> %s to be legal", path[i], path[i+1])
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	for _, target := range AllStatuses {
		if StatusClosed.CanTransition(target) {
			t.Fatalf("expected closed to allow no transitions, got closed -> %s", target)
		}
	}
	if !StatusClosed.Terminal() {
		t.Fatal("expected closed to be terminal")
	}
}

func TestResolvedOnlyCloses(t *testing.T) {
	for _, target := range AllStatuses {
		legal := StatusResolved.CanTransition(target)
		if target == StatusClosed && !legal {
			t.Fatal("expected resolved -> closed to be legal")
		}
		if target != StatusClosed && legal {
			t.Fatalf("expected resolved -> %s to be illegal", target)
		}
	}
}

func TestStartRequiresScheduled(t *testing.T) {
	for _, from := range []Status{StatusNew, StatusInReview, StatusResolved, StatusClosed} {
		if from.CanTransition(StatusInProgress) {
			t.Fatalf("expected %s -> in_progress to be illegal", from)
		}
	}
	if !StatusScheduled.CanTransition(StatusInProgress) {
		t.Fatal("expected scheduled -> in_progress to be legal")
	}
}

func TestCompleteRequiresInProgress(t *testing.T) {
	for _, from := range []Status{StatusNew, StatusInReview, StatusScheduled, StatusClosed} {
		if from.CanTransition(StatusResolved) {
			t.Fatalf("expected %s -> resolved to be illegal", from)
		}
	}
}

func TestCloseAllowedFromEveryStatusExceptClosed(t *testing.T) {
	for _, from := range AllStatuses {
		want := from != StatusClosed
		if got := from.CanClose(); got != want {
			t.Fatalf("CanClose(%s) = %v, want %v", from, got, want)
		}
	}
}

func TestHoldNotAllowedFromTerminalStates(t *testing.T) {
	if StatusClosed.CanHold() {
		t.Fatal("expected closed to reject hold")
	}
	if StatusResolved.CanHold() {
		t.Fatal("expected resolved to reject hold")
	}
	for _, from := range []Status{StatusNew, StatusInReview, StatusScheduled, StatusInProgress} {
		if !from.CanHold() {
			t.Fatalf("expected %s to allow hold", from)
		}
	}
}

func TestAssignmentImpliesNotNew(t *testing.T) {
	if StatusNew.AssignmentAllowed() {
		t.Fatal("a new case must not carry an assignment")
	}
	if StatusOnHold.AssignmentAllowed() {
		t.Fatal("on-hold is not an assignment-bearing status")
	}
	for _, s := range []Status{StatusInReview, StatusScheduled, StatusInProgress, StatusResolved, StatusClosed} {
		if !s.AssignmentAllowed() {
			t.Fatalf("expected %s to permit an assignment", s)
		}
	}
}

func TestScheduleAllowedStatuses(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusInReview, StatusOnHold} {
		if s.ScheduleAllowed() {
			t.Fatalf("expected %s to forbid a confirmed schedule", s)
		}
	}
	for _, s := range []Status{StatusScheduled, StatusInProgress, StatusResolved, StatusClosed} {
		if !s.ScheduleAllowed() {
			t.Fatalf("expected %s to permit a confirmed schedule", s)
		}
	}
}

func TestPriorityUrgentClassDisplay(t *testing.T) {
	for _, p := range []Priority{PriorityUrgent, PriorityEmergency, PriorityEmergent} {
		if p.Display() != "Urgent" {
			t.Fatalf("expected %s to render as Urgent, got %s", p, p.Display())
		}
	}
	if PriorityCritical.Display() != "Critical" {
		t.Fatalf("expected critical to render as Critical, got %s", PriorityCritical.Display())
	}
	if PriorityNormal.Display() != "Normal" {
		t.Fatalf("expected normal to render as Normal, got %s", PriorityNormal.Display())
	}
}

func TestParsePriorityNormalizesSpelling(t *testing.T) {
	p, ok := ParsePriority("  Emergency ")
	if !ok || p != PriorityEmergency {
		t.Fatalf("ParsePriority(Emergency) = %s, %v", p, ok)
	}

	p, ok = ParsePriority("whatever")
	if ok || p != PriorityNormal {
		t.Fatalf("expected unknown priority to fall back to normal, got %s, %v", p, ok)
	}
}
