package domain

import "testing"

func TestStatusAfterPropose_LandlordFlipsBall(t *testing.T) {
	if got := StatusAfterPropose(RoleLandlord); got != StatusAwaitingResponse {
		t.Fatalf("expected awaiting_response after landlord proposal, got %s", got)
	}
	if got := StatusAfterPropose(RoleContractor); got != StatusSent {
		t.Fatalf("expected sent after contractor proposal, got %s", got)
	}
}

func TestStatusAfterReCounter_KeepsQuoteStatus(t *testing.T) {
	// Landlord opens the negotiation, so the quote sits in awaiting_response.
	status := StatusAfterPropose(RoleLandlord)
	if status != StatusAwaitingResponse {
		t.Fatalf("expected awaiting_response after landlord proposal, got %s", status)
	}

	// Contractor answers with new terms instead of accept/decline: the pending
	// round is swapped but the quote must not move.
	status = StatusAfterReCounter(status)
	if status != StatusAwaitingResponse {
		t.Fatalf("quote status must remain awaiting_response after contractor re-counter, got %s", status)
	}

	// And again the other way.
	status = StatusAfterReCounter(status)
	if status != StatusAwaitingResponse {
		t.Fatalf("quote status must remain awaiting_response after a second re-counter, got %s", status)
	}

	for _, s := range []Status{StatusSent, StatusAwaitingResponse} {
		if got := StatusAfterReCounter(s); got != s {
			t.Fatalf("StatusAfterReCounter(%s) = %s, want unchanged", s, got)
		}
	}
}

func TestStatusAfterResolve_ReturnsToSent(t *testing.T) {
	if got := StatusAfterResolve(); got != StatusSent {
		t.Fatalf("expected sent after resolving a round, got %s", got)
	}
}

func TestCanRespond_OnlyOppositeParty(t *testing.T) {
	if !CanRespond(RoleContractor, RoleLandlord) {
		t.Fatal("contractor should respond to a landlord proposal")
	}
	if !CanRespond(RoleLandlord, RoleContractor) {
		t.Fatal("landlord should respond to a contractor proposal")
	}
	if CanRespond(RoleLandlord, RoleLandlord) {
		t.Fatal("a party must not answer its own proposal")
	}
	if CanRespond(Role("tenant"), RoleLandlord) {
		t.Fatal("unknown roles must not respond")
	}
}

func TestOpposite_RoundTrips(t *testing.T) {
	for _, r := range []Role{RoleLandlord, RoleContractor} {
		if r.Opposite().Opposite() != r {
			t.Fatalf("opposite of opposite should be %s", r)
		}
	}
}

func TestCounterTerms_Empty(t *testing.T) {
	if !(CounterTerms{}).Empty() {
		t.Fatal("zero terms should be empty")
	}
	total := int64(125000)
	if (CounterTerms{ProposedTotalCents: &total}).Empty() {
		t.Fatal("terms with a total should not be empty")
	}
}

func TestStatus_ActiveAndTerminalSets(t *testing.T) {
	active := map[Status]bool{StatusSent: true, StatusAwaitingResponse: true, StatusApproved: true}
	terminal := map[Status]bool{StatusApproved: true, StatusDeclined: true, StatusExpired: true}

	for _, s := range []Status{StatusDraft, StatusSent, StatusAwaitingResponse, StatusApproved, StatusDeclined, StatusExpired} {
		if s.Active() != active[s] {
			t.Fatalf("Active(%s) = %v", s, s.Active())
		}
		if s.Terminal() != terminal[s] {
			t.Fatalf("Terminal(%s) = %v", s, s.Terminal())
		}
	}
}

func TestExpiredQuote_StaysTerminal(t *testing.T) {
	// Once a quote expires it must never come back to life through a stale
	// negotiation round: the repository only resets quotes whose status is
	// still in the open set, and that set excludes every terminal status.
	if !StatusExpired.Terminal() {
		t.Fatal("expired must be terminal")
	}
	for _, s := range []Status{StatusApproved, StatusDeclined, StatusExpired} {
		if s.Decidable() || s.Expirable() {
			t.Fatalf("%s is terminal and must not be open for negotiation", s)
		}
	}
	if CounterExpiredReason == "" {
		t.Fatal("rounds closed by expiry need a recorded reason")
	}
}

func TestStatus_DecidableMatchesExpirable(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusSent, StatusAwaitingResponse, StatusApproved, StatusDeclined, StatusExpired} {
		want := s == StatusSent || s == StatusAwaitingResponse
		if s.Decidable() != want {
			t.Fatalf("Decidable(%s) = %v", s, s.Decidable())
		}
		if s.Expirable() != want {
			t.Fatalf("Expirable(%s) = %v", s, s.Expirable())
		}
	}
}
