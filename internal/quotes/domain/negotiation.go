package domain

import "time"

// Role identifies which side of the negotiation a party is on.
type Role string

const (
	RoleLandlord   Role = "landlord"
	RoleContractor Role = "contractor"
)

// CounterStatus is a counter-proposal lifecycle state.
type CounterStatus string

const (
	CounterPending  CounterStatus = "pending"
	CounterAccepted CounterStatus = "accepted"
	CounterRejected CounterStatus = "rejected"
)

// CounterRejectedReason is recorded on a round that was superseded by a
// re-counter rather than answered directly.
const CounterRejectedReason = "Counter-offered with new terms"

// CounterExpiredReason is recorded on a pending round whose parent quote
// expired before anyone answered it.
const CounterExpiredReason = "Quote expired"

// Valid reports whether r is a known negotiation role.
func (r Role) Valid() bool {
	return r == RoleLandlord || r == RoleContractor
}

// Opposite returns the other negotiating party.
func (r Role) Opposite() Role {
	if r == RoleLandlord {
		return RoleContractor
	}
	return RoleLandlord
}

// StatusAfterPropose returns the quote status once a round is opened.
// A landlord proposal flips the ball to the contractor, so the quote leaves
// plain "sent"; a contractor proposal keeps the quote awaiting the landlord.
func StatusAfterPropose(proposer Role) Status {
	if proposer == RoleLandlord {
		return StatusAwaitingResponse
	}
	return StatusSent
}

// StatusAfterReCounter returns the quote status once a pending round is
// superseded by a counter with new terms: unchanged. A re-counter swaps the
// pending round, it does not move the quote; only a direct accept or decline
// does that.
func StatusAfterReCounter(current Status) Status {
	return current
}

// StatusAfterResolve returns the quote status once a pending round is
// accepted or declined: the quote returns to "sent" so the landlord can
// decide on the (possibly revised) terms.
func StatusAfterResolve() Status {
	return StatusSent
}

// CanRespond reports whether the acting role may resolve a round proposed by
// proposedBy. A party never answers its own counter.
func CanRespond(acting, proposedBy Role) bool {
	return acting.Valid() && acting == proposedBy.Opposite()
}

// CounterTerms are the negotiable fields of one round. Nil fields leave the
// corresponding quote field untouched when the round is accepted.
type CounterTerms struct {
	ProposedTotalCents *int64
	ProposedStartDate  *time.Time
	ProposedEndDate    *time.Time
	ScopeChanges       *string
}

// Empty reports whether the terms change nothing.
func (t CounterTerms) Empty() bool {
	return t.ProposedTotalCents == nil && t.ProposedStartDate == nil &&
		t.ProposedEndDate == nil && t.ScopeChanges == nil
}
