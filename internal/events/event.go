// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"caseflow_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Work-Order Domain Events
// =============================================================================

// CaseCreated is published when a landlord files a new maintenance case.
type CaseCreated struct {
	BaseEvent
	CaseID     uuid.UUID `json:"caseId"`
	LandlordID uuid.UUID `json:"landlordId"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Priority   string    `json:"priority"`
	Posted     bool      `json:"posted"`
}

func (e CaseCreated) EventName() string { return "workorders.case.created" }

// CaseAccepted is published when a contractor wins the marketplace race for a case.
type CaseAccepted struct {
	BaseEvent
	CaseID       uuid.UUID `json:"caseId"`
	LandlordID   uuid.UUID `json:"landlordId"`
	ContractorID uuid.UUID `json:"contractorId"`
	Title        string    `json:"title"`
	PricingHint  *int64    `json:"pricingHintCents,omitempty"`
}

func (e CaseAccepted) EventName() string { return "marketplace.case.accepted" }

// CaseStatusChanged is published after any committed lifecycle transition.
type CaseStatusChanged struct {
	BaseEvent
	CaseID     uuid.UUID  `json:"caseId"`
	LandlordID uuid.UUID  `json:"landlordId"`
	ActorID    *uuid.UUID `json:"actorId,omitempty"`
	OldStatus  string     `json:"oldStatus"`
	NewStatus  string     `json:"newStatus"`
}

func (e CaseStatusChanged) EventName() string { return "workorders.case.status_changed" }

// JobConfirmed is published when a case gains a confirmed schedule window.
type JobConfirmed struct {
	BaseEvent
	CaseID       uuid.UUID `json:"caseId"`
	LandlordID   uuid.UUID `json:"landlordId"`
	ContractorID uuid.UUID `json:"contractorId"`
	StartAt      time.Time `json:"startAt"`
	EndAt        time.Time `json:"endAt"`
}

func (e JobConfirmed) EventName() string { return "workorders.job.confirmed" }

// =============================================================================
// Quote Domain Events
// =============================================================================

// QuoteSent is published when a contractor sends a quote to the landlord.
type QuoteSent struct {
	BaseEvent
	QuoteID      uuid.UUID `json:"quoteId"`
	CaseID       uuid.UUID `json:"caseId"`
	ContractorID uuid.UUID `json:"contractorId"`
	CustomerID   uuid.UUID `json:"customerId"`
	TotalCents   int64     `json:"totalCents"`
	ApprovalLink string    `json:"approvalLink"`
}

func (e QuoteSent) EventName() string { return "quotes.quote.sent" }

// QuoteAccepted is published when the landlord approves a quote. Sibling
// quotes auto-declined by the acceptance are listed so downstream consumers
// can notify the losing contractors.
type QuoteAccepted struct {
	BaseEvent
	QuoteID        uuid.UUID   `json:"quoteId"`
	CaseID         uuid.UUID   `json:"caseId"`
	ContractorID   uuid.UUID   `json:"contractorId"`
	CustomerID     uuid.UUID   `json:"customerId"`
	TotalCents     int64       `json:"totalCents"`
	DeclinedQuotes []uuid.UUID `json:"declinedQuotes,omitempty"`
}

func (e QuoteAccepted) EventName() string { return "quotes.quote.accepted" }

// QuoteDeclined is published when the landlord declines a quote.
type QuoteDeclined struct {
	BaseEvent
	QuoteID      uuid.UUID `json:"quoteId"`
	CaseID       uuid.UUID `json:"caseId"`
	ContractorID uuid.UUID `json:"contractorId"`
	Reason       string    `json:"reason,omitempty"`
}

func (e QuoteDeclined) EventName() string { return "quotes.quote.declined" }

// QuoteExpired is published by the background sweep when a sent quote passes
// its expiry without a response.
type QuoteExpired struct {
	BaseEvent
	QuoteID      uuid.UUID `json:"quoteId"`
	CaseID       uuid.UUID `json:"caseId"`
	ContractorID uuid.UUID `json:"contractorId"`
}

func (e QuoteExpired) EventName() string { return "quotes.quote.expired" }

// =============================================================================
// Counter-Proposal Domain Events
// =============================================================================

// CounterProposed is published when either party opens a new negotiation round.
type CounterProposed struct {
	BaseEvent
	ProposalID    uuid.UUID `json:"proposalId"`
	QuoteID       uuid.UUID `json:"quoteId"`
	CaseID        uuid.UUID `json:"caseId"`
	ProposedBy    uuid.UUID `json:"proposedBy"`
	ProposedRole  string    `json:"proposedRole"`
	ProposedTotal *int64    `json:"proposedTotalCents,omitempty"`
	Round         int       `json:"round"`
}

func (e CounterProposed) EventName() string { return "quotes.counter.proposed" }

// CounterResolved is published when a pending counter-proposal is accepted or
// declined (including the implicit rejection that a re-counter produces).
type CounterResolved struct {
	BaseEvent
	ProposalID uuid.UUID `json:"proposalId"`
	QuoteID    uuid.UUID `json:"quoteId"`
	Outcome    string    `json:"outcome"` // "accepted", "rejected"
	Reason     string    `json:"reason,omitempty"`
}

func (e CounterResolved) EventName() string { return "quotes.counter.resolved" }

// =============================================================================
// Appointment Domain Events
// =============================================================================

// AppointmentCreated is published when a schedule confirmation books a slot.
type AppointmentCreated struct {
	BaseEvent
	AppointmentID uuid.UUID  `json:"appointmentId"`
	CaseID        *uuid.UUID `json:"caseId,omitempty"`
	ContractorID  uuid.UUID  `json:"contractorId"`
	StartAt       time.Time  `json:"startAt"`
	EndAt         time.Time  `json:"endAt"`
}

func (e AppointmentCreated) EventName() string { return "appointments.created" }

// AppointmentReminderDue is published by the scheduler when a lead-time
// reminder should go out.
type AppointmentReminderDue struct {
	BaseEvent
	AppointmentID uuid.UUID  `json:"appointmentId"`
	CaseID        *uuid.UUID `json:"caseId,omitempty"`
	ContractorID  uuid.UUID  `json:"contractorId"`
	StartAt       time.Time  `json:"startAt"`
}

func (e AppointmentReminderDue) EventName() string { return "appointments.reminder.due" }

// =============================================================================
// Notification Domain Events
// =============================================================================

// NotificationOutboxDue is published by the scheduler when a notification
// outbox record should be processed.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID `json:"outboxId"`
}

func (e NotificationOutboxDue) EventName() string { return "notification.outbox.due" }
