// Package domain holds the closed enumerations and transition rules for the
// work-order lifecycle. The statuses that were free-form strings in older
// clients are modeled here as a validated state machine.
package domain

// Status is the lifecycle state of a work order.
type Status string

const (
	StatusNew        Status = "new"
	StatusInReview   Status = "in_review"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusOnHold     Status = "on_hold"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// AllStatuses lists every valid work-order status.
var AllStatuses = []Status{
	StatusNew,
	StatusInReview,
	StatusScheduled,
	StatusInProgress,
	StatusOnHold,
	StatusResolved,
	StatusClosed,
}

// transitions is the authoritative state machine. A transition not listed
// here is illegal; services must not bypass this table.
var transitions = map[Status][]Status{
	StatusNew:        {StatusInReview, StatusOnHold, StatusClosed},
	StatusInReview:   {StatusScheduled, StatusOnHold, StatusClosed},
	StatusScheduled:  {StatusInProgress, StatusScheduled, StatusOnHold, StatusClosed},
	StatusInProgress: {StatusResolved, StatusOnHold, StatusClosed},
	// Resuming from on-hold restores the saved prior status; any non-terminal
	// target is reachable from on_hold for that reason.
	StatusOnHold:   {StatusNew, StatusInReview, StatusScheduled, StatusInProgress, StatusClosed},
	StatusResolved: {StatusClosed},
	StatusClosed:   {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
// Resolved is semi-terminal: it can still be closed.
func (s Status) Terminal() bool {
	return s == StatusClosed
}

// CanTransition reports whether moving from s to target is legal.
func (s Status) CanTransition(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CanHold reports whether the case can be paused from this status.
func (s Status) CanHold() bool {
	return s.CanTransition(StatusOnHold)
}

// CanClose reports whether administrative closure is permitted.
// Closure is always allowed except from Closed itself.
func (s Status) CanClose() bool {
	return s != StatusClosed
}

// AssignmentAllowed reports whether a work order in this status may carry an
// assigned contractor. A set assignedContractorId implies the case has left
// the marketplace.
func (s Status) AssignmentAllowed() bool {
	switch s {
	case StatusInReview, StatusScheduled, StatusInProgress, StatusResolved, StatusClosed:
		return true
	default:
		return false
	}
}

// Confirmable reports whether a schedule confirmation may run from this
// status. Re-confirming a scheduled case is legal: it moves the window.
func (s Status) Confirmable() bool {
	return s == StatusInReview || s == StatusScheduled
}

// ScheduleAllowed reports whether a work order in this status may carry a
// confirmed scheduled start date.
func (s Status) ScheduleAllowed() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusResolved, StatusClosed:
		return true
	default:
		return false
	}
}

// Display returns the human-readable label for the status.
func (s Status) Display() string {
	switch s {
	case StatusNew:
		return "New"
	case StatusInReview:
		return "In Review"
	case StatusScheduled:
		return "Scheduled"
	case StatusInProgress:
		return "In Progress"
	case StatusOnHold:
		return "On Hold"
	case StatusResolved:
		return "Resolved"
	case StatusClosed:
		return "Closed"
	default:
		return string(s)
	}
}
