package domain

import "strings"

// Priority is the urgency classification of a work order. The legacy intake
// forms produced several spellings for the urgent class (urgent, emergency,
// emergent); they normalize to a single "Urgent" display value.
type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityHigh      Priority = "high"
	PriorityUrgent    Priority = "urgent"
	PriorityCritical  Priority = "critical"
	PriorityEmergency Priority = "emergency"
	PriorityEmergent  Priority = "emergent"
)

// AllPriorities lists every accepted priority value.
var AllPriorities = []Priority{
	PriorityNormal,
	PriorityHigh,
	PriorityUrgent,
	PriorityCritical,
	PriorityEmergency,
	PriorityEmergent,
}

// ParsePriority normalizes raw input to a Priority, defaulting to normal.
func ParsePriority(raw string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range AllPriorities {
		if p == known {
			return known, true
		}
	}
	return PriorityNormal, false
}

// IsUrgentClass reports whether the priority belongs to the urgent class.
func (p Priority) IsUrgentClass() bool {
	switch p {
	case PriorityUrgent, PriorityEmergency, PriorityEmergent:
		return true
	default:
		return false
	}
}

// Display returns the human-readable label. Urgent-class values collapse to
// "Urgent" regardless of the stored spelling.
func (p Priority) Display() string {
	if p.IsUrgentClass() {
		return "Urgent"
	}
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	default:
		return "Normal"
	}
}
