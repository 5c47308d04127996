package transport

import (
	"time"

	"github.com/google/uuid"
)

// ConfirmJobRequest books a case onto the calendar. The window runs from
// StartAt for EstimatedDays days.
type ConfirmJobRequest struct {
	CaseID        uuid.UUID `json:"caseId" binding:"required"`
	StartAt       time.Time `json:"startAt" binding:"required"`
	EstimatedDays int       `json:"estimatedDays" binding:"required,min=1,max=365"`
	Notes         string    `json:"notes" binding:"max=2000"`
}

// QuickAddRequest creates a standalone calendar block with no case behind
// it.
type QuickAddRequest struct {
	Title    string     `json:"title" binding:"required,min=1,max=200"`
	Notes    string     `json:"notes" binding:"max=2000"`
	StartAt  time.Time  `json:"startAt" binding:"required"`
	EndAt    time.Time  `json:"endAt" binding:"required"`
	TeamID   *uuid.UUID `json:"teamId"`
	IsAllDay bool       `json:"isAllDay"`
}

// MoveRequest reschedules an appointment; drag-and-drop lands here.
type MoveRequest struct {
	StartAt time.Time `json:"startAt" binding:"required"`
}

// CalendarRequest bounds the calendar listing.
type CalendarRequest struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
}

// AppointmentResponse is the API shape of a calendar commitment.
type AppointmentResponse struct {
	ID           uuid.UUID  `json:"id"`
	CaseID       *uuid.UUID `json:"caseId,omitempty"`
	QuoteID      *uuid.UUID `json:"quoteId,omitempty"`
	ContractorID uuid.UUID  `json:"contractorId"`
	TeamID       *uuid.UUID `json:"teamId,omitempty"`
	Title        string     `json:"title"`
	Notes        string     `json:"notes,omitempty"`
	StartAt      time.Time  `json:"startAt"`
	EndAt        time.Time  `json:"endAt"`
	Status       string     `json:"status"`
	IsAllDay     bool       `json:"isAllDay"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
