package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateCaseRequest files a new maintenance case. Post controls whether the
// case is immediately visible on the marketplace.
type CreateCaseRequest struct {
	Title       string     `json:"title" binding:"required,min=3,max=200"`
	Description string     `json:"description" binding:"max=5000"`
	Category    string     `json:"category" binding:"required,min=2,max=100"`
	Priority    string     `json:"priority" binding:"omitempty,max=20"`
	PropertyID  *uuid.UUID `json:"propertyId"`
	Post        bool       `json:"post"`
}

// ListCasesRequest filters the landlord case list.
type ListCasesRequest struct {
	Status   string `form:"status"`
	Page     int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize,default=25" binding:"omitempty,min=1,max=100"`
}

// ConfirmJobRequest schedules a confirmed job on the calendar.
type ConfirmJobRequest struct {
	StartAt       time.Time `json:"startAt" binding:"required"`
	EstimatedDays int       `json:"estimatedDays" binding:"required,min=1,max=365"`
	Notes         string    `json:"notes" binding:"max=2000"`
}

// CaseResponse is the API shape of a work-order case.
type CaseResponse struct {
	ID                   uuid.UUID  `json:"id"`
	LandlordID           uuid.UUID  `json:"landlordId"`
	PropertyID           *uuid.UUID `json:"propertyId,omitempty"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Category             string     `json:"category"`
	Priority             string     `json:"priority"`
	PriorityDisplay      string     `json:"priorityDisplay"`
	Status               string     `json:"status"`
	StatusDisplay        string     `json:"statusDisplay"`
	AssignedContractorID *uuid.UUID `json:"assignedContractorId,omitempty"`
	PostedAt             *time.Time `json:"postedAt,omitempty"`
	ScheduledStartAt     *time.Time `json:"scheduledStartAt,omitempty"`
	ScheduledEndAt       *time.Time `json:"scheduledEndAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// TimelineEntryResponse is one system message in a case's history.
type TimelineEntryResponse struct {
	ID        uuid.UUID  `json:"id"`
	EventType string     `json:"eventType"`
	Message   string     `json:"message"`
	ActorID   *uuid.UUID `json:"actorId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
