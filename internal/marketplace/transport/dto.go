package transport

import (
	"time"

	"github.com/google/uuid"
)

// ListFeedRequest filters the contractor's marketplace feed.
type ListFeedRequest struct {
	Categories []string `form:"category"`
	Limit      int      `form:"limit,default=50" binding:"omitempty,min=1,max=200"`
}

// AcceptCaseRequest claims a posted case. PricingHintCents is an optional
// indicative price the contractor attaches to the acceptance.
type AcceptCaseRequest struct {
	PricingHintCents *int64 `json:"pricingHintCents" binding:"omitempty,min=0"`
}

// DismissCaseRequest hides a case from the contractor's feed.
type DismissCaseRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListingResponse is one marketplace feed entry.
type ListingResponse struct {
	CaseID          uuid.UUID `json:"caseId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Priority        string    `json:"priority"`
	PriorityDisplay string    `json:"priorityDisplay"`
	PostedAt        time.Time `json:"postedAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

// AcceptCaseResponse reports a successful claim.
type AcceptCaseResponse struct {
	CaseID     uuid.UUID `json:"caseId"`
	Status     string    `json:"status"`
	AcceptedAt time.Time `json:"acceptedAt"`
}
