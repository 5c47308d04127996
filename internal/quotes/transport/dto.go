package transport

import (
	"time"

	"github.com/google/uuid"
)

// QuoteItemRequest is one line item in a create or update request.
type QuoteItemRequest struct {
	Name           string  `json:"name" binding:"required,min=1,max=200"`
	Description    string  `json:"description" binding:"max=2000"`
	Quantity       float64 `json:"quantity" binding:"required,gt=0"`
	UnitPriceCents int64   `json:"unitPriceCents" binding:"min=0"`
}

// CreateQuoteRequest opens a draft quote against a case.
type CreateQuoteRequest struct {
	CaseID               uuid.UUID          `json:"caseId" binding:"required"`
	DepositRequiredCents int64              `json:"depositRequiredCents" binding:"min=0"`
	TaxRateBps           int                `json:"taxRateBps" binding:"min=0,max=10000"`
	AvailableStartDate   *time.Time         `json:"availableStartDate"`
	AvailableEndDate     *time.Time         `json:"availableEndDate"`
	EstimatedDays        int                `json:"estimatedDays" binding:"required,min=1,max=365"`
	Notes                string             `json:"notes" binding:"max=5000"`
	Items                []QuoteItemRequest `json:"items" binding:"required,min=1,max=100,dive"`
}

// UpdateQuoteRequest replaces a draft quote's terms and line items.
type UpdateQuoteRequest struct {
	DepositRequiredCents int64              `json:"depositRequiredCents" binding:"min=0"`
	TaxRateBps           int                `json:"taxRateBps" binding:"min=0,max=10000"`
	AvailableStartDate   *time.Time         `json:"availableStartDate"`
	AvailableEndDate     *time.Time         `json:"availableEndDate"`
	EstimatedDays        int                `json:"estimatedDays" binding:"required,min=1,max=365"`
	Notes                string             `json:"notes" binding:"max=5000"`
	Items                []QuoteItemRequest `json:"items" binding:"required,min=1,max=100,dive"`
}

// SendQuoteRequest delivers a draft to the landlord.
type SendQuoteRequest struct {
	Method string `json:"method" binding:"omitempty,oneof=email link"`
}

// DeclineQuoteRequest records the landlord's refusal.
type DeclineQuoteRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// ListQuotesRequest filters the quote list.
type ListQuotesRequest struct {
	CaseID   *uuid.UUID `form:"caseId"`
	Status   string     `form:"status"`
	Page     int        `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int        `form:"pageSize,default=25" binding:"omitempty,min=1,max=100"`
}

// ProposeCounterRequest opens a negotiation round on a sent quote.
type ProposeCounterRequest struct {
	ProposedTotalCents *int64     `json:"proposedTotalCents" binding:"omitempty,min=0"`
	ProposedStartDate  *time.Time `json:"proposedStartDate"`
	ProposedEndDate    *time.Time `json:"proposedEndDate"`
	ScopeChanges       *string    `json:"scopeChanges" binding:"omitempty,max=5000"`
	Message            string     `json:"message" binding:"max=2000"`
}

// DeclineCounterRequest closes a round without accepting it.
type DeclineCounterRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=1000"`
}

// QuoteItemResponse is the API shape of one line item.
type QuoteItemResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Quantity       float64   `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	TotalCents     int64     `json:"totalCents"`
	DisplayOrder   int       `json:"displayOrder"`
}

// QuoteResponse is the API shape of a quote with its line items.
type QuoteResponse struct {
	ID                   uuid.UUID           `json:"id"`
	CaseID               uuid.UUID           `json:"caseId"`
	ContractorID         uuid.UUID           `json:"contractorId"`
	CustomerID           uuid.UUID           `json:"customerId"`
	Status               string              `json:"status"`
	SubtotalCents        int64               `json:"subtotalCents"`
	TaxAmountCents       int64               `json:"taxAmountCents"`
	TotalCents           int64               `json:"totalCents"`
	DepositRequiredCents int64               `json:"depositRequiredCents"`
	AvailableStartDate   *time.Time          `json:"availableStartDate,omitempty"`
	AvailableEndDate     *time.Time          `json:"availableEndDate,omitempty"`
	EstimatedDays        int                 `json:"estimatedDays"`
	HasCounterProposal   bool                `json:"hasCounterProposal"`
	CounterProposalCount int                 `json:"counterProposalCount"`
	ExpiresAt            *time.Time          `json:"expiresAt,omitempty"`
	Notes                string              `json:"notes,omitempty"`
	Items                []QuoteItemResponse `json:"items"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// SendQuoteResponse carries the single-use approval link.
type SendQuoteResponse struct {
	QuoteID      uuid.UUID `json:"quoteId"`
	Status       string    `json:"status"`
	ApprovalLink string    `json:"approvalLink"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// AcceptQuoteResponse reports the accept plus the competing quotes it
// auto-declined.
type AcceptQuoteResponse struct {
	Quote          QuoteResponse `json:"quote"`
	DeclinedQuotes []uuid.UUID   `json:"declinedQuotes"`
}

// CounterProposalResponse is the API shape of one negotiation round.
type CounterProposalResponse struct {
	ID                 uuid.UUID  `json:"id"`
	QuoteID            uuid.UUID  `json:"quoteId"`
	ProposedBy         uuid.UUID  `json:"proposedBy"`
	ProposedByRole     string     `json:"proposedByRole"`
	ProposedTotalCents *int64     `json:"proposedTotalCents,omitempty"`
	ProposedStartDate  *time.Time `json:"proposedStartDate,omitempty"`
	ProposedEndDate    *time.Time `json:"proposedEndDate,omitempty"`
	ScopeChanges       *string    `json:"scopeChanges,omitempty"`
	Message            string     `json:"message,omitempty"`
	Status             string     `json:"status"`
	ResponseReason     *string    `json:"responseReason,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// QuoteCalculationRequest previews totals for a set of line items without
// persisting anything.
type QuoteCalculationRequest struct {
	TaxRateBps int                `json:"taxRateBps" binding:"min=0,max=10000"`
	Items      []QuoteItemRequest `json:"items" binding:"required,min=1,max=100,dive"`
}

// CalculatedLineItem is one computed line in a calculation preview.
type CalculatedLineItem struct {
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	UnitPriceCents int64   `json:"unitPriceCents"`
	TotalCents     int64   `json:"totalCents"`
}

// QuoteCalculationResponse carries the computed totals.
type QuoteCalculationResponse struct {
	SubtotalCents  int64                `json:"subtotalCents"`
	TaxAmountCents int64                `json:"taxAmountCents"`
	TotalCents     int64                `json:"totalCents"`
	Lines          []CalculatedLineItem `json:"lines"`
}
