// Package domain holds the quote ledger's pure state rules: the quote status
// machine and the counter-proposal negotiation round logic.
package domain

// Status is a quote lifecycle state.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusSent             Status = "sent"
	StatusAwaitingResponse Status = "awaiting_response"
	StatusApproved         Status = "approved"
	StatusDeclined         Status = "declined"
	StatusExpired          Status = "expired"
)

// Valid reports whether s is a known quote status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAwaitingResponse, StatusApproved, StatusDeclined, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether the quote can never change again.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusDeclined || s == StatusExpired
}

// Active reports whether the quote counts against the one-active-quote-per-
// case-and-contractor invariant.
func (s Status) Active() bool {
	return s == StatusSent || s == StatusAwaitingResponse || s == StatusApproved
}

// Editable reports whether line items and terms may still be changed
// directly. After sending, terms change only through accepted counters.
func (s Status) Editable() bool {
	return s == StatusDraft
}

// Decidable reports whether a landlord may accept or decline the quote.
func (s Status) Decidable() bool {
	return s == StatusSent || s == StatusAwaitingResponse
}

// Expirable reports whether the background sweep may expire the quote.
func (s Status) Expirable() bool {
	return s == StatusSent || s == StatusAwaitingResponse
}
