package email

import (
	"strings"
	"testing"
	"time"
)

func TestNewQuoteReceivedMessage(t *testing.T) {
	msg, err := NewQuoteReceivedMessage("Anna", "Leaking roof", 125000, "https://app.example.com/quotes/approve/abc")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if msg.Subject != "New quote for Leaking roof" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	for _, want := range []string{"Anna", "Leaking roof", "€1250.00", "https://app.example.com/quotes/approve/abc"} {
		if !strings.Contains(msg.HTML, want) {
			t.Fatalf("body missing %q", want)
		}
	}
}

func TestNewQuoteDeclinedMessageIncludesReason(t *testing.T) {
	msg, err := NewQuoteDeclinedMessage("Bob", "Boiler service", "too expensive")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(msg.HTML, "too expensive") {
		t.Fatal("body missing decline reason")
	}

	// Without a reason the line is omitted entirely.
	msg, err = NewQuoteDeclinedMessage("Bob", "Boiler service", "")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(msg.HTML, "Reason:") {
		t.Fatal("body should omit the reason line when empty")
	}
}

func TestNewCounterProposalMessageOptionalTotal(t *testing.T) {
	total := int64(99900)
	msg, err := NewCounterProposalMessage("Anna", "Leaking roof", &total, "https://app.example.com/quotes/123")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(msg.HTML, "€999.00") {
		t.Fatal("body missing proposed total")
	}

	msg, err = NewCounterProposalMessage("Anna", "Leaking roof", nil, "")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(msg.HTML, "Proposed total") {
		t.Fatal("body should omit total when no amount was proposed")
	}
}

func TestNewJobConfirmedMessageFormatsDates(t *testing.T) {
	start := time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)
	msg, err := NewJobConfirmedMessage("Anna", "Leaking roof", start, end)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(msg.HTML, "Monday, 14 September 2026") {
		t.Fatal("body missing start date")
	}
	if !strings.Contains(msg.HTML, "Thursday, 17 September 2026") {
		t.Fatal("body missing end date")
	}
}

func TestNewAppointmentReminderMessage(t *testing.T) {
	start := time.Date(2026, 9, 14, 8, 30, 0, 0, time.UTC)
	msg, err := NewAppointmentReminderMessage("Bob", "Roof inspection", start)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if msg.Subject != "Reminder: Roof inspection" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "08:30") {
		t.Fatal("body missing start time")
	}
}
