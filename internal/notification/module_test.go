package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"caseflow_backend/internal/events"
	notificationoutbox "caseflow_backend/internal/notification/outbox"
	"caseflow_backend/platform/logger"

	"github.com/google/uuid"
)

type testNotificationConfig struct{}

func (testNotificationConfig) GetAppBaseURL() string { return "https://app.example.com" }

type testSender struct {
	calls    int
	toEmails []string
	subjects []string
	fail     error
}

func (s *testSender) SendCustomEmail(_ context.Context, toEmail, subject, _ string) error {
	s.calls++
	s.toEmails = append(s.toEmails, toEmail)
	s.subjects = append(s.subjects, subject)
	return s.fail
}

func TestHandleQuoteSentWithoutRecipientIsNoOp(t *testing.T) {
	sender := &testSender{}
	m := New(nil, sender, testNotificationConfig{}, logger.New("development"))

	err := m.handleQuoteSent(context.Background(), events.QuoteSent{
		QuoteID:      uuid.New(),
		CaseID:       uuid.New(),
		ContractorID: uuid.New(),
		CustomerID:   uuid.New(),
		TotalCents:   125000,
		ApprovalLink: "https://app.example.com/quotes/approve/token",
	})
	if err != nil {
		t.Fatalf("handleQuoteSent returned error: %v", err)
	}
	if sender.calls != 0 {
		t.Fatalf("expected no direct email sends without a resolvable recipient, got %d", sender.calls)
	}
}

func TestProcessEmailOutboxDeliversPayload(t *testing.T) {
	sender := &testSender{}
	m := New(nil, sender, testNotificationConfig{}, logger.New("development"))

	payload, _ := json.Marshal(emailSendOutboxPayload{
		ToEmail:  "landlord@example.com",
		Subject:  "New quote for Leaking roof",
		BodyHTML: "<p>hello</p>",
	})

	err := m.processEmailOutbox(context.Background(), notificationoutbox.Record{
		ID:      uuid.New(),
		Kind:    "email",
		Payload: payload,
	})
	if err != nil {
		t.Fatalf("processEmailOutbox returned error: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("expected 1 send, got %d", sender.calls)
	}
	if sender.toEmails[0] != "landlord@example.com" {
		t.Fatalf("unexpected recipient %q", sender.toEmails[0])
	}
	if sender.subjects[0] != "New quote for Leaking roof" {
		t.Fatalf("unexpected subject %q", sender.subjects[0])
	}
}

func TestProcessEmailOutboxSkipsInvalidPayload(t *testing.T) {
	sender := &testSender{}
	m := New(nil, sender, testNotificationConfig{}, logger.New("development"))

	err := m.processEmailOutbox(context.Background(), notificationoutbox.Record{
		ID:      uuid.New(),
		Kind:    "email",
		Payload: []byte("{not json"),
	})
	if err != nil {
		t.Fatalf("invalid payload should not surface an error (no retry), got: %v", err)
	}
	if sender.calls != 0 {
		t.Fatalf("expected no sends for invalid payload, got %d", sender.calls)
	}
}

func TestProcessEmailOutboxRequiresSubjectAndBody(t *testing.T) {
	sender := &testSender{}
	m := New(nil, sender, testNotificationConfig{}, logger.New("development"))

	payload, _ := json.Marshal(emailSendOutboxPayload{ToEmail: "someone@example.com"})
	err := m.processEmailOutbox(context.Background(), notificationoutbox.Record{
		ID:      uuid.New(),
		Kind:    "email",
		Payload: payload,
	})
	if err != nil {
		t.Fatalf("missing subject/body should not surface an error, got: %v", err)
	}
	if sender.calls != 0 {
		t.Fatalf("expected no sends without subject and body, got %d", sender.calls)
	}
}

func TestComputeOutboxRetryDelayBacksOffAndCaps(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 30 * time.Second},
		{attempt: 1, want: 30 * time.Second},
		{attempt: 2, want: time.Minute},
		{attempt: 3, want: 2 * time.Minute},
		{attempt: 10, want: 15 * time.Minute},
	}

	for _, tc := range cases {
		if got := computeOutboxRetryDelay(tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: got %v, want %v", tc.attempt, got, tc.want)
		}
	}
}
