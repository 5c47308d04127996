// Package email renders and delivers transactional emails. Messages are
// rendered up front (see messages.go) so the notification outbox can store
// the final subject and body; delivery happens later in the worker.
package email

import (
	"context"

	"caseflow_backend/platform/config"
)

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	FileName string
	Content  []byte
}

// Sender delivers a pre-rendered HTML email.
type Sender interface {
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NoopSender discards all emails. Used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendCustomEmail(context.Context, string, string, string) error { return nil }

// NewSender returns the configured sender: SMTP when email is enabled,
// otherwise a no-op.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
