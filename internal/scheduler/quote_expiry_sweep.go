package scheduler

import (
	"context"
	"time"

	"caseflow_backend/platform/logger"
)

const defaultQuoteExpirySweepInterval = 15 * time.Minute

// QuoteExpirer marks overdue quotes as expired. Implemented by the quotes
// service so each expiry also raises the domain event.
type QuoteExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

// QuoteExpirySweep periodically expires sent quotes whose validity window has
// lapsed without a decision.
type QuoteExpirySweep struct {
	quotes   QuoteExpirer
	log      *logger.Logger
	interval time.Duration
}

func NewQuoteExpirySweep(quotes QuoteExpirer, log *logger.Logger, interval time.Duration) *QuoteExpirySweep {
	if interval <= 0 {
		interval = defaultQuoteExpirySweepInterval
	}

	return &QuoteExpirySweep{
		quotes:   quotes,
		log:      log,
		interval: interval,
	}
}

func (s *QuoteExpirySweep) Run(ctx context.Context) {
	if s == nil || s.quotes == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *QuoteExpirySweep) sweep(ctx context.Context) {
	expired, err := s.quotes.ExpireDue(ctx, time.Now().UTC())
	if err != nil {
		s.log.Warn("quote expiry sweep failed", "error", err)
		return
	}
	if expired > 0 {
		s.log.Info("expired overdue quotes", "count", expired)
	}
}
