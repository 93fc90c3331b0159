package contact

import (
	"context"
	"log/slog"
	"time"
)

// Stub logs the submission and reports success after Delay.
type Stub struct {
	Logger *slog.Logger
	Delay  time.Duration
}

func (s *Stub) Send(ctx context.Context, sub Submission) error {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("new contact form submission",
		"name", sub.Name, "email", sub.Email, "subject", sub.Subject, "message", sub.Message)

	if s.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
