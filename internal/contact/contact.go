// Package contact delivers contact-form submissions: over HTTPS to a form
// relay, over SMTP, or to the log, with every attempt kept in a SQLite
// table.
package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSubmission = errors.New("contact: invalid submission")
	ErrNotConfigured     = errors.New("contact: sender not configured")
)

// DefaultRelayURL is the form relay the portfolio page posted to.
const DefaultRelayURL = "https://formspree.io/f/xeokzrow"

const (
	SuccessMessage = "Message received! I'll get back to you soon."
	FailureMessage = "Failed to send message"
)

type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate requires every field, an @ in the email and single-line
// header fields.
func (s Submission) Validate() error {
	missing := make([]string, 0, 4)
	for _, f := range []struct{ name, val string }{
		{"name", s.Name}, {"email", s.Email}, {"subject", s.Subject}, {"message", s.Message},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidSubmission, strings.Join(missing, ", "))
	}
	if !strings.Contains(s.Email, "@") {
		return fmt.Errorf("%w: email %q has no @", ErrInvalidSubmission, s.Email)
	}
	// name, email and subject end up in mail headers
	for _, f := range []struct{ name, val string }{
		{"name", s.Name}, {"email", s.Email}, {"subject", s.Subject},
	} {
		if strings.ContainsAny(f.val, "\r\n") {
			return fmt.Errorf("%w: %s contains a line break", ErrInvalidSubmission, f.name)
		}
	}
	return nil
}

// Sender delivers one submission.
type Sender interface {
	Send(ctx context.Context, s Submission) error
}

// Result is the reply shown to the person who filled in the form.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service validates, sends and records submissions.
type Service struct {
	Sender Sender
	Log    *Log
}

// Submit runs one submission through the service. Validation errors are
// returned without sending or logging.
func (svc *Service) Submit(ctx context.Context, s Submission) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{Success: false, Message: err.Error()}, err
	}

	sendErr := svc.Sender.Send(ctx, s)
	if svc.Log != nil {
		status := StatusSent
		if sendErr != nil {
			status = StatusFailed
		}
		if err := svc.Log.Record(ctx, s, status, sendErr); err != nil {
			return Result{Success: false, Message: FailureMessage}, fmt.Errorf("record submission: %w", err)
		}
	}
	if sendErr != nil {
		return Result{Success: false, Message: FailureMessage}, sendErr
	}
	return Result{Success: true, Message: SuccessMessage}, nil
}
