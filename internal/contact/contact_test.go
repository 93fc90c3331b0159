package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func validSubmission() Submission {
	return Submission{Name: "Ada", Email: "ada@example.com", Subject: "Hello", Message: "Nice particles."}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Submission)
		wantErr bool
	}{
		{"valid", func(*Submission) {}, false},
		{"missing name", func(s *Submission) { s.Name = "" }, true},
		{"blank subject", func(s *Submission) { s.Subject = "   " }, true},
		{"missing message", func(s *Submission) { s.Message = "" }, true},
		{"no at sign", func(s *Submission) { s.Email = "ada.example.com" }, true},
		{"crlf in subject", func(s *Submission) { s.Subject = "hi\r\nBcc: victim@example.com" }, true},
		{"newline in email", func(s *Submission) { s.Email = "ada@example.com\nBcc: x@y.z" }, true},
		{"newline in name", func(s *Submission) { s.Name = "Ada\nLovelace" }, true},
		{"newline in message", func(s *Submission) { s.Message = "line one\nline two" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmission()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidSubmission) {
				t.Errorf("expected ErrInvalidSubmission, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestClientSendSuccess(t *testing.T) {
	var got Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get("Accept") != "application/json" {
			t.Errorf("unexpected headers %v", r.Header)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).Send(context.Background(), validSubmission()); err != nil {
		t.Fatal(err)
	}
	if got != validSubmission() {
		t.Errorf("relay received %+v", got)
	}
}

func TestClientSendStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "form disabled", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Send(context.Background(), validSubmission())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.Code != http.StatusUnprocessableEntity || !strings.Contains(se.Body, "form disabled") {
		t.Errorf("unexpected status error %+v", se)
	}
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewClient(url).Send(context.Background(), validSubmission())
	if err == nil {
		t.Fatal("expected an error from a closed server")
	}
	var se *StatusError
	if errors.As(err, &se) {
		t.Error("network failure must not look like a status error")
	}
}

func TestNewClientDefaultURL(t *testing.T) {
	if NewClient("").URL != DefaultRelayURL {
		t.Error("expected default relay URL")
	}
}

func TestStub(t *testing.T) {
	s := &Stub{}
	if err := s.Send(context.Background(), validSubmission()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := &Stub{Delay: time.Hour}
	if err := slow.Send(ctx, validSubmission()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMailer(t *testing.T) {
	cfg := MailConfig{Host: "smtp.test", Port: "2525", User: "me@test", Pass: "secret", To: "inbox@test"}
	m := NewMailer(cfg)

	var addr string
	var msg []byte
	m.send = func(a string, _ smtp.Auth, from string, to []string, body []byte) error {
		addr, msg = a, body
		if from != "me@test" || len(to) != 1 || to[0] != "inbox@test" {
			t.Errorf("unexpected envelope %s -> %v", from, to)
		}
		return nil
	}

	if err := m.Send(context.Background(), validSubmission()); err != nil {
		t.Fatal(err)
	}
	if addr != "smtp.test:2525" {
		t.Errorf("unexpected addr %s", addr)
	}
	for _, want := range []string{"Subject: Portfolio Contact: Hello", "Reply-To: ada@example.com", "Nice particles."} {
		if !strings.Contains(string(msg), want) {
			t.Errorf("mail missing %q", want)
		}
	}
}

func TestComposeMailSingleLineHeaders(t *testing.T) {
	s := validSubmission()
	s.Subject = "hi\r\nBcc: victim@example.com"
	s.Email = "ada@example.com\nCc: other@example.com"
	msg := string(composeMail(MailConfig{User: "me@test", To: "inbox@test"}, s))

	headers, _, ok := strings.Cut(msg, "\r\n\r\n")
	if !ok {
		t.Fatal("no header terminator")
	}
	for _, line := range strings.Split(headers, "\r\n") {
		if strings.HasPrefix(line, "Bcc:") || strings.HasPrefix(line, "Cc:") {
			t.Errorf("injected header %q", line)
		}
	}
	if n := len(strings.Split(headers, "\r\n")); n != 4 {
		t.Errorf("expected 4 header lines, got %d", n)
	}
}

func TestMailerNotConfigured(t *testing.T) {
	m := NewMailer(MailConfig{Host: "smtp.test", Port: "25"})
	if err := m.Send(context.Background(), validSubmission()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestMailConfigFromEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("SMTP_USER", "u")
	cfg := MailConfigFromEnv()
	if cfg.Host != "smtp.gmail.com" || cfg.Port != "587" || cfg.User != "u" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := OpenLog(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLogRecent(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	first := validSubmission()
	second := validSubmission()
	second.Subject = "Again"

	if err := l.Record(ctx, first, StatusSent, nil); err != nil {
		t.Fatal(err)
	}
	if err := l.Record(ctx, second, StatusFailed, errors.New("relay down")); err != nil {
		t.Fatal(err)
	}

	entries, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Subject != "Again" || entries[0].Status != StatusFailed || entries[0].Error != "relay down" {
		t.Errorf("newest entry wrong: %+v", entries[0])
	}
	if entries[1].Status != StatusSent || entries[1].Error != "" {
		t.Errorf("oldest entry wrong: %+v", entries[1])
	}
	if entries[1].Timestamp.IsZero() {
		t.Error("timestamp not stored")
	}

	limited, err := l.Recent(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("expected 1 entry, got %d (%v)", len(limited), err)
	}

	sent, failed, err := l.Counts(ctx)
	if err != nil || sent != 1 || failed != 1 {
		t.Errorf("counts = %d, %d, %v", sent, failed, err)
	}
}

type failing struct{ err error }

func (f failing) Send(context.Context, Submission) error { return f.err }

func TestServiceSubmit(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)

	ok := &Service{Sender: &Stub{}, Log: l}
	res, err := ok.Submit(ctx, validSubmission())
	if err != nil || !res.Success || res.Message != SuccessMessage {
		t.Errorf("unexpected result %+v, %v", res, err)
	}

	down := errors.New("down")
	bad := &Service{Sender: failing{down}, Log: l}
	res, err = bad.Submit(ctx, validSubmission())
	if !errors.Is(err, down) || res.Success || res.Message != FailureMessage {
		t.Errorf("unexpected result %+v, %v", res, err)
	}

	invalid := validSubmission()
	invalid.Email = "nope"
	if _, err := ok.Submit(ctx, invalid); !errors.Is(err, ErrInvalidSubmission) {
		t.Errorf("expected ErrInvalidSubmission, got %v", err)
	}

	sent, failed, err := l.Counts(ctx)
	if err != nil || sent != 1 || failed != 1 {
		t.Errorf("invalid submissions must not be logged: %d sent, %d failed, %v", sent, failed, err)
	}
}
