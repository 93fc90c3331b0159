package contact

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

type MailConfig struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

// MailConfigFromEnv reads SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS and
// TO_EMAIL, defaulting host and port to Gmail's submission endpoint.
func MailConfigFromEnv() MailConfig {
	cfg := MailConfig{
		Host: os.Getenv("SMTP_HOST"),
		Port: os.Getenv("SMTP_PORT"),
		User: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASS"),
		To:   os.Getenv("TO_EMAIL"),
	}
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return cfg
}

// Mailer sends submissions as plain-text email.
type Mailer struct {
	Config MailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg MailConfig) *Mailer {
	return &Mailer{Config: cfg, send: smtp.SendMail}
}

func (m *Mailer) Send(ctx context.Context, s Submission) error {
	cfg := m.Config
	if cfg.User == "" || cfg.Pass == "" || cfg.To == "" {
		return fmt.Errorf("%w: SMTP credentials or recipient missing", ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	if err := m.send(cfg.Host+":"+cfg.Port, auth, cfg.User, []string{cfg.To}, composeMail(cfg, s)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func composeMail(cfg MailConfig, s Submission) []byte {
	body := fmt.Sprintf(`
New contact form submission:

Name: %s
Email: %s
Subject: %s
Message:
%s
`, s.Name, s.Email, s.Subject, s.Message)

	return []byte("To: " + cfg.To + "\r\n" +
		"Subject: Portfolio Contact: " + headerValue(s.Subject) + "\r\n" +
		"From: " + cfg.User + "\r\n" +
		"Reply-To: " + headerValue(s.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

var headerBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// headerValue flattens v onto one line so it cannot start a new header.
func headerValue(v string) string { return headerBreaks.Replace(v) }
