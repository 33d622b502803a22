package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"gopkg.in/gomail.v2"
)

const (
	EmailProviderLog    = "log"
	EmailProviderResend = "resend"
	EmailProviderSMTP   = "smtp"
)

var ErrEmailNotConfigured = errors.New("email service not configured")

// Email is a single outbound message with both an HTML and a plaintext body.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// NotificationSink delivers a message to an address. Callers treat delivery as best-effort.
type NotificationSink interface {
	Send(ctx context.Context, email Email) error
}

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
}

type EmailService struct {
	provider  string
	client    *resend.Client
	dialer    *gomail.Dialer
	fromEmail string
}

func NewEmailService(provider, fromEmail, resendAPIKey string, smtp SMTPSettings) *EmailService {
	s := &EmailService{
		provider:  provider,
		fromEmail: fromEmail,
	}

	switch provider {
	case EmailProviderResend:
		if resendAPIKey != "" {
			s.client = resend.NewClient(resendAPIKey)
		}
	case EmailProviderSMTP:
		if smtp.Host != "" {
			s.dialer = gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
		}
	}

	return s
}

func (s *EmailService) Send(ctx context.Context, email Email) error {
	if email.To == "" {
		return errors.New("no recipient specified")
	}

	switch s.provider {
	case EmailProviderResend:
		return s.sendResend(ctx, email)
	case EmailProviderSMTP:
		return s.sendSMTP(email)
	default:
		slog.Info("email sent (log mode)", "to", email.To, "subject", email.Subject, "body", email.Text)
		return nil
	}
}

func (s *EmailService) sendResend(ctx context.Context, email Email) error {
	if s.client == nil {
		return fmt.Errorf("%w (missing RESEND_API_KEY)", ErrEmailNotConfigured)
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}

	slog.Info("email sent", "provider", EmailProviderResend, "to", email.To, "subject", email.Subject)
	return nil
}

func (s *EmailService) sendSMTP(email Email) error {
	if s.dialer == nil {
		return fmt.Errorf("%w (missing SMTP_HOST)", ErrEmailNotConfigured)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.fromEmail)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.Text)
	if email.HTML != "" {
		msg.AddAlternative("text/html", email.HTML)
	}

	err := s.dialer.DialAndSend(msg)
	if err != nil {
		return fmt.Errorf("smtp: %w", err)
	}

	slog.Info("email sent", "provider", EmailProviderSMTP, "to", email.To, "subject", email.Subject)
	return nil
}
