package senders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	mail "gopkg.in/mail.v2"

	"github.com/brightpath-crm/notify-backend/pkg/config"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
)

// sendMaxRetries bounds the in-sender retries around one delivery attempt.
// With the 1s exponential base this waits 1s, 2s then 4s between tries.
const sendMaxRetries = 3

// EmailMessage is a rendered email payload.
type EmailMessage struct {
	Subject string
	HTML    string
	Text    string
}

// EmailSender delivers rendered email payloads over SMTP. Without credentials
// it runs in simulated mode: the payload is logged and the send reports
// success with a synthetic id, which keeps the pipeline usable in dev and
// demo environments.
type EmailSender struct {
	cfg  config.SMTPConfig
	logg *logger.Logger
	dial func(msg *mail.Message) error
}

// NewEmailSender builds an email sender from SMTP configuration.
func NewEmailSender(cfg config.SMTPConfig, logg *logger.Logger) *EmailSender {
	s := &EmailSender{cfg: cfg, logg: logg}
	s.dial = func(msg *mail.Message) error {
		dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
		return dialer.DialAndSend(msg)
	}
	return s
}

// Send delivers one email and returns the provider message id. Transport
// failures are retried internally with exponential backoff before being
// surfaced to the caller.
func (s *EmailSender) Send(ctx context.Context, to string, payload EmailMessage) (string, error) {
	if to == "" {
		return "", fmt.Errorf("recipient email is empty")
	}

	if !s.cfg.Configured() {
		messageID := "simulated-" + uuid.NewString()
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"to":         to,
			"subject":    payload.Subject,
			"message_id": messageID,
		})
		s.logg.Info(logCtx, "email send simulated (no SMTP credentials)")
		return messageID, nil
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", s.cfg.From())
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", payload.Subject)
	msg.SetBody("text/plain", payload.Text)
	if payload.HTML != "" {
		msg.AddAlternative("text/html", payload.HTML)
	}

	backoff := retry.WithMaxRetries(sendMaxRetries, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.dial(msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("smtp send to %s: %w", to, err)
	}

	messageID := "smtp-" + uuid.NewString()
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"to":         to,
		"subject":    payload.Subject,
		"message_id": messageID,
	})
	s.logg.Info(logCtx, "email sent")
	return messageID, nil
}
