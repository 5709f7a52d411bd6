package senders

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	mail "gopkg.in/mail.v2"

	"github.com/brightpath-crm/notify-backend/pkg/config"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestEmailSendSimulatedWithoutCredentials(t *testing.T) {
	sender := NewEmailSender(config.SMTPConfig{}, testLogger())
	sender.dial = func(*mail.Message) error {
		t.Fatal("simulated mode must not dial")
		return nil
	}

	id, err := sender.Send(context.Background(), "user@example.com", EmailMessage{Subject: "hi", Text: "body"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(id, "simulated-") {
		t.Fatalf("expected simulated message id, got %q", id)
	}
}

func TestEmailSendRetriesTransientFailure(t *testing.T) {
	cfg := config.SMTPConfig{Host: "smtp.example.com", Port: 587, User: "u", Pass: "p"}
	sender := NewEmailSender(cfg, testLogger())

	attempts := 0
	sender.dial = func(*mail.Message) error {
		attempts++
		if attempts < 2 {
			return errors.New("connection reset")
		}
		return nil
	}

	id, err := sender.Send(context.Background(), "user@example.com", EmailMessage{Subject: "hi", Text: "body"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if !strings.HasPrefix(id, "smtp-") {
		t.Fatalf("expected smtp message id, got %q", id)
	}
}

func TestEmailSendGivesUpAfterRetryBudget(t *testing.T) {
	cfg := config.SMTPConfig{Host: "smtp.example.com", Port: 587, User: "u", Pass: "p"}
	sender := NewEmailSender(cfg, testLogger())

	attempts := 0
	sender.dial = func(*mail.Message) error {
		attempts++
		return errors.New("connection refused")
	}

	if _, err := sender.Send(context.Background(), "user@example.com", EmailMessage{Subject: "hi", Text: "body"}); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if attempts != 4 {
		t.Fatalf("expected 4 attempts, got %d", attempts)
	}
}

func TestEmailSendRejectsEmptyRecipient(t *testing.T) {
	sender := NewEmailSender(config.SMTPConfig{}, testLogger())
	if _, err := sender.Send(context.Background(), "", EmailMessage{Subject: "hi"}); err == nil {
		t.Fatal("expected error for empty recipient")
	}
}
