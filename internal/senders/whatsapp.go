package senders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/brightpath-crm/notify-backend/pkg/config"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
)

// WhatsAppSender delivers plain-text chat messages through the UltraMsg
// gateway. Credentials come from server-side configuration only. Without
// them the sender runs in simulated mode, like EmailSender.
type WhatsAppSender struct {
	cfg    config.UltraMsgConfig
	client *http.Client
	logg   *logger.Logger
}

// NewWhatsAppSender builds a WhatsApp sender from UltraMsg configuration.
func NewWhatsAppSender(cfg config.UltraMsgConfig, client *http.Client, logg *logger.Logger) *WhatsAppSender {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WhatsAppSender{cfg: cfg, client: client, logg: logg}
}

type ultraMsgRequest struct {
	Token string `json:"token"`
	To    string `json:"to"`
	Body  string `json:"body"`
}

type ultraMsgResponse struct {
	Sent    string `json:"sent"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// Send validates and normalizes the destination phone number, then delivers
// one chat message. An unusable phone number fails without any network call.
func (s *WhatsAppSender) Send(ctx context.Context, to string, body string) (string, error) {
	normalized, err := NormalizePhone(to)
	if err != nil {
		return "", fmt.Errorf("invalid destination: %w", err)
	}

	if !s.cfg.Configured() {
		messageID := "simulated-" + uuid.NewString()
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"to":         normalized,
			"message_id": messageID,
		})
		s.logg.Info(logCtx, "whatsapp send simulated (no UltraMsg credentials)")
		return messageID, nil
	}

	url := fmt.Sprintf("%s/%s/messages/chat", s.cfg.BaseURL, s.cfg.InstanceID)
	payload, err := json.Marshal(ultraMsgRequest{
		Token: s.cfg.Token,
		To:    normalized,
		Body:  body,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var parsed ultraMsgResponse
	backoff := retry.WithMaxRetries(sendMaxRetries, retry.NewExponential(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("ultramsg API error: %s", resp.Status))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("ultramsg API error: %s: %s", resp.Status, bytes.TrimSpace(raw))
		}
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if parsed.Sent != "true" {
			return fmt.Errorf("ultramsg rejected message: %s", parsed.Message)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("whatsapp send to %s: %w", normalized, err)
	}

	messageID := fmt.Sprintf("ultramsg-%d", parsed.ID)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"to":         normalized,
		"message_id": messageID,
	})
	s.logg.Info(logCtx, "whatsapp message sent")
	return messageID, nil
}
