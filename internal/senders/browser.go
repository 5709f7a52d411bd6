package senders

import (
	"context"

	"github.com/google/uuid"

	"github.com/brightpath-crm/notify-backend/pkg/logger"
)

// BrowserSender satisfies the browser channel server-side. Actual display
// happens in the recipient's open client session, which polls the
// notification list; the server's only duty is to mark the channel done.
type BrowserSender struct {
	logg *logger.Logger
}

// NewBrowserSender builds a browser sender.
func NewBrowserSender(logg *logger.Logger) *BrowserSender {
	return &BrowserSender{logg: logg}
}

// Send always succeeds; the notification record itself is the delivery.
func (s *BrowserSender) Send(ctx context.Context, recipientID string, title string) (string, error) {
	messageID := "browser-" + uuid.NewString()
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"recipient_id": recipientID,
		"message_id":   messageID,
		"title":        title,
	})
	s.logg.Info(logCtx, "browser notification queued for client delivery")
	return messageID, nil
}
