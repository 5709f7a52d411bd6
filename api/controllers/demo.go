package controllers

import (
	"net/http"

	"github.com/brightpath-crm/notify-backend/api/responses"
	"github.com/brightpath-crm/notify-backend/api/validators"
	"github.com/brightpath-crm/notify-backend/internal/notifications"
	"github.com/brightpath-crm/notify-backend/pkg/enums"
	pkgerrors "github.com/brightpath-crm/notify-backend/pkg/errors"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
)

type demoNotificationRequest struct {
	UserID    string `json:"userId" validate:"required"`
	UserName  string `json:"userName" validate:"required"`
	UserEmail string `json:"userEmail" validate:"required,email"`
	Type      string `json:"type"`
}

// CreateDemoNotification enqueues a sample notification so the pipeline can
// be exercised without real CRM events.
func CreateDemoNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		var body demoNotificationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notificationType := enums.NotificationTypeWelcomeMessage
		if body.Type != "" {
			parsed, err := enums.ParseNotificationType(body.Type)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification type"))
				return
			}
			notificationType = parsed
		}

		record, err := svc.Create(r.Context(), notifications.CreateParams{
			Type:     notificationType,
			Priority: enums.NotificationPriorityMedium,
			Title:    "Demo notification",
			Message:  "This is a demo notification from BrightPath CRM.",
			Metadata: map[string]string{
				"demo": "true",
			},
			RecipientID:    body.UserID,
			RecipientEmail: body.UserEmail,
			RecipientName:  body.UserName,
			Channels:       []enums.Channel{enums.ChannelEmail, enums.ChannelBrowser},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"success":        true,
			"notificationId": record.ID.String(),
		})
	}
}
