package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/brightpath-crm/notify-backend/api/responses"
	"github.com/brightpath-crm/notify-backend/api/validators"
	"github.com/brightpath-crm/notify-backend/internal/notifications"
	pkgerrors "github.com/brightpath-crm/notify-backend/pkg/errors"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
	"github.com/brightpath-crm/notify-backend/pkg/pagination"
)

// ListNotifications returns a recipient's notification feed. With
// countOnly=true only the unread count is returned.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		userID := strings.TrimSpace(r.URL.Query().Get("userId"))
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "userId query parameter required"))
			return
		}

		if countOnly := strings.TrimSpace(r.URL.Query().Get("countOnly")); countOnly != "" {
			value, err := strconv.ParseBool(countOnly)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid countOnly value"))
				return
			}
			if value {
				count, err := svc.CountUnread(r.Context(), userID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				responses.WriteSuccess(w, map[string]int64{"count": count})
				return
			}
		}

		params := notifications.ListParams{RecipientID: userID}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}

		if unread := strings.TrimSpace(r.URL.Query().Get("unreadOnly")); unread != "" {
			value, err := strconv.ParseBool(unread)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unreadOnly value"))
				return
			}
			params.UnreadOnly = value
		}

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

type markNotificationsRequest struct {
	NotificationID string `json:"notificationId"`
	UserID         string `json:"userId"`
	MarkAll        bool   `json:"markAll"`
}

// MarkNotificationsRead marks one notification read, or all of a recipient's
// notifications when markAll is set.
func MarkNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		var body markNotificationsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if body.MarkAll {
			if body.UserID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "userId required with markAll"))
				return
			}
			count, err := svc.MarkAllRead(r.Context(), body.UserID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, map[string]int64{"updated": count})
			return
		}

		if body.NotificationID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "notificationId or markAll required"))
			return
		}
		id, err := uuid.Parse(body.NotificationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification id"))
			return
		}
		if err := svc.MarkRead(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"updated": true})
	}
}
