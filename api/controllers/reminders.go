package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-crm/notify-backend/api/responses"
	"github.com/brightpath-crm/notify-backend/api/validators"
	"github.com/brightpath-crm/notify-backend/internal/reminders"
	"github.com/brightpath-crm/notify-backend/pkg/enums"
	pkgerrors "github.com/brightpath-crm/notify-backend/pkg/errors"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
	"github.com/brightpath-crm/notify-backend/pkg/pagination"
)

// ListReminders returns follow-up reminders, or only the due unconverted ones
// when getDue=true.
func ListReminders(svc reminders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminders service unavailable"))
			return
		}

		if getDue := strings.TrimSpace(r.URL.Query().Get("getDue")); getDue != "" {
			value, err := strconv.ParseBool(getDue)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid getDue value"))
				return
			}
			if value {
				due, err := svc.GetDue(r.Context())
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				responses.WriteSuccess(w, map[string]any{"items": due})
				return
			}
		}

		params := reminders.ListParams{
			CustomerID: strings.TrimSpace(r.URL.Query().Get("customerId")),
			CreatedBy:  strings.TrimSpace(r.URL.Query().Get("userId")),
			Cursor:     strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
			parsed, err := enums.ParseReminderStatus(status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			params.Status = parsed
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

type createReminderRequest struct {
	CustomerID   string `json:"customerId" validate:"required"`
	CustomerName string `json:"customerName" validate:"required"`
	UserID       string `json:"userId" validate:"required"`
	UserName     string `json:"userName"`
	UserEmail    string `json:"userEmail" validate:"required,email"`
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	ScheduledFor string `json:"scheduledFor" validate:"required"`
	Priority     string `json:"priority"`
}

// CreateReminder stores a new follow-up reminder.
func CreateReminder(svc reminders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminders service unavailable"))
			return
		}

		var body createReminderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scheduledFor, err := time.Parse(time.RFC3339, body.ScheduledFor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "scheduledFor must be RFC3339"))
			return
		}

		params := reminders.CreateParams{
			CustomerID:     body.CustomerID,
			CustomerName:   body.CustomerName,
			CreatedBy:      body.UserID,
			CreatedByName:  body.UserName,
			CreatedByEmail: body.UserEmail,
			Title:          body.Title,
			Description:    body.Description,
			ScheduledFor:   scheduledFor,
		}
		if body.Priority != "" {
			params.Priority = enums.NotificationPriority(body.Priority)
		}

		record, err := svc.Create(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

type updateReminderRequest struct {
	ReminderID   string  `json:"reminderId" validate:"required"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ScheduledFor *string `json:"scheduledFor"`
	Priority     *string `json:"priority"`
	Status       *string `json:"status"`
}

// UpdateReminder applies a partial update to a reminder.
func UpdateReminder(svc reminders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminders service unavailable"))
			return
		}

		var body updateReminderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := uuid.Parse(body.ReminderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reminder id"))
			return
		}

		params := reminders.UpdateParams{
			Title:       body.Title,
			Description: body.Description,
		}
		if body.ScheduledFor != nil {
			scheduledFor, err := time.Parse(time.RFC3339, *body.ScheduledFor)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "scheduledFor must be RFC3339"))
				return
			}
			params.ScheduledFor = &scheduledFor
		}
		if body.Priority != nil {
			priority := enums.NotificationPriority(*body.Priority)
			params.Priority = &priority
		}
		if body.Status != nil {
			status, err := enums.ParseReminderStatus(*body.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			params.Status = &status
		}

		record, err := svc.Update(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// DeleteReminder removes a reminder by id.
func DeleteReminder(svc reminders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminders service unavailable"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("reminderId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "reminderId query parameter required"))
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reminder id"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}
