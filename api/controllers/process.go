package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/brightpath-crm/notify-backend/api/responses"
	"github.com/brightpath-crm/notify-backend/api/validators"
	"github.com/brightpath-crm/notify-backend/internal/notifications"
	pkgerrors "github.com/brightpath-crm/notify-backend/pkg/errors"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
)

// NotificationProcessor is the processor surface the dispatch endpoints use.
type NotificationProcessor interface {
	ProcessOnce(ctx context.Context) (notifications.ProcessResult, error)
	Start(interval time.Duration)
	Stop()
	Running() bool
}

// ProcessNotifications runs one delivery pass synchronously.
func ProcessNotifications(proc NotificationProcessor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if proc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification processor unavailable"))
			return
		}

		result, err := proc.ProcessOnce(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"success":   true,
			"skipped":   result.Skipped,
			"processed": result.Processed,
			"sent":      result.Sent,
			"failed":    result.Failed,
		})
	}
}

type startProcessorRequest struct {
	IntervalMS int `json:"intervalMs" validate:"omitempty,min=1000"`
}

// StartProcessor launches (or retimes) the background polling loop.
func StartProcessor(proc NotificationProcessor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if proc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification processor unavailable"))
			return
		}

		var body startProcessorRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		interval := notifications.DefaultInterval
		if body.IntervalMS > 0 {
			interval = time.Duration(body.IntervalMS) * time.Millisecond
		}

		proc.Start(interval)
		responses.WriteSuccess(w, map[string]any{
			"success": true,
			"message": fmt.Sprintf("notification processor running every %s", interval),
		})
	}
}

// StopProcessor halts the background polling loop.
func StopProcessor(proc NotificationProcessor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if proc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification processor unavailable"))
			return
		}

		proc.Stop()
		responses.WriteSuccess(w, map[string]any{"success": true})
	}
}
