package cron

import (
	"context"
	"fmt"

	"github.com/brightpath-crm/notify-backend/pkg/logger"
)

// ReminderOverdueJobParams configure the overdue sweep job.
type ReminderOverdueJobParams struct {
	Logger    *logger.Logger
	Reminders reminderOverdueService
}

type reminderOverdueService interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

// NewReminderOverdueJob builds the job that moves past-due, already-notified
// reminders into the overdue state.
func NewReminderOverdueJob(params ReminderOverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reminders == nil {
		return nil, fmt.Errorf("reminders service required")
	}
	return &reminderOverdueJob{
		logg:      params.Logger,
		reminders: params.Reminders,
	}, nil
}

type reminderOverdueJob struct {
	logg      *logger.Logger
	reminders reminderOverdueService
}

func (j *reminderOverdueJob) Name() string { return "reminder-overdue" }

func (j *reminderOverdueJob) Run(ctx context.Context) error {
	moved, err := j.reminders.MarkOverdue(ctx)
	if err != nil {
		return fmt.Errorf("reminder overdue sweep: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "rows_updated", moved)
	j.logg.Info(logCtx, "reminder overdue sweep complete")
	return nil
}
