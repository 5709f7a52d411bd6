package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/brightpath-crm/notify-backend/internal/notifications"
	"github.com/brightpath-crm/notify-backend/pkg/db/models"
	"github.com/brightpath-crm/notify-backend/pkg/enums"
	pkgerrors "github.com/brightpath-crm/notify-backend/pkg/errors"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
	"github.com/brightpath-crm/notify-backend/pkg/pagination"
)

// convertBatchSize caps how many due reminders one conversion pass handles.
const convertBatchSize = 100

// NotificationEnqueuer is the slice of the notifications service the
// conversion path needs.
type NotificationEnqueuer interface {
	Create(ctx context.Context, params notifications.CreateParams) (*models.Notification, error)
}

// Service defines follow-up reminder operations, including the conversion of
// due reminders into notification records.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.FollowUpReminder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.FollowUpReminder, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.FollowUpReminder, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetDue(ctx context.Context) ([]models.FollowUpReminder, error)
	ConvertDue(ctx context.Context) (int, error)
	MarkOverdue(ctx context.Context) (int64, error)
}

type service struct {
	repo     Repository
	notifier NotificationEnqueuer
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams wires reminder dependencies.
type ServiceParams struct {
	Repository Repository
	Notifier   NotificationEnqueuer
	Logger     *logger.Logger
	Now        func() time.Time // optional, defaults to time.Now UTC
}

// CreateParams carries a new follow-up reminder.
type CreateParams struct {
	CustomerID     string
	CustomerName   string
	CreatedBy      string
	CreatedByName  string
	CreatedByEmail string
	Title          string
	Description    string
	ScheduledFor   time.Time
	Priority       enums.NotificationPriority
}

// UpdateParams carries a partial reminder update; nil fields are unchanged.
type UpdateParams struct {
	Title        *string
	Description  *string
	ScheduledFor *time.Time
	Priority     *enums.NotificationPriority
	Status       *enums.ReminderStatus
}

// ListParams filters and paginates the reminder list.
type ListParams struct {
	CustomerID string
	CreatedBy  string
	Status     enums.ReminderStatus
	Limit      int
	Cursor     string
}

// ListResult wraps returned reminders and the cursor for the next page.
type ListResult struct {
	Items  []models.FollowUpReminder `json:"items"`
	Cursor string                    `json:"cursor"`
}

// NewService wires reminder dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reminders repository required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification enqueuer required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:     params.Repository,
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      params.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.FollowUpReminder, error) {
	if params.CustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if params.CreatedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}
	if params.CreatedByEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator email required")
	}
	if params.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if params.ScheduledFor.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled time required")
	}

	priority := params.Priority
	if priority == "" {
		priority = enums.NotificationPriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}

	now := s.now()
	reminder := &models.FollowUpReminder{
		ID:             uuid.New(),
		CustomerID:     params.CustomerID,
		CustomerName:   params.CustomerName,
		CreatedBy:      params.CreatedBy,
		CreatedByName:  params.CreatedByName,
		CreatedByEmail: params.CreatedByEmail,
		Title:          params.Title,
		Description:    params.Description,
		ScheduledFor:   params.ScheduledFor.UTC(),
		Priority:       priority,
		Status:         enums.ReminderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, reminder); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reminder")
	}
	return reminder, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.FollowUpReminder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reminder id required")
	}
	reminder, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reminder")
	}
	if reminder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reminder not found")
	}
	return reminder, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid reminder status")
	}

	query := listRemindersParams{
		CustomerID: params.CustomerID,
		CreatedBy:  params.CreatedBy,
		Status:     params.Status,
		Limit:      params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reminders")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.FollowUpReminder, error) {
	reminder, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		if *params.Title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
		}
		reminder.Title = *params.Title
	}
	if params.Description != nil {
		reminder.Description = *params.Description
	}
	if params.ScheduledFor != nil {
		reminder.ScheduledFor = params.ScheduledFor.UTC()
	}
	if params.Priority != nil {
		if !params.Priority.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
		}
		reminder.Priority = *params.Priority
	}
	if params.Status != nil {
		if !params.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid reminder status")
		}
		reminder.Status = *params.Status
	}
	reminder.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, reminder); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reminder")
	}
	return reminder, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "reminder id required")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete reminder")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "reminder not found")
	}
	return nil
}

func (s *service) GetDue(ctx context.Context) ([]models.FollowUpReminder, error) {
	due, err := s.repo.FindDueUnsent(ctx, s.now(), convertBatchSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list due reminders")
	}
	return due, nil
}

// ConvertDue turns due, not-yet-notified reminders into notification records.
// The gate flips before the enqueue, so each reminder converts at most once
// even when two passes race. A reminder whose enqueue fails stays flipped;
// the failure is reported but not retried.
func (s *service) ConvertDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.repo.FindDueUnsent(ctx, now, convertBatchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list due reminders")
	}

	converted := 0
	var errs error
	for i := range due {
		reminder := &due[i]
		flipped, err := s.repo.MarkNotificationSent(ctx, reminder.ID, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reminder %s: flip gate: %w", reminder.ID, err))
			continue
		}
		if !flipped {
			continue
		}

		if _, err := s.notifier.Create(ctx, s.conversionParams(reminder)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reminder %s: enqueue notification: %w", reminder.ID, err))
			s.logg.Error(s.logg.WithField(ctx, "reminder_id", reminder.ID.String()), "reminder converted but notification enqueue failed", err)
			continue
		}
		converted++
	}
	return converted, errs
}

func (s *service) conversionParams(reminder *models.FollowUpReminder) notifications.CreateParams {
	reminderID := reminder.ID.String()
	message := fmt.Sprintf("Your follow-up with %s is due: %s", reminder.CustomerName, reminder.Title)
	if reminder.Description != "" {
		message += "\n\n" + reminder.Description
	}
	return notifications.CreateParams{
		Type:     enums.NotificationTypeFollowUpReminder,
		Priority: reminder.Priority,
		Title:    "Follow-up reminder: " + reminder.CustomerName,
		Message:  message,
		Metadata: map[string]string{
			"customerName":  reminder.CustomerName,
			"reminderTitle": reminder.Title,
		},
		RecipientID:    reminder.CreatedBy,
		RecipientEmail: reminder.CreatedByEmail,
		RecipientName:  reminder.CreatedByName,
		CustomerID:     &reminder.CustomerID,
		CustomerName:   &reminder.CustomerName,
		ReminderID:     &reminderID,
		Channels:       []enums.Channel{enums.ChannelEmail, enums.ChannelBrowser},
	}
}

// MarkOverdue moves past-due, already-notified pending reminders to overdue.
func (s *service) MarkOverdue(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark reminders overdue")
	}
	return count, nil
}
