package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-crm/notify-backend/pkg/db/models"
	dbtypes "github.com/brightpath-crm/notify-backend/pkg/db/types"
	"github.com/brightpath-crm/notify-backend/pkg/enums"
	pkgerrors "github.com/brightpath-crm/notify-backend/pkg/errors"
	"github.com/brightpath-crm/notify-backend/pkg/pagination"
)

// Service defines the notification queue and read operations. Create only
// enqueues; delivery belongs to the Processor.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Notification, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

type service struct {
	repo        Repository
	maxAttempts int
}

// ServiceParams wires notification queue dependencies.
type ServiceParams struct {
	Repository  Repository
	MaxAttempts int // per-record retry budget, defaults to models.DefaultMaxAttempts
}

// CreateParams carries everything needed to enqueue one notification.
type CreateParams struct {
	Type     enums.NotificationType
	Priority enums.NotificationPriority
	Title    string
	Message  string
	Metadata map[string]string

	RecipientID    string
	RecipientEmail string
	RecipientName  string
	RecipientPhone *string

	CustomerID   *string
	CustomerName *string
	LeadID       *string
	ReminderID   *string

	Channels     []enums.Channel
	ScheduledFor *time.Time
}

// ListParams configures pagination for a recipient's notification feed.
type ListParams struct {
	RecipientID string
	Limit       int
	Cursor      string
	UnreadOnly  bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notification queue dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.MaxAttempts <= 0 {
		params.MaxAttempts = models.DefaultMaxAttempts
	}
	return &service{repo: params.Repository, maxAttempts: params.MaxAttempts}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Notification, error) {
	if params.RecipientID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if params.RecipientEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient email required")
	}
	if params.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if params.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}
	if !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}

	priority := params.Priority
	if priority == "" {
		priority = enums.NotificationPriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}

	channels := params.Channels
	if len(channels) == 0 {
		channels = []enums.Channel{enums.ChannelBrowser}
	}
	for _, channel := range channels {
		if !channel.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid channel").
				WithDetails(map[string]any{"channel": string(channel)})
		}
	}

	metadata := dbtypes.JSONMap{}
	for k, v := range params.Metadata {
		metadata[k] = v
	}

	now := time.Now().UTC()
	record := &models.Notification{
		ID:             uuid.New(),
		Type:           params.Type,
		Priority:       priority,
		Title:          params.Title,
		Message:        params.Message,
		Metadata:       metadata,
		RecipientID:    params.RecipientID,
		RecipientEmail: params.RecipientEmail,
		RecipientName:  params.RecipientName,
		RecipientPhone: params.RecipientPhone,
		CustomerID:     params.CustomerID,
		CustomerName:   params.CustomerName,
		LeadID:         params.LeadID,
		ReminderID:     params.ReminderID,
		Channels:       dbtypes.ChannelList(channels),
		ScheduledFor:   params.ScheduledFor,
		Status:         enums.NotificationStatusPending,
		Attempts:       0,
		MaxAttempts:    s.maxAttempts,
		Errors:         dbtypes.DeliveryErrors{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return record, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.RecipientID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}

	query := listNotificationsParams{
		RecipientID: params.RecipientID,
		Limit:       params.Limit,
		UnreadOnly:  params.UnreadOnly,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	if recipientID == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	if recipientID == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}

	count, err := s.repo.MarkAllRead(ctx, recipientID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}
