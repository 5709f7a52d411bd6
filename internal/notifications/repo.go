package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath-crm/notify-backend/pkg/db/models"
	dbtypes "github.com/brightpath-crm/notify-backend/pkg/db/types"
	"github.com/brightpath-crm/notify-backend/pkg/enums"
	"github.com/brightpath-crm/notify-backend/pkg/pagination"
)

// Repository exposes persistence helpers for notification records. All state
// transitions are single-statement column updates so concurrent passes never
// lose attempt counts or error entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	FindPending(ctx context.Context, now time.Time, limit int) ([]models.Notification, error)
	List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	MarkAllRead(ctx context.Context, recipientID string, now time.Time) (int64, error)
	MarkChannelSent(ctx context.Context, notificationID uuid.UUID, channel enums.Channel, now time.Time) error
	RecordFailure(ctx context.Context, notificationID uuid.UUID, message string, now time.Time) error
	MarkSent(ctx context.Context, notificationID uuid.UUID, now time.Time) error
	MarkFailed(ctx context.Context, notificationID uuid.UUID, now time.Time) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time, statuses []enums.NotificationStatus) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNotificationsParams struct {
	RecipientID string
	Limit       int
	Cursor      *pagination.Cursor
	UnreadOnly  bool
}

type notificationMarkResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) FindPending(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.NotificationStatusPending).
		Where("attempts < max_attempts").
		Where("scheduled_for IS NULL OR scheduled_for <= ?", now).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", params.RecipientID)
	if params.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&notifications).Error; err != nil {
		return nil, nil, err
	}

	page, next := pagination.Page(notifications, params.Limit)
	return page, next, nil
}

func (r *repositoryImpl) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repositoryImpl) MarkRead(ctx context.Context, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", notificationID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return notificationMarkResult{}, result.Error
	}

	mark := notificationMarkResult{Updated: result.RowsAffected > 0}
	if result.RowsAffected > 0 {
		mark.Found = true
		return mark, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Count(&count).Error; err != nil {
		return notificationMarkResult{}, err
	}
	mark.Found = count > 0
	return mark, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, recipientID string, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) MarkChannelSent(ctx context.Context, notificationID uuid.UUID, channel enums.Channel, now time.Time) error {
	flagColumn, atColumn, ok := channelColumns(channel)
	if !ok {
		return fmt.Errorf("no sent column for channel %q", channel)
	}
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		UpdateColumns(map[string]any{
			flagColumn:   true,
			atColumn:     now,
			"updated_at": now,
		}).Error
}

// RecordFailure bumps the attempt counter and appends one delivery error in a
// single UPDATE. The jsonb concatenation keeps the append atomic even when
// another pass touches the same row.
func (r *repositoryImpl) RecordFailure(ctx context.Context, notificationID uuid.UUID, message string, now time.Time) error {
	entry, err := json.Marshal(dbtypes.DeliveryErrors{{Message: message, Timestamp: now}})
	if err != nil {
		return fmt.Errorf("marshal delivery error: %w", err)
	}
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		UpdateColumns(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"errors":     gorm.Expr("COALESCE(errors, '[]'::jsonb) || ?::jsonb", string(entry)),
			"updated_at": now,
		}).Error
}

func (r *repositoryImpl) MarkSent(ctx context.Context, notificationID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		UpdateColumns(map[string]any{
			"status":     enums.NotificationStatusSent,
			"sent_at":    now,
			"updated_at": now,
		}).Error
}

func (r *repositoryImpl) MarkFailed(ctx context.Context, notificationID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		UpdateColumns(map[string]any{
			"status":     enums.NotificationStatusFailed,
			"updated_at": now,
		}).Error
}

func (r *repositoryImpl) PurgeOlderThan(ctx context.Context, cutoff time.Time, statuses []enums.NotificationStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", statuses, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func channelColumns(channel enums.Channel) (string, string, bool) {
	switch channel {
	case enums.ChannelEmail:
		return "email_sent", "email_sent_at", true
	case enums.ChannelWhatsApp:
		return "whatsapp_sent", "whatsapp_sent_at", true
	case enums.ChannelBrowser:
		return "browser_sent", "browser_sent_at", true
	case enums.ChannelSMS:
		return "sms_sent", "sms_sent_at", true
	}
	return "", "", false
}
