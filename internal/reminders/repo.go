package reminders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath-crm/notify-backend/pkg/db/models"
	"github.com/brightpath-crm/notify-backend/pkg/enums"
	"github.com/brightpath-crm/notify-backend/pkg/pagination"
)

// Repository exposes persistence helpers for follow-up reminders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reminder *models.FollowUpReminder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FollowUpReminder, error)
	List(ctx context.Context, params listRemindersParams) ([]models.FollowUpReminder, *pagination.Cursor, error)
	Update(ctx context.Context, reminder *models.FollowUpReminder) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindDueUnsent(ctx context.Context, now time.Time, limit int) ([]models.FollowUpReminder, error)
	MarkNotificationSent(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a reminders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listRemindersParams struct {
	CustomerID string
	CreatedBy  string
	Status     enums.ReminderStatus
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, reminder *models.FollowUpReminder) error {
	return r.db.WithContext(ctx).Create(reminder).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.FollowUpReminder, error) {
	var reminder models.FollowUpReminder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reminder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reminder, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listRemindersParams) ([]models.FollowUpReminder, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.FollowUpReminder{})
	if params.CustomerID != "" {
		query = query.Where("customer_id = ?", params.CustomerID)
	}
	if params.CreatedBy != "" {
		query = query.Where("created_by = ?", params.CreatedBy)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var reminders []models.FollowUpReminder
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&reminders).Error; err != nil {
		return nil, nil, err
	}

	page, next := pagination.Page(reminders, params.Limit)
	return page, next, nil
}

func (r *repositoryImpl) Update(ctx context.Context, reminder *models.FollowUpReminder) error {
	return r.db.WithContext(ctx).Save(reminder).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FollowUpReminder{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) FindDueUnsent(ctx context.Context, now time.Time, limit int) ([]models.FollowUpReminder, error) {
	var reminders []models.FollowUpReminder
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ReminderStatusPending).
		Where("notification_sent = ?", false).
		Where("scheduled_for <= ?", now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// MarkNotificationSent flips the one-shot conversion gate. The conditional
// WHERE makes the flip exclusive: only the caller that observes a true return
// may enqueue the notification.
func (r *repositoryImpl) MarkNotificationSent(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.FollowUpReminder{}).
		Where("id = ? AND notification_sent = ?", id, false).
		UpdateColumns(map[string]any{
			"notification_sent": true,
			"updated_at":        now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.FollowUpReminder{}).
		Where("status = ? AND notification_sent = ? AND scheduled_for < ?", enums.ReminderStatusPending, true, now).
		UpdateColumns(map[string]any{
			"status":     enums.ReminderStatusOverdue,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
