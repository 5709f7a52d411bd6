package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-crm/notify-backend/pkg/enums"
)

// FollowUpReminder is a scheduled customer follow-up. Due reminders are
// converted into notification records exactly once, gated by
// NotificationSent.
type FollowUpReminder struct {
	ID             uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID     string                     `gorm:"type:text;not null;index" json:"customerId"`
	CustomerName   string                     `gorm:"type:text;not null" json:"customerName"`
	CreatedBy      string                     `gorm:"type:text;not null" json:"createdBy"`
	CreatedByName  string                     `gorm:"type:text" json:"createdByName"`
	CreatedByEmail string                     `gorm:"type:text;not null" json:"createdByEmail"`
	Title          string                     `gorm:"type:text;not null" json:"title"`
	Description    string                     `gorm:"type:text" json:"description"`
	ScheduledFor   time.Time                  `gorm:"type:timestamptz;not null;index" json:"scheduledFor"`
	Priority       enums.NotificationPriority `gorm:"type:text;not null;default:medium" json:"priority"`
	Status         enums.ReminderStatus       `gorm:"type:text;not null;default:pending;index" json:"status"`

	NotificationSent bool `gorm:"not null;default:false" json:"notificationSent"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamptz;default:now()" json:"updatedAt"`
}

// CursorKey exposes the pagination components for cursor-based listing.
func (r FollowUpReminder) CursorKey() (time.Time, uuid.UUID) {
	return r.CreatedAt, r.ID
}

// Due reports whether the reminder should trigger a notification now.
func (r *FollowUpReminder) Due(now time.Time) bool {
	return r.Status == enums.ReminderStatusPending && !r.NotificationSent && !r.ScheduledFor.After(now)
}
