package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/brightpath-crm/notify-backend/pkg/db/types"
	"github.com/brightpath-crm/notify-backend/pkg/enums"
)

// DefaultMaxAttempts is the shared retry budget for a notification record.
const DefaultMaxAttempts = 3

// Notification is the central delivery record. One row tracks the full
// multi-channel delivery plan, per-channel completion and the retry budget.
type Notification struct {
	ID       uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type     enums.NotificationType     `gorm:"type:text;not null" json:"type"`
	Priority enums.NotificationPriority `gorm:"type:text;not null;default:medium" json:"priority"`

	Title    string          `gorm:"type:text;not null" json:"title"`
	Message  string          `gorm:"type:text;not null" json:"message"`
	Metadata dbtypes.JSONMap `gorm:"type:jsonb;default:'{}'" json:"metadata"`

	RecipientID    string  `gorm:"type:text;not null;index" json:"recipientId"`
	RecipientEmail string  `gorm:"type:text;not null" json:"recipientEmail"`
	RecipientName  string  `gorm:"type:text" json:"recipientName"`
	RecipientPhone *string `gorm:"type:text" json:"recipientPhone,omitempty"`

	CustomerID   *string `gorm:"type:text" json:"customerId,omitempty"`
	CustomerName *string `gorm:"type:text" json:"customerName,omitempty"`
	LeadID       *string `gorm:"type:text" json:"leadId,omitempty"`
	ReminderID   *string `gorm:"type:text" json:"reminderId,omitempty"`

	Channels     dbtypes.ChannelList      `gorm:"type:jsonb;not null" json:"channels"`
	ScheduledFor *time.Time               `gorm:"type:timestamptz" json:"scheduledFor,omitempty"`
	Status       enums.NotificationStatus `gorm:"type:text;not null;default:pending;index" json:"status"`

	Attempts    int `gorm:"not null;default:0" json:"attempts"`
	MaxAttempts int `gorm:"not null;default:3" json:"maxAttempts"`

	EmailSent      bool       `gorm:"not null;default:false" json:"emailSent"`
	EmailSentAt    *time.Time `gorm:"type:timestamptz" json:"emailSentAt,omitempty"`
	WhatsAppSent   bool       `gorm:"column:whatsapp_sent;not null;default:false" json:"whatsappSent"`
	WhatsAppSentAt *time.Time `gorm:"column:whatsapp_sent_at;type:timestamptz" json:"whatsappSentAt,omitempty"`
	BrowserSent    bool       `gorm:"not null;default:false" json:"browserSent"`
	BrowserSentAt  *time.Time `gorm:"type:timestamptz" json:"browserSentAt,omitempty"`
	SMSSent        bool       `gorm:"column:sms_sent;not null;default:false" json:"smsSent"`
	SMSSentAt      *time.Time `gorm:"column:sms_sent_at;type:timestamptz" json:"smsSentAt,omitempty"`

	SentAt *time.Time `gorm:"type:timestamptz" json:"sentAt,omitempty"`
	ReadAt *time.Time `gorm:"type:timestamptz" json:"readAt,omitempty"`

	Errors dbtypes.DeliveryErrors `gorm:"type:jsonb;default:'[]'" json:"errors"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamptz;default:now()" json:"updatedAt"`
}

// CursorKey exposes the pagination components for cursor-based listing.
func (n Notification) CursorKey() (time.Time, uuid.UUID) {
	return n.CreatedAt, n.ID
}

// ChannelSent reports whether the delivery flag for the given channel is set.
func (n *Notification) ChannelSent(channel enums.Channel) bool {
	switch channel {
	case enums.ChannelEmail:
		return n.EmailSent
	case enums.ChannelWhatsApp:
		return n.WhatsAppSent
	case enums.ChannelBrowser:
		return n.BrowserSent
	case enums.ChannelSMS:
		return n.SMSSent
	}
	return false
}

// SetChannelSent flips the in-memory delivery flag for the given channel.
// Persistence goes through the repository; this keeps the loaded record in
// step with the row while a processing pass is still iterating channels.
func (n *Notification) SetChannelSent(channel enums.Channel, at time.Time) {
	switch channel {
	case enums.ChannelEmail:
		n.EmailSent = true
		n.EmailSentAt = &at
	case enums.ChannelWhatsApp:
		n.WhatsAppSent = true
		n.WhatsAppSentAt = &at
	case enums.ChannelBrowser:
		n.BrowserSent = true
		n.BrowserSentAt = &at
	case enums.ChannelSMS:
		n.SMSSent = true
		n.SMSSentAt = &at
	}
}

// AllChannelsSent reports whether every requested channel has been delivered.
func (n *Notification) AllChannelsSent() bool {
	if len(n.Channels) == 0 {
		return false
	}
	for _, channel := range n.Channels {
		if !n.ChannelSent(channel) {
			return false
		}
	}
	return true
}

// AttemptsExhausted reports whether the shared retry budget is spent.
func (n *Notification) AttemptsExhausted() bool {
	return n.Attempts >= n.MaxAttempts
}
