package enums

import "fmt"

// NotificationType classifies what triggered a notification.
type NotificationType string

const (
	NotificationTypeLeadAssigned     NotificationType = "lead_assigned"
	NotificationTypeFollowUpReminder NotificationType = "follow_up_reminder"
	NotificationTypeWelcomeMessage   NotificationType = "welcome_message"
	NotificationTypeCustomerUpdated  NotificationType = "customer_updated"
	NotificationTypeSystemAlert      NotificationType = "system_alert"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeLeadAssigned,
	NotificationTypeFollowUpReminder,
	NotificationTypeWelcomeMessage,
	NotificationTypeCustomerUpdated,
	NotificationTypeSystemAlert,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// NotificationPriority orders notifications by urgency.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

// IsValid checks whether the given priority matches the canonical enum.
func (p NotificationPriority) IsValid() bool {
	switch p {
	case NotificationPriorityLow, NotificationPriorityMedium, NotificationPriorityHigh, NotificationPriorityUrgent:
		return true
	}
	return false
}

// NotificationStatus is the record-level lifecycle state.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// IsTerminal reports whether the automatic scheduler will never touch the
// record again.
func (s NotificationStatus) IsTerminal() bool {
	return s == NotificationStatusSent || s == NotificationStatusFailed
}
