package enums

import "fmt"

// ReminderStatus tracks the lifecycle of a follow-up reminder.
type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "pending"
	ReminderStatusCompleted ReminderStatus = "completed"
	ReminderStatusOverdue   ReminderStatus = "overdue"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

var validReminderStatuses = []ReminderStatus{
	ReminderStatusPending,
	ReminderStatusCompleted,
	ReminderStatusOverdue,
	ReminderStatusCancelled,
}

// IsValid checks whether the given status matches the canonical enum.
func (s ReminderStatus) IsValid() bool {
	for _, candidate := range validReminderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReminderStatus converts raw strings into ReminderStatus.
func ParseReminderStatus(value string) (ReminderStatus, error) {
	for _, candidate := range validReminderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reminder status %q", value)
}
