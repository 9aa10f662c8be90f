package models

import (
	"time"
)

// NotificationCategory tags what triggered a notification.
type NotificationCategory string

const (
	NotifyApplicationSubmitted NotificationCategory = "application_submitted"
	NotifyApplicationDecided   NotificationCategory = "application_decided"
	NotifyApplicationWithdrawn NotificationCategory = "application_withdrawn"
	NotifyTaskAssigned         NotificationCategory = "task_assigned"
	NotifyTaskUpdated          NotificationCategory = "task_updated"
	NotifyFeedbackReceived     NotificationCategory = "feedback_received"
	NotifyDeadlineReminder     NotificationCategory = "deadline_reminder"
)

// Notification is an in-app message for one user.
type Notification struct {
	ID        int64                `json:"id" db:"id"`
	UserID    int64                `json:"userId" db:"user_id"`
	Category  NotificationCategory `json:"category" db:"category" example:"task_assigned"`
	Message   string               `json:"message" db:"message"`
	IsRead    bool                 `json:"isRead" db:"is_read"`
	CreatedAt time.Time            `json:"createdAt" db:"created_at"`
	ReadAt    *time.Time           `json:"readAt,omitempty" db:"read_at"`
}
