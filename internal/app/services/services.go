package services

import (
	"context"
	"time"

	"github.com/yigit/internhub/internal/db"
)

// Services defined in this package:
// - AuthService: registration, login, token authorization, profile
// - InternshipService: posting catalog
// - ApplicationService: applications and their review
// - TaskService: task assignment and progress tracking
// - FeedbackService: mentor feedback on tasks and applications
// - NotificationService: in-app notifications and their delivery
// - UserService: own profile edits and admin user management
// - DashboardService: per-role read models and reports
// - ReminderService: task deadline reminders

// Transactor runs fn inside one database transaction carried by ctx.
// Nested calls join the outer transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// Clock returns the current time; replaced in tests.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
