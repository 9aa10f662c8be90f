package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/repositories"
)

// ReminderService sends deadline reminders for unfinished tasks
type ReminderService interface {
	SendDeadlineReminders(ctx context.Context, now time.Time) (int, error)
}

// ReminderWindow selects tasks due between MinDays and MaxDays from now
type ReminderWindow struct {
	MinDays int
	MaxDays int
}

type reminderServiceImpl struct {
	tx            Transactor
	taskRepo      repositories.ITaskRepository
	notifications NotificationService
	window        ReminderWindow
	logger        zerolog.Logger
}

// NewReminderService creates a new ReminderService
func NewReminderService(
	tx Transactor,
	taskRepo repositories.ITaskRepository,
	notifications NotificationService,
	window ReminderWindow,
	logger zerolog.Logger,
) ReminderService {
	if window.MinDays < 0 {
		window.MinDays = 0
	}
	if window.MaxDays < window.MinDays {
		window.MaxDays = window.MinDays
	}
	return &reminderServiceImpl{
		tx:            tx,
		taskRepo:      taskRepo,
		notifications: notifications,
		window:        window,
		logger:        logger.With().Str("service", "reminder").Logger(),
	}
}

// SendDeadlineReminders notifies students of tasks due inside the window.
// A task is reminded at most once per calendar day (UTC). It returns how many
// reminders went out; failures on single tasks are collected and do not stop the run.
func (s *reminderServiceImpl) SendDeadlineReminders(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := now.AddDate(0, 0, s.window.MinDays)
	to := now.AddDate(0, 0, s.window.MaxDays)

	tasks, err := s.taskRepo.ListDueForReminder(ctx, from, to, day)
	if err != nil {
		return 0, fmt.Errorf("failed to list tasks due for reminder: %w", err)
	}

	sent := 0
	var errs []error
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !task.IsDueWithin(from, to) {
			continue
		}

		box := newOutbox(s.notifications)
		err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.taskRepo.MarkReminderSent(ctx, task.ID, day); err != nil {
				return err
			}
			left := task.DueDate.Sub(now).Round(time.Hour)
			return box.add(ctx, task.StudentID, models.NotifyDeadlineReminder,
				"Task %q is due in %s (%s)", task.Title, humanizeDays(left), task.DueDate.Format("2 Jan 2006 15:04"))
		})
		if err != nil {
			s.logger.Error().Err(err).Int64("taskID", task.ID).Msg("Failed to send deadline reminder")
			errs = append(errs, err)
			continue
		}
		box.flush()
		sent++
	}

	s.logger.Info().Int("sent", sent).Int("candidates", len(tasks)).Msg("Deadline reminders processed")
	return sent, errors.Join(errs...)
}

func humanizeDays(d time.Duration) string {
	days := int(d.Hours()+12) / 24
	switch {
	case days <= 0:
		return "less than a day"
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}
