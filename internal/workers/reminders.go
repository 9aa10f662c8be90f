// Package workers runs scheduled background jobs.
package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultRunTimeout bounds a single reminder sweep
const DefaultRunTimeout = 4 * time.Minute

// ReminderSender sends deadline reminders for tasks due relative to now
type ReminderSender interface {
	SendDeadlineReminders(ctx context.Context, now time.Time) (int, error)
}

// ReminderRunner triggers ReminderSender on a cron schedule
type ReminderRunner struct {
	cron     *cron.Cron
	sender   ReminderSender
	schedule string
	timeout  time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewReminderRunner registers the reminder job. schedule uses the standard
// five field cron syntax or descriptors such as "@hourly".
func NewReminderRunner(schedule string, sender ReminderSender, logger zerolog.Logger) (*ReminderRunner, error) {
	lgr := logger.With().Str("worker", "reminders").Logger()
	cl := cronLogger{lgr}
	r := &ReminderRunner{
		cron:     cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl)),
		sender:   sender,
		schedule: schedule,
		timeout:  DefaultRunTimeout,
		now:      time.Now,
		logger:   lgr,
	}
	if _, err := r.cron.AddFunc(schedule, r.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	return r, nil
}

// RunOnce performs a single reminder sweep
func (r *ReminderRunner) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	started := r.now()
	sent, err := r.sender.SendDeadlineReminders(ctx, started)
	if err != nil {
		r.logger.Error().Err(err).Int("sent", sent).Msg("Deadline reminder sweep failed")
		return
	}
	r.logger.Info().Int("sent", sent).Dur("took", time.Since(started)).Msg("Deadline reminder sweep finished")
}

// Start begins the schedule in its own goroutine
func (r *ReminderRunner) Start() {
	r.cron.Start()
	r.logger.Info().Str("schedule", r.schedule).Msg("Reminder worker started")
}

// Stop halts the schedule and waits for a running sweep or ctx expiry
func (r *ReminderRunner) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		r.logger.Info().Msg("Reminder worker stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
