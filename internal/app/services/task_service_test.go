package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

func intPtr(v int) *int { return &v }

// approvedApplication applies the cast's student and approves the application
func approvedApplication(t *testing.T, h *harness, c cast) *models.Application {
	t.Helper()
	ctx := context.Background()
	app, err := h.applications.Apply(ctx, c.student.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	require.NoError(t, err)
	app, err = h.applications.Decide(ctx, app.ID, "approved", c.admin.ID)
	require.NoError(t, err)
	return app
}

func assignTask(t *testing.T, h *harness, c cast, app *models.Application) *models.Task {
	t.Helper()
	task, err := h.tasks.Assign(context.Background(), app.ID, &dto.AssignTaskRequest{
		Title:       "Write report",
		Description: "Summarize the sprint",
	}, c.mentor.ID)
	require.NoError(t, err)
	return task
}

func TestAssign_RequiresApprovedApplication(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	ctx := context.Background()

	pending, err := h.applications.Apply(ctx, c.student.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	require.NoError(t, err)

	_, err = h.tasks.Assign(ctx, pending.ID, &dto.AssignTaskRequest{Title: "x", Description: "y"}, c.admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotApproved)
	assert.Equal(t, apperrors.KindState, apperrors.KindOf(err))
}

func TestAssign_CreatesPendingTaskAndNotifiesStudent(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	app := approvedApplication(t, h, c)
	before := h.unread(c.student.ID)

	task := assignTask(t, h, c, app)
	assert.Equal(t, models.TaskPending, task.Status)
	assert.Equal(t, 0, task.Progress)
	assert.Equal(t, c.student.ID, task.StudentID)
	assert.Equal(t, before+1, h.unread(c.student.ID))

	_, err := h.tasks.Assign(context.Background(), app.ID, &dto.AssignTaskRequest{Title: "x", Description: "y"}, c.outsider.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestUpdateProgress_StatusFollowsPercentage(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	task := assignTask(t, h, c, approvedApplication(t, h, c))
	ctx := context.Background()

	got, err := h.tasks.UpdateProgress(ctx, task.ID, 0, c.student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, got.Status)

	got, err = h.tasks.UpdateProgress(ctx, task.ID, 40, c.student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, got.Status)
	assert.Equal(t, 40, got.Progress)

	managerUnread := h.unread(c.mentor.ID)
	got, err = h.tasks.UpdateProgress(ctx, task.ID, 100, c.student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, managerUnread+1, h.unread(c.mentor.ID))

	_, err = h.tasks.UpdateProgress(ctx, task.ID, 60, c.student.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	stored, err := h.tasks.Get(ctx, task.ID, c.student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, stored.Status)
	assert.Equal(t, 100, stored.Progress)
}

func TestUpdateProgress_OutOfRangeAndActors(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	task := assignTask(t, h, c, approvedApplication(t, h, c))
	ctx := context.Background()

	for _, p := range []int{-1, 101} {
		_, err := h.tasks.UpdateProgress(ctx, task.ID, p, c.student.ID)
		assert.ErrorIs(t, err, apperrors.ErrOutOfRange)
	}

	_, err := h.tasks.UpdateProgress(ctx, task.ID, 10, c.outsider.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	got, err := h.tasks.UpdateProgress(ctx, task.ID, 20, c.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Progress)
}

func TestSetStatus_ReopenNeedsExplicitProgress(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	task := assignTask(t, h, c, approvedApplication(t, h, c))
	ctx := context.Background()

	got, err := h.tasks.SetStatus(ctx, task.ID, &dto.SetTaskStatusRequest{Status: "completed"}, c.mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)

	_, err = h.tasks.SetStatus(ctx, task.ID, &dto.SetTaskStatusRequest{Status: "in_progress"}, c.mentor.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	unread := h.unread(c.student.ID)
	got, err = h.tasks.SetStatus(ctx, task.ID, &dto.SetTaskStatusRequest{Status: "in_progress", Progress: intPtr(80)}, c.mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, got.Status)
	assert.Equal(t, 80, got.Progress)
	assert.Equal(t, unread+1, h.unread(c.student.ID))

	// in_progress -> pending is not a transition
	_, err = h.tasks.SetStatus(ctx, task.ID, &dto.SetTaskStatusRequest{Status: "pending", Progress: intPtr(0)}, c.mentor.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	// students cannot override status
	_, err = h.tasks.SetStatus(ctx, task.ID, &dto.SetTaskStatusRequest{Status: "completed"}, c.student.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = h.tasks.SetStatus(ctx, task.ID, &dto.SetTaskStatusRequest{Status: "done"}, c.mentor.ID)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSetStatus_SameStatusStoresExplicitProgress(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	task := assignTask(t, h, c, approvedApplication(t, h, c))
	ctx := context.Background()

	_, err := h.tasks.UpdateProgress(ctx, task.ID, 20, c.student.ID)
	require.NoError(t, err)

	got, err := h.tasks.SetStatus(ctx, task.ID, &dto.SetTaskStatusRequest{Status: "in_progress", Progress: intPtr(80)}, c.mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, got.Progress)

	stored, err := h.tasks.Get(ctx, task.ID, c.student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, stored.Status)
	assert.Equal(t, 80, stored.Progress)

	_, err = h.tasks.SetStatus(ctx, task.ID, &dto.SetTaskStatusRequest{Status: "in_progress", Progress: intPtr(100)}, c.mentor.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestTasks_Listing(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	app := approvedApplication(t, h, c)
	assignTask(t, h, c, app)
	assignTask(t, h, c, app)
	ctx := context.Background()

	items, page, err := h.tasks.ListByStudent(ctx, c.student.ID, 1, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.EqualValues(t, 2, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)

	byApp, err := h.tasks.ListByApplication(ctx, app.ID, c.mentor.ID)
	require.NoError(t, err)
	assert.Len(t, byApp, 2)

	_, err = h.tasks.ListByApplication(ctx, app.ID, c.outsider.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestReminders_OncePerDay(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	app := approvedApplication(t, h, c)
	ctx := context.Background()

	due := testNow.Add(48 * time.Hour)
	tooLate := testNow.Add(10 * 24 * time.Hour)
	_, err := h.tasks.Assign(ctx, app.ID, &dto.AssignTaskRequest{Title: "Soon", Description: "d", DueDate: &due}, c.mentor.ID)
	require.NoError(t, err)
	_, err = h.tasks.Assign(ctx, app.ID, &dto.AssignTaskRequest{Title: "Later", Description: "d", DueDate: &tooLate}, c.mentor.ID)
	require.NoError(t, err)

	sent, err := h.reminders.SendDeadlineReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = h.reminders.SendDeadlineReminders(ctx, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, sent)

	sent, err = h.reminders.SendDeadlineReminders(ctx, testNow.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestHumanizeDays(t *testing.T) {
	assert.Equal(t, "less than a day", humanizeDays(3*time.Hour))
	assert.Equal(t, "1 day", humanizeDays(26*time.Hour))
	assert.Equal(t, "2 days", humanizeDays(47*time.Hour))
}
