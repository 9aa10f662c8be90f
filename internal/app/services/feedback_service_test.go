package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

func TestSubmitForTask_Rules(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	app := approvedApplication(t, h, c)
	task := assignTask(t, h, c, app)
	ctx := context.Background()

	_, err := h.feedback.SubmitForTask(ctx, task.ID, c.mentor.ID, &dto.SubmitFeedbackRequest{Rating: 6})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRating)

	_, err = h.feedback.SubmitForTask(ctx, task.ID, c.mentor.ID, &dto.SubmitFeedbackRequest{Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = h.tasks.UpdateProgress(ctx, task.ID, 100, c.student.ID)
	require.NoError(t, err)

	_, err = h.feedback.SubmitForTask(ctx, task.ID, c.outsider.ID, &dto.SubmitFeedbackRequest{Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	unread := h.unread(c.student.ID)
	fb, err := h.feedback.SubmitForTask(ctx, task.ID, c.mentor.ID, &dto.SubmitFeedbackRequest{Rating: 4, Comment: "  Solid work "})
	require.NoError(t, err)
	assert.Equal(t, "Solid work", fb.Comment)
	assert.Equal(t, c.student.ID, fb.StudentID)
	assert.Equal(t, unread+1, h.unread(c.student.ID))

	_, err = h.feedback.SubmitForTask(ctx, task.ID, c.admin.ID, &dto.SubmitFeedbackRequest{Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateFeedback)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestSubmitForApplication(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	ctx := context.Background()

	pending, err := h.applications.Apply(ctx, c.student.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	require.NoError(t, err)
	_, err = h.feedback.SubmitForApplication(ctx, pending.ID, c.mentor.ID, &dto.SubmitFeedbackRequest{Rating: 3})
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotApproved)

	_, err = h.applications.Decide(ctx, pending.ID, "approved", c.admin.ID)
	require.NoError(t, err)

	fb, err := h.feedback.SubmitForApplication(ctx, pending.ID, c.mentor.ID, &dto.SubmitFeedbackRequest{Rating: 3})
	require.NoError(t, err)
	assert.Nil(t, fb.TaskID)

	_, err = h.feedback.SubmitForApplication(ctx, pending.ID, c.mentor.ID, &dto.SubmitFeedbackRequest{Rating: 3})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateFeedback)

	list, err := h.feedback.ListByStudent(ctx, c.student.ID, c.student.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other := h.store.addUser(models.RoleStudent, "Nosy Student")
	_, err = h.feedback.ListByStudent(ctx, c.student.ID, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
