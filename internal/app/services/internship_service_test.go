package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

func TestInternshipCreate_Rules(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	admin := h.store.addUser(models.RoleAdmin, "Admin")
	mentor := h.store.addUser(models.RoleMentor, "Mentor")
	student := h.store.addUser(models.RoleStudent, "Student")

	req := &dto.CreateInternshipRequest{Title: "Intern", Description: "d", Company: "Acme", Capacity: 3}

	_, err := h.internships.Create(ctx, mentor.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	in, err := h.internships.Create(ctx, admin.ID, req)
	require.NoError(t, err)
	assert.True(t, in.IsOpen)
	assert.Equal(t, admin.ID, in.OwnerID)

	bad := *req
	bad.Capacity = 0
	_, err = h.internships.Create(ctx, admin.ID, &bad)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	bad = *req
	bad.MentorID = &student.ID
	_, err = h.internships.Create(ctx, admin.ID, &bad)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	past := testNow.Add(-time.Minute)
	bad = *req
	bad.Deadline = &past
	_, err = h.internships.Create(ctx, admin.ID, &bad)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestInternshipClose_Idempotent(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 1)
	ctx := context.Background()

	_, err := h.internships.Close(ctx, c.internship.ID, c.mentor.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	first, err := h.internships.Close(ctx, c.internship.ID, c.admin.ID)
	require.NoError(t, err)
	assert.False(t, first.IsOpen)
	require.NotNil(t, first.ClosedAt)

	second, err := h.internships.Close(ctx, c.internship.ID, c.admin.ID)
	require.NoError(t, err)
	assert.False(t, second.IsOpen)
	assert.Equal(t, *first.ClosedAt, *second.ClosedAt)
}

func TestInternshipListOpen(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	admin := h.store.addUser(models.RoleAdmin, "Admin")

	var created []*models.Internship
	for i := 0; i < 5; i++ {
		in, err := h.internships.Create(ctx, admin.ID, &dto.CreateInternshipRequest{Title: "Intern", Description: "d", Company: "Acme", Capacity: 1})
		require.NoError(t, err)
		created = append(created, in)
	}
	_, err := h.internships.Close(ctx, created[2].ID, admin.ID)
	require.NoError(t, err)

	var ids []int64
	for in, err := range h.internships.ListOpen(ctx, nil) {
		require.NoError(t, err)
		ids = append(ids, in.ID)
	}
	assert.Equal(t, []int64{created[4].ID, created[3].ID, created[1].ID, created[0].ID}, ids)

	// resuming after the second posting yields the remainder
	ids = ids[:0]
	for in, err := range h.internships.ListOpen(ctx, repositories.CursorOf(created[3].CreatedAt, created[3].ID)) {
		require.NoError(t, err)
		ids = append(ids, in.ID)
	}
	assert.Equal(t, []int64{created[1].ID, created[0].ID}, ids)

	owned, err := h.internships.ListByOwner(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 5)
}

func TestInternshipDelete_Cascades(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 1)
	app := approvedApplication(t, h, c)
	task := assignTask(t, h, c, app)
	ctx := context.Background()

	assert.ErrorIs(t, h.internships.Delete(ctx, c.internship.ID, c.student.ID), apperrors.ErrUnauthorized)
	require.NoError(t, h.internships.Delete(ctx, c.internship.ID, c.admin.ID))

	_, err := h.internships.Get(ctx, c.internship.ID)
	assert.ErrorIs(t, err, apperrors.ErrInternshipNotFound)
	_, err = h.applications.Get(ctx, app.ID, c.student.ID)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
	_, err = h.tasks.Get(ctx, task.ID, c.student.ID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
}

func TestInternshipUpdate(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	ctx := context.Background()
	title := "Platform Intern"

	_, err := h.internships.Update(ctx, c.internship.ID, c.mentor.ID, &dto.UpdateInternshipRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	updated, err := h.internships.Update(ctx, c.internship.ID, c.admin.ID, &dto.UpdateInternshipRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Platform Intern", updated.Title)
	assert.Equal(t, "Acme", updated.Company)
	require.NotNil(t, updated.MentorID)
	assert.Equal(t, c.mentor.ID, *updated.MentorID)

	stored, err := h.internships.Get(ctx, c.internship.ID)
	require.NoError(t, err)
	assert.Equal(t, "Platform Intern", stored.Title)
	assert.True(t, stored.IsOpen)

	var unassign int64
	updated, err = h.internships.Update(ctx, c.internship.ID, c.admin.ID, &dto.UpdateInternshipRequest{MentorID: &unassign})
	require.NoError(t, err)
	assert.Nil(t, updated.MentorID)

	empty := "  "
	_, err = h.internships.Update(ctx, c.internship.ID, c.admin.ID, &dto.UpdateInternshipRequest{Title: &empty})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	past := testNow.Add(-time.Hour)
	_, err = h.internships.Update(ctx, c.internship.ID, c.admin.ID, &dto.UpdateInternshipRequest{Deadline: &past})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	// rejected edits leave the stored posting untouched
	stored, err = h.internships.Get(ctx, c.internship.ID)
	require.NoError(t, err)
	assert.Equal(t, "Platform Intern", stored.Title)
	assert.Nil(t, stored.Deadline)
}

func TestInternshipUpdate_CapacityBelowApproved(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	ctx := context.Background()

	approvedApplication(t, h, c)
	second := h.store.addUser(models.RoleStudent, "Second Student")
	app, err := h.applications.Apply(ctx, second.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	require.NoError(t, err)
	_, err = h.applications.Decide(ctx, app.ID, "approved", c.admin.ID)
	require.NoError(t, err)

	_, err = h.internships.Update(ctx, c.internship.ID, c.admin.ID, &dto.UpdateInternshipRequest{Capacity: intPtr(1)})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	updated, err := h.internships.Update(ctx, c.internship.ID, c.admin.ID, &dto.UpdateInternshipRequest{Capacity: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Capacity)
}
