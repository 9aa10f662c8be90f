package services

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

type cast struct {
	admin      *models.User
	mentor     *models.User
	student    *models.User
	outsider   *models.User
	internship *models.Internship
}

// newCast registers an admin-owned posting with an assigned mentor
func newCast(t *testing.T, h *harness, capacity int) cast {
	t.Helper()
	c := cast{
		admin:    h.store.addUser(models.RoleAdmin, "Grace Admin"),
		mentor:   h.store.addUser(models.RoleMentor, "Linus Mentor"),
		student:  h.store.addUser(models.RoleStudent, "Ada Student"),
		outsider: h.store.addUser(models.RoleMentor, "Other Mentor"),
	}
	in, err := h.internships.Create(context.Background(), c.admin.ID, &dto.CreateInternshipRequest{
		Title:       "Backend Intern",
		Description: "Go services",
		Company:     "Acme",
		Capacity:    capacity,
		MentorID:    &c.mentor.ID,
	})
	require.NoError(t, err)
	c.internship = in
	return c
}

func TestApply_CreatesPendingAndNotifiesManagers(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)

	app, err := h.applications.Apply(context.Background(), c.student.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, c.student.ID, app.StudentID)

	assert.EqualValues(t, 1, h.unread(c.admin.ID))
	assert.EqualValues(t, 1, h.unread(c.mentor.ID))
	assert.Equal(t, 1, h.pusher.count(c.admin.ID))
	assert.Len(t, h.mailer.sent(), 2)
}

func TestApply_AtMostOneActiveApplication(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	ctx := context.Background()
	req := &dto.ApplyRequest{InternshipID: c.internship.ID}

	first, err := h.applications.Apply(ctx, c.student.ID, req)
	require.NoError(t, err)

	_, err = h.applications.Apply(ctx, c.student.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApplied)

	_, err = h.applications.Decide(ctx, first.ID, "approved", c.admin.ID)
	require.NoError(t, err)
	_, err = h.applications.Apply(ctx, c.student.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApplied)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestApply_AfterRejectionIsAllowed(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	ctx := context.Background()
	req := &dto.ApplyRequest{InternshipID: c.internship.ID}

	first, err := h.applications.Apply(ctx, c.student.ID, req)
	require.NoError(t, err)
	_, err = h.applications.Decide(ctx, first.ID, "rejected", c.mentor.ID)
	require.NoError(t, err)

	second, err := h.applications.Apply(ctx, c.student.ID, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestApply_ClosedOrExpiredPosting(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	ctx := context.Background()

	_, err := h.internships.Close(ctx, c.internship.ID, c.admin.ID)
	require.NoError(t, err)

	_, err = h.applications.Apply(ctx, c.student.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	assert.ErrorIs(t, err, apperrors.ErrInternshipClosed)
	assert.EqualValues(t, 0, h.unread(c.admin.ID))

	// deadline in the past
	past := testNow.Add(-time.Hour)
	h.store.mu.Lock()
	in := h.store.internships[c.internship.ID]
	in.IsOpen, in.Deadline = true, &past
	h.store.internships[c.internship.ID] = in
	h.store.mu.Unlock()

	_, err = h.applications.Apply(ctx, c.student.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	assert.ErrorIs(t, err, apperrors.ErrInternshipClosed)
}

func TestApply_OnlyStudents(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)

	_, err := h.applications.Apply(context.Background(), c.mentor.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestDecide_TerminalStatusIsFinal(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	ctx := context.Background()

	app, err := h.applications.Apply(ctx, c.student.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	require.NoError(t, err)

	decided, err := h.applications.Decide(ctx, app.ID, "rejected", c.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, c.admin.ID, *decided.DecidedBy)

	_, err = h.applications.Decide(ctx, app.ID, "approved", c.admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	stored, err := h.applications.Get(ctx, app.ID, c.student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, stored.Status)

	// student got exactly the one decision notification
	assert.EqualValues(t, 1, h.unread(c.student.ID))
}

func TestDecide_Validation(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	ctx := context.Background()

	app, err := h.applications.Apply(ctx, c.student.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	require.NoError(t, err)

	_, err = h.applications.Decide(ctx, app.ID, "maybe", c.admin.ID)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = h.applications.Decide(ctx, app.ID, "approved", c.outsider.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = h.applications.Decide(ctx, app.ID, "approved", c.student.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = h.applications.Decide(ctx, 9999, "approved", c.admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}

func TestDecide_CapacityReached(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 1)
	ctx := context.Background()
	other := h.store.addUser(models.RoleStudent, "Second Student")

	a1, err := h.applications.Apply(ctx, c.student.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	require.NoError(t, err)
	a2, err := h.applications.Apply(ctx, other.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	require.NoError(t, err)

	_, err = h.applications.Decide(ctx, a1.ID, "approved", c.admin.ID)
	require.NoError(t, err)

	_, err = h.applications.Decide(ctx, a2.ID, "approved", c.admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrCapacityReached)

	stored, err := h.applications.Get(ctx, a2.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, stored.Status)

	// rejection is still possible when full
	_, err = h.applications.Decide(ctx, a2.ID, "rejected", c.admin.ID)
	assert.NoError(t, err)
}

func TestApplications_Listing(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	ctx := context.Background()

	_, err := h.applications.Apply(ctx, c.student.ID, &dto.ApplyRequest{InternshipID: c.internship.ID})
	require.NoError(t, err)

	items, page, err := h.applications.ListByStudent(ctx, c.student.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.EqualValues(t, 1, page.TotalItems)

	items, _, err = h.applications.ListByInternship(ctx, c.internship.ID, c.mentor.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, _, err = h.applications.ListByInternship(ctx, c.internship.ID, c.outsider.ID, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = h.applications.Get(ctx, items[0].ID, c.outsider.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestUploadResume(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 1)
	ctx := context.Background()

	res, err := h.applications.UploadResume(ctx, c.student.ID, &multipart.FileHeader{Filename: "cv.pdf", Size: 1024})
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", res.FileName)
	assert.Contains(t, res.URL, "resumes/")

	_, err = h.applications.UploadResume(ctx, c.student.ID, &multipart.FileHeader{Filename: "cv.exe", Size: 10})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = h.applications.UploadResume(ctx, c.student.ID, &multipart.FileHeader{Filename: "cv.pdf", Size: MaxResumeSize + 1})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	assert.Len(t, h.storage.saved, 1)
}

func TestWithdraw(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	ctx := context.Background()
	req := &dto.ApplyRequest{InternshipID: c.internship.ID}

	first, err := h.applications.Apply(ctx, c.student.ID, req)
	require.NoError(t, err)

	other := h.store.addUser(models.RoleStudent, "Other Student")
	_, err = h.applications.Withdraw(ctx, first.ID, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = h.applications.Withdraw(ctx, first.ID, c.mentor.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	adminUnread, mentorUnread := h.unread(c.admin.ID), h.unread(c.mentor.ID)
	withdrawn, err := h.applications.Withdraw(ctx, first.ID, c.student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationWithdrawn, withdrawn.Status)
	require.NotNil(t, withdrawn.DecidedBy)
	assert.Equal(t, c.student.ID, *withdrawn.DecidedBy)
	assert.Equal(t, adminUnread+1, h.unread(c.admin.ID))
	assert.Equal(t, mentorUnread+1, h.unread(c.mentor.ID))

	_, err = h.applications.Withdraw(ctx, first.ID, c.student.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = h.applications.Decide(ctx, first.ID, "approved", c.admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	second, err := h.applications.Apply(ctx, c.student.ID, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.ApplicationPending, second.Status)
}

func TestWithdraw_DecidedApplication(t *testing.T) {
	h := newHarness()
	c := newCast(t, h, 2)
	app := approvedApplication(t, h, c)

	_, err := h.applications.Withdraw(context.Background(), app.ID, c.student.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, apperrors.KindState, apperrors.KindOf(err))
}
