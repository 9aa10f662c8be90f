package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

func TestApplicationInsertError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"active application", &pgconn.PgError{Code: "23505", ConstraintName: uniqueActiveApplication}, apperrors.ErrAlreadyApplied},
		{"wrapped", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_applications_active"}), apperrors.ErrAlreadyApplied},
		{"missing internship", &pgconn.PgError{Code: "23503", ConstraintName: "applications_internship_id_fkey"}, apperrors.ErrInternshipNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, applicationInsertError(tt.err), tt.want)
		})
	}
}

func TestApplicationInsertError_OtherConstraint(t *testing.T) {
	cause := &pgconn.PgError{Code: "23505", ConstraintName: "applications_pkey"}
	err := applicationInsertError(cause)

	assert.NotErrorIs(t, err, apperrors.ErrAlreadyApplied)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
	assert.Contains(t, err.Error(), "error creating application")
}

func TestFeedbackInsertError(t *testing.T) {
	for _, name := range []string{uniqueTaskFeedback, uniqueApplicationFeedback} {
		t.Run(name, func(t *testing.T) {
			err := feedbackInsertError(&pgconn.PgError{Code: "23505", ConstraintName: name})
			assert.ErrorIs(t, err, apperrors.ErrDuplicateFeedback)
		})
	}

	err := feedbackInsertError(&pgconn.PgError{Code: "23503", ConstraintName: "feedback_task_id_fkey"})
	assert.NotErrorIs(t, err, apperrors.ErrDuplicateFeedback)
	assert.Contains(t, err.Error(), "error creating feedback")
}
