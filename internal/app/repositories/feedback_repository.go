package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/dberrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

const (
	uniqueTaskFeedback        = "uq_feedback_task"
	uniqueApplicationFeedback = "uq_feedback_application"
)

var feedbackColumns = []string{
	"id", "task_id", "application_id", "student_id", "mentor_id", "rating", "comment", "created_at",
}

// FeedbackRepository handles feedback database operations. Feedback is insert-only.
type FeedbackRepository struct {
	baseRepository
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{baseRepository: newBaseRepository(pool)}
}

// Create inserts feedback; a second entry for the same task (or application) is ErrDuplicateFeedback
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	sql, args, err := r.sb.Insert("feedback").
		Columns("task_id", "application_id", "student_id", "mentor_id", "rating", "comment").
		Values(fb.TaskID, fb.ApplicationID, fb.StudentID, fb.MentorID, fb.Rating, fb.Comment).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create feedback SQL")
		return fmt.Errorf("failed to build create feedback query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&fb.ID, &fb.CreatedAt); err != nil {
		return feedbackInsertError(err)
	}
	return nil
}

// feedbackInsertError maps either feedback unique index to ErrDuplicateFeedback
func feedbackInsertError(err error) error {
	if dberrors.IsDuplicateConstraintError(err, uniqueTaskFeedback) ||
		dberrors.IsDuplicateConstraintError(err, uniqueApplicationFeedback) {
		return apperrors.ErrDuplicateFeedback
	}
	logger.Error().Err(err).Msg("Error executing create feedback query")
	return fmt.Errorf("error creating feedback: %w", err)
}

// ListByStudent returns all feedback a student received, newest first
func (r *FeedbackRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Feedback, error) {
	sql, args, err := r.sb.Select(feedbackColumns...).
		From("feedback").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list feedback query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying feedback")
		return nil, fmt.Errorf("error querying feedback: %w", err)
	}
	defer rows.Close()

	list := []*models.Feedback{}
	for rows.Next() {
		fb := &models.Feedback{}
		if err := rows.Scan(&fb.ID, &fb.TaskID, &fb.ApplicationID, &fb.StudentID, &fb.MentorID,
			&fb.Rating, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning feedback row: %w", err)
		}
		list = append(list, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback rows: %w", err)
	}
	return list, nil
}
