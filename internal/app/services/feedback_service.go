package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

// FeedbackService defines the interface for mentor feedback
type FeedbackService interface {
	SubmitForTask(ctx context.Context, taskID, mentorID int64, req *dto.SubmitFeedbackRequest) (*models.Feedback, error)
	SubmitForApplication(ctx context.Context, applicationID, mentorID int64, req *dto.SubmitFeedbackRequest) (*models.Feedback, error)
	ListByStudent(ctx context.Context, studentID, actorID int64) ([]*models.Feedback, error)
}

type feedbackServiceImpl struct {
	tx             Transactor
	feedbackRepo   repositories.IFeedbackRepository
	taskRepo       repositories.ITaskRepository
	appRepo        repositories.IApplicationRepository
	internshipRepo repositories.IInternshipRepository
	authz          *authz.AuthorizationService
	notifications  NotificationService
	logger         zerolog.Logger
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(
	tx Transactor,
	feedbackRepo repositories.IFeedbackRepository,
	taskRepo repositories.ITaskRepository,
	appRepo repositories.IApplicationRepository,
	internshipRepo repositories.IInternshipRepository,
	authorization *authz.AuthorizationService,
	notifications NotificationService,
	logger zerolog.Logger,
) FeedbackService {
	return &feedbackServiceImpl{
		tx:             tx,
		feedbackRepo:   feedbackRepo,
		taskRepo:       taskRepo,
		appRepo:        appRepo,
		internshipRepo: internshipRepo,
		authz:          authorization,
		notifications:  notifications,
		logger:         logger.With().Str("service", "feedback").Logger(),
	}
}

// SubmitForTask records the single feedback entry of a completed task
func (s *feedbackServiceImpl) SubmitForTask(ctx context.Context, taskID, mentorID int64, req *dto.SubmitFeedbackRequest) (*models.Feedback, error) {
	if err := models.ValidateRating(req.Rating); err != nil {
		return nil, err
	}

	box := newOutbox(s.notifications)
	var fb *models.Feedback
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		task, err := s.taskRepo.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		app, err := s.appRepo.GetByID(ctx, task.ApplicationID)
		if err != nil {
			return err
		}
		internship, err := s.internshipRepo.GetByID(ctx, app.InternshipID)
		if err != nil {
			return err
		}
		if _, err := s.authz.RequireManager(ctx, internship, mentorID); err != nil {
			return err
		}
		if task.Status != models.TaskCompleted {
			return fmt.Errorf("%w: feedback needs a completed task, task %d is %s", apperrors.ErrInvalidTransition, task.ID, task.Status)
		}

		fb = &models.Feedback{
			TaskID:        &task.ID,
			ApplicationID: app.ID,
			StudentID:     task.StudentID,
			MentorID:      mentorID,
			Rating:        req.Rating,
			Comment:       strings.TrimSpace(req.Comment),
		}
		if err := s.feedbackRepo.Create(ctx, fb); err != nil {
			return err
		}
		return box.add(ctx, task.StudentID, models.NotifyFeedbackReceived,
			"You received %d/5 feedback on task %q", fb.Rating, task.Title)
	})
	if err != nil {
		return nil, err
	}
	box.flush()

	s.logger.Info().Int64("feedbackID", fb.ID).Int64("taskID", taskID).Msg("Task feedback submitted")
	return fb, nil
}

// SubmitForApplication records the single overall feedback of an approved application
func (s *feedbackServiceImpl) SubmitForApplication(ctx context.Context, applicationID, mentorID int64, req *dto.SubmitFeedbackRequest) (*models.Feedback, error) {
	if err := models.ValidateRating(req.Rating); err != nil {
		return nil, err
	}

	box := newOutbox(s.notifications)
	var fb *models.Feedback
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		app, err := s.appRepo.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		internship, err := s.internshipRepo.GetByID(ctx, app.InternshipID)
		if err != nil {
			return err
		}
		if _, err := s.authz.RequireManager(ctx, internship, mentorID); err != nil {
			return err
		}
		if app.Status != models.ApplicationApproved {
			return fmt.Errorf("%w: application %d is %s", apperrors.ErrApplicationNotApproved, app.ID, app.Status)
		}

		fb = &models.Feedback{
			ApplicationID: app.ID,
			StudentID:     app.StudentID,
			MentorID:      mentorID,
			Rating:        req.Rating,
			Comment:       strings.TrimSpace(req.Comment),
		}
		if err := s.feedbackRepo.Create(ctx, fb); err != nil {
			return err
		}
		return box.add(ctx, app.StudentID, models.NotifyFeedbackReceived,
			"You received %d/5 feedback for your internship at %q", fb.Rating, internship.Title)
	})
	if err != nil {
		return nil, err
	}
	box.flush()
	return fb, nil
}

// ListByStudent returns the feedback a student received. Students only see their own.
func (s *feedbackServiceImpl) ListByStudent(ctx context.Context, studentID, actorID int64) ([]*models.Feedback, error) {
	if studentID != actorID {
		if _, err := s.authz.RequireRole(ctx, actorID, models.RoleAdmin, models.RoleMentor); err != nil {
			return nil, err
		}
	}
	return s.feedbackRepo.ListByStudent(ctx, studentID)
}
