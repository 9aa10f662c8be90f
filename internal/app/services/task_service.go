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
	"github.com/yigit/internhub/internal/pkg/helpers"
)

// TaskService defines the interface for task assignment and progress tracking
type TaskService interface {
	Assign(ctx context.Context, applicationID int64, req *dto.AssignTaskRequest, assignerID int64) (*models.Task, error)
	UpdateProgress(ctx context.Context, taskID int64, progress int, actorID int64) (*models.Task, error)
	SetStatus(ctx context.Context, taskID int64, req *dto.SetTaskStatusRequest, actorID int64) (*models.Task, error)
	Get(ctx context.Context, taskID, actorID int64) (*models.Task, error)
	ListByStudent(ctx context.Context, studentID int64, page, size int) ([]*models.Task, dto.PaginationInfo, error)
	ListByApplication(ctx context.Context, applicationID, actorID int64) ([]*models.Task, error)
}

type taskServiceImpl struct {
	tx             Transactor
	taskRepo       repositories.ITaskRepository
	appRepo        repositories.IApplicationRepository
	internshipRepo repositories.IInternshipRepository
	authz          *authz.AuthorizationService
	notifications  NotificationService
	clock          Clock
	logger         zerolog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	tx Transactor,
	taskRepo repositories.ITaskRepository,
	appRepo repositories.IApplicationRepository,
	internshipRepo repositories.IInternshipRepository,
	authorization *authz.AuthorizationService,
	notifications NotificationService,
	clock Clock,
	logger zerolog.Logger,
) TaskService {
	return &taskServiceImpl{
		tx:             tx,
		taskRepo:       taskRepo,
		appRepo:        appRepo,
		internshipRepo: internshipRepo,
		authz:          authorization,
		notifications:  notifications,
		clock:          clock,
		logger:         logger.With().Str("service", "task").Logger(),
	}
}

// internshipOf resolves the posting a task belongs to
func (s *taskServiceImpl) internshipOf(ctx context.Context, task *models.Task) (*models.Internship, error) {
	app, err := s.appRepo.GetByID(ctx, task.ApplicationID)
	if err != nil {
		return nil, err
	}
	return s.internshipRepo.GetByID(ctx, app.InternshipID)
}

// Assign creates a pending task on an approved application
func (s *taskServiceImpl) Assign(ctx context.Context, applicationID int64, req *dto.AssignTaskRequest, assignerID int64) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("task title cannot be empty")
	}

	box := newOutbox(s.notifications)
	var task *models.Task
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		app, err := s.appRepo.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		internship, err := s.internshipRepo.GetByID(ctx, app.InternshipID)
		if err != nil {
			return err
		}
		if _, err := s.authz.RequireManager(ctx, internship, assignerID); err != nil {
			return err
		}
		if app.Status != models.ApplicationApproved {
			return fmt.Errorf("%w: application %d is %s", apperrors.ErrApplicationNotApproved, app.ID, app.Status)
		}

		task = models.NewTask(app.ID, app.StudentID, assignerID, title, req.Description, req.DueDate)
		if err := s.taskRepo.Create(ctx, task); err != nil {
			return err
		}
		return box.add(ctx, app.StudentID, models.NotifyTaskAssigned,
			"New task %q assigned for %q", task.Title, internship.Title)
	})
	if err != nil {
		return nil, err
	}
	box.flush()

	s.logger.Info().Int64("taskID", task.ID).Int64("applicationID", applicationID).Int64("assignerID", assignerID).Msg("Task assigned")
	return task, nil
}

// UpdateProgress records a completion percentage under a row lock. The task's
// student and the posting's managers may report progress.
func (s *taskServiceImpl) UpdateProgress(ctx context.Context, taskID int64, progress int, actorID int64) (*models.Task, error) {
	if progress < models.ProgressMin || progress > models.ProgressMax {
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrOutOfRange, progress)
	}

	box := newOutbox(s.notifications)
	var task *models.Task
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.taskRepo.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		internship, err := s.internshipOf(ctx, task)
		if err != nil {
			return err
		}

		byStudent := task.StudentID == actorID
		if byStudent {
			if _, err := s.authz.LoadActor(ctx, actorID); err != nil {
				return err
			}
		} else if _, err := s.authz.RequireManager(ctx, internship, actorID); err != nil {
			return err
		}

		previous := task.Status
		if err := task.ApplyProgress(progress); err != nil {
			return err
		}
		task.UpdatedAt = s.clock.now()
		if err := s.taskRepo.UpdateState(ctx, task); err != nil {
			return err
		}

		if previous == task.Status || task.Status != models.TaskCompleted {
			return nil
		}
		if byStudent {
			return box.addAll(ctx, authz.Managers(internship), models.NotifyTaskUpdated,
				"Task %q was completed by the student", task.Title)
		}
		return box.add(ctx, task.StudentID, models.NotifyTaskUpdated, "Task %q was marked completed", task.Title)
	})
	if err != nil {
		return nil, err
	}
	box.flush()
	return task, nil
}

// SetStatus overrides a task's status. Only the posting's managers may call it;
// reopening a completed task needs an explicit progress below 100.
func (s *taskServiceImpl) SetStatus(ctx context.Context, taskID int64, req *dto.SetTaskStatusRequest, actorID int64) (*models.Task, error) {
	next, err := models.ParseTaskStatus(req.Status)
	if err != nil {
		return nil, err
	}

	box := newOutbox(s.notifications)
	var task *models.Task
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.taskRepo.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		internship, err := s.internshipOf(ctx, task)
		if err != nil {
			return err
		}
		if _, err := s.authz.RequireManager(ctx, internship, actorID); err != nil {
			return err
		}

		previous, previousProgress := task.Status, task.Progress
		if err := task.SetStatus(next, req.Progress); err != nil {
			return err
		}
		if previous == task.Status && previousProgress == task.Progress {
			return nil
		}
		task.UpdatedAt = s.clock.now()
		if err := s.taskRepo.UpdateState(ctx, task); err != nil {
			return err
		}

		switch {
		case previous == task.Status:
			return nil
		case task.Status == models.TaskCompleted:
			return box.add(ctx, task.StudentID, models.NotifyTaskUpdated, "Task %q was marked completed", task.Title)
		case previous == models.TaskCompleted:
			return box.add(ctx, task.StudentID, models.NotifyTaskUpdated,
				"Task %q was reopened at %d%%", task.Title, task.Progress)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush()

	s.logger.Info().Int64("taskID", taskID).Str("status", string(task.Status)).Int64("actorID", actorID).Msg("Task status set")
	return task, nil
}

// Get returns a task to its student or the posting's managers
func (s *taskServiceImpl) Get(ctx context.Context, taskID, actorID int64) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.StudentID == actorID {
		return task, nil
	}
	internship, err := s.internshipOf(ctx, task)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireManager(ctx, internship, actorID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskServiceImpl) ListByStudent(ctx context.Context, studentID int64, page, size int) ([]*models.Task, dto.PaginationInfo, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.taskRepo.ListByStudent(ctx, studentID, offset, limit)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, helpers.NewPaginationInfo(total, page, limit), nil
}

func (s *taskServiceImpl) ListByApplication(ctx context.Context, applicationID, actorID int64) ([]*models.Task, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanViewApplication(ctx, app, actorID); err != nil {
		return nil, err
	}
	return s.taskRepo.ListByApplication(ctx, applicationID)
}
