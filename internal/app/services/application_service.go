package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/filestorage"
	"github.com/yigit/internhub/internal/pkg/helpers"
)

// MaxResumeSize is the largest accepted resume upload
const MaxResumeSize = 5 << 20

var resumeExtensions = map[string]bool{".pdf": true, ".doc": true, ".docx": true}

// ApplicationService defines the interface for internship applications
type ApplicationService interface {
	Apply(ctx context.Context, studentID int64, req *dto.ApplyRequest) (*models.Application, error)
	Decide(ctx context.Context, applicationID int64, outcome string, deciderID int64) (*models.Application, error)
	Withdraw(ctx context.Context, applicationID, studentID int64) (*models.Application, error)
	Get(ctx context.Context, applicationID, actorID int64) (*models.Application, error)
	ListByStudent(ctx context.Context, studentID int64, page, size int) ([]*models.Application, dto.PaginationInfo, error)
	ListByInternship(ctx context.Context, internshipID, actorID int64, page, size int) ([]*models.Application, dto.PaginationInfo, error)
	UploadResume(ctx context.Context, studentID int64, file *multipart.FileHeader) (*dto.ResumeUploadResponse, error)
}

type applicationServiceImpl struct {
	tx             Transactor
	appRepo        repositories.IApplicationRepository
	internshipRepo repositories.IInternshipRepository
	authz          *authz.AuthorizationService
	notifications  NotificationService
	storage        filestorage.FileStorage
	clock          Clock
	logger         zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	tx Transactor,
	appRepo repositories.IApplicationRepository,
	internshipRepo repositories.IInternshipRepository,
	authorization *authz.AuthorizationService,
	notifications NotificationService,
	storage filestorage.FileStorage,
	clock Clock,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationServiceImpl{
		tx:             tx,
		appRepo:        appRepo,
		internshipRepo: internshipRepo,
		authz:          authorization,
		notifications:  notifications,
		storage:        storage,
		clock:          clock,
		logger:         logger.With().Str("service", "application").Logger(),
	}
}

// Apply creates a pending application. The partial unique index on
// (student_id, internship_id) rejects a second application while one is pending or approved.
func (s *applicationServiceImpl) Apply(ctx context.Context, studentID int64, req *dto.ApplyRequest) (*models.Application, error) {
	student, err := s.authz.RequireRole(ctx, studentID, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	box := newOutbox(s.notifications)
	app := &models.Application{
		StudentID:    studentID,
		InternshipID: req.InternshipID,
		Status:       models.ApplicationPending,
		CoverLetter:  req.CoverLetter,
		ResumeURL:    req.ResumeURL,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		internship, err := s.internshipRepo.GetByID(ctx, req.InternshipID)
		if err != nil {
			return err
		}
		if !internship.AcceptsApplications(s.clock.now()) {
			return fmt.Errorf("%w: internship %d", apperrors.ErrInternshipClosed, internship.ID)
		}
		if err := s.appRepo.Create(ctx, app); err != nil {
			return err
		}
		return box.addAll(ctx, authz.Managers(internship), models.NotifyApplicationSubmitted,
			"%s applied to %q", student.FullName, internship.Title)
	})
	if err != nil {
		return nil, err
	}
	box.flush()

	s.logger.Info().Int64("applicationID", app.ID).Int64("studentID", studentID).Int64("internshipID", req.InternshipID).Msg("Application submitted")
	return app, nil
}

// Decide approves or rejects a pending application under a row lock.
// Only the owning admin or the assigned mentor may decide.
func (s *applicationServiceImpl) Decide(ctx context.Context, applicationID int64, outcome string, deciderID int64) (*models.Application, error) {
	decision, err := models.ParseDecision(outcome)
	if err != nil {
		return nil, err
	}

	box := newOutbox(s.notifications)
	var app *models.Application
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.appRepo.GetByIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		// the posting row lock serialises approvals against capacity
		internship, err := s.internshipRepo.GetByIDForUpdate(ctx, app.InternshipID)
		if err != nil {
			return err
		}
		if _, err := s.authz.RequireManager(ctx, internship, deciderID); err != nil {
			return err
		}
		if err := app.Decide(decision, deciderID, s.clock.now()); err != nil {
			return err
		}
		if decision == models.ApplicationApproved {
			approved, err := s.appRepo.CountByStatus(ctx, internship.ID, models.ApplicationApproved)
			if err != nil {
				return err
			}
			if approved >= int64(internship.Capacity) {
				return fmt.Errorf("%w: %d of %d places taken", apperrors.ErrCapacityReached, approved, internship.Capacity)
			}
		}
		if err := s.appRepo.UpdateDecision(ctx, app); err != nil {
			return err
		}
		return box.add(ctx, app.StudentID, models.NotifyApplicationDecided,
			"Your application to %q was %s", internship.Title, decision)
	})
	if err != nil {
		return nil, err
	}
	box.flush()

	s.logger.Info().Int64("applicationID", app.ID).Str("decision", string(decision)).Int64("deciderID", deciderID).Msg("Application decided")
	return app, nil
}

// Withdraw lets the applicant pull a pending application. A withdrawn application
// no longer blocks applying to the same posting again. Managers are notified.
func (s *applicationServiceImpl) Withdraw(ctx context.Context, applicationID, studentID int64) (*models.Application, error) {
	student, err := s.authz.RequireRole(ctx, studentID, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	box := newOutbox(s.notifications)
	var app *models.Application
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.appRepo.GetByIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if err := app.Withdraw(studentID, s.clock.now()); err != nil {
			return err
		}
		internship, err := s.internshipRepo.GetByID(ctx, app.InternshipID)
		if err != nil {
			return err
		}
		if err := s.appRepo.UpdateDecision(ctx, app); err != nil {
			return err
		}
		return box.addAll(ctx, authz.Managers(internship), models.NotifyApplicationWithdrawn,
			"%s withdrew their application to %q", student.FullName, internship.Title)
	})
	if err != nil {
		return nil, err
	}
	box.flush()

	s.logger.Info().Int64("applicationID", app.ID).Int64("studentID", studentID).Msg("Application withdrawn")
	return app, nil
}

// Get returns an application to its applicant or the posting's managers
func (s *applicationServiceImpl) Get(ctx context.Context, applicationID, actorID int64) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanViewApplication(ctx, app, actorID); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *applicationServiceImpl) ListByStudent(ctx context.Context, studentID int64, page, size int) ([]*models.Application, dto.PaginationInfo, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.appRepo.ListByStudent(ctx, studentID, offset, limit)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, helpers.NewPaginationInfo(total, page, limit), nil
}

// ListByInternship lists applications of a posting for its managers
func (s *applicationServiceImpl) ListByInternship(ctx context.Context, internshipID, actorID int64, page, size int) ([]*models.Application, dto.PaginationInfo, error) {
	if _, _, err := s.authz.ManagerOfInternship(ctx, internshipID, actorID); err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.appRepo.ListByInternship(ctx, internshipID, offset, limit)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, helpers.NewPaginationInfo(total, page, limit), nil
}

// UploadResume stores a resume file; the returned URL goes into ApplyRequest.ResumeURL
func (s *applicationServiceImpl) UploadResume(ctx context.Context, studentID int64, file *multipart.FileHeader) (*dto.ResumeUploadResponse, error) {
	if _, err := s.authz.RequireRole(ctx, studentID, models.RoleStudent); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperrors.NewValidationError("resume file is required")
	}
	if file.Size > MaxResumeSize {
		return nil, apperrors.NewValidationError(fmt.Sprintf("resume must be at most %d MB", MaxResumeSize>>20))
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !resumeExtensions[ext] {
		return nil, apperrors.NewValidationError("resume must be a .pdf, .doc or .docx file")
	}

	info, err := s.storage.SaveFileWithPath(file, fmt.Sprintf("resumes/%d", studentID))
	if err != nil {
		return nil, fmt.Errorf("failed to store resume: %w", err)
	}
	return &dto.ResumeUploadResponse{URL: info.URL, FileName: info.Filename, Size: info.FileSize}, nil
}
