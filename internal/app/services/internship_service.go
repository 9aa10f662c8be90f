package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

// InternshipService defines the interface for the posting catalog
type InternshipService interface {
	Create(ctx context.Context, adminID int64, req *dto.CreateInternshipRequest) (*models.Internship, error)
	Get(ctx context.Context, id int64) (*models.Internship, error)
	Update(ctx context.Context, id, actorID int64, req *dto.UpdateInternshipRequest) (*models.Internship, error)
	Close(ctx context.Context, id, actorID int64) (*models.Internship, error)
	Delete(ctx context.Context, id, actorID int64) error
	ListOpen(ctx context.Context, before *repositories.Cursor) iter.Seq2[*models.Internship, error]
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Internship, error)
}

type internshipServiceImpl struct {
	tx             Transactor
	internshipRepo repositories.IInternshipRepository
	appRepo        repositories.IApplicationRepository
	userRepo       repositories.IUserRepository
	authz          *authz.AuthorizationService
	pageSize       int
	clock          Clock
	logger         zerolog.Logger
}

// NewInternshipService creates a new InternshipService. pageSize bounds each
// keyset page fetched while iterating the open catalog.
func NewInternshipService(
	tx Transactor,
	internshipRepo repositories.IInternshipRepository,
	appRepo repositories.IApplicationRepository,
	userRepo repositories.IUserRepository,
	authorization *authz.AuthorizationService,
	pageSize int,
	clock Clock,
	logger zerolog.Logger,
) InternshipService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &internshipServiceImpl{
		tx:             tx,
		internshipRepo: internshipRepo,
		appRepo:        appRepo,
		userRepo:       userRepo,
		authz:          authorization,
		pageSize:       pageSize,
		clock:          clock,
		logger:         logger.With().Str("service", "internship").Logger(),
	}
}

// validate checks a posting before it is stored. The deadline and the mentor are
// only checked when they are being set, so unrelated edits keep working.
func (s *internshipServiceImpl) validate(ctx context.Context, in *models.Internship, deadlineChanged, mentorChanged bool) error {
	if in.Title == "" {
		return apperrors.NewValidationError("title cannot be empty")
	}
	if in.Company == "" {
		return apperrors.NewValidationError("company cannot be empty")
	}
	if in.Capacity <= 0 {
		return apperrors.NewValidationError("capacity must be positive")
	}
	if deadlineChanged && in.Deadline != nil && !in.Deadline.After(s.clock.now()) {
		return apperrors.NewValidationError("deadline must be in the future")
	}
	if mentorChanged && in.MentorID != nil {
		mentor, err := s.userRepo.GetUserByID(ctx, *in.MentorID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return apperrors.NewValidationError(fmt.Sprintf("mentor %d does not exist", *in.MentorID))
			}
			return err
		}
		if mentor.Role != models.RoleMentor || !mentor.IsActive {
			return apperrors.NewValidationError(fmt.Sprintf("user %d is not an active mentor", *in.MentorID))
		}
	}
	return nil
}

// Create publishes a new open posting owned by the admin
func (s *internshipServiceImpl) Create(ctx context.Context, adminID int64, req *dto.CreateInternshipRequest) (*models.Internship, error) {
	if _, err := s.authz.RequireRole(ctx, adminID, models.RoleAdmin); err != nil {
		return nil, err
	}
	internship := &models.Internship{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Company:      strings.TrimSpace(req.Company),
		Location:     req.Location,
		Duration:     req.Duration,
		Stipend:      req.Stipend,
		Requirements: req.Requirements,
		Capacity:     req.Capacity,
		Deadline:     req.Deadline,
		IsOpen:       true,
		OwnerID:      adminID,
		MentorID:     req.MentorID,
	}
	if err := s.validate(ctx, internship, true, true); err != nil {
		return nil, err
	}
	if err := s.internshipRepo.Create(ctx, internship); err != nil {
		return nil, fmt.Errorf("failed to create internship: %w", err)
	}

	s.logger.Info().Int64("internshipID", internship.ID).Int64("ownerID", adminID).Msg("Internship created")
	return internship, nil
}

func (s *internshipServiceImpl) Get(ctx context.Context, id int64) (*models.Internship, error) {
	return s.internshipRepo.GetByID(ctx, id)
}

// requireOwner allows only the admin who created the posting
func (s *internshipServiceImpl) requireOwner(ctx context.Context, internship *models.Internship, actorID int64) error {
	actor, err := s.authz.RequireManager(ctx, internship, actorID)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin {
		return apperrors.NewForbiddenError("only the owning admin may change this internship")
	}
	return nil
}

// Update patches a posting for its owning admin. Capacity cannot drop below the
// number of approved interns; a mentorId of 0 unassigns the mentor.
func (s *internshipServiceImpl) Update(ctx context.Context, id, actorID int64, req *dto.UpdateInternshipRequest) (*models.Internship, error) {
	var internship *models.Internship
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		internship, err = s.internshipRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireOwner(ctx, internship, actorID); err != nil {
			return err
		}

		patchInternship(internship, req)
		if err := s.validate(ctx, internship, req.Deadline != nil, req.MentorID != nil); err != nil {
			return err
		}
		if req.Capacity != nil {
			approved, err := s.appRepo.CountByStatus(ctx, id, models.ApplicationApproved)
			if err != nil {
				return err
			}
			if int64(internship.Capacity) < approved {
				return apperrors.NewValidationError(fmt.Sprintf("capacity %d is below the %d approved interns", internship.Capacity, approved))
			}
		}
		return s.internshipRepo.UpdateDetails(ctx, internship)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("internshipID", id).Int64("actorID", actorID).Msg("Internship updated")
	return internship, nil
}

func patchInternship(in *models.Internship, req *dto.UpdateInternshipRequest) {
	if req.Title != nil {
		in.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Company != nil {
		in.Company = strings.TrimSpace(*req.Company)
	}
	if req.Location != nil {
		in.Location = *req.Location
	}
	if req.Duration != nil {
		in.Duration = *req.Duration
	}
	if req.Stipend != nil {
		in.Stipend = req.Stipend
	}
	if req.Requirements != nil {
		in.Requirements = req.Requirements
	}
	if req.Capacity != nil {
		in.Capacity = *req.Capacity
	}
	if req.Deadline != nil {
		in.Deadline = req.Deadline
	}
	if req.MentorID != nil {
		if *req.MentorID == 0 {
			in.MentorID = nil
		} else {
			in.MentorID = req.MentorID
		}
	}
}

// Close stops a posting from accepting applications. Closing twice is a no-op.
func (s *internshipServiceImpl) Close(ctx context.Context, id, actorID int64) (*models.Internship, error) {
	var internship *models.Internship
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		internship, err = s.internshipRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireOwner(ctx, internship, actorID); err != nil {
			return err
		}
		if !internship.IsOpen {
			return nil
		}
		internship.Close(s.clock.now())
		return s.internshipRepo.UpdateOpenState(ctx, internship)
	})
	if err != nil {
		return nil, err
	}
	return internship, nil
}

// Delete removes the posting together with its applications, tasks and feedback
func (s *internshipServiceImpl) Delete(ctx context.Context, id, actorID int64) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		internship, err := s.internshipRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireOwner(ctx, internship, actorID); err != nil {
			return err
		}
		if err := s.internshipRepo.Delete(ctx, id); err != nil {
			return err
		}
		s.logger.Info().Int64("internshipID", id).Int64("actorID", actorID).Msg("Internship deleted")
		return nil
	})
}

// ListOpen lazily walks open postings newest first, one keyset page at a time,
// starting after before (nil for the newest). Postings whose deadline has passed
// are skipped. Ranging again restarts from the same position.
func (s *internshipServiceImpl) ListOpen(ctx context.Context, before *repositories.Cursor) iter.Seq2[*models.Internship, error] {
	return func(yield func(*models.Internship, error) bool) {
		now := s.clock.now()
		after := before
		for {
			page, err := s.internshipRepo.ListOpenPage(ctx, after, s.pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, in := range page {
				if !in.AcceptsApplications(now) {
					continue
				}
				if !yield(in, nil) {
					return
				}
			}
			if len(page) < s.pageSize {
				return
			}
			last := page[len(page)-1]
			after = &repositories.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		}
	}
}

func (s *internshipServiceImpl) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Internship, error) {
	return s.internshipRepo.ListByOwner(ctx, ownerID)
}
