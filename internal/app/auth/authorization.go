package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

// AuthorizationService answers "may this user act on this resource" questions.
// Roles come from the stored user, not from token claims, so a deactivated
// account loses access immediately.
type AuthorizationService struct {
	userRepo       repositories.IUserRepository
	internshipRepo repositories.IInternshipRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.IUserRepository, internshipRepo repositories.IInternshipRepository) *AuthorizationService {
	return &AuthorizationService{
		userRepo:       userRepo,
		internshipRepo: internshipRepo,
	}
}

// LoadActor fetches the acting user. Unknown users are unauthorized; deactivated
// accounts fail authentication even while their token is still valid.
func (s *AuthorizationService) LoadActor(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown user %d", apperrors.ErrUnauthorized, userID)
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error loading acting user")
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user %d", apperrors.ErrAccountDisabled, userID)
	}
	return user, nil
}

// RequireRole loads the actor and checks that it has one of roles
func (s *AuthorizationService) RequireRole(ctx context.Context, userID int64, roles ...models.Role) (*models.User, error) {
	user, err := s.LoadActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if user.Role == r {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: role %s may not perform this action", apperrors.ErrUnauthorized, user.Role)
}

// RequireManager checks that the actor is the owning admin or the assigned mentor of the posting
func (s *AuthorizationService) RequireManager(ctx context.Context, internship *models.Internship, userID int64) (*models.User, error) {
	user, err := s.LoadActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !internship.IsManagedBy(user) {
		return nil, fmt.Errorf("%w: user %d does not manage internship %d", apperrors.ErrUnauthorized, userID, internship.ID)
	}
	return user, nil
}

// ManagerOfInternship loads the posting and checks the actor manages it
func (s *AuthorizationService) ManagerOfInternship(ctx context.Context, internshipID, userID int64) (*models.Internship, *models.User, error) {
	internship, err := s.internshipRepo.GetByID(ctx, internshipID)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.RequireManager(ctx, internship, userID)
	if err != nil {
		return nil, nil, err
	}
	return internship, user, nil
}

// CanViewApplication allows the applicant and the managers of the posting
func (s *AuthorizationService) CanViewApplication(ctx context.Context, app *models.Application, userID int64) error {
	if app.StudentID == userID {
		return nil
	}
	_, _, err := s.ManagerOfInternship(ctx, app.InternshipID, userID)
	return err
}

// Managers returns the IDs of everyone who manages the posting, owner first
func Managers(internship *models.Internship) []int64 {
	ids := []int64{internship.OwnerID}
	if internship.MentorID != nil && *internship.MentorID != internship.OwnerID {
		ids = append(ids, *internship.MentorID)
	}
	return ids
}
