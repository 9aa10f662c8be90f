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

// UserService defines the interface for account management
type UserService interface {
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, actorID int64, filter *dto.UserFilterRequest) ([]*dto.UserResponse, dto.PaginationInfo, error)
	GetUser(ctx context.Context, actorID, userID int64) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, actorID, userID int64, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error)
	SetActive(ctx context.Context, actorID, userID int64, active bool) (*dto.UserResponse, error)
}

type userServiceImpl struct {
	tx       Transactor
	userRepo repositories.IUserRepository
	authz    *authz.AuthorizationService
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	tx Transactor,
	userRepo repositories.IUserRepository,
	authorization *authz.AuthorizationService,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		tx:       tx,
		userRepo: userRepo,
		authz:    authorization,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// applyProfile copies the present fields of req onto user. An empty phone or
// department clears it.
func applyProfile(user *models.User, req *dto.UpdateProfileRequest) error {
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return apperrors.NewValidationError("full name cannot be empty")
		}
		user.FullName = name
	}
	if req.Phone != nil {
		user.Phone = optional(*req.Phone)
	}
	if req.Department != nil {
		user.Department = optional(*req.Department)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// UpdateProfile edits the caller's own name, phone and department
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	var user *models.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if user, err = s.authz.LoadActor(ctx, userID); err != nil {
			return err
		}
		if err := applyProfile(user, req); err != nil {
			return err
		}
		return s.userRepo.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Msg("Profile updated")
	return dto.NewUserResponse(user), nil
}

// ListUsers pages through accounts for admins
func (s *userServiceImpl) ListUsers(ctx context.Context, actorID int64, filter *dto.UserFilterRequest) ([]*dto.UserResponse, dto.PaginationInfo, error) {
	if _, err := s.authz.RequireRole(ctx, actorID, models.RoleAdmin); err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	query := repositories.UserFilter{Active: filter.Active, Search: filter.Search}
	if filter.Role != "" {
		role, err := models.ParseRole(filter.Role)
		if err != nil {
			return nil, dto.PaginationInfo{}, err
		}
		query.Role = role
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)
	users, total, err := s.userRepo.ListUsers(ctx, query, offset, limit)
	if err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("error listing users: %w", err)
	}

	items := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.NewUserResponse(u))
	}
	return items, helpers.NewPaginationInfo(total, filter.Page, limit), nil
}

// GetUser returns any account to an admin
func (s *userServiceImpl) GetUser(ctx context.Context, actorID, userID int64) (*dto.UserResponse, error) {
	if _, err := s.authz.RequireRole(ctx, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// UpdateUser lets an admin edit an account's profile and active flag
func (s *userServiceImpl) UpdateUser(ctx context.Context, actorID, userID int64, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error) {
	return s.edit(ctx, actorID, userID, func(user *models.User) error {
		if err := applyProfile(user, &req.UpdateProfileRequest); err != nil {
			return err
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		return nil
	})
}

// SetActive activates or deactivates an account. Deactivated users cannot log in
// and every authenticated call they make fails with ErrAccountDisabled.
func (s *userServiceImpl) SetActive(ctx context.Context, actorID, userID int64, active bool) (*dto.UserResponse, error) {
	return s.edit(ctx, actorID, userID, func(user *models.User) error {
		user.IsActive = active
		return nil
	})
}

// edit runs change on the target account under an admin check. Admins cannot
// deactivate themselves.
func (s *userServiceImpl) edit(ctx context.Context, actorID, userID int64, change func(*models.User) error) (*dto.UserResponse, error) {
	var user *models.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.authz.RequireRole(ctx, actorID, models.RoleAdmin); err != nil {
			return err
		}
		var err error
		if user, err = s.userRepo.GetUserByID(ctx, userID); err != nil {
			return err
		}
		if err := change(user); err != nil {
			return err
		}
		if !user.IsActive && user.ID == actorID {
			return apperrors.NewValidationError("admins cannot deactivate their own account")
		}
		return s.userRepo.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Int64("actorID", actorID).Bool("active", user.IsActive).Msg("User updated by admin")
	return dto.NewUserResponse(user), nil
}
