package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/auth"
	"github.com/yigit/internhub/internal/pkg/validation"
)

// AuthService handles registration, login and token authorization
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Authorize(token string, roles ...models.Role) (*auth.Claims, error)
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
}

type authServiceImpl struct {
	userRepo   repositories.IUserRepository
	jwtService *auth.JWTService
	clock      Clock
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	jwtService *auth.JWTService,
	clock Clock,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		jwtService: jwtService,
		clock:      clock,
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates an account with the requested role and signs the user in
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	emailAddr := validation.NormalizeEmail(req.Email)
	if !validation.IsValidEmail(emailAddr) {
		return nil, apperrors.NewValidationError("invalid email format")
	}
	if err := auth.ValidatePasswordPolicy(req.Password); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, apperrors.NewValidationError("full name cannot be empty")
	}

	exists, err := s.userRepo.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:      emailAddr,
		Password:   hashed,
		FullName:   fullName,
		Phone:      req.Phone,
		Department: req.Department,
		Role:       role,
		IsActive:   true,
	}

	// the unique index still decides concurrent registrations
	if _, err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User registered")
	return s.authResponse(user)
}

// Login verifies credentials. Unknown emails, wrong passwords and disabled
// accounts are indistinguishable to the caller.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	emailAddr := validation.NormalizeEmail(req.Email)
	if emailAddr == "" || req.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) || !user.IsActive {
		s.logger.Debug().Int64("userID", user.ID).Msg("Rejected login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.clock.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	return s.authResponse(user)
}

// Authorize validates a token and requires one of roles
func (s *authServiceImpl) Authorize(token string, roles ...models.Role) (*auth.Claims, error) {
	return s.jwtService.Authorize(token, roles...)
}

// GetProfile retrieves the public profile of a user
func (s *authServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	if userID <= 0 {
		return nil, apperrors.NewValidationError("user ID must be positive")
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *authServiceImpl) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(expiresIn),
		},
		User: dto.NewUserResponse(user),
	}, nil
}
