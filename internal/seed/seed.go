package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/internhub/internal/app/models"
	appRepos "github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/auth"
)

// AdminAccount describes the bootstrap admin
type AdminAccount struct {
	Email    string
	Password string
	FullName string
}

// UserStore is the subset of the user repository the seed needs
type UserStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *appModels.User) (int64, error)
}

var _ UserStore = (appRepos.IUserRepository)(nil)

// CreateDefaultAdmin creates the bootstrap admin account if it doesn't exist.
// Without a configured password nothing is created.
func CreateDefaultAdmin(ctx context.Context, users UserStore, account AdminAccount, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if email == "" || account.Password == "" {
		lgr.Warn().Msg("Seed admin credentials not configured, skipping default admin creation")
		return nil
	}

	exists, err := users.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if exists {
		lgr.Info().Str("email", email).Msg("Admin user already exists, skipping creation")
		return nil
	}

	hashed, err := auth.HashPassword(account.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	name := strings.TrimSpace(account.FullName)
	if name == "" {
		name = "System Admin"
	}

	id, err := users.CreateUser(ctx, &appModels.User{
		Email:    email,
		Password: hashed,
		FullName: name,
		Role:     appModels.RoleAdmin,
		IsActive: true,
	})
	if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		// another instance won the race
		return nil
	}
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	lgr.Info().Int64("adminID", id).Str("email", email).Msg("Default admin user created")
	return nil
}
