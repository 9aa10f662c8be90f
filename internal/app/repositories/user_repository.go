package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/dberrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

const uniqueUserEmail = "uq_users_email"

var userColumns = []string{
	"id", "email", "password", "full_name", "phone", "department", "role",
	"is_active", "created_at", "updated_at", "last_login_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	baseRepository
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{baseRepository: newBaseRepository(pool)}
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Phone, &u.Department, &u.Role,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

// CreateUser inserts a user; the email must be unique ignoring case
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	sql, args, err := r.sb.Insert("users").
		Columns("email", "password", "full_name", "phone", "department", "role", "is_active").
		Values(user.Email, user.Password, user.FullName, user.Phone, user.Department, user.Role, user.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, uniqueUserEmail) {
			return 0, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	return user.ID, nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user SQL")
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetUserByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(email) = LOWER(?)", email))
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Msg("Error checking email existence")
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin stamps a successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	sql, args, err := r.sb.Update("users").
		Set("last_login_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error updating last login")
		return fmt.Errorf("error updating last login: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetUserEmail resolves the address used for notification emails
func (r *UserRepository) GetUserEmail(ctx context.Context, id int64) (string, error) {
	var email string
	err := r.conn(ctx).QueryRow(ctx, `SELECT email FROM users WHERE id = $1 AND is_active`, id).Scan(&email)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return "", apperrors.ErrUserNotFound
		}
		return "", fmt.Errorf("error getting user email: %w", err)
	}
	return email, nil
}

// UpdateUser persists the editable profile fields and the active flag. Email,
// password and role are never changed here.
func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Update("users").
		SetMap(map[string]interface{}{
			"full_name":  user.FullName,
			"phone":      user.Phone,
			"department": user.Department,
			"is_active":  user.IsActive,
			"updated_at": squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update user SQL")
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&user.UpdatedAt); err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Error updating user")
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

// userFilterWhere turns a UserFilter into a WHERE predicate
func userFilterWhere(filter UserFilter) squirrel.And {
	where := squirrel.And{}
	if filter.Role != "" {
		where = append(where, squirrel.Eq{"role": filter.Role})
	}
	if filter.Active != nil {
		where = append(where, squirrel.Eq{"is_active": *filter.Active})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"full_name": pattern},
			squirrel.ILike{"email": pattern},
		})
	}
	return where
}

// listUsersQuery pages through users matching filter, newest first
func listUsersQuery(sb squirrel.StatementBuilderType, filter UserFilter, offset uint64, limit int) squirrel.SelectBuilder {
	return sb.Select(userColumns...).
		From("users").
		Where(userFilterWhere(filter)).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(uint64(limit))
}

// ListUsers returns one page of users matching filter and the total match count
func (r *UserRepository) ListUsers(ctx context.Context, filter UserFilter, offset uint64, limit int) ([]*models.User, int64, error) {
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("users").Where(userFilterWhere(filter)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}
	var total int64
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting users")
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	sql, args, err := listUsersQuery(r.sb, filter, offset, limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying users")
		return nil, 0, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, total, nil
}
