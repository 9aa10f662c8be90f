package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/dberrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

var notificationColumns = []string{"id", "user_id", "category", "message", "is_read", "created_at", "read_at"}

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	baseRepository
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{baseRepository: newBaseRepository(pool)}
}

func scanNotification(row scanner) (*models.Notification, error) {
	n := &models.Notification{}
	err := row.Scan(&n.ID, &n.UserID, &n.Category, &n.Message, &n.IsRead, &n.CreatedAt, &n.ReadAt)
	return n, err
}

// Create appends a notification, inside the caller's transaction when there is one
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	sql, args, err := r.sb.Insert("notifications").
		Columns("user_id", "category", "message").
		Values(n.UserID, n.Category, n.Message).
		Suffix("RETURNING id, is_read, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create notification SQL")
		return fmt.Errorf("failed to build create notification query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&n.ID, &n.IsRead, &n.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", n.UserID).Msg("Error executing create notification query")
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	sql, args, err := r.sb.Select(notificationColumns...).From("notifications").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get notification query: %w", err)
	}

	n, err := scanNotification(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("error getting notification: %w", err)
	}
	return n, nil
}

// MarkRead flags one notification as read; already-read rows keep their first read_at
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	cmdTag, err := r.conn(ctx).Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, $1) WHERE id = $2`, at, id)
	if err != nil {
		logger.Error().Err(err).Int64("notificationID", id).Msg("Error marking notification read")
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of a user and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	sql, args, err := r.sb.Update("notifications").
		Set("is_read", true).
		Set("read_at", at).
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build mark all read query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error marking notifications read")
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// listUnreadPageQuery selects up to limit unread notifications of a user after the cursor, newest first
func listUnreadPageQuery(sb squirrel.StatementBuilderType, userID int64, after *Cursor, limit int) squirrel.SelectBuilder {
	return sb.Select(notificationColumns...).
		From("notifications").
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		Where(keysetBefore(after)).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
}

// ListUnreadPage returns up to limit unread notifications after the cursor, newest first
func (r *NotificationRepository) ListUnreadPage(ctx context.Context, userID int64, after *Cursor, limit int) ([]*models.Notification, error) {
	sql, args, err := listUnreadPageQuery(r.sb, userID, after, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list unread query: %w", err)
	}
	return r.query(ctx, sql, args)
}

// CountUnread counts a user's unread notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return count, nil
}

// ListByUser pages through all of a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, offset uint64, limit int) ([]*models.Notification, int64, error) {
	var total int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting notifications: %w", err)
	}

	sql, args, err := r.sb.Select(notificationColumns...).
		From("notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	list, err := r.query(ctx, sql, args)
	return list, total, err
}

func (r *NotificationRepository) query(ctx context.Context, sql string, args []interface{}) ([]*models.Notification, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying notifications")
		return nil, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	list := []*models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return list, nil
}
