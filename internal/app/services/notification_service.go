package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/email"
	"github.com/yigit/internhub/internal/pkg/helpers"
)

// EventNotification is the websocket event type used for new notifications
const EventNotification = "notification"

// LivePusher pushes an event to a connected user
type LivePusher interface {
	PushToUser(userID int64, eventType string, data interface{})
}

// EmailQueue accepts emails for background delivery
type EmailQueue interface {
	Enqueue(msg email.Message) bool
}

// NotificationService defines the interface for notification operations
type NotificationService interface {
	Enqueue(ctx context.Context, userID int64, category models.NotificationCategory, message string) (*models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	ListUnread(ctx context.Context, userID int64, before *repositories.Cursor) iter.Seq2[*models.Notification, error]
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	List(ctx context.Context, userID int64, page, size int) ([]*models.Notification, dto.PaginationInfo, error)
	Dispatch(notifications ...*models.Notification)
}

// NotificationConfig configures delivery
type NotificationConfig struct {
	// Link placed in notification emails
	AppURL string
	// Page size used when iterating unread notifications
	PageSize int
}

type notificationServiceImpl struct {
	repo   repositories.INotificationRepository
	pusher LivePusher
	mailer EmailQueue
	cfg    NotificationConfig
	clock  Clock
	logger zerolog.Logger
}

// NewNotificationService creates a NotificationService. pusher and mailer may be nil.
func NewNotificationService(
	repo repositories.INotificationRepository,
	pusher LivePusher,
	mailer EmailQueue,
	cfg NotificationConfig,
	clock Clock,
	logger zerolog.Logger,
) NotificationService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	return &notificationServiceImpl{
		repo:   repo,
		pusher: pusher,
		mailer: mailer,
		cfg:    cfg,
		clock:  clock,
		logger: logger.With().Str("service", "notification").Logger(),
	}
}

var knownCategories = map[models.NotificationCategory]bool{
	models.NotifyApplicationSubmitted: true,
	models.NotifyApplicationDecided:   true,
	models.NotifyApplicationWithdrawn: true,
	models.NotifyTaskAssigned:         true,
	models.NotifyTaskUpdated:          true,
	models.NotifyFeedbackReceived:     true,
	models.NotifyDeadlineReminder:     true,
}

// Enqueue appends a notification. It joins the caller's transaction when ctx carries one;
// delivery happens later through Dispatch.
func (s *notificationServiceImpl) Enqueue(ctx context.Context, userID int64, category models.NotificationCategory, message string) (*models.Notification, error) {
	message = strings.TrimSpace(message)
	if userID <= 0 {
		return nil, apperrors.NewValidationError("notification recipient is required")
	}
	if message == "" {
		return nil, apperrors.NewValidationError("notification message cannot be empty")
	}
	if !knownCategories[category] {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown notification category %q", category))
	}

	n := &models.Notification{
		UserID:    userID,
		Category:  category,
		Message:   message,
		CreatedAt: s.clock.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}
	return n, nil
}

// MarkRead marks a notification read on behalf of its owner
func (s *notificationServiceImpl) MarkRead(ctx context.Context, notificationID, userID int64) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return apperrors.NewForbiddenError("notification belongs to another user")
	}
	if n.IsRead {
		return nil
	}
	return s.repo.MarkRead(ctx, notificationID, s.clock.now())
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.clock.now())
}

// ListUnread lazily walks the user's unread notifications, newest first, starting
// after before (nil for the newest). Each range starts from that position again.
func (s *notificationServiceImpl) ListUnread(ctx context.Context, userID int64, before *repositories.Cursor) iter.Seq2[*models.Notification, error] {
	return func(yield func(*models.Notification, error) bool) {
		after := before
		for {
			page, err := s.repo.ListUnreadPage(ctx, userID, after, s.cfg.PageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, n := range page {
				if !yield(n, nil) {
					return
				}
			}
			if len(page) < s.cfg.PageSize {
				return
			}
			last := page[len(page)-1]
			after = &repositories.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		}
	}
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// List returns one page of all notifications of the user
func (s *notificationServiceImpl) List(ctx context.Context, userID int64, page, size int) ([]*models.Notification, dto.PaginationInfo, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.repo.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, helpers.NewPaginationInfo(total, page, limit), nil
}

// Dispatch pushes committed notifications to live connections and the email queue.
// Delivery problems are logged only.
func (s *notificationServiceImpl) Dispatch(notifications ...*models.Notification) {
	for _, n := range notifications {
		if n == nil {
			continue
		}
		if s.pusher != nil {
			s.pusher.PushToUser(n.UserID, EventNotification, n)
		}
		if s.mailer == nil {
			continue
		}

		subject, body, err := email.RenderNotification(string(n.Category), n.Message, s.cfg.AppURL, n.CreatedAt)
		if err != nil {
			s.logger.Error().Err(err).Int64("notificationID", n.ID).Msg("Failed to render notification email")
			continue
		}
		if !s.mailer.Enqueue(email.Message{UserID: n.UserID, Subject: subject, HTMLBody: body}) {
			s.logger.Warn().Int64("notificationID", n.ID).Msg("Notification email not queued")
		}
	}
}

// outbox collects notifications written inside a transaction so they are only
// delivered once the transaction has committed.
type outbox struct {
	svc     NotificationService
	pending []*models.Notification
}

func newOutbox(svc NotificationService) *outbox {
	return &outbox{svc: svc}
}

func (o *outbox) add(ctx context.Context, userID int64, category models.NotificationCategory, format string, args ...any) error {
	n, err := o.svc.Enqueue(ctx, userID, category, fmt.Sprintf(format, args...))
	if err != nil {
		return err
	}
	o.pending = append(o.pending, n)
	return nil
}

func (o *outbox) addAll(ctx context.Context, userIDs []int64, category models.NotificationCategory, format string, args ...any) error {
	var errs []error
	for _, id := range userIDs {
		errs = append(errs, o.add(ctx, id, category, format, args...))
	}
	return errors.Join(errs...)
}

// flush delivers the collected notifications; call after commit
func (o *outbox) flush() {
	if len(o.pending) == 0 {
		return
	}
	o.svc.Dispatch(o.pending...)
	o.pending = nil
}
