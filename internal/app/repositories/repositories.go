package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/db"
)

// Cursor is a keyset position in a (created_at DESC, id DESC) ordering.
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

// CursorOf returns the position right after an item, for resuming a listing.
func CursorOf(createdAt time.Time, id int64) *Cursor {
	return &Cursor{CreatedAt: createdAt, ID: id}
}

// String encodes the cursor as "<unix nanoseconds>_<id>" for clients.
func (c Cursor) String() string {
	return strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + "_" + strconv.FormatInt(c.ID, 10)
}

// ParseCursor decodes a cursor produced by String. An empty value means "from the top".
func ParseCursor(value string) (*Cursor, error) {
	if value == "" {
		return nil, nil
	}
	nanos, id, ok := strings.Cut(value, "_")
	if !ok {
		return nil, fmt.Errorf("malformed cursor %q", value)
	}
	ts, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor %q: %w", value, err)
	}
	pk, err := strconv.ParseInt(id, 10, 64)
	if err != nil || pk <= 0 {
		return nil, fmt.Errorf("malformed cursor %q", value)
	}
	return &Cursor{CreatedAt: time.Unix(0, ts).UTC(), ID: pk}, nil
}

// IUserRepository defines user persistence
type IUserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	GetUserEmail(ctx context.Context, id int64) (string, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context, filter UserFilter, offset uint64, limit int) ([]*models.User, int64, error)
}

// UserFilter narrows a user listing. Zero fields match everything.
type UserFilter struct {
	Role   models.Role
	Active *bool
	Search string
}

// IInternshipRepository defines internship persistence
type IInternshipRepository interface {
	Create(ctx context.Context, internship *models.Internship) error
	GetByID(ctx context.Context, id int64) (*models.Internship, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Internship, error)
	UpdateOpenState(ctx context.Context, internship *models.Internship) error
	UpdateDetails(ctx context.Context, internship *models.Internship) error
	Delete(ctx context.Context, id int64) error
	ListOpenPage(ctx context.Context, after *Cursor, limit int) ([]*models.Internship, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Internship, error)
}

// IApplicationRepository defines application persistence
type IApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Application, error)
	UpdateDecision(ctx context.Context, app *models.Application) error
	CountByStatus(ctx context.Context, internshipID int64, status models.ApplicationStatus) (int64, error)
	ListByStudent(ctx context.Context, studentID int64, offset uint64, limit int) ([]*models.Application, int64, error)
	ListByInternship(ctx context.Context, internshipID int64, offset uint64, limit int) ([]*models.Application, int64, error)
}

// ITaskRepository defines task persistence
type ITaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Task, error)
	UpdateState(ctx context.Context, task *models.Task) error
	ListByStudent(ctx context.Context, studentID int64, offset uint64, limit int) ([]*models.Task, int64, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]*models.Task, error)
	ListDueForReminder(ctx context.Context, from, to, day time.Time) ([]*models.Task, error)
	MarkReminderSent(ctx context.Context, taskID int64, day time.Time) error
}

// IFeedbackRepository defines feedback persistence
type IFeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Feedback, error)
}

// INotificationRepository defines notification persistence
type INotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	MarkRead(ctx context.Context, id int64, at time.Time) error
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error)
	ListUnreadPage(ctx context.Context, userID int64, after *Cursor, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	ListByUser(ctx context.Context, userID int64, offset uint64, limit int) ([]*models.Notification, int64, error)
}

// IDashboardRepository computes read models with aggregate queries
type IDashboardRepository interface {
	StudentSummary(ctx context.Context, studentID int64) (*models.StudentDashboard, error)
	AdminSummary(ctx context.Context) (*models.AdminDashboard, error)
	MentorSummary(ctx context.Context, mentorID int64) (*models.MentorDashboard, error)
	InternshipReport(ctx context.Context, internshipID int64) (*models.InternshipReport, error)
	StudentReport(ctx context.Context, studentID int64) (*models.StudentReport, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	InternshipRepository   *InternshipRepository
	ApplicationRepository  *ApplicationRepository
	TaskRepository         *TaskRepository
	FeedbackRepository     *FeedbackRepository
	NotificationRepository *NotificationRepository
	DashboardRepository    *DashboardRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(pool),
		InternshipRepository:   NewInternshipRepository(pool),
		ApplicationRepository:  NewApplicationRepository(pool),
		TaskRepository:         NewTaskRepository(pool),
		FeedbackRepository:     NewFeedbackRepository(pool),
		NotificationRepository: NewNotificationRepository(pool),
		DashboardRepository:    NewDashboardRepository(pool),
	}
}

// baseRepository carries the pool and a dollar-placeholder statement builder.
type baseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func newBaseRepository(pool *pgxpool.Pool) baseRepository {
	return baseRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// conn returns the transaction in ctx, if any, so repository calls join the caller's unit of work.
func (b baseRepository) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, b.db)
}

type scanner interface {
	Scan(dest ...any) error
}

// keysetBefore restricts a (created_at DESC, id DESC) listing to rows after the cursor.
func keysetBefore(after *Cursor) squirrel.Sqlizer {
	if after == nil {
		return squirrel.Expr("TRUE")
	}
	return squirrel.Expr("(created_at, id) < (?, ?)", after.CreatedAt, after.ID)
}
