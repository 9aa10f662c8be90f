package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/logger"
)

const dashboardRecentLimit = 5

// applicationCountsQuery counts applications (alias a) per status
func applicationCountsQuery(sb squirrel.StatementBuilderType, where squirrel.Sqlizer, joins ...string) squirrel.SelectBuilder {
	q := sb.Select(
		"COUNT(*) FILTER (WHERE a.status = 'pending')",
		"COUNT(*) FILTER (WHERE a.status = 'approved')",
		"COUNT(*) FILTER (WHERE a.status = 'rejected')",
		"COUNT(*) FILTER (WHERE a.status = 'withdrawn')",
	).From("applications a")
	return filtered(q, where, joins)
}

// taskCountsQuery counts tasks (alias t) per status and averages their progress
func taskCountsQuery(sb squirrel.StatementBuilderType, where squirrel.Sqlizer, joins ...string) squirrel.SelectBuilder {
	q := sb.Select(
		"COUNT(*) FILTER (WHERE t.status = 'pending')",
		"COUNT(*) FILTER (WHERE t.status = 'in_progress')",
		"COUNT(*) FILTER (WHERE t.status = 'completed')",
		"COALESCE(AVG(t.progress), 0)::float8",
	).From("tasks t")
	return filtered(q, where, joins)
}

// feedbackStatsQuery counts feedback (alias f) and averages the rating
func feedbackStatsQuery(sb squirrel.StatementBuilderType, where squirrel.Sqlizer, joins ...string) squirrel.SelectBuilder {
	q := sb.Select("COUNT(*)", "COALESCE(AVG(f.rating), 0)::float8").From("feedback f")
	return filtered(q, where, joins)
}

func filtered(q squirrel.SelectBuilder, where squirrel.Sqlizer, joins []string) squirrel.SelectBuilder {
	for _, join := range joins {
		q = q.Join(join)
	}
	if where != nil {
		q = q.Where(where)
	}
	return q
}

// DashboardRepository computes dashboards straight from current rows; nothing is cached.
type DashboardRepository struct {
	baseRepository
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{baseRepository: newBaseRepository(pool)}
}

func (r *DashboardRepository) queryRow(ctx context.Context, q squirrel.SelectBuilder, what string, dest ...any) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", what, err)
	}
	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(dest...); err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error running aggregate query")
		return fmt.Errorf("error computing %s: %w", what, err)
	}
	return nil
}

func (r *DashboardRepository) applicationCounts(ctx context.Context, where squirrel.Sqlizer, joins ...string) (models.ApplicationCounts, error) {
	var c models.ApplicationCounts
	err := r.queryRow(ctx, applicationCountsQuery(r.sb, where, joins...), "application counts",
		&c.Pending, &c.Approved, &c.Rejected, &c.Withdrawn)
	return c, err
}

func (r *DashboardRepository) taskCounts(ctx context.Context, where squirrel.Sqlizer, joins ...string) (models.TaskCounts, float64, error) {
	var c models.TaskCounts
	var avg float64
	err := r.queryRow(ctx, taskCountsQuery(r.sb, where, joins...), "task counts",
		&c.Pending, &c.InProgress, &c.Completed, &avg)
	return c, avg, err
}

func (r *DashboardRepository) feedbackStats(ctx context.Context, where squirrel.Sqlizer, joins ...string) (int64, float64, error) {
	var count int64
	var avg float64
	err := r.queryRow(ctx, feedbackStatsQuery(r.sb, where, joins...), "feedback stats", &count, &avg)
	return count, avg, err
}

// StudentSummary aggregates one student's applications, tasks and feedback
func (r *DashboardRepository) StudentSummary(ctx context.Context, studentID int64) (*models.StudentDashboard, error) {
	d := &models.StudentDashboard{StudentID: studentID}
	var err error

	if d.Applications, err = r.applicationCounts(ctx, squirrel.Eq{"a.student_id": studentID}); err != nil {
		return nil, err
	}
	if d.Tasks, d.AverageProgress, err = r.taskCounts(ctx, squirrel.Eq{"t.student_id": studentID}); err != nil {
		return nil, err
	}
	if d.FeedbackCount, d.AverageRating, err = r.feedbackStats(ctx, squirrel.Eq{"f.student_id": studentID}); err != nil {
		return nil, err
	}
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, studentID).Scan(&d.UnreadNotifications); err != nil {
		return nil, fmt.Errorf("error counting unread notifications: %w", err)
	}

	if d.RecentApplications, err = r.recentApplications(ctx, studentID); err != nil {
		return nil, err
	}
	if d.UpcomingTasks, err = r.upcomingTasks(ctx, studentID); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DashboardRepository) recentApplications(ctx context.Context, studentID int64) ([]*models.Application, error) {
	sql, args, err := r.sb.Select(applicationColumns...).
		From("applications").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(dashboardRecentLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recent applications query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying recent applications: %w", err)
	}
	defer rows.Close()

	apps := []*models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *DashboardRepository) upcomingTasks(ctx context.Context, studentID int64) ([]*models.Task, error) {
	sql, args, err := r.sb.Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"student_id": studentID}).
		Where(squirrel.NotEq{"status": models.TaskCompleted}).
		OrderBy("due_date ASC NULLS LAST", "id ASC").
		Limit(dashboardRecentLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build upcoming tasks query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying upcoming tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// AdminSummary aggregates system-wide counts
func (r *DashboardRepository) AdminSummary(ctx context.Context) (*models.AdminDashboard, error) {
	d := &models.AdminDashboard{UsersByRole: make(map[models.Role]int64, len(models.Roles))}
	for _, role := range models.Roles {
		d.UsersByRole[role] = 0
	}

	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE is_open), COUNT(*) FROM internships`).Scan(&d.OpenInternships, &d.TotalInternships); err != nil {
		logger.Error().Err(err).Msg("Error counting internships")
		return nil, fmt.Errorf("error counting internships: %w", err)
	}

	var err error
	if d.Applications, err = r.applicationCounts(ctx, nil); err != nil {
		return nil, err
	}
	if d.Tasks, _, err = r.taskCounts(ctx, nil); err != nil {
		return nil, err
	}
	if d.FeedbackCount, _, err = r.feedbackStats(ctx, nil); err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("error counting users by role: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var role models.Role
		var count int64
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("error scanning role count: %w", err)
		}
		d.UsersByRole[role] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role counts: %w", err)
	}
	return d, nil
}

// MentorSummary aggregates the postings a mentor is assigned to
func (r *DashboardRepository) MentorSummary(ctx context.Context, mentorID int64) (*models.MentorDashboard, error) {
	d := &models.MentorDashboard{MentorID: mentorID}

	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM internships WHERE mentor_id = $1`, mentorID).Scan(&d.AssignedInternships); err != nil {
		return nil, fmt.Errorf("error counting mentor internships: %w", err)
	}

	var err error
	mentored := squirrel.Eq{"i.mentor_id": mentorID}
	if d.Applications, err = r.applicationCounts(ctx, mentored, "internships i ON i.id = a.internship_id"); err != nil {
		return nil, err
	}
	if d.Tasks, _, err = r.taskCounts(ctx, mentored,
		"applications a ON a.id = t.application_id", "internships i ON i.id = a.internship_id"); err != nil {
		return nil, err
	}
	if d.FeedbackGiven, d.AverageRatingGiven, err = r.feedbackStats(ctx, squirrel.Eq{"f.mentor_id": mentorID}); err != nil {
		return nil, err
	}
	return d, nil
}
