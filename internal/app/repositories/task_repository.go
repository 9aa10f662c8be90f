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

const checkTaskCompletedProgress = "chk_tasks_completed_progress"

var taskColumns = []string{
	"id", "application_id", "student_id", "assigned_by", "title", "description", "due_date",
	"status", "progress", "reminder_sent_on", "created_at", "updated_at",
}

// TaskRepository handles task database operations
type TaskRepository struct {
	baseRepository
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{baseRepository: newBaseRepository(pool)}
}

func scanTask(row scanner) (*models.Task, error) {
	t := &models.Task{}
	err := row.Scan(&t.ID, &t.ApplicationID, &t.StudentID, &t.AssignedBy, &t.Title, &t.Description,
		&t.DueDate, &t.Status, &t.Progress, &t.ReminderSentOn, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create inserts a task and fills its ID and timestamps
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	sql, args, err := r.sb.Insert("tasks").
		Columns("application_id", "student_id", "assigned_by", "title", "description", "due_date", "status", "progress").
		Values(task.ApplicationID, task.StudentID, task.AssignedBy, task.Title, task.Description, task.DueDate, task.Status, task.Progress).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create task SQL")
		return fmt.Errorf("failed to build create task query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Msg("Error executing create task query")
		return fmt.Errorf("error creating task: %w", err)
	}
	return nil
}

func (r *TaskRepository) get(ctx context.Context, id int64, forUpdate bool) (*models.Task, error) {
	q := r.sb.Select(taskColumns...).From("tasks").Where(squirrel.Eq{"id": id}).Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get task query: %w", err)
	}

	task, err := scanTask(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrTaskNotFound
		}
		logger.Error().Err(err).Int64("taskID", id).Msg("Error scanning task row")
		return nil, fmt.Errorf("error getting task by ID: %w", err)
	}
	return task, nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate locks the task row so status and progress change as one unit
func (r *TaskRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Task, error) {
	return r.get(ctx, id, true)
}

// UpdateState persists status and progress together
func (r *TaskRepository) UpdateState(ctx context.Context, task *models.Task) error {
	sql, args, err := r.sb.Update("tasks").
		SetMap(map[string]interface{}{
			"status":     task.Status,
			"progress":   task.Progress,
			"updated_at": squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": task.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update task query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&task.UpdatedAt); err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrTaskNotFound
		}
		if dberrors.IsCheckViolation(err, checkTaskCompletedProgress) {
			return fmt.Errorf("%w: status %s with progress %d", apperrors.ErrInvalidTransition, task.Status, task.Progress)
		}
		logger.Error().Err(err).Int64("taskID", task.ID).Msg("Error updating task")
		return fmt.Errorf("error updating task: %w", err)
	}
	return nil
}

// ListByStudent pages through a student's tasks, soonest due first
func (r *TaskRepository) ListByStudent(ctx context.Context, studentID int64, offset uint64, limit int) ([]*models.Task, int64, error) {
	var total int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE student_id = $1`, studentID).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting tasks")
		return nil, 0, fmt.Errorf("error counting tasks: %w", err)
	}

	sql, args, err := r.sb.Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("due_date ASC NULLS LAST", "id DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list tasks query: %w", err)
	}

	tasks, err := r.query(ctx, sql, args)
	return tasks, total, err
}

// ListByApplication returns every task on an application, oldest first
func (r *TaskRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Task, error) {
	sql, args, err := r.sb.Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"application_id": applicationID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list tasks query: %w", err)
	}
	return r.query(ctx, sql, args)
}

// dueForReminderQuery selects unfinished tasks due in [from, to] not yet reminded on day
func dueForReminderQuery(sb squirrel.StatementBuilderType, from, to, day time.Time) squirrel.SelectBuilder {
	return sb.Select(taskColumns...).
		From("tasks").
		Where(squirrel.NotEq{"status": models.TaskCompleted}).
		Where(squirrel.GtOrEq{"due_date": from}).
		Where(squirrel.LtOrEq{"due_date": to}).
		Where(squirrel.Expr("reminder_sent_on IS DISTINCT FROM ?::date", day.Format(time.DateOnly))).
		OrderBy("due_date ASC", "id ASC")
}

// ListDueForReminder returns unfinished tasks due in [from, to] that have not been reminded on day
func (r *TaskRepository) ListDueForReminder(ctx context.Context, from, to, day time.Time) ([]*models.Task, error) {
	sql, args, err := dueForReminderQuery(r.sb, from, to, day).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build due tasks query: %w", err)
	}
	return r.query(ctx, sql, args)
}

// MarkReminderSent records that the reminder for day went out
func (r *TaskRepository) MarkReminderSent(ctx context.Context, taskID int64, day time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE tasks SET reminder_sent_on = $1::date WHERE id = $2`, day.Format(time.DateOnly), taskID)
	if err != nil {
		logger.Error().Err(err).Int64("taskID", taskID).Msg("Error marking reminder sent")
		return fmt.Errorf("error marking reminder sent: %w", err)
	}
	return nil
}

func (r *TaskRepository) query(ctx context.Context, sql string, args []interface{}) ([]*models.Task, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying tasks")
		return nil, fmt.Errorf("error querying tasks: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}
