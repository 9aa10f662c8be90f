package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/dberrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

const uniqueActiveApplication = "uq_applications_active"

var applicationColumns = []string{
	"id", "student_id", "internship_id", "status", "cover_letter", "resume_url",
	"decided_by", "decided_at", "created_at",
}

// ApplicationRepository handles application database operations
type ApplicationRepository struct {
	baseRepository
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{baseRepository: newBaseRepository(pool)}
}

func scanApplication(row scanner) (*models.Application, error) {
	a := &models.Application{}
	err := row.Scan(&a.ID, &a.StudentID, &a.InternshipID, &a.Status, &a.CoverLetter, &a.ResumeURL,
		&a.DecidedBy, &a.DecidedAt, &a.CreatedAt)
	return a, err
}

// Create inserts an application. The partial unique index on (student_id, internship_id)
// is what serializes concurrent applies; its violation becomes ErrAlreadyApplied.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	sql, args, err := r.sb.Insert("applications").
		Columns("student_id", "internship_id", "status", "cover_letter", "resume_url").
		Values(app.StudentID, app.InternshipID, app.Status, app.CoverLetter, app.ResumeURL).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create application SQL")
		return fmt.Errorf("failed to build create application query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&app.ID, &app.CreatedAt); err != nil {
		return applicationInsertError(err)
	}
	return nil
}

// applicationInsertError maps constraint violations of an application insert to domain errors
func applicationInsertError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, uniqueActiveApplication):
		return apperrors.ErrAlreadyApplied
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrInternshipNotFound
	}
	logger.Error().Err(err).Msg("Error executing create application query")
	return fmt.Errorf("error creating application: %w", err)
}

func (r *ApplicationRepository) get(ctx context.Context, id int64, forUpdate bool) (*models.Application, error) {
	q := r.sb.Select(applicationColumns...).From("applications").Where(squirrel.Eq{"id": id}).Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app, err := scanApplication(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error scanning application row")
		return nil, fmt.Errorf("error getting application by ID: %w", err)
	}
	return app, nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate locks the application row for the rest of the transaction
func (r *ApplicationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Application, error) {
	return r.get(ctx, id, true)
}

// UpdateDecision persists a decision or a withdrawal. The status guard makes a lost race visible as ErrInvalidTransition.
func (r *ApplicationRepository) UpdateDecision(ctx context.Context, app *models.Application) error {
	sql, args, err := r.sb.Update("applications").
		SetMap(map[string]interface{}{
			"status":     app.Status,
			"decided_by": app.DecidedBy,
			"decided_at": app.DecidedAt,
		}).
		Where(squirrel.Eq{"id": app.ID, "status": models.ApplicationPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update application query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", app.ID).Msg("Error updating application decision")
		return fmt.Errorf("error updating application: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: application %d is no longer pending", apperrors.ErrInvalidTransition, app.ID)
	}
	return nil
}

// CountByStatus counts applications of a posting in one status
func (r *ApplicationRepository) CountByStatus(ctx context.Context, internshipID int64, status models.ApplicationStatus) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("applications").
		Where(squirrel.Eq{"internship_id": internshipID, "status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count applications query: %w", err)
	}

	var count int64
	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting applications: %w", err)
	}
	return count, nil
}

// ListByStudent pages through a student's applications, newest first
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID int64, offset uint64, limit int) ([]*models.Application, int64, error) {
	return r.list(ctx, squirrel.Eq{"student_id": studentID}, offset, limit)
}

// ListByInternship pages through a posting's applications, newest first
func (r *ApplicationRepository) ListByInternship(ctx context.Context, internshipID int64, offset uint64, limit int) ([]*models.Application, int64, error) {
	return r.list(ctx, squirrel.Eq{"internship_id": internshipID}, offset, limit)
}

func (r *ApplicationRepository) list(ctx context.Context, where squirrel.Eq, offset uint64, limit int) ([]*models.Application, int64, error) {
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("applications").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count applications query: %w", err)
	}
	var total int64
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting applications")
		return nil, 0, fmt.Errorf("error counting applications: %w", err)
	}

	sql, args, err := r.sb.Select(applicationColumns...).
		From("applications").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying applications")
		return nil, 0, fmt.Errorf("error querying applications: %w", err)
	}
	defer rows.Close()

	apps := []*models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating application rows: %w", err)
	}
	return apps, total, nil
}
