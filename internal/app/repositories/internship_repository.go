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

var internshipColumns = []string{
	"id", "title", "description", "company", "location", "duration", "stipend", "requirements",
	"capacity", "deadline", "is_open", "owner_id", "mentor_id", "created_at", "closed_at",
}

// InternshipRepository handles internship database operations
type InternshipRepository struct {
	baseRepository
}

// NewInternshipRepository creates a new InternshipRepository
func NewInternshipRepository(pool *pgxpool.Pool) *InternshipRepository {
	return &InternshipRepository{baseRepository: newBaseRepository(pool)}
}

func scanInternship(row scanner) (*models.Internship, error) {
	in := &models.Internship{}
	err := row.Scan(&in.ID, &in.Title, &in.Description, &in.Company, &in.Location, &in.Duration,
		&in.Stipend, &in.Requirements, &in.Capacity, &in.Deadline, &in.IsOpen, &in.OwnerID,
		&in.MentorID, &in.CreatedAt, &in.ClosedAt)
	return in, err
}

// Create inserts a posting and fills its ID and creation time
func (r *InternshipRepository) Create(ctx context.Context, in *models.Internship) error {
	sql, args, err := r.sb.Insert("internships").
		Columns("title", "description", "company", "location", "duration", "stipend", "requirements",
			"capacity", "deadline", "is_open", "owner_id", "mentor_id").
		Values(in.Title, in.Description, in.Company, in.Location, in.Duration, in.Stipend, in.Requirements,
			in.Capacity, in.Deadline, in.IsOpen, in.OwnerID, in.MentorID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create internship SQL")
		return fmt.Errorf("failed to build create internship query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&in.ID, &in.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error executing create internship query")
		return fmt.Errorf("error creating internship: %w", err)
	}
	return nil
}

func (r *InternshipRepository) get(ctx context.Context, id int64, forUpdate bool) (*models.Internship, error) {
	q := r.sb.Select(internshipColumns...).From("internships").Where(squirrel.Eq{"id": id}).Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get internship SQL")
		return nil, fmt.Errorf("failed to build get internship query: %w", err)
	}

	in, err := scanInternship(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrInternshipNotFound
		}
		logger.Error().Err(err).Int64("internshipID", id).Msg("Error scanning internship row")
		return nil, fmt.Errorf("error getting internship by ID: %w", err)
	}
	return in, nil
}

// GetByID retrieves an internship by ID
func (r *InternshipRepository) GetByID(ctx context.Context, id int64) (*models.Internship, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate locks the posting row for the rest of the transaction
func (r *InternshipRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Internship, error) {
	return r.get(ctx, id, true)
}

// UpdateOpenState persists is_open and closed_at
func (r *InternshipRepository) UpdateOpenState(ctx context.Context, in *models.Internship) error {
	sql, args, err := r.sb.Update("internships").
		SetMap(map[string]interface{}{
			"is_open":   in.IsOpen,
			"closed_at": in.ClosedAt,
		}).
		Where(squirrel.Eq{"id": in.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update internship SQL")
		return fmt.Errorf("failed to build update internship query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("internshipID", in.ID).Msg("Error updating internship")
		return fmt.Errorf("error updating internship: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInternshipNotFound
	}
	return nil
}

// UpdateDetails persists the editable fields of a posting
func (r *InternshipRepository) UpdateDetails(ctx context.Context, in *models.Internship) error {
	sql, args, err := r.sb.Update("internships").
		SetMap(map[string]interface{}{
			"title":        in.Title,
			"description":  in.Description,
			"company":      in.Company,
			"location":     in.Location,
			"duration":     in.Duration,
			"stipend":      in.Stipend,
			"requirements": in.Requirements,
			"capacity":     in.Capacity,
			"deadline":     in.Deadline,
			"mentor_id":    in.MentorID,
		}).
		Where(squirrel.Eq{"id": in.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update internship details SQL")
		return fmt.Errorf("failed to build update internship details query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("internshipID", in.ID).Msg("Error updating internship details")
		return fmt.Errorf("error updating internship details: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInternshipNotFound
	}
	return nil
}

// Delete removes a posting. Applications, tasks and feedback go with it (ON DELETE CASCADE).
func (r *InternshipRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("internships").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete internship query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("internshipID", id).Msg("Error deleting internship")
		return fmt.Errorf("error deleting internship: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInternshipNotFound
	}
	return nil
}

// listOpenPageQuery selects up to limit open postings after the cursor, newest first
func listOpenPageQuery(sb squirrel.StatementBuilderType, after *Cursor, limit int) squirrel.SelectBuilder {
	return sb.Select(internshipColumns...).
		From("internships").
		Where(squirrel.Eq{"is_open": true}).
		Where(keysetBefore(after)).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
}

// ListOpenPage returns up to limit open postings after the cursor, newest first
func (r *InternshipRepository) ListOpenPage(ctx context.Context, after *Cursor, limit int) ([]*models.Internship, error) {
	sql, args, err := listOpenPageQuery(r.sb, after, limit).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list open internships SQL")
		return nil, fmt.Errorf("failed to build list open internships query: %w", err)
	}
	return r.query(ctx, sql, args)
}

// ListByOwner returns every posting created by an admin
func (r *InternshipRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Internship, error) {
	sql, args, err := r.sb.Select(internshipColumns...).
		From("internships").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list internships by owner query: %w", err)
	}
	return r.query(ctx, sql, args)
}

func (r *InternshipRepository) query(ctx context.Context, sql string, args []interface{}) ([]*models.Internship, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying internships")
		return nil, fmt.Errorf("error querying internships: %w", err)
	}
	defer rows.Close()

	list := []*models.Internship{}
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning internship row: %w", err)
		}
		list = append(list, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating internship rows: %w", err)
	}
	return list, nil
}
