package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/dberrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

// internProgressQuery lists approved interns of a posting with their task and rating totals
func internProgressQuery(sb squirrel.StatementBuilderType, internshipID int64) squirrel.SelectBuilder {
	return sb.Select(
		"a.id", "u.id", "u.full_name", "u.email",
		"COUNT(t.id)",
		"COUNT(t.id) FILTER (WHERE t.status = 'completed')",
		"COALESCE(AVG(t.progress), 0)::float8",
		"COALESCE((SELECT AVG(f.rating) FROM feedback f WHERE f.application_id = a.id), 0)::float8",
	).
		From("applications a").
		Join("users u ON u.id = a.student_id").
		LeftJoin("tasks t ON t.application_id = a.id").
		Where(squirrel.Eq{"a.internship_id": internshipID, "a.status": models.ApplicationApproved}).
		GroupBy("a.id", "u.id").
		OrderBy("u.full_name", "a.id")
}

// applicationLinesQuery lists a student's applications with the posting title and company
func applicationLinesQuery(sb squirrel.StatementBuilderType, studentID int64) squirrel.SelectBuilder {
	return sb.Select("a.id", "i.id", "i.title", "i.company", "a.status", "a.created_at").
		From("applications a").
		Join("internships i ON i.id = a.internship_id").
		Where(squirrel.Eq{"a.student_id": studentID}).
		OrderBy("a.created_at DESC", "a.id DESC")
}

// taskLinesQuery lists a student's tasks with the rating of their feedback, if any
func taskLinesQuery(sb squirrel.StatementBuilderType, studentID int64) squirrel.SelectBuilder {
	return sb.Select("t.id", "t.title", "t.status", "t.progress", "t.due_date", "f.rating").
		From("tasks t").
		LeftJoin("feedback f ON f.task_id = t.id").
		Where(squirrel.Eq{"t.student_id": studentID}).
		OrderBy("t.created_at DESC", "t.id DESC")
}

// InternshipReport aggregates one posting. Tasks and feedback are reached through its applications.
func (r *DashboardRepository) InternshipReport(ctx context.Context, internshipID int64) (*models.InternshipReport, error) {
	sql, args, err := r.sb.Select(internshipColumns...).From("internships").Where(squirrel.Eq{"id": internshipID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build report internship query: %w", err)
	}
	internship, err := scanInternship(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrInternshipNotFound
		}
		return nil, fmt.Errorf("error loading internship for report: %w", err)
	}

	rep := &models.InternshipReport{Internship: internship, Interns: []models.InternProgress{}}
	const viaApplication = "applications a ON a.id = t.application_id"
	if rep.Applications, err = r.applicationCounts(ctx, squirrel.Eq{"a.internship_id": internshipID}); err != nil {
		return nil, err
	}
	if rep.Tasks, rep.AverageProgress, err = r.taskCounts(ctx, squirrel.Eq{"a.internship_id": internshipID}, viaApplication); err != nil {
		return nil, err
	}
	if rep.FeedbackCount, rep.AverageRating, err = r.feedbackStats(ctx, squirrel.Eq{"a.internship_id": internshipID},
		"applications a ON a.id = f.application_id"); err != nil {
		return nil, err
	}

	sql, args, err = internProgressQuery(r.sb, internshipID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build intern progress query: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("internshipID", internshipID).Msg("Error querying intern progress")
		return nil, fmt.Errorf("error querying intern progress: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p models.InternProgress
		if err := rows.Scan(&p.ApplicationID, &p.StudentID, &p.FullName, &p.Email,
			&p.TasksTotal, &p.TasksCompleted, &p.AverageProgress, &p.AverageRating); err != nil {
			return nil, fmt.Errorf("error scanning intern progress row: %w", err)
		}
		rep.Interns = append(rep.Interns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating intern progress rows: %w", err)
	}
	return rep, nil
}

// StudentReport lists a student's applications and tasks with feedback totals
func (r *DashboardRepository) StudentReport(ctx context.Context, studentID int64) (*models.StudentReport, error) {
	rep := &models.StudentReport{
		StudentID:    studentID,
		Applications: []models.ApplicationLine{},
		Tasks:        []models.TaskLine{},
	}
	err := r.conn(ctx).QueryRow(ctx, `SELECT full_name, email FROM users WHERE id = $1`, studentID).Scan(&rep.FullName, &rep.Email)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading student for report: %w", err)
	}

	sql, args, err := applicationLinesQuery(r.sb, studentID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build application lines query: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying application lines: %w", err)
	}
	for rows.Next() {
		var line models.ApplicationLine
		if err := rows.Scan(&line.ApplicationID, &line.InternshipID, &line.Title, &line.Company, &line.Status, &line.AppliedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning application line: %w", err)
		}
		rep.Applications = append(rep.Applications, line)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application lines: %w", err)
	}

	sql, args, err = taskLinesQuery(r.sb, studentID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task lines query: %w", err)
	}
	rows, err = r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying task lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line models.TaskLine
		if err := rows.Scan(&line.TaskID, &line.Title, &line.Status, &line.Progress, &line.DueDate, &line.Rating); err != nil {
			return nil, fmt.Errorf("error scanning task line: %w", err)
		}
		rep.TaskCounts.Add(line.Status)
		rep.Tasks = append(rep.Tasks, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task lines: %w", err)
	}

	if rep.FeedbackCount, rep.AverageRating, err = r.feedbackStats(ctx, squirrel.Eq{"f.student_id": studentID}); err != nil {
		return nil, err
	}
	return rep, nil
}
