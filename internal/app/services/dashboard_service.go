package services

import (
	"context"

	authz "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

// DashboardService builds per-role read models from current state
type DashboardService interface {
	Student(ctx context.Context, studentID, actorID int64) (*models.StudentDashboard, error)
	Admin(ctx context.Context, actorID int64) (*models.AdminDashboard, error)
	Mentor(ctx context.Context, mentorID, actorID int64) (*models.MentorDashboard, error)
	InternshipReport(ctx context.Context, internshipID, actorID int64) (*models.InternshipReport, error)
	StudentReport(ctx context.Context, studentID, actorID int64) (*models.StudentReport, error)
}

type dashboardServiceImpl struct {
	repo  repositories.IDashboardRepository
	authz *authz.AuthorizationService
	clock Clock
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repo repositories.IDashboardRepository, authorization *authz.AuthorizationService, clock Clock) DashboardService {
	return &dashboardServiceImpl{repo: repo, authz: authorization, clock: clock}
}

// Student is visible to the student and to staff
func (s *dashboardServiceImpl) Student(ctx context.Context, studentID, actorID int64) (*models.StudentDashboard, error) {
	if studentID != actorID {
		if _, err := s.authz.RequireRole(ctx, actorID, models.RoleAdmin, models.RoleMentor); err != nil {
			return nil, err
		}
	}
	return s.repo.StudentSummary(ctx, studentID)
}

func (s *dashboardServiceImpl) Admin(ctx context.Context, actorID int64) (*models.AdminDashboard, error) {
	if _, err := s.authz.RequireRole(ctx, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.AdminSummary(ctx)
}

// Mentor is visible to the mentor and to admins
func (s *dashboardServiceImpl) Mentor(ctx context.Context, mentorID, actorID int64) (*models.MentorDashboard, error) {
	if mentorID != actorID {
		if _, err := s.authz.RequireRole(ctx, actorID, models.RoleAdmin); err != nil {
			return nil, err
		}
	} else if _, err := s.authz.RequireRole(ctx, actorID, models.RoleMentor); err != nil {
		return nil, apperrors.NewForbiddenError("mentor dashboard is only available to mentors")
	}
	return s.repo.MentorSummary(ctx, mentorID)
}

// InternshipReport is available to the posting's owning admin and assigned mentor
func (s *dashboardServiceImpl) InternshipReport(ctx context.Context, internshipID, actorID int64) (*models.InternshipReport, error) {
	if _, _, err := s.authz.ManagerOfInternship(ctx, internshipID, actorID); err != nil {
		return nil, err
	}
	rep, err := s.repo.InternshipReport(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	rep.GeneratedAt = s.clock.now()
	return rep, nil
}

// StudentReport is visible to the student and to staff
func (s *dashboardServiceImpl) StudentReport(ctx context.Context, studentID, actorID int64) (*models.StudentReport, error) {
	if studentID != actorID {
		if _, err := s.authz.RequireRole(ctx, actorID, models.RoleAdmin, models.RoleMentor); err != nil {
			return nil, err
		}
	} else if _, err := s.authz.LoadActor(ctx, actorID); err != nil {
		return nil, err
	}
	rep, err := s.repo.StudentReport(ctx, studentID)
	if err != nil {
		return nil, err
	}
	rep.GeneratedAt = s.clock.now()
	return rep, nil
}
