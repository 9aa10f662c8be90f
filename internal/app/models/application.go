package models

import (
	"fmt"
	"time"

	"github.com/yigit/internhub/internal/pkg/apperrors"
)

// ApplicationStatus is the state of an application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// applicationTransitions is the full transition table. Only pending has a way out.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:   {ApplicationApproved, ApplicationRejected, ApplicationWithdrawn},
	ApplicationApproved:  nil,
	ApplicationRejected:  nil,
	ApplicationWithdrawn: nil,
}

// BlocksReapply reports whether an application in status s keeps its student
// from applying to the same internship again.
func (s ApplicationStatus) BlocksReapply() bool {
	return s != ApplicationRejected && s != ApplicationWithdrawn
}

// ParseApplicationStatus validates a status name.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	if _, ok := applicationTransitions[st]; !ok {
		return "", fmt.Errorf("%w: unknown application status %q", apperrors.ErrValidationFailed, s)
	}
	return st, nil
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s ApplicationStatus) IsTerminal() bool {
	return len(applicationTransitions[s]) == 0
}

// ParseDecision validates the outcome of a review: only approved or rejected.
func ParseDecision(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case ApplicationApproved, ApplicationRejected:
		return st, nil
	default:
		return "", fmt.Errorf("%w: decision must be approved or rejected, got %q", apperrors.ErrValidationFailed, s)
	}
}

// Application is a student's request to join an internship.
type Application struct {
	ID           int64             `json:"id" db:"id"`
	StudentID    int64             `json:"studentId" db:"student_id"`
	InternshipID int64             `json:"internshipId" db:"internship_id"`
	Status       ApplicationStatus `json:"status" db:"status" example:"pending"`
	CoverLetter  *string           `json:"coverLetter,omitempty" db:"cover_letter"`
	ResumeURL    *string           `json:"resumeUrl,omitempty" db:"resume_url"`
	DecidedBy    *int64            `json:"decidedBy,omitempty" db:"decided_by"`
	DecidedAt    *time.Time        `json:"decidedAt,omitempty" db:"decided_at"`
	CreatedAt    time.Time         `json:"createdAt" db:"created_at"`
}

// Decide moves a pending application to a terminal outcome.
func (a *Application) Decide(outcome ApplicationStatus, deciderID int64, now time.Time) error {
	if _, err := ParseDecision(string(outcome)); err != nil {
		return err
	}
	if !a.Status.CanTransitionTo(outcome) {
		return fmt.Errorf("%w: application %d is %s", apperrors.ErrInvalidTransition, a.ID, a.Status)
	}
	a.Status = outcome
	a.DecidedBy = &deciderID
	a.DecidedAt = &now
	return nil
}

// Withdraw lets the applicant pull a pending application. The student is
// recorded as the decider.
func (a *Application) Withdraw(studentID int64, now time.Time) error {
	if a.StudentID != studentID {
		return fmt.Errorf("%w: application %d belongs to another student", apperrors.ErrUnauthorized, a.ID)
	}
	if !a.Status.CanTransitionTo(ApplicationWithdrawn) {
		return fmt.Errorf("%w: application %d is %s", apperrors.ErrInvalidTransition, a.ID, a.Status)
	}
	a.Status = ApplicationWithdrawn
	a.DecidedBy = &studentID
	a.DecidedAt = &now
	return nil
}
