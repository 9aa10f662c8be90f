package models

import (
	"fmt"
	"time"

	"github.com/yigit/internhub/internal/pkg/apperrors"
)

const (
	RatingMin = 1
	RatingMax = 5
)

// Feedback is an immutable review left by a mentor or admin, either on a completed
// task or, when TaskID is nil, on the internship as a whole.
type Feedback struct {
	ID            int64     `json:"id" db:"id"`
	TaskID        *int64    `json:"taskId,omitempty" db:"task_id"`
	ApplicationID int64     `json:"applicationId" db:"application_id"`
	StudentID     int64     `json:"studentId" db:"student_id"`
	MentorID      int64     `json:"mentorId" db:"mentor_id"`
	Rating        int       `json:"rating" db:"rating" example:"4"`
	Comment       string    `json:"comment" db:"comment" example:"Good work"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// ValidateRating checks the 1..5 rating range.
func ValidateRating(rating int) error {
	if rating < RatingMin || rating > RatingMax {
		return fmt.Errorf("%w: got %d", apperrors.ErrInvalidRating, rating)
	}
	return nil
}
