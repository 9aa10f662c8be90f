package models

import (
	"time"
)

// Internship is a posting created by an admin. A mentor may be assigned to review
// its applications and supervise the resulting tasks.
type Internship struct {
	ID           int64      `json:"id" db:"id" example:"7"`
	Title        string     `json:"title" db:"title" example:"Backend Intern"`
	Description  string     `json:"description" db:"description"`
	Company      string     `json:"company" db:"company" example:"Acme"`
	Location     string     `json:"location" db:"location" example:"Istanbul"`
	Duration     string     `json:"duration" db:"duration" example:"3 months"`
	Stipend      *string    `json:"stipend,omitempty" db:"stipend"`
	Requirements *string    `json:"requirements,omitempty" db:"requirements"`
	Capacity     int        `json:"capacity" db:"capacity" example:"5"`
	Deadline     *time.Time `json:"deadline,omitempty" db:"deadline"`
	IsOpen       bool       `json:"isOpen" db:"is_open"`
	OwnerID      int64      `json:"ownerId" db:"owner_id"`
	MentorID     *int64     `json:"mentorId,omitempty" db:"mentor_id"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	ClosedAt     *time.Time `json:"closedAt,omitempty" db:"closed_at"`
}

// AcceptsApplications reports whether the posting is open and its deadline, if any, has not passed.
func (i *Internship) AcceptsApplications(now time.Time) bool {
	if !i.IsOpen {
		return false
	}
	return i.Deadline == nil || !now.After(*i.Deadline)
}

// Close marks the posting closed. Closing twice keeps the first close time.
func (i *Internship) Close(now time.Time) {
	if !i.IsOpen {
		return
	}
	i.IsOpen = false
	i.ClosedAt = &now
}

// IsManagedBy reports whether user may review applications and supervise tasks
// for this posting: the owning admin or the assigned mentor.
func (i *Internship) IsManagedBy(user *User) bool {
	if user == nil || !user.IsActive {
		return false
	}
	switch user.Role {
	case RoleAdmin:
		return i.OwnerID == user.ID
	case RoleMentor:
		return i.MentorID != nil && *i.MentorID == user.ID
	case RoleStudent:
		return false
	default:
		return false
	}
}
