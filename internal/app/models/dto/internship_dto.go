package dto

import "time"

// CreateInternshipRequest is the payload for a new posting
type CreateInternshipRequest struct {
	Title        string     `json:"title" binding:"required,max=200" example:"Backend Intern"`
	Description  string     `json:"description" binding:"required" example:"Work on our Go services"`
	Company      string     `json:"company" binding:"required,max=200" example:"Acme"`
	Location     string     `json:"location" binding:"omitempty,max=200" example:"Istanbul"`
	Duration     string     `json:"duration" binding:"omitempty,max=100" example:"3 months"`
	Stipend      *string    `json:"stipend,omitempty" binding:"omitempty,max=100"`
	Requirements *string    `json:"requirements,omitempty"`
	Capacity     int        `json:"capacity" binding:"required,min=1" example:"5"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	MentorID     *int64     `json:"mentorId,omitempty" binding:"omitempty,min=1"`
}

// UpdateInternshipRequest patches a posting. Absent fields are left unchanged.
type UpdateInternshipRequest struct {
	Title        *string    `json:"title,omitempty" binding:"omitempty,max=200" example:"Backend Intern"`
	Description  *string    `json:"description,omitempty"`
	Company      *string    `json:"company,omitempty" binding:"omitempty,max=200"`
	Location     *string    `json:"location,omitempty" binding:"omitempty,max=200"`
	Duration     *string    `json:"duration,omitempty" binding:"omitempty,max=100"`
	Stipend      *string    `json:"stipend,omitempty" binding:"omitempty,max=100"`
	Requirements *string    `json:"requirements,omitempty"`
	Capacity     *int       `json:"capacity,omitempty" binding:"omitempty,min=1" example:"8"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	MentorID     *int64     `json:"mentorId,omitempty" binding:"omitempty,min=0"`
}
