package models

import "time"

// InternProgress is one approved intern's line in an internship report.
type InternProgress struct {
	ApplicationID   int64   `json:"applicationId"`
	StudentID       int64   `json:"studentId"`
	FullName        string  `json:"fullName"`
	Email           string  `json:"email"`
	TasksTotal      int64   `json:"tasksTotal"`
	TasksCompleted  int64   `json:"tasksCompleted"`
	AverageProgress float64 `json:"averageProgress"`
	AverageRating   float64 `json:"averageRating"`
}

// InternshipReport summarises one posting for its managers.
type InternshipReport struct {
	Internship      *Internship       `json:"internship"`
	Applications    ApplicationCounts `json:"applications"`
	Tasks           TaskCounts        `json:"tasks"`
	AverageProgress float64           `json:"averageProgress"`
	FeedbackCount   int64             `json:"feedbackCount"`
	AverageRating   float64           `json:"averageRating"`
	Interns         []InternProgress  `json:"interns"`
	GeneratedAt     time.Time         `json:"generatedAt"`
}

// ApplicationLine is an application joined with its posting's title and company.
type ApplicationLine struct {
	ApplicationID int64             `json:"applicationId"`
	InternshipID  int64             `json:"internshipId"`
	Title         string            `json:"title"`
	Company       string            `json:"company"`
	Status        ApplicationStatus `json:"status"`
	AppliedAt     time.Time         `json:"appliedAt"`
}

// TaskLine is a task as listed in a student report.
type TaskLine struct {
	TaskID   int64      `json:"taskId"`
	Title    string     `json:"title"`
	Status   TaskStatus `json:"status"`
	Progress int        `json:"progress"`
	DueDate  *time.Time `json:"dueDate,omitempty"`
	Rating   *int       `json:"rating,omitempty"`
}

// StudentReport lists everything a student did across postings.
type StudentReport struct {
	StudentID     int64             `json:"studentId"`
	FullName      string            `json:"fullName"`
	Email         string            `json:"email"`
	Applications  []ApplicationLine `json:"applications"`
	Tasks         []TaskLine        `json:"tasks"`
	TaskCounts    TaskCounts        `json:"taskCounts"`
	FeedbackCount int64             `json:"feedbackCount"`
	AverageRating float64           `json:"averageRating"`
	GeneratedAt   time.Time         `json:"generatedAt"`
}
