package dto

import "time"

// AssignTaskRequest creates a task on an approved application
type AssignTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=200" example:"Write report"`
	Description string     `json:"description" binding:"required" example:"Summarize the first sprint"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// UpdateProgressRequest reports completion percentage
type UpdateProgressRequest struct {
	Progress *int `json:"progress" binding:"required" example:"50"`
}

// SetTaskStatusRequest explicitly overrides a task's status. Progress is required
// when reopening a completed task.
type SetTaskStatusRequest struct {
	Status   string `json:"status" binding:"required,oneof=pending in_progress completed" example:"in_progress"`
	Progress *int   `json:"progress,omitempty" example:"80"`
}
