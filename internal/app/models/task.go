package models

import (
	"fmt"
	"time"

	"github.com/yigit/internhub/internal/pkg/apperrors"
)

// TaskStatus is the state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

const (
	ProgressMin = 0
	ProgressMax = 100
)

// taskTransitions lists the explicit status changes. Completed can be reopened,
// but only through SetStatus with an explicit progress value.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:    {TaskInProgress, TaskCompleted},
	TaskInProgress: {TaskCompleted},
	TaskCompleted:  {TaskInProgress, TaskPending},
}

// ParseTaskStatus validates a status name.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	if _, ok := taskTransitions[st]; !ok {
		return "", fmt.Errorf("%w: unknown task status %q", apperrors.ErrValidationFailed, s)
	}
	return st, nil
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Task is a unit of work assigned on an approved application.
// Status completed holds exactly when progress is 100.
type Task struct {
	ID             int64      `json:"id" db:"id"`
	ApplicationID  int64      `json:"applicationId" db:"application_id"`
	StudentID      int64      `json:"studentId" db:"student_id"`
	AssignedBy     int64      `json:"assignedBy" db:"assigned_by"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	DueDate        *time.Time `json:"dueDate,omitempty" db:"due_date"`
	Status         TaskStatus `json:"status" db:"status" example:"pending"`
	Progress       int        `json:"progress" db:"progress" example:"0"`
	ReminderSentOn *time.Time `json:"-" db:"reminder_sent_on"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// NewTask returns a pending task with no progress.
func NewTask(applicationID, studentID, assignerID int64, title, description string, due *time.Time) *Task {
	return &Task{
		ApplicationID: applicationID,
		StudentID:     studentID,
		AssignedBy:    assignerID,
		Title:         title,
		Description:   description,
		DueDate:       due,
		Status:        TaskPending,
		Progress:      ProgressMin,
	}
}

// ApplyProgress records a progress report.
// 100 completes the task, anything strictly between 0 and 100 puts it in progress,
// and 0 leaves the status alone. A completed task cannot go back below 100 here.
func (t *Task) ApplyProgress(pct int) error {
	if pct < ProgressMin || pct > ProgressMax {
		return fmt.Errorf("%w: got %d", apperrors.ErrOutOfRange, pct)
	}
	if t.Status == TaskCompleted {
		if pct == ProgressMax {
			return nil
		}
		return fmt.Errorf("%w: task %d is completed, reopen it explicitly", apperrors.ErrInvalidTransition, t.ID)
	}

	switch {
	case pct == ProgressMax:
		t.Status = TaskCompleted
	case pct > ProgressMin:
		t.Status = TaskInProgress
	}
	t.Progress = pct
	return nil
}

// SetStatus is the explicit status override. Completing forces progress to 100.
// Leaving completed requires an explicit progress below 100. For the other targets
// progress is kept unless one is given, also when the status does not change.
func (t *Task) SetStatus(next TaskStatus, progress *int) error {
	if _, err := ParseTaskStatus(string(next)); err != nil {
		return err
	}
	if progress != nil && (*progress < ProgressMin || *progress > ProgressMax) {
		return fmt.Errorf("%w: got %d", apperrors.ErrOutOfRange, *progress)
	}
	if next == t.Status {
		return t.adjustProgress(progress)
	}
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, t.Status, next)
	}

	if next == TaskCompleted {
		t.Status = TaskCompleted
		t.Progress = ProgressMax
		return nil
	}

	newProgress := t.Progress
	if progress != nil {
		newProgress = *progress
	} else if t.Status == TaskCompleted {
		return fmt.Errorf("%w: reopening a completed task needs an explicit progress below %d", apperrors.ErrInvalidTransition, ProgressMax)
	}
	if newProgress == ProgressMax {
		return fmt.Errorf("%w: progress %d requires status %s", apperrors.ErrInvalidTransition, ProgressMax, TaskCompleted)
	}

	t.Status = next
	t.Progress = newProgress
	return nil
}

// adjustProgress applies an explicit progress without a status change.
func (t *Task) adjustProgress(progress *int) error {
	if progress == nil || *progress == t.Progress {
		return nil
	}
	if t.Status == TaskCompleted {
		return fmt.Errorf("%w: task %d is completed, set another status to change its progress", apperrors.ErrInvalidTransition, t.ID)
	}
	if *progress == ProgressMax {
		return fmt.Errorf("%w: progress %d requires status %s", apperrors.ErrInvalidTransition, ProgressMax, TaskCompleted)
	}
	t.Progress = *progress
	return nil
}

// IsDueWithin reports whether the task is unfinished and due in [from, to].
func (t *Task) IsDueWithin(from, to time.Time) bool {
	if t.Status == TaskCompleted || t.DueDate == nil {
		return false
	}
	return !t.DueDate.Before(from) && !t.DueDate.After(to)
}
