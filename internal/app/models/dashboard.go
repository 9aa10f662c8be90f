package models

// ApplicationCounts holds application totals per status.
type ApplicationCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Withdrawn int64 `json:"withdrawn"`
}

// Total is the sum over all statuses.
func (c ApplicationCounts) Total() int64 { return c.Pending + c.Approved + c.Rejected + c.Withdrawn }

// Add counts one application in status st.
func (c *ApplicationCounts) Add(st ApplicationStatus) {
	switch st {
	case ApplicationPending:
		c.Pending++
	case ApplicationApproved:
		c.Approved++
	case ApplicationRejected:
		c.Rejected++
	case ApplicationWithdrawn:
		c.Withdrawn++
	}
}

// TaskCounts holds task totals per status.
type TaskCounts struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
}

// Total is the sum over all statuses.
func (c TaskCounts) Total() int64 { return c.Pending + c.InProgress + c.Completed }

// Add counts one task in status st.
func (c *TaskCounts) Add(st TaskStatus) {
	switch st {
	case TaskPending:
		c.Pending++
	case TaskInProgress:
		c.InProgress++
	case TaskCompleted:
		c.Completed++
	}
}

// StudentDashboard is the read model for a single student.
type StudentDashboard struct {
	StudentID           int64             `json:"studentId"`
	Applications        ApplicationCounts `json:"applications"`
	Tasks               TaskCounts        `json:"tasks"`
	AverageProgress     float64           `json:"averageProgress"`
	FeedbackCount       int64             `json:"feedbackCount"`
	AverageRating       float64           `json:"averageRating"`
	UnreadNotifications int64             `json:"unreadNotifications"`
	RecentApplications  []*Application    `json:"recentApplications"`
	UpcomingTasks       []*Task           `json:"upcomingTasks"`
}

// AdminDashboard is the system-wide read model.
type AdminDashboard struct {
	OpenInternships  int64             `json:"openInternships"`
	TotalInternships int64             `json:"totalInternships"`
	Applications     ApplicationCounts `json:"applications"`
	Tasks            TaskCounts        `json:"tasks"`
	UsersByRole      map[Role]int64    `json:"usersByRole"`
	FeedbackCount    int64             `json:"feedbackCount"`
}

// MentorDashboard is the read model for a mentor's assigned postings.
type MentorDashboard struct {
	MentorID            int64             `json:"mentorId"`
	AssignedInternships int64             `json:"assignedInternships"`
	Applications        ApplicationCounts `json:"applications"`
	Tasks               TaskCounts        `json:"tasks"`
	FeedbackGiven       int64             `json:"feedbackGiven"`
	AverageRatingGiven  float64           `json:"averageRatingGiven"`
}
