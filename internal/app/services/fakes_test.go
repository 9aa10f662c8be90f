package services

import (
	"context"
	"maps"
	"mime/multipart"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/db"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/auth"
	"github.com/yigit/internhub/internal/pkg/email"
	"github.com/yigit/internhub/internal/pkg/filestorage"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() Clock { return func() time.Time { return testNow } }

// memStore is an in-memory database. Rows are stored by value so callers never
// share memory with the store, and a failed transaction restores a snapshot.
type memStore struct {
	mu            sync.Mutex
	seq           int64
	users         map[int64]models.User
	internships   map[int64]models.Internship
	applications  map[int64]models.Application
	tasks         map[int64]models.Task
	feedback      map[int64]models.Feedback
	notifications map[int64]models.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[int64]models.User{},
		internships:   map[int64]models.Internship{},
		applications:  map[int64]models.Application{},
		tasks:         map[int64]models.Task{},
		feedback:      map[int64]models.Feedback{},
		notifications: map[int64]models.Notification{},
	}
}

func (m *memStore) nextID() int64 {
	m.seq++
	return m.seq
}

// stamp gives rows strictly increasing creation times so keyset order is stable
func (m *memStore) stamp() time.Time {
	return testNow.Add(time.Duration(m.seq) * time.Second)
}

// WithTransaction implements Transactor with snapshot rollback
func (m *memStore) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	m.mu.Lock()
	snap := &memStore{
		seq:           m.seq,
		users:         maps.Clone(m.users),
		internships:   maps.Clone(m.internships),
		applications:  maps.Clone(m.applications),
		tasks:         maps.Clone(m.tasks),
		feedback:      maps.Clone(m.feedback),
		notifications: maps.Clone(m.notifications),
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.seq = snap.seq
		m.users, m.internships, m.applications = snap.users, snap.internships, snap.applications
		m.tasks, m.feedback, m.notifications = snap.tasks, snap.feedback, snap.notifications
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) addUser(role models.Role, name string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.User{
		ID:        m.nextID(),
		Email:     strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		FullName:  name,
		Role:      role,
		IsActive:  true,
		CreatedAt: testNow,
	}
	m.users[u.ID] = u
	return &u
}

// users

type fakeUsers struct{ *memStore }

func (f fakeUsers) CreateUser(_ context.Context, user *models.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = f.nextID()
	user.CreatedAt = f.stamp()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = *user
	return user.ID, nil
}

func (f fakeUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (f fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (f fakeUsers) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.LastLoginAt = &at
	f.users[id] = u
	return nil
}

func (f fakeUsers) GetUserEmail(ctx context.Context, id int64) (string, error) {
	u, err := f.GetUserByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}

func (f fakeUsers) UpdateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	cur.FullName, cur.Phone, cur.Department, cur.IsActive = user.FullName, user.Phone, user.Department, user.IsActive
	cur.UpdatedAt = testNow
	f.users[user.ID] = cur
	user.UpdatedAt = cur.UpdatedAt
	return nil
}

func (f fakeUsers) ListUsers(_ context.Context, filter repositories.UserFilter, offset uint64, limit int) ([]*models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	search := strings.ToLower(filter.Search)
	var all []*models.User
	for _, u := range f.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Active != nil && u.IsActive != *filter.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.FullName), search) && !strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		u := u
		all = append(all, &u)
	}
	newestFirst(all, func(u *models.User) (time.Time, int64) { return u.CreatedAt, u.ID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

// internships

type fakeInternships struct{ *memStore }

func (f fakeInternships) Create(_ context.Context, in *models.Internship) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	in.ID = f.nextID()
	in.CreatedAt = f.stamp()
	f.internships[in.ID] = *in
	return nil
}

func (f fakeInternships) GetByID(_ context.Context, id int64) (*models.Internship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.internships[id]
	if !ok {
		return nil, apperrors.ErrInternshipNotFound
	}
	return &in, nil
}

func (f fakeInternships) GetByIDForUpdate(ctx context.Context, id int64) (*models.Internship, error) {
	return f.GetByID(ctx, id)
}

func (f fakeInternships) UpdateOpenState(_ context.Context, in *models.Internship) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.internships[in.ID]
	if !ok {
		return apperrors.ErrInternshipNotFound
	}
	cur.IsOpen, cur.ClosedAt = in.IsOpen, in.ClosedAt
	f.internships[in.ID] = cur
	return nil
}

func (f fakeInternships) UpdateDetails(_ context.Context, in *models.Internship) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.internships[in.ID]
	if !ok {
		return apperrors.ErrInternshipNotFound
	}
	if in.MentorID != nil {
		if _, ok := f.users[*in.MentorID]; !ok {
			return apperrors.ErrUserNotFound
		}
	}
	in.IsOpen, in.ClosedAt, in.CreatedAt, in.OwnerID = cur.IsOpen, cur.ClosedAt, cur.CreatedAt, cur.OwnerID
	f.internships[in.ID] = *in
	return nil
}

// Delete cascades like the foreign keys do
func (f fakeInternships) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.internships[id]; !ok {
		return apperrors.ErrInternshipNotFound
	}
	delete(f.internships, id)
	for appID, app := range f.applications {
		if app.InternshipID != id {
			continue
		}
		delete(f.applications, appID)
		for taskID, t := range f.tasks {
			if t.ApplicationID == appID {
				delete(f.tasks, taskID)
			}
		}
		for fbID, fb := range f.feedback {
			if fb.ApplicationID == appID {
				delete(f.feedback, fbID)
			}
		}
	}
	return nil
}

func newestFirst[T any](items []T, key func(T) (time.Time, int64)) {
	slices.SortFunc(items, func(a, b T) int {
		ta, ia := key(a)
		tb, ib := key(b)
		if c := tb.Compare(ta); c != 0 {
			return c
		}
		return int(ib - ia)
	})
}

func before(t time.Time, id int64, after *repositories.Cursor) bool {
	if after == nil {
		return true
	}
	return t.Before(after.CreatedAt) || (t.Equal(after.CreatedAt) && id < after.ID)
}

func (f fakeInternships) ListOpenPage(_ context.Context, after *repositories.Cursor, limit int) ([]*models.Internship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Internship
	for _, in := range f.internships {
		if in.IsOpen && before(in.CreatedAt, in.ID, after) {
			in := in
			out = append(out, &in)
		}
	}
	newestFirst(out, func(i *models.Internship) (time.Time, int64) { return i.CreatedAt, i.ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeInternships) ListByOwner(_ context.Context, ownerID int64) ([]*models.Internship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Internship
	for _, in := range f.internships {
		if in.OwnerID == ownerID {
			in := in
			out = append(out, &in)
		}
	}
	newestFirst(out, func(i *models.Internship) (time.Time, int64) { return i.CreatedAt, i.ID })
	return out, nil
}

// applications

type fakeApplications struct{ *memStore }

func (f fakeApplications) Create(_ context.Context, app *models.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.applications {
		if a.StudentID == app.StudentID && a.InternshipID == app.InternshipID && a.Status.BlocksReapply() {
			return apperrors.ErrAlreadyApplied
		}
	}
	app.ID = f.nextID()
	app.CreatedAt = f.stamp()
	f.applications[app.ID] = *app
	return nil
}

func (f fakeApplications) GetByID(_ context.Context, id int64) (*models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.applications[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	return &a, nil
}

func (f fakeApplications) GetByIDForUpdate(ctx context.Context, id int64) (*models.Application, error) {
	return f.GetByID(ctx, id)
}

func (f fakeApplications) UpdateDecision(_ context.Context, app *models.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.applications[app.ID]
	if !ok || cur.Status != models.ApplicationPending {
		return apperrors.ErrInvalidTransition
	}
	cur.Status, cur.DecidedBy, cur.DecidedAt = app.Status, app.DecidedBy, app.DecidedAt
	f.applications[app.ID] = cur
	return nil
}

func (f fakeApplications) CountByStatus(_ context.Context, internshipID int64, status models.ApplicationStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, a := range f.applications {
		if a.InternshipID == internshipID && a.Status == status {
			n++
		}
	}
	return n, nil
}

func (f fakeApplications) list(match func(models.Application) bool, offset uint64, limit int) ([]*models.Application, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*models.Application
	for _, a := range f.applications {
		if match(a) {
			a := a
			all = append(all, &a)
		}
	}
	newestFirst(all, func(a *models.Application) (time.Time, int64) { return a.CreatedAt, a.ID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func paginate[T any](all []T, offset uint64, limit int) []T {
	if int(offset) >= len(all) {
		return nil
	}
	end := min(int(offset)+limit, len(all))
	return all[offset:end]
}

func (f fakeApplications) ListByStudent(_ context.Context, studentID int64, offset uint64, limit int) ([]*models.Application, int64, error) {
	return f.list(func(a models.Application) bool { return a.StudentID == studentID }, offset, limit)
}

func (f fakeApplications) ListByInternship(_ context.Context, internshipID int64, offset uint64, limit int) ([]*models.Application, int64, error) {
	return f.list(func(a models.Application) bool { return a.InternshipID == internshipID }, offset, limit)
}

// tasks

type fakeTasks struct{ *memStore }

func (f fakeTasks) Create(_ context.Context, t *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID()
	t.CreatedAt = f.stamp()
	t.UpdatedAt = t.CreatedAt
	f.tasks[t.ID] = *t
	return nil
}

func (f fakeTasks) GetByID(_ context.Context, id int64) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, apperrors.ErrTaskNotFound
	}
	return &t, nil
}

func (f fakeTasks) GetByIDForUpdate(ctx context.Context, id int64) (*models.Task, error) {
	return f.GetByID(ctx, id)
}

// UpdateState enforces the same check constraints as the schema
func (f fakeTasks) UpdateState(_ context.Context, t *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.tasks[t.ID]
	if !ok {
		return apperrors.ErrTaskNotFound
	}
	if t.Progress < 0 || t.Progress > 100 {
		return apperrors.ErrOutOfRange
	}
	if (t.Status == models.TaskCompleted) != (t.Progress == 100) {
		return apperrors.ErrInvalidTransition
	}
	cur.Status, cur.Progress, cur.UpdatedAt = t.Status, t.Progress, t.UpdatedAt
	f.tasks[t.ID] = cur
	return nil
}

func (f fakeTasks) ListByStudent(_ context.Context, studentID int64, offset uint64, limit int) ([]*models.Task, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*models.Task
	for _, t := range f.tasks {
		if t.StudentID == studentID {
			t := t
			all = append(all, &t)
		}
	}
	newestFirst(all, func(t *models.Task) (time.Time, int64) { return t.CreatedAt, t.ID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (f fakeTasks) ListByApplication(_ context.Context, applicationID int64) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Task
	for _, t := range f.tasks {
		if t.ApplicationID == applicationID {
			t := t
			out = append(out, &t)
		}
	}
	newestFirst(out, func(t *models.Task) (time.Time, int64) { return t.CreatedAt, t.ID })
	return out, nil
}

func (f fakeTasks) ListDueForReminder(_ context.Context, from, to, day time.Time) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Task
	for _, t := range f.tasks {
		if t.Status == models.TaskCompleted || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(from) || t.DueDate.After(to) {
			continue
		}
		if t.ReminderSentOn != nil && t.ReminderSentOn.Equal(day) {
			continue
		}
		t := t
		out = append(out, &t)
	}
	slices.SortFunc(out, func(a, b *models.Task) int { return a.DueDate.Compare(*b.DueDate) })
	return out, nil
}

func (f fakeTasks) MarkReminderSent(_ context.Context, taskID int64, day time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[taskID]
	if !ok {
		return apperrors.ErrTaskNotFound
	}
	t.ReminderSentOn = &day
	f.tasks[taskID] = t
	return nil
}

// feedback

type fakeFeedback struct{ *memStore }

func (f fakeFeedback) Create(_ context.Context, fb *models.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.feedback {
		sameTask := fb.TaskID != nil && existing.TaskID != nil && *fb.TaskID == *existing.TaskID
		sameApp := fb.TaskID == nil && existing.TaskID == nil && fb.ApplicationID == existing.ApplicationID
		if sameTask || sameApp {
			return apperrors.ErrDuplicateFeedback
		}
	}
	fb.ID = f.nextID()
	fb.CreatedAt = f.stamp()
	f.feedback[fb.ID] = *fb
	return nil
}

func (f fakeFeedback) ListByStudent(_ context.Context, studentID int64) ([]*models.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Feedback
	for _, fb := range f.feedback {
		if fb.StudentID == studentID {
			fb := fb
			out = append(out, &fb)
		}
	}
	newestFirst(out, func(fb *models.Feedback) (time.Time, int64) { return fb.CreatedAt, fb.ID })
	return out, nil
}

// notifications

type fakeNotifications struct{ *memStore }

func (f fakeNotifications) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = f.nextID()
	n.CreatedAt = f.stamp()
	f.notifications[n.ID] = *n
	return nil
}

func (f fakeNotifications) GetByID(_ context.Context, id int64) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return nil, apperrors.ErrNotificationNotFound
	}
	return &n, nil
}

func (f fakeNotifications) MarkRead(_ context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return apperrors.ErrNotificationNotFound
	}
	if !n.IsRead {
		n.IsRead, n.ReadAt = true, &at
	}
	f.notifications[id] = n
	return nil
}

func (f fakeNotifications) MarkAllRead(_ context.Context, userID int64, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var changed int64
	for id, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead, n.ReadAt = true, &at
			f.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (f fakeNotifications) userNotifications(userID int64, unreadOnly bool) []*models.Notification {
	var out []*models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			n := n
			out = append(out, &n)
		}
	}
	newestFirst(out, func(n *models.Notification) (time.Time, int64) { return n.CreatedAt, n.ID })
	return out
}

func (f fakeNotifications) ListUnreadPage(_ context.Context, userID int64, after *repositories.Cursor, limit int) ([]*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.userNotifications(userID, true) {
		if before(n.CreatedAt, n.ID, after) {
			out = append(out, n)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeNotifications) CountUnread(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.userNotifications(userID, true))), nil
}

func (f fakeNotifications) ListByUser(_ context.Context, userID int64, offset uint64, limit int) ([]*models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.userNotifications(userID, false)
	return paginate(all, offset, limit), int64(len(all)), nil
}

// dashboard

type fakeDashboard struct{ *memStore }

func (f fakeDashboard) StudentSummary(_ context.Context, studentID int64) (*models.StudentDashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &models.StudentDashboard{StudentID: studentID}
	for _, a := range f.applications {
		if a.StudentID == studentID {
			d.Applications.Add(a.Status)
		}
	}
	for _, t := range f.tasks {
		if t.StudentID == studentID {
			d.Tasks.Add(t.Status)
		}
	}
	var ratings int
	for _, fb := range f.feedback {
		if fb.StudentID == studentID {
			d.FeedbackCount++
			ratings += fb.Rating
		}
	}
	if d.FeedbackCount > 0 {
		d.AverageRating = float64(ratings) / float64(d.FeedbackCount)
	}
	d.UnreadNotifications = int64(len(fakeNotifications(f).userNotifications(studentID, true)))
	return d, nil
}

func (f fakeDashboard) AdminSummary(_ context.Context) (*models.AdminDashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &models.AdminDashboard{UsersByRole: map[models.Role]int64{}}
	for _, in := range f.internships {
		d.TotalInternships++
		if in.IsOpen {
			d.OpenInternships++
		}
	}
	for _, a := range f.applications {
		if a.Status == models.ApplicationPending {
			d.Applications.Pending++
		}
	}
	for _, u := range f.users {
		d.UsersByRole[u.Role]++
	}
	d.FeedbackCount = int64(len(f.feedback))
	return d, nil
}

func (f fakeDashboard) MentorSummary(_ context.Context, mentorID int64) (*models.MentorDashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &models.MentorDashboard{MentorID: mentorID}
	for _, in := range f.internships {
		if in.MentorID != nil && *in.MentorID == mentorID {
			d.AssignedInternships++
		}
	}
	return d, nil
}

func (f fakeDashboard) InternshipReport(_ context.Context, internshipID int64) (*models.InternshipReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.internships[internshipID]
	if !ok {
		return nil, apperrors.ErrInternshipNotFound
	}
	r := &models.InternshipReport{Internship: &in}
	var progress, ratings int
	var taskCount int
	for _, a := range f.applications {
		if a.InternshipID != internshipID {
			continue
		}
		r.Applications.Add(a.Status)
		var line *models.InternProgress
		if a.Status == models.ApplicationApproved {
			u := f.users[a.StudentID]
			r.Interns = append(r.Interns, models.InternProgress{ApplicationID: a.ID, StudentID: u.ID, FullName: u.FullName, Email: u.Email})
			line = &r.Interns[len(r.Interns)-1]
		}
		var internProgress int
		for _, t := range f.tasks {
			if t.ApplicationID != a.ID {
				continue
			}
			r.Tasks.Add(t.Status)
			progress += t.Progress
			taskCount++
			if line != nil {
				line.TasksTotal++
				internProgress += t.Progress
				if t.Status == models.TaskCompleted {
					line.TasksCompleted++
				}
			}
		}
		if line != nil && line.TasksTotal > 0 {
			line.AverageProgress = float64(internProgress) / float64(line.TasksTotal)
		}
		var internRatings, internFeedback int
		for _, fb := range f.feedback {
			if fb.ApplicationID == a.ID {
				r.FeedbackCount++
				ratings += fb.Rating
				internRatings += fb.Rating
				internFeedback++
			}
		}
		if line != nil && internFeedback > 0 {
			line.AverageRating = float64(internRatings) / float64(internFeedback)
		}
	}
	if taskCount > 0 {
		r.AverageProgress = float64(progress) / float64(taskCount)
	}
	if r.FeedbackCount > 0 {
		r.AverageRating = float64(ratings) / float64(r.FeedbackCount)
	}
	slices.SortFunc(r.Interns, func(a, b models.InternProgress) int { return strings.Compare(a.FullName, b.FullName) })
	return r, nil
}

func (f fakeDashboard) StudentReport(_ context.Context, studentID int64) (*models.StudentReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[studentID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	r := &models.StudentReport{StudentID: u.ID, FullName: u.FullName, Email: u.Email}
	for _, a := range f.applications {
		if a.StudentID != studentID {
			continue
		}
		in := f.internships[a.InternshipID]
		r.Applications = append(r.Applications, models.ApplicationLine{
			ApplicationID: a.ID, InternshipID: in.ID, Title: in.Title, Company: in.Company, Status: a.Status, AppliedAt: a.CreatedAt,
		})
	}
	for _, t := range f.tasks {
		if t.StudentID != studentID {
			continue
		}
		r.TaskCounts.Add(t.Status)
		line := models.TaskLine{TaskID: t.ID, Title: t.Title, Status: t.Status, Progress: t.Progress, DueDate: t.DueDate}
		for _, fb := range f.feedback {
			if fb.TaskID != nil && *fb.TaskID == t.ID {
				rating := fb.Rating
				line.Rating = &rating
			}
		}
		r.Tasks = append(r.Tasks, line)
	}
	var ratings int
	for _, fb := range f.feedback {
		if fb.StudentID == studentID {
			r.FeedbackCount++
			ratings += fb.Rating
		}
	}
	if r.FeedbackCount > 0 {
		r.AverageRating = float64(ratings) / float64(r.FeedbackCount)
	}
	slices.SortFunc(r.Applications, func(a, b models.ApplicationLine) int { return int(b.ApplicationID - a.ApplicationID) })
	slices.SortFunc(r.Tasks, func(a, b models.TaskLine) int { return int(a.TaskID - b.TaskID) })
	return r, nil
}

// delivery doubles

type recordingPusher struct {
	mu     sync.Mutex
	events map[int64][]string
}

func (p *recordingPusher) PushToUser(userID int64, eventType string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = map[int64][]string{}
	}
	p.events[userID] = append(p.events[userID], eventType)
}

func (p *recordingPusher) count(userID int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events[userID])
}

type recordingMailer struct {
	mu       sync.Mutex
	messages []email.Message
}

func (m *recordingMailer) Enqueue(msg email.Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return true
}

func (m *recordingMailer) sent() []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.messages)
}

type fakeStorage struct{ saved []string }

func (s *fakeStorage) SaveFileWithPath(fh *multipart.FileHeader, subPath string) (*filestorage.FileInfo, error) {
	s.saved = append(s.saved, subPath+"/"+fh.Filename)
	return &filestorage.FileInfo{
		URL:      "http://localhost:8080/uploads/" + subPath + "/stored.pdf",
		Path:     subPath + "/stored.pdf",
		Filename: fh.Filename,
		FileSize: fh.Size,
	}, nil
}

func (s *fakeStorage) DeleteFile(string) error { return nil }
func (s *fakeStorage) GetFullPath(u string) string { return u }

// harness wires every service against one memStore
type harness struct {
	store         *memStore
	pusher        *recordingPusher
	mailer        *recordingMailer
	storage       *fakeStorage
	auth          AuthService
	users         UserService
	internships   InternshipService
	applications  ApplicationService
	tasks         TaskService
	feedback      FeedbackService
	notifications NotificationService
	dashboard     DashboardService
	reminders     ReminderService
}

func newHarness() *harness {
	store := newMemStore()
	h := &harness{
		store:   store,
		pusher:  &recordingPusher{},
		mailer:  &recordingMailer{},
		storage: &fakeStorage{},
	}
	log := zerolog.Nop()
	clock := fixedClock()
	users := fakeUsers{store}
	internships := fakeInternships{store}
	apps := fakeApplications{store}
	tasks := fakeTasks{store}
	authorization := authz.NewAuthorizationService(users, internships)

	h.auth = NewAuthService(users, auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "internhub-test",
	}), clock, log)
	h.users = NewUserService(store, users, authorization, log)
	h.notifications = NewNotificationService(fakeNotifications{store}, h.pusher, h.mailer,
		NotificationConfig{AppURL: "http://localhost:8080", PageSize: 2}, clock, log)
	h.internships = NewInternshipService(store, internships, apps, users, authorization, 2, clock, log)
	h.applications = NewApplicationService(store, apps, internships, authorization, h.notifications, h.storage, clock, log)
	h.tasks = NewTaskService(store, tasks, apps, internships, authorization, h.notifications, clock, log)
	h.feedback = NewFeedbackService(store, fakeFeedback{store}, tasks, apps, internships, authorization, h.notifications, log)
	h.dashboard = NewDashboardService(fakeDashboard{store}, authorization, clock)
	h.reminders = NewReminderService(store, tasks, h.notifications, ReminderWindow{MinDays: 1, MaxDays: 3}, log)
	return h
}

func (h *harness) unread(userID int64) int64 {
	n, _ := fakeNotifications{h.store}.CountUnread(context.Background(), userID)
	return n
}
