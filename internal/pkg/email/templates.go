package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

var notificationTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2c3e50;">{{.Title}}</h2>
    <p>{{.Message}}</p>
    {{if .Link}}<p><a href="{{.Link}}" style="background: #3498db; color: #fff; padding: 10px 18px; text-decoration: none; border-radius: 4px;">Open InternHub</a></p>{{end}}
    <hr style="border: none; border-top: 1px solid #eee;">
    <p style="font-size: 12px; color: #999;">Sent by InternHub on {{.Date}}. You receive this because of activity on your account.</p>
  </div>
</body>
</html>`))

var subjects = map[string]string{
	"application_submitted": "New internship application",
	"application_decided":   "Your application was reviewed",
	"application_withdrawn": "An application was withdrawn",
	"task_assigned":         "New task assigned",
	"task_updated":          "Task status updated",
	"feedback_received":     "You received feedback",
	"deadline_reminder":     "Task deadline approaching",
}

// Subject returns the mail subject for a notification category.
func Subject(category string) string {
	if s, ok := subjects[category]; ok {
		return "[InternHub] " + s
	}
	return "[InternHub] Notification"
}

// RenderNotification builds the subject and HTML body for a notification email.
func RenderNotification(category, message, link string, at time.Time) (string, string, error) {
	subject := Subject(category)

	var buf bytes.Buffer
	err := notificationTemplate.Execute(&buf, struct {
		Title   string
		Message string
		Link    string
		Date    string
	}{
		Title:   strings.TrimPrefix(subject, "[InternHub] "),
		Message: message,
		Link:    link,
		Date:    at.Format("2 Jan 2006 15:04"),
	})
	if err != nil {
		return "", "", fmt.Errorf("render %s email: %w", category, err)
	}
	return subject, buf.String(), nil
}
