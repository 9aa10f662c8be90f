package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/controllers"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/middleware"
	"github.com/yigit/internhub/internal/pkg/websocket"
)

// Handlers groups everything the router dispatches to
type Handlers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Internship   *controllers.InternshipController
	Application  *controllers.ApplicationController
	Task         *controllers.TaskController
	Feedback     *controllers.FeedbackController
	Notification *controllers.NotificationController
	Dashboard    *controllers.DashboardController
	Health       *controllers.HealthController
	WebSocket    *websocket.Handler
}

// LoginLimit throttles login attempts per client IP
type LoginLimit struct {
	Limiter middleware.Limiter
	Limit   int
	Window  time.Duration
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, login LoginLimit) {
	v1 := router.Group("/api/v1")

	v1.GET("/health", h.Health.Health)

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", middleware.RateLimit(login.Limiter, "login", login.Limit, login.Window), h.Auth.Login)
	}

	internships := v1.Group("/internships")
	{
		internships.GET("", h.Internship.ListOpen)
		internships.GET("/:id", h.Internship.Get)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	admin := authMiddleware.RoleRequired(models.RoleAdmin)
	staff := authMiddleware.RoleRequired(models.RoleAdmin, models.RoleMentor)
	student := authMiddleware.RoleRequired(models.RoleStudent)

	authenticated.GET("/auth/me", h.Auth.Me)

	users := authenticated.Group("/users")
	{
		users.PATCH("/me", h.User.UpdateProfile)
		users.GET("", admin, h.User.List)
		users.GET("/:id", admin, h.User.Get)
		users.PATCH("/:id", admin, h.User.Update)
		users.POST("/:id/deactivate", admin, h.User.Deactivate)
		users.POST("/:id/activate", admin, h.User.Activate)
	}

	managed := authenticated.Group("/internships")
	{
		managed.POST("", admin, h.Internship.Create)
		managed.GET("/mine", admin, h.Internship.ListMine)
		managed.PATCH("/:id", admin, h.Internship.Update)
		managed.POST("/:id/close", admin, h.Internship.Close)
		managed.DELETE("/:id", admin, h.Internship.Delete)
		managed.GET("/:id/applications", staff, h.Application.ListByInternship)
	}

	applications := authenticated.Group("/applications")
	{
		applications.POST("", student, h.Application.Apply)
		applications.POST("/resume", student, h.Application.UploadResume)
		applications.GET("/mine", student, h.Application.ListMine)
		applications.GET("/:id", h.Application.Get)
		applications.POST("/:id/decision", staff, h.Application.Decide)
		applications.POST("/:id/withdraw", student, h.Application.Withdraw)
		applications.POST("/:id/tasks", staff, h.Task.Assign)
		applications.GET("/:id/tasks", h.Task.ListByApplication)
		applications.POST("/:id/feedback", staff, h.Feedback.SubmitForApplication)
	}

	tasks := authenticated.Group("/tasks")
	{
		tasks.GET("/mine", student, h.Task.ListMine)
		tasks.GET("/:id", h.Task.Get)
		tasks.PATCH("/:id/progress", h.Task.UpdateProgress)
		tasks.PATCH("/:id/status", staff, h.Task.SetStatus)
		tasks.POST("/:id/feedback", staff, h.Feedback.SubmitForTask)
	}

	authenticated.GET("/feedback/mine", student, h.Feedback.ListMine)
	authenticated.GET("/students/:id/feedback", staff, h.Feedback.ListByStudent)

	notifications := authenticated.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.GET("/unread", h.Notification.ListUnread)
		notifications.GET("/unread/count", h.Notification.UnreadCount)
		notifications.POST("/read-all", h.Notification.MarkAllRead)
		notifications.POST("/:id/read", h.Notification.MarkRead)
		notifications.GET("/ws", h.WebSocket.HandleConnection)
	}

	dashboard := authenticated.Group("/dashboard")
	{
		dashboard.GET("/student", student, h.Dashboard.MyStudent)
		dashboard.GET("/students/:id", staff, h.Dashboard.Student)
		dashboard.GET("/mentor", authMiddleware.RoleRequired(models.RoleMentor), h.Dashboard.MyMentor)
		dashboard.GET("/mentors/:id", admin, h.Dashboard.Mentor)
		dashboard.GET("/admin", admin, h.Dashboard.Admin)
	}

	reports := authenticated.Group("/reports")
	{
		reports.GET("/internships/:id", staff, h.Dashboard.InternshipReport)
		reports.GET("/students/me", student, h.Dashboard.MyReport)
		reports.GET("/students/:id", staff, h.Dashboard.StudentReport)
	}
}
