package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// DashboardController serves the reporting read models
type DashboardController struct {
	dashboardService services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// MyStudent returns the calling student's dashboard
// @Summary Student dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.StudentDashboard}
// @Router /dashboard/student [get]
func (c *DashboardController) MyStudent(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	c.student(ctx, userID, userID)
}

// Student returns a student's dashboard for staff
// @Summary Dashboard of a student
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.StudentDashboard}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /dashboard/students/{id} [get]
func (c *DashboardController) Student(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	studentID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	c.student(ctx, studentID, userID)
}

func (c *DashboardController) student(ctx *gin.Context, studentID, actorID int64) {
	dash, err := c.dashboardService.Student(ctx.Request.Context(), studentID, actorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dash)
}

// Admin returns system-wide statistics
// @Summary Admin dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.AdminDashboard}
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Router /dashboard/admin [get]
func (c *DashboardController) Admin(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	dash, err := c.dashboardService.Admin(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dash)
}

// MyMentor returns the calling mentor's dashboard
// @Summary Mentor dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.MentorDashboard}
// @Router /dashboard/mentor [get]
func (c *DashboardController) MyMentor(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	c.mentor(ctx, userID, userID)
}

// Mentor returns a mentor's dashboard for admins
// @Summary Dashboard of a mentor
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentor ID"
// @Success 200 {object} dto.APIResponse{data=models.MentorDashboard}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /dashboard/mentors/{id} [get]
func (c *DashboardController) Mentor(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	mentorID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	c.mentor(ctx, mentorID, userID)
}

func (c *DashboardController) mentor(ctx *gin.Context, mentorID, actorID int64) {
	dash, err := c.dashboardService.Mentor(ctx.Request.Context(), mentorID, actorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dash)
}

// InternshipReport summarises one posting for its managers
// @Summary Internship report
// @Description Applications by status, task progress, ratings and one line per approved intern.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Internship ID"
// @Success 200 {object} dto.APIResponse{data=models.InternshipReport}
// @Failure 403 {object} dto.ErrorResponse "Not a manager of the posting"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /reports/internships/{id} [get]
func (c *DashboardController) InternshipReport(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	rep, err := c.dashboardService.InternshipReport(ctx.Request.Context(), id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, rep)
}

// MyReport returns the calling student's report
// @Summary My student report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.StudentReport}
// @Router /reports/students/me [get]
func (c *DashboardController) MyReport(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	c.studentReport(ctx, userID, userID)
}

// StudentReport returns a student's report for staff
// @Summary Student report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.StudentReport}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /reports/students/{id} [get]
func (c *DashboardController) StudentReport(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	studentID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	c.studentReport(ctx, studentID, userID)
}

func (c *DashboardController) studentReport(ctx *gin.Context, studentID, actorID int64) {
	rep, err := c.dashboardService.StudentReport(ctx.Request.Context(), studentID, actorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, rep)
}
