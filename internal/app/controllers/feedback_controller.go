package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// FeedbackController handles mentor feedback
type FeedbackController struct {
	feedbackService services.FeedbackService
}

// NewFeedbackController creates a new FeedbackController
func NewFeedbackController(feedbackService services.FeedbackService) *FeedbackController {
	return &FeedbackController{feedbackService: feedbackService}
}

// SubmitForTask reviews a completed task
// @Summary Submit task feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body dto.SubmitFeedbackRequest true "Feedback"
// @Success 201 {object} dto.APIResponse{data=models.Feedback}
// @Failure 400 {object} dto.ErrorResponse "Rating outside 1..5"
// @Failure 409 {object} dto.ErrorResponse "Feedback already submitted"
// @Failure 422 {object} dto.ErrorResponse "Task not completed"
// @Router /tasks/{id}/feedback [post]
func (c *FeedbackController) SubmitForTask(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	taskID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SubmitFeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fb, err := c.feedbackService.SubmitForTask(ctx.Request.Context(), taskID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, fb)
}

// SubmitForApplication reviews an internship as a whole
// @Summary Submit application feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.SubmitFeedbackRequest true "Feedback"
// @Success 201 {object} dto.APIResponse{data=models.Feedback}
// @Failure 409 {object} dto.ErrorResponse "Feedback already submitted"
// @Failure 422 {object} dto.ErrorResponse "Application not approved"
// @Router /applications/{id}/feedback [post]
func (c *FeedbackController) SubmitForApplication(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	appID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SubmitFeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fb, err := c.feedbackService.SubmitForApplication(ctx.Request.Context(), appID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, fb)
}

// ListMine lists feedback the calling student received
// @Summary List my feedback
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Feedback}
// @Router /feedback/mine [get]
func (c *FeedbackController) ListMine(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	c.list(ctx, userID, userID)
}

// ListByStudent lists feedback of a student for staff
// @Summary List feedback of a student
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Feedback}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /students/{id}/feedback [get]
func (c *FeedbackController) ListByStudent(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	studentID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	c.list(ctx, studentID, userID)
}

func (c *FeedbackController) list(ctx *gin.Context, studentID, actorID int64) {
	items, err := c.feedbackService.ListByStudent(ctx.Request.Context(), studentID, actorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, items)
}
