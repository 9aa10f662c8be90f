package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
	"github.com/yigit/internhub/internal/pkg/helpers"
)

// TaskController handles tasks of approved applications
type TaskController struct {
	taskService services.TaskService
	logger      zerolog.Logger
}

// NewTaskController creates a new TaskController
func NewTaskController(taskService services.TaskService, logger zerolog.Logger) *TaskController {
	return &TaskController{
		taskService: taskService,
		logger:      logger,
	}
}

// Assign creates a task on an approved application
// @Summary Assign task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.AssignTaskRequest true "Task"
// @Success 201 {object} dto.APIResponse{data=models.Task}
// @Failure 403 {object} dto.ErrorResponse "Not a manager of the posting"
// @Failure 422 {object} dto.ErrorResponse "Application not approved"
// @Router /applications/{id}/tasks [post]
func (c *TaskController) Assign(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	appID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignTaskRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	task, err := c.taskService.Assign(ctx.Request.Context(), appID, &req, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, task)
}

// ListByApplication lists the tasks of an application
// @Summary List tasks of an application
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Task}
// @Router /applications/{id}/tasks [get]
func (c *TaskController) ListByApplication(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	appID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	tasks, err := c.taskService.ListByApplication(ctx.Request.Context(), appID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, tasks)
}

// ListMine lists the calling student's tasks
// @Summary List my tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Task}}
// @Router /tasks/mine [get]
func (c *TaskController) ListMine(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	tasks, info, err := c.taskService.ListByStudent(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, tasks, info)
}

// Get returns a task
// @Summary Get task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} dto.APIResponse{data=models.Task}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /tasks/{id} [get]
func (c *TaskController) Get(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	task, err := c.taskService.Get(ctx.Request.Context(), id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, task)
}

// UpdateProgress reports a completion percentage
// @Summary Update task progress
// @Description 100 completes the task. Lowering a completed task's progress is rejected.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body dto.UpdateProgressRequest true "Progress"
// @Success 200 {object} dto.APIResponse{data=models.Task}
// @Failure 400 {object} dto.ErrorResponse "Progress out of range"
// @Failure 422 {object} dto.ErrorResponse "Invalid transition"
// @Router /tasks/{id}/progress [patch]
func (c *TaskController) UpdateProgress(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateProgressRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	task, err := c.taskService.UpdateProgress(ctx.Request.Context(), id, *req.Progress, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, task)
}

// SetStatus overrides a task's status
// @Summary Set task status
// @Description Reopening a completed task requires an explicit progress below 100
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body dto.SetTaskStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.Task}
// @Failure 403 {object} dto.ErrorResponse "Not a manager of the posting"
// @Failure 422 {object} dto.ErrorResponse "Invalid transition"
// @Router /tasks/{id}/status [patch]
func (c *TaskController) SetStatus(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SetTaskStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	task, err := c.taskService.SetStatus(ctx.Request.Context(), id, &req, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, task)
}
