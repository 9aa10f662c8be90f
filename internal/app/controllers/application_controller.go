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

// ApplicationController handles internship applications
type ApplicationController struct {
	applicationService services.ApplicationService
	logger             zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService, logger zerolog.Logger) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		logger:             logger,
	}
}

// Apply submits an application
// @Summary Apply to an internship
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ApplyRequest true "Application"
// @Success 201 {object} dto.APIResponse{data=models.Application}
// @Failure 409 {object} dto.ErrorResponse "Already applied"
// @Failure 422 {object} dto.ErrorResponse "Internship closed"
// @Router /applications [post]
func (c *ApplicationController) Apply(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req dto.ApplyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.applicationService.Apply(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, app)
}

// UploadResume stores a resume file for later applications
// @Summary Upload resume
// @Description Accepts pdf, doc or docx up to 5 MB and returns its URL for resumeUrl
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Resume"
// @Success 201 {object} dto.APIResponse{data=dto.ResumeUploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing, too large or unsupported file"
// @Router /applications/resume [post]
func (c *ApplicationController) UploadResume(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Resume file is required").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	resp, err := c.applicationService.UploadResume(ctx.Request.Context(), userID, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, resp)
}

// Decide approves or rejects a pending application
// @Summary Decide application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.DecideApplicationRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 403 {object} dto.ErrorResponse "Not a manager of the posting"
// @Failure 409 {object} dto.ErrorResponse "Capacity reached"
// @Failure 422 {object} dto.ErrorResponse "Already decided"
// @Router /applications/{id}/decision [post]
func (c *ApplicationController) Decide(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.DecideApplicationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.applicationService.Decide(ctx.Request.Context(), id, req.Decision, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, app)
}

// Get returns an application visible to its student or the posting's managers
// @Summary Get application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) Get(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	app, err := c.applicationService.Get(ctx.Request.Context(), id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, app)
}

// ListMine lists the calling student's applications
// @Summary List my applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Application}}
// @Router /applications/mine [get]
func (c *ApplicationController) ListMine(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	items, info, err := c.applicationService.ListByStudent(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info)
}

// ListByInternship lists applications to a posting for its managers
// @Summary List applications of an internship
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Internship ID"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Application}}
// @Failure 403 {object} dto.ErrorResponse "Not a manager of the posting"
// @Router /internships/{id}/applications [get]
func (c *ApplicationController) ListByInternship(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	items, info, err := c.applicationService.ListByInternship(ctx.Request.Context(), id, userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info)
}

// Withdraw pulls the caller's pending application
// @Summary Withdraw application
// @Description Only the applicant may withdraw, and only while the application is pending. The student may apply again afterwards.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 403 {object} dto.ErrorResponse "Not the applicant"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Failure 422 {object} dto.ErrorResponse "Already decided"
// @Router /applications/{id}/withdraw [post]
func (c *ApplicationController) Withdraw(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	app, err := c.applicationService.Withdraw(ctx.Request.Context(), id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, app)
}
