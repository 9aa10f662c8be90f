package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// InternshipController handles internship postings
type InternshipController struct {
	internshipService services.InternshipService
	logger            zerolog.Logger
}

// NewInternshipController creates a new InternshipController
func NewInternshipController(internshipService services.InternshipService, logger zerolog.Logger) *InternshipController {
	return &InternshipController{
		internshipService: internshipService,
		logger:            logger,
	}
}

// Create publishes a new posting
// @Summary Create internship
// @Description Admins publish an open posting, optionally assigning a mentor
// @Tags internships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateInternshipRequest true "Posting"
// @Success 201 {object} dto.APIResponse{data=models.Internship}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Router /internships [post]
func (c *InternshipController) Create(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req dto.CreateInternshipRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	internship, err := c.internshipService.Create(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, internship)
}

// ListOpen lists postings accepting applications
// @Summary List open internships
// @Description Newest first. Returns at most limit items; when hasMore is true, pass nextCursor as before to continue.
// @Tags internships
// @Produce json
// @Param limit query int false "Maximum items (default 50, max 100)"
// @Param before query string false "Cursor from a previous page"
// @Success 200 {object} dto.APIResponse{data=dto.StreamResponse{items=[]models.Internship}}
// @Failure 400 {object} dto.ErrorResponse "Invalid cursor"
// @Router /internships [get]
func (c *InternshipController) ListOpen(ctx *gin.Context) {
	before, ok := parseCursor(ctx)
	if !ok {
		return
	}
	page, err := streamPage(c.internshipService.ListOpen(ctx.Request.Context(), before), streamLimit(ctx),
		func(in *models.Internship) *repositories.Cursor { return repositories.CursorOf(in.CreatedAt, in.ID) })
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page)
}

// ListMine lists the postings created by the calling admin
// @Summary List my internships
// @Tags internships
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Internship}
// @Router /internships/mine [get]
func (c *InternshipController) ListMine(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	items, err := c.internshipService.ListByOwner(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, items)
}

// Get returns a single posting
// @Summary Get internship
// @Tags internships
// @Produce json
// @Param id path int true "Internship ID"
// @Success 200 {object} dto.APIResponse{data=models.Internship}
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /internships/{id} [get]
func (c *InternshipController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	internship, err := c.internshipService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, internship)
}

// Update patches a posting
// @Summary Update internship
// @Description Only the owning admin may edit a posting. Capacity cannot drop below the approved interns; mentorId 0 unassigns the mentor.
// @Tags internships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Internship ID"
// @Param request body dto.UpdateInternshipRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.Internship}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /internships/{id} [patch]
func (c *InternshipController) Update(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateInternshipRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	internship, err := c.internshipService.Update(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, internship)
}

// Close stops a posting from accepting applications
// @Summary Close internship
// @Description Idempotent. Only the owning admin may close a posting.
// @Tags internships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Internship ID"
// @Success 200 {object} dto.APIResponse{data=models.Internship}
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /internships/{id}/close [post]
func (c *InternshipController) Close(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	internship, err := c.internshipService.Close(ctx.Request.Context(), id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, internship)
}

// Delete removes a posting with its applications, tasks and feedback
// @Summary Delete internship
// @Tags internships
// @Security BearerAuth
// @Param id path int true "Internship ID"
// @Success 204 "Deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /internships/{id} [delete]
func (c *InternshipController) Delete(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.internshipService.Delete(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("internshipID", id).Int64("userID", userID).Msg("Internship deleted via API")
	ctx.Status(http.StatusNoContent)
}
