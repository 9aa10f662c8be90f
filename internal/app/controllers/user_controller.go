package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// UserController handles profile edits and admin user management
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new user controller
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// UpdateProfile edits the caller's own profile
// @Summary Update my profile
// @Description Changes full name, phone or department. An empty phone or department clears it.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized or account disabled"
// @Router /users/me [patch]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.UpdateProfile(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, user)
}

// List pages through accounts
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "student, mentor or admin"
// @Param active query bool false "Filter by active flag"
// @Param q query string false "Search in name and email"
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 10, max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.UserResponse}}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Router /users [get]
func (c *UserController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var filter dto.UserFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	users, page, err := c.userService.ListUsers(ctx.Request.Context(), userID, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, users, page)
}

// Get returns one account
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) Get(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	user, err := c.userService.GetUser(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, user)
}

// Update edits an account
// @Summary Update user
// @Description Email and role are fixed. Admins cannot deactivate their own account.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.AdminUpdateUserRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [patch]
func (c *UserController) Update(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AdminUpdateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.UpdateUser(ctx.Request.Context(), userID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, user)
}

// Deactivate disables an account
// @Summary Deactivate user
// @Description The user can no longer log in and their existing tokens stop working.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "Cannot deactivate yourself"
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id}/deactivate [post]
func (c *UserController) Deactivate(ctx *gin.Context) {
	c.setActive(ctx, false)
}

// Activate re-enables an account
// @Summary Activate user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id}/activate [post]
func (c *UserController) Activate(ctx *gin.Context) {
	c.setActive(ctx, true)
}

func (c *UserController) setActive(ctx *gin.Context, active bool) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	user, err := c.userService.SetActive(ctx.Request.Context(), userID, id, active)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, user)
}
