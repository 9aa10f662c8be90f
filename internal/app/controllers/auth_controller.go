package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates a student, mentor or admin account and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse} "User registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format, email, password or role"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		c.logger.Warn().Msg("Invalid registration request payload")
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, resp)
}

// Login handles user login
// @Summary User login
// @Description Authenticates a user and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 429 {object} dto.ErrorResponse "Too many login attempts"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", resp.User.ID).Msg("User logged in successfully")
	respond(ctx, http.StatusOK, resp)
}

// Me returns the profile of the authenticated user
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	profile, err := c.authService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile)
}
