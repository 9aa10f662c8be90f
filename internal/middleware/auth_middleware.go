package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// tokenFromRequest reads the bearer token from the Authorization header, falling back to the
// token query parameter for websocket clients and Swagger UI.
func tokenFromRequest(c *gin.Context) (string, error) {
	header := strings.Trim(c.GetHeader("Authorization"), "\"'")
	if header == "" {
		header = c.Query("token")
	}
	if header == "" {
		return "", nil
	}
	// raw JWT without the Bearer prefix
	if !strings.HasPrefix(header, "Bearer ") && strings.Count(header, ".") == 2 {
		return header, nil
	}
	return auth.ExtractBearerToken(header)
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication failed").WithDetails("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}
		if tokenString == "" {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			code, details := dto.ErrorCodeInvalidToken, "Invalid token"
			if errors.Is(err, apperrors.ErrTokenExpired) {
				code, details = dto.ErrorCodeExpiredToken, "Token has expired"
			}
			detail := dto.NewErrorDetail(code, "Authentication failed").WithDetails(details)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// RoleRequired admits only callers whose token carries one of roles. It must run after JWTAuth.
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").WithDetails("User role not found")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		if !auth.HasRole(role, roles...) {
			detail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(detail))
			return
		}

		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// CurrentRole returns the authenticated user's role
func CurrentRole(c *gin.Context) (models.Role, bool) {
	v, exists := c.Get(ContextRole)
	if !exists {
		return "", false
	}
	role, ok := v.(models.Role)
	return role, ok
}
