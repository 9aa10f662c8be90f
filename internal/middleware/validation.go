package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/models/dto"
)

// BindJSON decodes and validates the request body into obj. On failure it writes a
// 400 response and returns false.
func BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// BindQuery decodes and validates query parameters into obj. On failure it writes a
// 400 response and returns false.
func BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// ValidateRequest binds the body into a fresh T for every request and stores it under
// "validatedBody".
func ValidateRequest[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := new(T)
		if !BindJSON(c, body) {
			c.Abort()
			return
		}
		c.Set("validatedBody", body)
		c.Next()
	}
}

// ValidatedBody returns the body stored by ValidateRequest
func ValidatedBody[T any](c *gin.Context) (*T, bool) {
	v, exists := c.Get("validatedBody")
	if !exists {
		return nil, false
	}
	body, ok := v.(*T)
	return body, ok
}
