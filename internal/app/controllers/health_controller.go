package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/models/dto"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports liveness and database reachability
type HealthController struct {
	db Pinger
}

// NewHealthController creates a new HealthController
func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// Health checks the database connection
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=map[string]string}
// @Failure 503 {object} dto.ErrorResponse "Database unreachable"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := c.db.Ping(pingCtx); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database unreachable")
		ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(detail))
		return
	}
	respond(ctx, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}
