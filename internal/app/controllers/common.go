// Package controllers handles HTTP request handling
package controllers

import (
	"iter"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/middleware"
	"github.com/yigit/internhub/internal/pkg/helpers"
)

// DefaultStreamLimit bounds how many items a lazily paged listing returns per request
const DefaultStreamLimit = 50

// currentUser returns the authenticated user ID or writes a 401
func currentUser(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return 0, false
	}
	return userID, true
}

// parseID reads a positive int64 path parameter or writes a 400
func parseID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return 0, false
	}
	return id, true
}

// streamLimit reads the limit query parameter, capped at helpers.MaxPageSize
func streamLimit(ctx *gin.Context) int {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(DefaultStreamLimit)))
	if err != nil || limit <= 0 {
		return DefaultStreamLimit
	}
	return min(limit, helpers.MaxPageSize)
}

// collect takes at most limit items from seq and reports whether more were available
func collect[T any](seq iter.Seq2[T, error], limit int) ([]T, bool, error) {
	items := make([]T, 0, limit)
	for item, err := range seq {
		if err != nil {
			return nil, false, err
		}
		if len(items) == limit {
			return items, true, nil
		}
		items = append(items, item)
	}
	return items, false, nil
}

// parseCursor reads the before query parameter or writes a 400
func parseCursor(ctx *gin.Context) (*repositories.Cursor, bool) {
	cursor, err := repositories.ParseCursor(ctx.Query("before"))
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid cursor").WithField("before")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return nil, false
	}
	return cursor, true
}

// streamPage takes at most limit items from seq. When more remain the response
// carries the cursor of the last returned item.
func streamPage[T any](seq iter.Seq2[T, error], limit int, key func(T) *repositories.Cursor) (dto.StreamResponse, error) {
	items, hasMore, err := collect(seq, limit)
	if err != nil {
		return dto.StreamResponse{}, err
	}
	resp := dto.StreamResponse{Items: items, Count: len(items), HasMore: hasMore}
	if hasMore && len(items) > 0 {
		resp.NextCursor = key(items[len(items)-1]).String()
	}
	return resp, nil
}

func respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, dto.NewAPIResponse(data))
}

func respondPage(ctx *gin.Context, items interface{}, page dto.PaginationInfo) {
	respond(ctx, http.StatusOK, dto.PaginatedResponse{Items: items, Pagination: page})
}
