package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

type stubUsers struct {
	filter *dto.UserFilterRequest
	active map[int64]bool
}

func (s *stubUsers) UpdateProfile(_ context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	resp := &dto.UserResponse{ID: userID, Role: models.RoleStudent}
	if req.FullName != nil {
		resp.FullName = *req.FullName
	}
	return resp, nil
}

func (s *stubUsers) ListUsers(_ context.Context, _ int64, filter *dto.UserFilterRequest) ([]*dto.UserResponse, dto.PaginationInfo, error) {
	s.filter = filter
	return []*dto.UserResponse{{ID: 1}}, dto.PaginationInfo{CurrentPage: filter.Page, PageSize: filter.PageSize, TotalItems: 1, TotalPages: 1}, nil
}

func (s *stubUsers) GetUser(_ context.Context, _ int64, userID int64) (*dto.UserResponse, error) {
	if userID != 1 {
		return nil, apperrors.ErrUserNotFound
	}
	return &dto.UserResponse{ID: 1}, nil
}

func (s *stubUsers) UpdateUser(_ context.Context, _ int64, userID int64, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error) {
	resp := &dto.UserResponse{ID: userID, IsActive: true}
	if req.IsActive != nil {
		resp.IsActive = *req.IsActive
	}
	return resp, nil
}

func (s *stubUsers) SetActive(_ context.Context, actorID, userID int64, active bool) (*dto.UserResponse, error) {
	if actorID == userID && !active {
		return nil, apperrors.NewValidationError("admins cannot deactivate their own account")
	}
	if s.active == nil {
		s.active = map[int64]bool{}
	}
	s.active[userID] = active
	return &dto.UserResponse{ID: userID, IsActive: active}, nil
}

func TestUserController(t *testing.T) {
	stub := &stubUsers{}
	ctrl := NewUserController(stub)
	r := gin.New()
	r.Use(asUser(5))
	r.PATCH("/users/me", ctrl.UpdateProfile)
	r.GET("/users", ctrl.List)
	r.GET("/users/:id", ctrl.Get)
	r.PATCH("/users/:id", ctrl.Update)
	r.POST("/users/:id/deactivate", ctrl.Deactivate)
	r.POST("/users/:id/activate", ctrl.Activate)

	rec := serve(r, http.MethodPatch, "/users/me", `{"fullName":"Ada Lovelace"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ada Lovelace")

	rec = serve(r, http.MethodGet, "/users?role=mentor&active=false&q=lin&pageSize=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.filter)
	assert.Equal(t, "mentor", stub.filter.Role)
	require.NotNil(t, stub.filter.Active)
	assert.False(t, *stub.filter.Active)
	assert.Equal(t, "lin", stub.filter.Search)
	assert.Equal(t, 1, stub.filter.Page)
	assert.Equal(t, 5, stub.filter.PageSize)

	var page struct {
		Data struct {
			Items      []dto.UserResponse `json:"items"`
			Pagination dto.PaginationInfo `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Data.Items, 1)
	assert.EqualValues(t, 1, page.Data.Pagination.TotalItems)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/users?role=janitor", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/users?pageSize=500", "").Code)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/users/1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/users/2", "").Code)

	rec = serve(r, http.MethodPatch, "/users/7", `{"isActive":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isActive":false`)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/users/7/deactivate", "").Code)
	assert.False(t, stub.active[7])
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/users/7/activate", "").Code)
	assert.True(t, stub.active[7])

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/users/5/deactivate", "").Code)
}
