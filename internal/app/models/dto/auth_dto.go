package dto

import (
	"time"

	"github.com/yigit/internhub/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"student@school.edu"`
	Password string `json:"password" binding:"required" example:"Passw0rd"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email      string  `json:"email" binding:"required,email" example:"student@school.edu"`
	Password   string  `json:"password" binding:"required,min=8,max=72" example:"Passw0rd"`
	FullName   string  `json:"fullName" binding:"required,min=2,max=100" example:"Ada Lovelace"`
	Role       string  `json:"role" binding:"required,role" example:"student" enums:"student,mentor,admin"`
	Phone      *string `json:"phone,omitempty" binding:"omitempty,max=30"`
	Department *string `json:"department,omitempty" binding:"omitempty,max=100"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"86400"`
}

// UserResponse represents public user information
type UserResponse struct {
	ID         int64       `json:"id" example:"1"`
	Email      string      `json:"email" example:"student@school.edu"`
	FullName   string      `json:"fullName" example:"Ada Lovelace"`
	Role       models.Role `json:"role" example:"student"`
	Phone      *string     `json:"phone,omitempty"`
	Department *string     `json:"department,omitempty"`
	IsActive   bool        `json:"isActive"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// NewUserResponse hides credentials and internal fields
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		Phone:      u.Phone,
		Department: u.Department,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *UserResponse `json:"user"`
}
