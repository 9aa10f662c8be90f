package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"student@school.edu"`
	Password    string     `json:"-" db:"password"`
	FullName    string     `json:"fullName" db:"full_name" example:"Ada Lovelace"`
	Phone       *string    `json:"phone,omitempty" db:"phone" example:"+90 555 000 0000"`
	Department  *string    `json:"department,omitempty" db:"department" example:"Computer Engineering"`
	Role        Role       `json:"role" db:"role" example:"student"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}
