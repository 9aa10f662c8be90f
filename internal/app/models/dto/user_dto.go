package dto

// UpdateProfileRequest patches the caller's own profile. Absent fields are left unchanged.
type UpdateProfileRequest struct {
	FullName   *string `json:"fullName,omitempty" binding:"omitempty,min=2,max=100" example:"Ada Lovelace"`
	Phone      *string `json:"phone,omitempty" binding:"omitempty,max=30" example:"+90 555 000 0000"`
	Department *string `json:"department,omitempty" binding:"omitempty,max=100" example:"Computer Engineering"`
}

// AdminUpdateUserRequest lets an admin edit any account, including deactivating it.
// Email and role cannot be changed.
type AdminUpdateUserRequest struct {
	UpdateProfileRequest
	IsActive *bool `json:"isActive,omitempty" example:"false"`
}

// UserFilterRequest represents user filtering parameters
type UserFilterRequest struct {
	Role     string `form:"role" binding:"omitempty,role"`
	Active   *bool  `form:"active"`
	Search   string `form:"q" binding:"omitempty,max=100"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"pageSize,default=10" binding:"min=1,max=100"`
}
