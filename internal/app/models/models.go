package models

import (
	"fmt"
	"strings"

	"github.com/yigit/internhub/internal/pkg/apperrors"
)

// Role is the closed set of user roles. Every role-dependent branch switches over
// all three values and fails closed in the default case.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleStudent, RoleMentor, RoleAdmin}

// ParseRole validates a role name, ignoring case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleStudent, RoleMentor, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidRole, s)
	}
}

// IsStaff reports whether the role may manage postings, applications and tasks.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleMentor:
		return true
	case RoleStudent:
		return false
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }
