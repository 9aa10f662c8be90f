package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/internhub/internal/app/models"
)

var (
	// EmailPattern is stricter than the validator's built-in email tag
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	emailRegexp = regexp.MustCompile(EmailPattern)
)

// NormalizeEmail lower-cases and trims an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether an already normalized address matches EmailPattern.
func IsValidEmail(email string) bool {
	return emailRegexp.MatchString(email)
}

// validateRole backs the `role` binding tag.
func validateRole(fl validator.FieldLevel) bool {
	_, err := models.ParseRole(fl.Field().String())
	return err == nil
}

// Register installs the custom tags on gin's validator engine. Call once at startup.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

// RegisterOn installs the custom tags on v.
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("role", validateRole); err != nil {
		return fmt.Errorf("register role validator: %w", err)
	}
	return nil
}
