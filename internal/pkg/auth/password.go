package auth

import (
	"fmt"
	"unicode"

	"github.com/yigit/internhub/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the hashing cost for stored passwords
const BcryptCost = 12

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 8

// HashPassword hashes a plain password with bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a bcrypt hash with a plain password
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// ValidatePasswordPolicy requires at least MinPasswordLength characters with a letter and a digit.
func ValidatePasswordPolicy(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidationFailed, MinPasswordLength)
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: password must contain a letter and a digit", apperrors.ErrValidationFailed)
	}
	return nil
}
