package apperrors

import "errors"

// Kind classifies errors so the transport layer can map them to a response without
// knowing every sentinel.
type Kind string

const (
	KindInternal   Kind = "internal"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindState      Kind = "state"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
)

type kindError struct {
	kind Kind
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func newKind(kind Kind, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// KindOf returns the kind of the first classified error in err's chain.
// Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindInternal
}

// Generic errors
var (
	ErrValidationFailed = newKind(KindValidation, "validation failed")
)

// Authentication and authorization errors
var (
	ErrInvalidCredentials = newKind(KindAuth, "invalid credentials")
	ErrTokenExpired       = newKind(KindAuth, "token expired")
	ErrTokenInvalid       = newKind(KindAuth, "invalid token")
	ErrAccountDisabled    = newKind(KindAuth, "account is disabled")
	ErrUnauthorized       = newKind(KindForbidden, "not authorized for this action")
)

// User errors
var (
	ErrUserNotFound       = newKind(KindNotFound, "user not found")
	ErrEmailAlreadyExists = newKind(KindConflict, "email already exists")
	ErrInvalidRole        = newKind(KindValidation, "invalid role")
)

// Internship errors
var (
	ErrInternshipNotFound = newKind(KindNotFound, "internship not found")
	ErrInternshipClosed   = newKind(KindState, "internship is closed")
	ErrCapacityReached    = newKind(KindConflict, "internship capacity reached")
)

// Application errors
var (
	ErrApplicationNotFound    = newKind(KindNotFound, "application not found")
	ErrAlreadyApplied         = newKind(KindConflict, "student already applied to this internship")
	ErrApplicationNotApproved = newKind(KindState, "application is not approved")
)

// Task errors
var (
	ErrTaskNotFound      = newKind(KindNotFound, "task not found")
	ErrOutOfRange        = newKind(KindValidation, "progress must be between 0 and 100")
	ErrInvalidTransition = newKind(KindState, "invalid status transition")
)

// Feedback errors
var (
	ErrInvalidRating     = newKind(KindValidation, "rating must be between 1 and 5")
	ErrDuplicateFeedback = newKind(KindConflict, "feedback already submitted")
)

// Notification errors
var (
	ErrNotificationNotFound = newKind(KindNotFound, "notification not found")
)

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// NewValidationError wraps ErrValidationFailed with a field level message
func NewValidationError(message string) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
