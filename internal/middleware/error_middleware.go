package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

// specificCodes refine the code of well known sentinel errors
var specificCodes = []struct {
	err  error
	code dto.ErrorCode
}{
	{apperrors.ErrOutOfRange, dto.ErrorCodeOutOfRange},
	{apperrors.ErrInvalidRating, dto.ErrorCodeInvalidRating},
	{apperrors.ErrInvalidCredentials, dto.ErrorCodeInvalidCredentials},
	{apperrors.ErrAccountDisabled, dto.ErrorCodeAccountDisabled},
	{apperrors.ErrTokenExpired, dto.ErrorCodeExpiredToken},
	{apperrors.ErrTokenInvalid, dto.ErrorCodeInvalidToken},
}

// StatusFor maps an error to its HTTP status and response code
func StatusFor(err error) (int, dto.ErrorCode) {
	status, code := http.StatusInternalServerError, dto.ErrorCodeInternalServer
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		status, code = http.StatusBadRequest, dto.ErrorCodeValidationFailed
	case apperrors.KindConflict:
		status, code = http.StatusConflict, dto.ErrorCodeResourceAlreadyExists
	case apperrors.KindState:
		status, code = http.StatusUnprocessableEntity, dto.ErrorCodeInvalidState
	case apperrors.KindAuth:
		status, code = http.StatusUnauthorized, dto.ErrorCodeUnauthorized
	case apperrors.KindForbidden:
		status, code = http.StatusForbidden, dto.ErrorCodeForbidden
	case apperrors.KindNotFound:
		status, code = http.StatusNotFound, dto.ErrorCodeResourceNotFound
	}
	for _, sc := range specificCodes {
		if errors.Is(err, sc.err) {
			code = sc.code
			break
		}
	}
	return status, code
}

// HandleAPIError writes the error response for err. Internal errors are logged and their
// message is only exposed as debug info when gin runs in debug mode.
func HandleAPIError(c *gin.Context, err error) {
	status, code := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
		detail := dto.NewErrorDetail(code, "Internal server error").WithSeverity(dto.ErrorSeverityCritical)
		if gin.Mode() == gin.DebugMode {
			detail = detail.WithDebugInfo("%v", err)
		}
		c.JSON(status, dto.NewErrorResponse(detail))
		return
	}

	detail := dto.NewErrorDetail(code, err.Error()).WithSeverity(dto.ErrorSeverityWarning)
	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		if custom.Code != "" {
			detail.Code = dto.ErrorCode(custom.Code)
		}
		if custom.Details != nil {
			detail = detail.WithDetails(custom.Details)
		}
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

// AbortWithError writes the error response and stops the handler chain
func AbortWithError(c *gin.Context, err error) {
	HandleAPIError(c, err)
	c.Abort()
}
