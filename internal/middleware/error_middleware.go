package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
	"github.com/campuspay/studentbank/internal/pkg/logger"
)

// HandleAPIError maps an application error onto the standard error envelope
// with the matching HTTP status and stable error code.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classifyError(err)

	if status >= http.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Request failed")
	}

	// Carry structured context from CustomError into the response
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Details != nil {
		detail = detail.WithDetails(custom.Details)
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classifyError(err error) (int, dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized,
			dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")

	case errors.Is(err, apperrors.ErrUnauthenticated),
		errors.Is(err, apperrors.ErrSessionNotFound):
		return http.StatusUnauthorized,
			dto.NewErrorDetail(dto.ErrorCodeUnauthenticated, "Authentication required")

	case errors.Is(err, apperrors.ErrSessionExpired):
		return http.StatusUnauthorized,
			dto.NewErrorDetail(dto.ErrorCodeSessionExpired, "Session expired, please log in again")

	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden,
			dto.NewErrorDetail(dto.ErrorCodeForbidden, "You do not have permission to do this")

	case errors.Is(err, apperrors.ErrOTPNotRequested),
		errors.Is(err, apperrors.ErrOTPExpired),
		errors.Is(err, apperrors.ErrOTPMismatch):
		return http.StatusUnauthorized,
			dto.NewErrorDetail(dto.ErrorCodeOTPInvalid, "Invalid or expired one-time code")

	case errors.Is(err, apperrors.ErrOTPCooldown):
		return http.StatusTooManyRequests,
			dto.NewErrorDetail(dto.ErrorCodeOTPCooldown, "A code was sent recently, please wait before requesting another")

	case errors.Is(err, apperrors.ErrOTPTooManyAttempts):
		return http.StatusTooManyRequests,
			dto.NewErrorDetail(dto.ErrorCodeOTPAttemptsLimit, "Too many failed attempts, request a new code")

	case errors.Is(err, apperrors.ErrInsufficientBalance):
		return http.StatusBadRequest,
			dto.NewErrorDetail(dto.ErrorCodeInsufficientBalance, "Insufficient balance for this withdrawal")

	case errors.Is(err, apperrors.ErrInvalidTransactionType),
		errors.Is(err, apperrors.ErrInvalidAmount):
		return http.StatusBadRequest,
			dto.NewErrorDetail(dto.ErrorCodeInvalidTransaction, err.Error())

	case errors.Is(err, apperrors.ErrStudentNotFound),
		errors.Is(err, apperrors.ErrTransactionNotFound),
		errors.Is(err, apperrors.ErrAcademicYearNotFound),
		errors.Is(err, apperrors.ErrAdminNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound,
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error())

	case errors.Is(err, apperrors.ErrStudentCodeExists),
		errors.Is(err, apperrors.ErrUsernameExists),
		errors.Is(err, apperrors.ErrAcademicYearNameTaken),
		errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict,
			dto.NewErrorDetail(dto.ErrorCodeResourceExists, err.Error())

	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict,
			dto.NewErrorDetail(dto.ErrorCodeConflict, err.Error())

	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest,
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())

	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest,
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, err.Error())

	default:
		return http.StatusInternalServerError,
			dto.NewErrorDetail(dto.ErrorCodeInternalError, "An internal error occurred")
	}
}
