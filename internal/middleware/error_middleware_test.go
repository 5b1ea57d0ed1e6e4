package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func runHandler(t *testing.T, err error) (*httptest.ResponseRecorder, dto.ErrorResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	HandleAPIError(c, err)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHandleAPIErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"unauthenticated", apperrors.ErrUnauthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthenticated},
		{"session expired", apperrors.ErrSessionExpired, http.StatusUnauthorized, dto.ErrorCodeSessionExpired},
		{"permission denied", apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"otp mismatch", apperrors.ErrOTPMismatch, http.StatusUnauthorized, dto.ErrorCodeOTPInvalid},
		{"otp cooldown", apperrors.ErrOTPCooldown, http.StatusTooManyRequests, dto.ErrorCodeOTPCooldown},
		{"otp attempt limit", apperrors.ErrOTPTooManyAttempts, http.StatusTooManyRequests, dto.ErrorCodeOTPAttemptsLimit},
		{"insufficient balance", apperrors.ErrInsufficientBalance, http.StatusBadRequest, dto.ErrorCodeInsufficientBalance},
		{"invalid amount", apperrors.ErrInvalidAmount, http.StatusBadRequest, dto.ErrorCodeInvalidTransaction},
		{"student not found", apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"transaction not found", apperrors.ErrTransactionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"duplicate code", apperrors.ErrStudentCodeExists, http.StatusConflict, dto.ErrorCodeResourceExists},
		{"validation", apperrors.NewValidationError("bad input"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"unknown error", assertableError("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := runHandler(t, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestHandleAPIErrorHidesInternalDetails(t *testing.T) {
	_, resp := runHandler(t, assertableError("pq: connection refused"))
	assert.NotContains(t, resp.Error.Message, "connection refused")
}

func TestHandleAPIErrorCarriesCustomDetails(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrValidationFailed, "amount out of range").
		WithDetails(map[string]interface{}{"field": "amount"})

	w, resp := runHandler(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount", resp.Error.Details["field"])
}

type assertableError string

func (e assertableError) Error() string { return string(e) }
