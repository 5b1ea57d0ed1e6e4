package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/app/services"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
)

// Context keys set by the auth middleware
const (
	ContextUserID    = "userID"
	ContextUserType  = "userType"
	ContextUser      = "user"
	ContextAuthToken = "authToken"
)

// ExtractToken pulls the session token from the auth cookie or, as a
// fallback, the Authorization bearer header.
func ExtractToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}

	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// Authenticate verifies the session token on every request and records the
// activity. Requests without a live session are rejected.
func Authenticate(authService services.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c, cookieName)
		if token == "" {
			HandleAPIError(c, apperrors.ErrUnauthenticated)
			return
		}

		session, user, err := authService.VerifySession(c.Request.Context(), token)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		authService.TouchSession(c.Request.Context(), token)

		c.Set(ContextUserID, session.UserID)
		c.Set(ContextUserType, session.UserType)
		c.Set(ContextUser, user)
		c.Set(ContextAuthToken, token)
		c.Next()
	}
}

// RequireStaff allows only admin, teacher and committee sessions through
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, ok := c.Get(ContextUserType)
		if !ok || !userType.(models.UserType).IsStaff() {
			HandleAPIError(c, apperrors.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

// RequireSelfOrStaff allows staff, or a student acting on their own record
func RequireSelfOrStaff(studentIDParam func(*gin.Context) (int64, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, ok := c.Get(ContextUserType)
		if !ok {
			HandleAPIError(c, apperrors.ErrUnauthenticated)
			return
		}
		if userType.(models.UserType).IsStaff() {
			c.Next()
			return
		}

		id, ok := studentIDParam(c)
		if !ok || id != c.GetInt64(ContextUserID) {
			HandleAPIError(c, apperrors.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}
