package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/app/services"
	"github.com/campuspay/studentbank/internal/middleware"
)

// CookieSettings controls how the session cookie is issued
type CookieSettings struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// AuthController handles login, logout and session verification
type AuthController struct {
	authService services.AuthService
	cookie      CookieSettings
}

// NewAuthController creates an AuthController
func NewAuthController(authService services.AuthService, cookie CookieSettings) *AuthController {
	return &AuthController{authService: authService, cookie: cookie}
}

// StudentLogin logs a student in by their code
func (ac *AuthController) StudentLogin(c *gin.Context) {
	var req dto.StudentLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := ac.authService.StudentLogin(c.Request.Context(), req.Code)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	ac.setSessionCookie(c, resp.Token)
	c.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// AdminLogin logs a staff account in with username and password
func (ac *AuthController) AdminLogin(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := ac.authService.AdminLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	ac.setSessionCookie(c, resp.Token)
	c.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// SendOTP mails a one-time login code to the staff account behind the email
func (ac *AuthController) SendOTP(c *gin.Context) {
	var req dto.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := ac.authService.SendOTP(c.Request.Context(), req.Email); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("A login code has been sent"))
}

// OTPLogin logs a staff account in with a mailed one-time code
func (ac *AuthController) OTPLogin(c *gin.Context) {
	var req dto.OTPLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := ac.authService.OTPLogin(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	ac.setSessionCookie(c, resp.Token)
	c.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// Verify reports whether the current session is valid and who it belongs to
func (ac *AuthController) Verify(c *gin.Context) {
	token := middleware.ExtractToken(c, ac.cookie.Name)

	session, user, err := ac.authService.VerifySession(c.Request.Context(), token)
	if err != nil {
		// Verification answers rather than errors for an anonymous caller
		c.JSON(http.StatusOK, dto.NewAPIResponse(dto.VerifyResponse{Authenticated: false}))
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(dto.VerifyResponse{
		Authenticated: true,
		User:          user,
		LoginAt:       &session.LoginAt,
		ExpiresAt:     &session.ExpiresAt,
	}))
}

// Logout ends the current session and clears the cookie
func (ac *AuthController) Logout(c *gin.Context) {
	token := middleware.ExtractToken(c, ac.cookie.Name)
	if token != "" {
		if err := ac.authService.Logout(c.Request.Context(), token); err != nil {
			middleware.HandleAPIError(c, err)
			return
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ac.cookie.Name, "", -1, "/", "", ac.cookie.Secure, true)
	c.JSON(http.StatusOK, dto.NewMessageResponse("Logged out"))
}

func (ac *AuthController) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ac.cookie.Name, token, int(ac.cookie.MaxAge.Seconds()), "/", "", ac.cookie.Secure, true)
}
