package dto

import "time"

// StudentLoginRequest logs a student in by their unique code
type StudentLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// AdminLoginRequest logs a staff account in with username and password
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SendOTPRequest asks for a one-time code to be mailed to the staff account
// behind the email address
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// OTPLoginRequest logs a staff account in with a mailed one-time code
type OTPLoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// SessionUser is the identity snapshot embedded in login and verify responses
type SessionUser struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Code      string `json:"code,omitempty"`
	Username  string `json:"username,omitempty"`
	ClassName string `json:"className,omitempty"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      SessionUser `json:"user"`
}

// VerifyResponse reports the state of the current session
type VerifyResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *SessionUser `json:"user,omitempty"`
	LoginAt       *time.Time   `json:"loginAt,omitempty"`
	ExpiresAt     *time.Time   `json:"expiresAt,omitempty"`
}
