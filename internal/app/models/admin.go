package models

import "time"

// AdminRole identifies the privilege level of a staff account
type AdminRole string

const (
	RoleAdmin     AdminRole = "admin"
	RoleTeacher   AdminRole = "teacher"
	RoleCommittee AdminRole = "committee"
)

// Admin represents a staff account that manages students and transactions
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        *string
	Role         AdminRole

	// One-time code state for the email login flow
	OTPCode      *string
	OTPExpiresAt *time.Time
	OTPSentAt    *time.Time
	OTPAttempts  int

	CreatedAt time.Time
	UpdatedAt time.Time
}
