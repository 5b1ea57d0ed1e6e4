package models

import "time"

// UserType identifies what kind of account a session belongs to
type UserType string

const (
	UserTypeStudent   UserType = "student"
	UserTypeAdmin     UserType = "admin"
	UserTypeTeacher   UserType = "teacher"
	UserTypeCommittee UserType = "committee"
)

// IsStaff reports whether the user type can manage students and transactions
func (u UserType) IsStaff() bool {
	return u == UserTypeAdmin || u == UserTypeTeacher || u == UserTypeCommittee
}

// Session is a server-side login session addressed by an opaque token
type Session struct {
	Token        string
	UserType     UserType
	UserID       int64
	UserSnapshot []byte
	LoginAt      time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time
	LogoutAt     *time.Time
}

// Expired reports whether the session has passed its expiry or was logged out
func (s *Session) Expired(now time.Time) bool {
	return s.LogoutAt != nil || now.After(s.ExpiresAt)
}
