package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
	"github.com/campuspay/studentbank/internal/pkg/auth"
	"github.com/campuspay/studentbank/internal/pkg/logger"
	"github.com/campuspay/studentbank/internal/pkg/metrics"
)

// AuthConfig carries the tunable policy for sessions and one-time codes
type AuthConfig struct {
	SessionTTL     time.Duration
	OTPTTL         time.Duration
	OTPCooldown    time.Duration
	OTPMaxAttempts int
}

// studentByCode is the slice of student access the auth flow needs
type studentByCode interface {
	GetByCode(ctx context.Context, code string) (*models.Student, error)
}

// adminStore is the slice of admin access the auth flow needs
type adminStore interface {
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	SetOTP(ctx context.Context, id int64, code string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, id int64) error
	IncrementOTPAttempts(ctx context.Context, id int64) (int, error)
}

// sessionStore is the slice of session access the auth flow needs
type sessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	TouchLastActive(ctx context.Context, token string) error
	MarkLoggedOut(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// otpMailer delivers one-time login codes
type otpMailer interface {
	SendOTP(to, code string) error
}

// AuthService manages logins, sessions and the one-time code flow
type AuthService interface {
	StudentLogin(ctx context.Context, code string) (*dto.LoginResponse, error)
	AdminLogin(ctx context.Context, username, password string) (*dto.LoginResponse, error)
	SendOTP(ctx context.Context, email string) error
	OTPLogin(ctx context.Context, email, code string) (*dto.LoginResponse, error)
	VerifySession(ctx context.Context, token string) (*models.Session, *dto.SessionUser, error)
	TouchSession(ctx context.Context, token string)
	Logout(ctx context.Context, token string) error
	SweepExpiredSessions(ctx context.Context) (int64, error)
}

type authService struct {
	students studentByCode
	admins   adminStore
	sessions sessionStore
	mailer   otpMailer
	cfg      AuthConfig
	now      func() time.Time
}

// NewAuthService creates an AuthService
func NewAuthService(students studentByCode, admins adminStore, sessions sessionStore, mailer otpMailer, cfg AuthConfig) AuthService {
	return &authService{
		students: students,
		admins:   admins,
		sessions: sessions,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// StudentLogin starts a session for the student owning the code. Lookup is
// by code only; names are not accepted as identifiers.
func (s *authService) StudentLogin(ctx context.Context, code string) (*dto.LoginResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	student, err := s.students.GetByCode(ctx, code)
	if err != nil {
		metrics.CountLogin("student", false)
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	user := dto.SessionUser{
		ID:        student.ID,
		Type:      string(models.UserTypeStudent),
		Name:      student.Name,
		Code:      student.Code,
		ClassName: student.ClassName,
	}

	resp, err := s.createSession(ctx, models.UserTypeStudent, student.ID, user)
	metrics.CountLogin("student", err == nil)
	return resp, err
}

// AdminLogin starts a session for a staff account using a password. Unknown
// usernames and wrong passwords fail identically.
func (s *authService) AdminLogin(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	admin, err := s.admins.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		metrics.CountLogin("admin", false)
		if errors.Is(err, apperrors.ErrAdminNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(admin.PasswordHash, password) {
		metrics.CountLogin("admin", false)
		return nil, apperrors.ErrInvalidCredentials
	}

	resp, err := s.createSession(ctx, models.UserType(admin.Role), admin.ID, adminSessionUser(admin))
	metrics.CountLogin("admin", err == nil)
	return resp, err
}

// SendOTP mails a fresh one-time code to the staff account behind the email
// address. Unknown addresses fail the same way as known ones with a wrong
// code, and a code may only be requested again after the cooldown has passed.
func (s *authService) SendOTP(ctx context.Context, email string) error {
	admin, err := s.admins.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrAdminNotFound) {
			return apperrors.ErrInvalidCredentials
		}
		return err
	}

	now := s.now()
	if admin.OTPSentAt != nil && now.Sub(*admin.OTPSentAt) < s.cfg.OTPCooldown {
		return apperrors.ErrOTPCooldown
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return err
	}

	if err := s.admins.SetOTP(ctx, admin.ID, code, now.Add(s.cfg.OTPTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(*admin.Email, code); err != nil {
		logger.Error().Err(err).Str("username", admin.Username).Msg("Failed to mail one-time code")
		return err
	}

	return nil
}

// OTPLogin starts a session with a mailed one-time code. The code is single
// use and locked after too many wrong attempts.
func (s *authService) OTPLogin(ctx context.Context, email, code string) (*dto.LoginResponse, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		metrics.CountLogin("otp", false)
		if errors.Is(err, apperrors.ErrAdminNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if admin.OTPCode == nil {
		metrics.CountLogin("otp", false)
		return nil, apperrors.ErrOTPNotRequested
	}
	if admin.OTPAttempts >= s.cfg.OTPMaxAttempts {
		metrics.CountLogin("otp", false)
		return nil, apperrors.ErrOTPTooManyAttempts
	}
	if admin.OTPExpiresAt == nil || s.now().After(*admin.OTPExpiresAt) {
		metrics.CountLogin("otp", false)
		return nil, apperrors.ErrOTPExpired
	}

	if *admin.OTPCode != strings.TrimSpace(code) {
		attempts, incErr := s.admins.IncrementOTPAttempts(ctx, admin.ID)
		if incErr != nil {
			return nil, incErr
		}
		metrics.CountLogin("otp", false)
		if attempts >= s.cfg.OTPMaxAttempts {
			return nil, apperrors.ErrOTPTooManyAttempts
		}
		return nil, apperrors.ErrOTPMismatch
	}

	// Matched: burn the code before issuing the session
	if err := s.admins.ClearOTP(ctx, admin.ID); err != nil {
		return nil, err
	}

	resp, err := s.createSession(ctx, models.UserType(admin.Role), admin.ID, adminSessionUser(admin))
	metrics.CountLogin("otp", err == nil)
	return resp, err
}

// VerifySession resolves a token into its live session, rejecting expired
// and logged-out sessions.
func (s *authService) VerifySession(ctx context.Context, token string) (*models.Session, *dto.SessionUser, error) {
	if token == "" {
		return nil, nil, apperrors.ErrUnauthenticated
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, nil, apperrors.ErrUnauthenticated
		}
		return nil, nil, err
	}

	if session.Expired(s.now()) {
		return nil, nil, apperrors.ErrSessionExpired
	}

	var user dto.SessionUser
	if err := json.Unmarshal(session.UserSnapshot, &user); err != nil {
		return nil, nil, err
	}
	return session, &user, nil
}

// TouchSession records activity on a session; failures are only logged
func (s *authService) TouchSession(ctx context.Context, token string) {
	if err := s.sessions.TouchLastActive(ctx, token); err != nil {
		logger.Warn().Err(err).Msg("Failed to record session activity")
	}
}

// Logout ends the session behind the token
func (s *authService) Logout(ctx context.Context, token string) error {
	err := s.sessions.MarkLoggedOut(ctx, token)
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		return apperrors.ErrUnauthenticated
	}
	return err
}

// SweepExpiredSessions removes sessions past their expiry
func (s *authService) SweepExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}

func (s *authService) createSession(ctx context.Context, userType models.UserType, userID int64, user dto.SessionUser) (*dto.LoginResponse, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.cfg.SessionTTL)
	session := &models.Session{
		Token:        token,
		UserType:     userType,
		UserID:       userID,
		UserSnapshot: snapshot,
		ExpiresAt:    expiresAt,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func adminSessionUser(admin *models.Admin) dto.SessionUser {
	return dto.SessionUser{
		ID:       admin.ID,
		Type:     string(admin.Role),
		Name:     admin.Username,
		Username: admin.Username,
	}
}
