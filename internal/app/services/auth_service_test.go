package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
	"github.com/campuspay/studentbank/internal/pkg/auth"
)

// fakeAuthStore backs the auth service with in-memory students, admins and
// sessions.
type fakeAuthStore struct {
	studentsByCode map[string]*models.Student
	admins         map[string]*models.Admin
	sessions       map[string]*models.Session
}

func newFakeAuthStore() *fakeAuthStore {
	return &fakeAuthStore{
		studentsByCode: make(map[string]*models.Student),
		admins:         make(map[string]*models.Admin),
		sessions:       make(map[string]*models.Session),
	}
}

func (f *fakeAuthStore) GetByCode(_ context.Context, code string) (*models.Student, error) {
	s, ok := f.studentsByCode[code]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return s, nil
}

func (f *fakeAuthStore) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	a, ok := f.admins[username]
	if !ok {
		return nil, apperrors.ErrAdminNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAuthStore) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	for _, a := range f.admins {
		if a.Email != nil && *a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperrors.ErrAdminNotFound
}

func (f *fakeAuthStore) adminByID(id int64) *models.Admin {
	for _, a := range f.admins {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeAuthStore) SetOTP(_ context.Context, id int64, code string, expiresAt time.Time) error {
	a := f.adminByID(id)
	if a == nil {
		return apperrors.ErrAdminNotFound
	}
	now := time.Now()
	a.OTPCode = &code
	a.OTPExpiresAt = &expiresAt
	a.OTPSentAt = &now
	a.OTPAttempts = 0
	return nil
}

func (f *fakeAuthStore) ClearOTP(_ context.Context, id int64) error {
	a := f.adminByID(id)
	if a == nil {
		return apperrors.ErrAdminNotFound
	}
	a.OTPCode = nil
	a.OTPExpiresAt = nil
	a.OTPAttempts = 0
	return nil
}

func (f *fakeAuthStore) IncrementOTPAttempts(_ context.Context, id int64) (int, error) {
	a := f.adminByID(id)
	if a == nil {
		return 0, apperrors.ErrAdminNotFound
	}
	a.OTPAttempts++
	return a.OTPAttempts, nil
}

func (f *fakeAuthStore) Create(_ context.Context, session *models.Session) error {
	now := time.Now()
	session.LoginAt = now
	session.LastActiveAt = now
	copied := *session
	f.sessions[session.Token] = &copied
	return nil
}

func (f *fakeAuthStore) GetByToken(_ context.Context, token string) (*models.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeAuthStore) TouchLastActive(_ context.Context, token string) error {
	if s, ok := f.sessions[token]; ok {
		s.LastActiveAt = time.Now()
	}
	return nil
}

func (f *fakeAuthStore) MarkLoggedOut(_ context.Context, token string) error {
	s, ok := f.sessions[token]
	if !ok || s.LogoutAt != nil {
		return apperrors.ErrSessionNotFound
	}
	now := time.Now()
	s.LogoutAt = &now
	return nil
}

func (f *fakeAuthStore) DeleteExpired(_ context.Context) (int64, error) {
	var removed int64
	for token, s := range f.sessions {
		if time.Now().After(s.ExpiresAt) {
			delete(f.sessions, token)
			removed++
		}
	}
	return removed, nil
}

type fakeMailer struct {
	sentTo   []string
	sentCode []string
	fail     error
}

func (m *fakeMailer) SendOTP(to, code string) error {
	if m.fail != nil {
		return m.fail
	}
	m.sentTo = append(m.sentTo, to)
	m.sentCode = append(m.sentCode, code)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		SessionTTL:     time.Hour,
		OTPTTL:         5 * time.Minute,
		OTPCooldown:    time.Minute,
		OTPMaxAttempts: 5,
	}
}

func newTestAuthService(t *testing.T, store *fakeAuthStore, mailer *fakeMailer) (*authService, *fakeAuthStore) {
	t.Helper()
	if store == nil {
		store = newFakeAuthStore()
	}
	if mailer == nil {
		mailer = &fakeMailer{}
	}
	svc := NewAuthService(store, store, store, mailer, testAuthConfig()).(*authService)
	return svc, store
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestStudentLoginByCode(t *testing.T) {
	svc, store := newTestAuthService(t, nil, nil)
	store.studentsByCode["S-001"] = &models.Student{ID: 7, Code: "S-001", Name: "Aisha Khan", ClassName: "4B"}

	resp, err := svc.StudentLogin(context.Background(), "S-001")
	require.NoError(t, err)
	assert.Len(t, resp.Token, 64)
	assert.Equal(t, "student", resp.User.Type)
	assert.Equal(t, "Aisha Khan", resp.User.Name)

	// Names are not accepted as login identifiers
	_, err = svc.StudentLogin(context.Background(), "Aisha Khan")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestStudentLoginEmptyCode(t *testing.T) {
	svc, _ := newTestAuthService(t, nil, nil)

	_, err := svc.StudentLogin(context.Background(), "   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAdminLoginUniformFailure(t *testing.T) {
	svc, store := newTestAuthService(t, nil, nil)
	store.admins["admin"] = &models.Admin{
		ID: 1, Username: "admin", Role: models.RoleAdmin,
		PasswordHash: mustHash(t, "correct-horse"),
	}

	_, wrongPassword := svc.AdminLogin(context.Background(), "admin", "wrong")
	_, unknownUser := svc.AdminLogin(context.Background(), "nobody", "wrong")

	// Unknown usernames and wrong passwords must be indistinguishable
	assert.ErrorIs(t, wrongPassword, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, apperrors.ErrInvalidCredentials)

	resp, err := svc.AdminLogin(context.Background(), "admin", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.User.Type)
}

func TestSessionRoundTrip(t *testing.T) {
	svc, store := newTestAuthService(t, nil, nil)
	store.studentsByCode["S-001"] = &models.Student{ID: 7, Code: "S-001", Name: "Aisha Khan"}

	resp, err := svc.StudentLogin(context.Background(), "S-001")
	require.NoError(t, err)

	session, user, err := svc.VerifySession(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), session.UserID)
	assert.Equal(t, "Aisha Khan", user.Name)

	require.NoError(t, svc.Logout(context.Background(), resp.Token))

	_, _, err = svc.VerifySession(context.Background(), resp.Token)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestVerifySessionExpired(t *testing.T) {
	svc, store := newTestAuthService(t, nil, nil)
	store.studentsByCode["S-001"] = &models.Student{ID: 7, Code: "S-001", Name: "Aisha Khan"}

	resp, err := svc.StudentLogin(context.Background(), "S-001")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, _, err = svc.VerifySession(context.Background(), resp.Token)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestVerifySessionUnknownToken(t *testing.T) {
	svc, _ := newTestAuthService(t, nil, nil)

	_, _, err := svc.VerifySession(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, _, err = svc.VerifySession(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

const otpEmail = "teacher@example.org"

func otpAdmin(t *testing.T) *models.Admin {
	t.Helper()
	email := otpEmail
	return &models.Admin{
		ID: 2, Username: "teacher", Role: models.RoleTeacher,
		PasswordHash: mustHash(t, "irrelevant"),
		Email:        &email,
	}
}

func TestSendOTPMailsCode(t *testing.T) {
	mailer := &fakeMailer{}
	svc, store := newTestAuthService(t, nil, mailer)
	store.admins["teacher"] = otpAdmin(t)

	require.NoError(t, svc.SendOTP(context.Background(), otpEmail))
	require.Len(t, mailer.sentCode, 1)
	assert.Len(t, mailer.sentCode[0], 6)
	assert.Equal(t, otpEmail, mailer.sentTo[0])
}

func TestSendOTPCooldown(t *testing.T) {
	mailer := &fakeMailer{}
	svc, store := newTestAuthService(t, nil, mailer)
	store.admins["teacher"] = otpAdmin(t)

	require.NoError(t, svc.SendOTP(context.Background(), otpEmail))

	err := svc.SendOTP(context.Background(), otpEmail)
	assert.ErrorIs(t, err, apperrors.ErrOTPCooldown)
	assert.Len(t, mailer.sentCode, 1)

	// After the cooldown a new code may be requested
	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	require.NoError(t, svc.SendOTP(context.Background(), otpEmail))
	assert.Len(t, mailer.sentCode, 2)
}

func TestSendOTPUnknownEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc, store := newTestAuthService(t, nil, mailer)
	store.admins["teacher"] = otpAdmin(t)

	// Unlisted addresses fail like wrong credentials, revealing nothing
	err := svc.SendOTP(context.Background(), "nobody@example.org")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Empty(t, mailer.sentCode)
}

func TestOTPLoginSingleUse(t *testing.T) {
	mailer := &fakeMailer{}
	svc, store := newTestAuthService(t, nil, mailer)
	store.admins["teacher"] = otpAdmin(t)

	require.NoError(t, svc.SendOTP(context.Background(), otpEmail))
	code := mailer.sentCode[0]

	resp, err := svc.OTPLogin(context.Background(), otpEmail, code)
	require.NoError(t, err)
	assert.Equal(t, "teacher", resp.User.Type)

	// The code is burned on first use
	_, err = svc.OTPLogin(context.Background(), otpEmail, code)
	assert.ErrorIs(t, err, apperrors.ErrOTPNotRequested)
}

func TestOTPLoginUnknownEmail(t *testing.T) {
	svc, store := newTestAuthService(t, nil, nil)
	store.admins["teacher"] = otpAdmin(t)

	_, err := svc.OTPLogin(context.Background(), "nobody@example.org", "123456")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestOTPLoginAttemptLimit(t *testing.T) {
	mailer := &fakeMailer{}
	svc, store := newTestAuthService(t, nil, mailer)
	store.admins["teacher"] = otpAdmin(t)

	require.NoError(t, svc.SendOTP(context.Background(), otpEmail))

	for i := 0; i < 4; i++ {
		_, err := svc.OTPLogin(context.Background(), otpEmail, "000000")
		assert.ErrorIs(t, err, apperrors.ErrOTPMismatch)
	}

	// The fifth wrong guess trips the limit
	_, err := svc.OTPLogin(context.Background(), otpEmail, "000000")
	assert.ErrorIs(t, err, apperrors.ErrOTPTooManyAttempts)

	// Even the correct code is refused once locked
	_, err = svc.OTPLogin(context.Background(), otpEmail, mailer.sentCode[0])
	assert.ErrorIs(t, err, apperrors.ErrOTPTooManyAttempts)
}

func TestOTPLoginExpiredCode(t *testing.T) {
	mailer := &fakeMailer{}
	svc, store := newTestAuthService(t, nil, mailer)
	store.admins["teacher"] = otpAdmin(t)

	require.NoError(t, svc.SendOTP(context.Background(), otpEmail))

	svc.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	_, err := svc.OTPLogin(context.Background(), otpEmail, mailer.sentCode[0])
	assert.ErrorIs(t, err, apperrors.ErrOTPExpired)
}

func TestOTPLoginWithoutRequest(t *testing.T) {
	svc, store := newTestAuthService(t, nil, nil)
	store.admins["teacher"] = otpAdmin(t)

	_, err := svc.OTPLogin(context.Background(), otpEmail, "123456")
	assert.ErrorIs(t, err, apperrors.ErrOTPNotRequested)
}

func TestSweepExpiredSessions(t *testing.T) {
	svc, store := newTestAuthService(t, nil, nil)
	store.sessions["old"] = &models.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	store.sessions["live"] = &models.Session{Token: "live", ExpiresAt: time.Now().Add(time.Hour)}

	removed, err := svc.SweepExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Contains(t, store.sessions, "live")
	assert.NotContains(t, store.sessions, "old")
}
