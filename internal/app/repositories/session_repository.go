package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/db"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
)

var sessionColumns = []string{
	"token", "user_type", "user_id", "user_snapshot",
	"login_at", "last_active_at", "expires_at", "logout_at",
}

// SessionRepository handles database access for login sessions
type SessionRepository struct {
	db *db.PostgresDB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(database *db.PostgresDB) *SessionRepository {
	return &SessionRepository{db: database}
}

func scanSession(row pgx.Row) (*models.Session, error) {
	var s models.Session
	err := row.Scan(
		&s.Token, &s.UserType, &s.UserID, &s.UserSnapshot,
		&s.LoginAt, &s.LastActiveAt, &s.ExpiresAt, &s.LogoutAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return &s, nil
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query, args, err := psql.Insert("sessions").
		Columns("token", "user_type", "user_id", "user_snapshot", "expires_at").
		Values(session.Token, session.UserType, session.UserID, session.UserSnapshot, session.ExpiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByToken returns a session by its opaque token
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	query, args, err := psql.Select(sessionColumns...).
		From("sessions").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}
	return scanSession(r.db.Pool.QueryRow(ctx, query, args...))
}

// TouchLastActive records activity on a session
func (r *SessionRepository) TouchLastActive(ctx context.Context, token string) error {
	query, args, err := psql.Update("sessions").
		Set("last_active_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, query, args...)
	return err
}

// MarkLoggedOut ends a session without deleting its record
func (r *SessionRepository) MarkLoggedOut(ctx context.Context, token string) error {
	query, args, err := psql.Update("sessions").
		Set("logout_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"token": token}).
		Where(squirrel.Eq{"logout_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark session logged out: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and returns the count
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query, args, err := psql.Delete("sessions").
		Where(squirrel.Expr("expires_at < now()")).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
