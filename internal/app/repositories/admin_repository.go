package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/db"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
	"github.com/campuspay/studentbank/internal/pkg/dberrors"
)

var adminColumns = []string{
	"id", "username", "password_hash", "email", "role",
	"otp_code", "otp_expires_at", "otp_sent_at", "otp_attempts",
	"created_at", "updated_at",
}

// AdminRepository handles database access for staff accounts
type AdminRepository struct {
	db *db.PostgresDB
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(database *db.PostgresDB) *AdminRepository {
	return &AdminRepository{db: database}
}

func scanAdmin(row pgx.Row) (*models.Admin, error) {
	var a models.Admin
	err := row.Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.Email, &a.Role,
		&a.OTPCode, &a.OTPExpiresAt, &a.OTPSentAt, &a.OTPAttempts,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to scan admin: %w", err)
	}
	return &a, nil
}

// Create inserts a new staff account
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	query, args, err := psql.Insert("admins").
		Columns("username", "password_hash", "email", "role").
		Values(admin.Username, admin.PasswordHash, admin.Email, admin.Role).
		Suffix("RETURNING " + joinColumns(adminColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	created, err := scanAdmin(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrUsernameExists
		}
		return nil, err
	}
	return created, nil
}

// GetByUsername returns a staff account by username
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	query, args, err := psql.Select(adminColumns...).
		From("admins").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}
	return scanAdmin(r.db.Pool.QueryRow(ctx, query, args...))
}

// GetByEmail returns the staff account holding the email address
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query, args, err := psql.Select(adminColumns...).
		From("admins").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}
	return scanAdmin(r.db.Pool.QueryRow(ctx, query, args...))
}

// GetByID returns a staff account by primary key
func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	query, args, err := psql.Select(adminColumns...).
		From("admins").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}
	return scanAdmin(r.db.Pool.QueryRow(ctx, query, args...))
}

// SetOTP stores a freshly issued one-time code and resets the attempt counter
func (r *AdminRepository) SetOTP(ctx context.Context, id int64, code string, expiresAt time.Time) error {
	query, args, err := psql.Update("admins").
		Set("otp_code", code).
		Set("otp_expires_at", expiresAt).
		Set("otp_sent_at", squirrel.Expr("now()")).
		Set("otp_attempts", 0).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to store one-time code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAdminNotFound
	}
	return nil
}

// ClearOTP wipes the pending one-time code, making it single-use
func (r *AdminRepository) ClearOTP(ctx context.Context, id int64) error {
	query, args, err := psql.Update("admins").
		Set("otp_code", nil).
		Set("otp_expires_at", nil).
		Set("otp_attempts", 0).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, query, args...)
	return err
}

// IncrementOTPAttempts bumps the failed-attempt counter and returns the new value
func (r *AdminRepository) IncrementOTPAttempts(ctx context.Context, id int64) (int, error) {
	query, args, err := psql.Update("admins").
		Set("otp_attempts", squirrel.Expr("otp_attempts + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING otp_attempts").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build update query: %w", err)
	}

	var attempts int
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrAdminNotFound
		}
		return 0, err
	}
	return attempts, nil
}
