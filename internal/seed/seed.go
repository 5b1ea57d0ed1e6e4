package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/app/repositories"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
	"github.com/campuspay/studentbank/internal/pkg/auth"
	"github.com/campuspay/studentbank/internal/pkg/logger"
)

// Seed creates the records a fresh installation needs: a default admin, a
// committee account and the current academic year. Existing records are
// left untouched.
func Seed(ctx context.Context, repos *repositories.Repositories) error {
	var errs []error

	if err := seedAdmin(ctx, repos, "admin", "ADMIN_DEFAULT_PASSWORD", "ADMIN_EMAIL", models.RoleAdmin); err != nil {
		errs = append(errs, fmt.Errorf("seed admin: %w", err))
	}
	if err := seedAdmin(ctx, repos, "committee", "COMMITTEE_DEFAULT_PASSWORD", "COMMITTEE_EMAIL", models.RoleCommittee); err != nil {
		errs = append(errs, fmt.Errorf("seed committee: %w", err))
	}
	if err := seedAcademicYear(ctx, repos); err != nil {
		errs = append(errs, fmt.Errorf("seed academic year: %w", err))
	}

	return errors.Join(errs...)
}

// seedAdmin creates a staff account unless one with the username exists.
// The initial password comes from the environment, falling back to a value
// that must be rotated before real use. An email from the environment
// enables the one-time code login for the account.
func seedAdmin(ctx context.Context, repos *repositories.Repositories, username, passwordEnv, emailEnv string, role models.AdminRole) error {
	_, err := repos.Admins.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrAdminNotFound) {
		return err
	}

	password := os.Getenv(passwordEnv)
	if password == "" {
		password = "changeme"
		logger.Warn().
			Str("username", username).
			Str("env", passwordEnv).
			Msg("Seeding account with default password, set the environment variable and rotate it")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if email := os.Getenv(emailEnv); email != "" {
		admin.Email = &email
	}

	if _, err := repos.Admins.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info().Str("username", username).Str("role", string(role)).Msg("Seeded staff account")
	return nil
}

// seedAcademicYear creates the current school year when none exists
func seedAcademicYear(ctx context.Context, repos *repositories.Repositories) error {
	years, err := repos.AcademicYears.List(ctx)
	if err != nil {
		return err
	}
	if len(years) > 0 {
		return nil
	}

	now := time.Now()
	startYear := now.Year()
	// School years start in September
	if now.Month() < time.September {
		startYear--
	}

	starts := time.Date(startYear, time.September, 1, 0, 0, 0, 0, time.UTC)
	ends := time.Date(startYear+1, time.June, 30, 0, 0, 0, 0, time.UTC)

	year := &models.AcademicYear{
		Name:      fmt.Sprintf("%d/%d", startYear, startYear+1),
		StartsOn:  &starts,
		EndsOn:    &ends,
		IsCurrent: true,
	}
	if _, err := repos.AcademicYears.Create(ctx, year); err != nil {
		return err
	}

	logger.Info().Str("name", year.Name).Msg("Seeded academic year")
	return nil
}
