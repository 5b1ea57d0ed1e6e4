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
	"github.com/campuspay/studentbank/internal/pkg/dberrors"
)

var academicYearColumns = []string{
	"id", "name", "starts_on", "ends_on", "is_current", "created_at",
}

// AcademicYearRepository handles database access for school years
type AcademicYearRepository struct {
	db *db.PostgresDB
}

// NewAcademicYearRepository creates a new AcademicYearRepository
func NewAcademicYearRepository(database *db.PostgresDB) *AcademicYearRepository {
	return &AcademicYearRepository{db: database}
}

func scanAcademicYear(row pgx.Row) (*models.AcademicYear, error) {
	var y models.AcademicYear
	err := row.Scan(&y.ID, &y.Name, &y.StartsOn, &y.EndsOn, &y.IsCurrent, &y.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAcademicYearNotFound
		}
		return nil, fmt.Errorf("failed to scan academic year: %w", err)
	}
	return &y, nil
}

// Create inserts a new school year
func (r *AcademicYearRepository) Create(ctx context.Context, year *models.AcademicYear) (*models.AcademicYear, error) {
	query, args, err := psql.Insert("academic_years").
		Columns("name", "starts_on", "ends_on", "is_current").
		Values(year.Name, year.StartsOn, year.EndsOn, year.IsCurrent).
		Suffix("RETURNING " + joinColumns(academicYearColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	created, err := scanAcademicYear(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrAcademicYearNameTaken
		}
		return nil, err
	}
	return created, nil
}

// GetByID returns a school year by primary key
func (r *AcademicYearRepository) GetByID(ctx context.Context, id int64) (*models.AcademicYear, error) {
	query, args, err := psql.Select(academicYearColumns...).
		From("academic_years").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}
	return scanAcademicYear(r.db.Pool.QueryRow(ctx, query, args...))
}

// GetByName returns a school year by its unique name
func (r *AcademicYearRepository) GetByName(ctx context.Context, name string) (*models.AcademicYear, error) {
	query, args, err := psql.Select(academicYearColumns...).
		From("academic_years").
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}
	return scanAcademicYear(r.db.Pool.QueryRow(ctx, query, args...))
}

// List returns all school years, newest first
func (r *AcademicYearRepository) List(ctx context.Context) ([]*models.AcademicYear, error) {
	query, args, err := psql.Select(academicYearColumns...).
		From("academic_years").
		OrderBy("name DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list academic years: %w", err)
	}
	defer rows.Close()

	var years []*models.AcademicYear
	for rows.Next() {
		var y models.AcademicYear
		if err := rows.Scan(&y.ID, &y.Name, &y.StartsOn, &y.EndsOn, &y.IsCurrent, &y.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan academic year row: %w", err)
		}
		years = append(years, &y)
	}
	return years, rows.Err()
}

// SetCurrent marks one year current and clears the flag on the rest
func (r *AcademicYearRepository) SetCurrent(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `UPDATE academic_years SET is_current = FALSE WHERE is_current`); err != nil {
		return fmt.Errorf("failed to clear current year flag: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE academic_years SET is_current = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to set current year: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAcademicYearNotFound
	}
	return nil
}
