package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/db"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
	"github.com/campuspay/studentbank/internal/pkg/dberrors"
)

var studentColumns = []string{
	"id", "code", "name", "class_name", "balance",
	"photo_path", "academic_year_id", "created_at", "updated_at",
}

// StudentRepository handles database access for students
type StudentRepository struct {
	db *db.PostgresDB
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(database *db.PostgresDB) *StudentRepository {
	return &StudentRepository{db: database}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID, &s.Code, &s.Name, &s.ClassName, &s.Balance,
		&s.PhotoPath, &s.AcademicYearID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}
	return &s, nil
}

// Create inserts a new student and returns it with generated fields
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	query, args, err := psql.Insert("students").
		Columns("code", "name", "class_name", "academic_year_id").
		Values(student.Code, student.Name, student.ClassName, student.AcademicYearID).
		Suffix("RETURNING " + joinColumns(studentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	created, err := scanStudent(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrStudentCodeExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID returns a student by primary key
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query, args, err := psql.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}
	return scanStudent(r.db.Pool.QueryRow(ctx, query, args...))
}

// GetByCode returns a student by their unique code
func (r *StudentRepository) GetByCode(ctx context.Context, code string) (*models.Student, error) {
	query, args, err := psql.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}
	return scanStudent(r.db.Pool.QueryRow(ctx, query, args...))
}

// List returns students matching the filter, with the total count
func (r *StudentRepository) List(ctx context.Context, filter dto.StudentFilter) ([]*models.Student, int64, error) {
	base := psql.Select(studentColumns...).From("students")
	countQuery := psql.Select("COUNT(*)").From("students")

	if filter.Query != "" {
		cond := squirrel.Or{
			squirrel.ILike{"name": "%" + filter.Query + "%"},
			squirrel.ILike{"code": "%" + filter.Query + "%"},
			squirrel.ILike{"class_name": "%" + filter.Query + "%"},
		}
		base = base.Where(cond)
		countQuery = countQuery.Where(cond)
	}
	if filter.AcademicYearID != nil {
		base = base.Where(squirrel.Eq{"academic_year_id": *filter.AcademicYearID})
		countQuery = countQuery.Where(squirrel.Eq{"academic_year_id": *filter.AcademicYearID})
	}

	query, args, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	query, args, err = base.
		OrderBy("name ASC", "id ASC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(
			&s.ID, &s.Code, &s.Name, &s.ClassName, &s.Balance,
			&s.PhotoPath, &s.AcademicYearID, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan student row: %w", err)
		}
		students = append(students, &s)
	}
	return students, total, rows.Err()
}

// Update edits descriptive fields of a student. The balance is not touched
// here; it only moves through ledger operations.
func (r *StudentRepository) Update(ctx context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error) {
	builder := psql.Update("students").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})

	if req.Code != nil {
		builder = builder.Set("code", *req.Code)
	}
	if req.Name != nil {
		builder = builder.Set("name", *req.Name)
	}
	if req.ClassName != nil {
		builder = builder.Set("class_name", *req.ClassName)
	}
	if req.AcademicYearID != nil {
		builder = builder.Set("academic_year_id", *req.AcademicYearID)
	}

	query, args, err := builder.
		Suffix("RETURNING " + joinColumns(studentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	updated, err := scanStudent(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrStudentCodeExists
		}
		return nil, err
	}
	return updated, nil
}

// UpdatePhotoPath stores the uploaded photo location for a student
func (r *StudentRepository) UpdatePhotoPath(ctx context.Context, id int64, photoPath *string) error {
	query, args, err := psql.Update("students").
		Set("photo_path", photoPath).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update photo path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Delete removes a student and, via cascade, their transactions
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("students").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// joinColumns renders a column list for RETURNING clauses
func joinColumns(columns []string) string {
	out := ""
	for i, c := range columns {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
