package services

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/db"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
)

// academicYearStore is the school year access the service needs
type academicYearStore interface {
	Create(ctx context.Context, year *models.AcademicYear) (*models.AcademicYear, error)
	GetByID(ctx context.Context, id int64) (*models.AcademicYear, error)
	List(ctx context.Context) ([]*models.AcademicYear, error)
	SetCurrent(ctx context.Context, tx pgx.Tx, id int64) error
}

// AcademicYearService manages school years
type AcademicYearService interface {
	Create(ctx context.Context, req dto.CreateAcademicYearRequest) (*models.AcademicYear, error)
	List(ctx context.Context) ([]*models.AcademicYear, error)
	Get(ctx context.Context, id int64) (*models.AcademicYear, error)
	SetCurrent(ctx context.Context, id int64) error
}

type academicYearService struct {
	years academicYearStore
	db    *db.PostgresDB
}

// NewAcademicYearService creates an AcademicYearService
func NewAcademicYearService(years academicYearStore, database *db.PostgresDB) AcademicYearService {
	return &academicYearService{years: years, db: database}
}

// Create registers a new school year
func (s *academicYearService) Create(ctx context.Context, req dto.CreateAcademicYearRequest) (*models.AcademicYear, error) {
	year := &models.AcademicYear{Name: strings.TrimSpace(req.Name)}

	if req.StartsOn != "" {
		t, err := time.Parse(dateLayout, req.StartsOn)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid start date, expected YYYY-MM-DD")
		}
		year.StartsOn = &t
	}
	if req.EndsOn != "" {
		t, err := time.Parse(dateLayout, req.EndsOn)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid end date, expected YYYY-MM-DD")
		}
		year.EndsOn = &t
	}
	if year.StartsOn != nil && year.EndsOn != nil && year.EndsOn.Before(*year.StartsOn) {
		return nil, apperrors.NewValidationError("end date must not precede start date")
	}

	return s.years.Create(ctx, year)
}

// List returns all school years
func (s *academicYearService) List(ctx context.Context) ([]*models.AcademicYear, error) {
	return s.years.List(ctx)
}

// Get returns a single school year
func (s *academicYearService) Get(ctx context.Context, id int64) (*models.AcademicYear, error) {
	return s.years.GetByID(ctx, id)
}

// SetCurrent marks a year current; exactly one year holds the flag
func (s *academicYearService) SetCurrent(ctx context.Context, id int64) error {
	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return s.years.SetCurrent(ctx, tx, id)
	})
}
