package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student represents an enrolled student with a savings balance
type Student struct {
	ID             int64
	Code           string
	Name           string
	ClassName      string
	Balance        decimal.Decimal
	PhotoPath      *string
	AcademicYearID *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
