package models

import "time"

// AcademicYear groups students into a school year
type AcademicYear struct {
	ID        int64
	Name      string
	StartsOn  *time.Time
	EndsOn    *time.Time
	IsCurrent bool
	CreatedAt time.Time
}
