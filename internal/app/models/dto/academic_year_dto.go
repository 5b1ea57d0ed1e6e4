package dto

import (
	"time"

	"github.com/campuspay/studentbank/internal/app/models"
)

// CreateAcademicYearRequest registers a new school year
type CreateAcademicYearRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=64"`
	StartsOn string `json:"startsOn" binding:"omitempty,datetime=2006-01-02"`
	EndsOn   string `json:"endsOn" binding:"omitempty,datetime=2006-01-02"`
}

// AcademicYearResponse is the public representation of a school year
type AcademicYearResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	StartsOn  string    `json:"startsOn,omitempty"`
	EndsOn    string    `json:"endsOn,omitempty"`
	IsCurrent bool      `json:"isCurrent"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToAcademicYearResponse converts a model to its public representation
func ToAcademicYearResponse(y *models.AcademicYear) AcademicYearResponse {
	resp := AcademicYearResponse{
		ID:        y.ID,
		Name:      y.Name,
		IsCurrent: y.IsCurrent,
		CreatedAt: y.CreatedAt,
	}
	if y.StartsOn != nil {
		resp.StartsOn = y.StartsOn.Format("2006-01-02")
	}
	if y.EndsOn != nil {
		resp.EndsOn = y.EndsOn.Format("2006-01-02")
	}
	return resp
}
