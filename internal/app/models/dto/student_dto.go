package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/campuspay/studentbank/internal/app/models"
)

// CreateStudentRequest registers a new student
type CreateStudentRequest struct {
	Code           string `json:"code" binding:"required,min=1,max=32"`
	Name           string `json:"name" binding:"required,min=1,max=128"`
	ClassName      string `json:"className" binding:"max=64"`
	AcademicYearID *int64 `json:"academicYearId"`
}

// UpdateStudentRequest edits an existing student's descriptive fields.
// The balance is never set directly; it only moves through transactions.
type UpdateStudentRequest struct {
	Code           *string `json:"code" binding:"omitempty,min=1,max=32"`
	Name           *string `json:"name" binding:"omitempty,min=1,max=128"`
	ClassName      *string `json:"className" binding:"omitempty,max=64"`
	AcademicYearID *int64  `json:"academicYearId"`
}

// StudentResponse is the public representation of a student
type StudentResponse struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	ClassName      string          `json:"className"`
	Balance        decimal.Decimal `json:"balance"`
	PhotoURL       string          `json:"photoUrl,omitempty"`
	AcademicYearID *int64          `json:"academicYearId,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// StudentListResponse is a paginated student listing
type StudentListResponse struct {
	Students []StudentResponse `json:"students"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// StudentFilter narrows student listings
type StudentFilter struct {
	Query          string `form:"q"`
	AcademicYearID *int64 `form:"academicYearId"`
	Page           int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize       int    `form:"pageSize,default=50" binding:"omitempty,min=1,max=200"`
}

// ToStudentResponse converts a model to its public representation
func ToStudentResponse(s *models.Student, baseURL string) StudentResponse {
	resp := StudentResponse{
		ID:             s.ID,
		Code:           s.Code,
		Name:           s.Name,
		ClassName:      s.ClassName,
		Balance:        s.Balance,
		AcademicYearID: s.AcademicYearID,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.PhotoPath != nil && *s.PhotoPath != "" {
		resp.PhotoURL = baseURL + "/uploads/" + *s.PhotoPath
	}
	return resp
}
