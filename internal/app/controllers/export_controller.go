package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/app/services"
	"github.com/campuspay/studentbank/internal/middleware"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
	"github.com/campuspay/studentbank/internal/pkg/export"
)

// ledgerReader lists a student's transactions for rendering
type ledgerReader interface {
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Transaction, error)
}

// ExportController renders student data as downloadable files
type ExportController struct {
	studentService services.StudentService
	transactions   ledgerReader
	schoolName     string
}

// NewExportController creates an ExportController
func NewExportController(studentService services.StudentService, transactions ledgerReader, schoolName string) *ExportController {
	return &ExportController{
		studentService: studentService,
		transactions:   transactions,
		schoolName:     schoolName,
	}
}

// Statement streams a student's account statement as a PDF
func (ec *ExportController) Statement(c *gin.Context) {
	id, ok := StudentIDParam(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid student id"))
		return
	}

	student, err := ec.studentService.Get(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	entries, err := ec.transactions.ListByStudent(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	pdf, err := export.Statement(export.StatementData{
		Student:      student,
		Transactions: entries,
		SchoolName:   ec.schoolName,
	})
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	filename := fmt.Sprintf("statement-%s.pdf", student.Code)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// QRCode streams a student's login code as a QR PNG
func (ec *ExportController) QRCode(c *gin.Context) {
	id, ok := StudentIDParam(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid student id"))
		return
	}

	student, err := ec.studentService.Get(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	png, err := export.StudentQR(student.Code)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
