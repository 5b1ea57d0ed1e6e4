package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/app/services"
	"github.com/campuspay/studentbank/internal/middleware"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
)

// AcademicYearController handles school year management
type AcademicYearController struct {
	yearService services.AcademicYearService
}

// NewAcademicYearController creates an AcademicYearController
func NewAcademicYearController(yearService services.AcademicYearService) *AcademicYearController {
	return &AcademicYearController{yearService: yearService}
}

// Create registers a new school year
func (yc *AcademicYearController) Create(c *gin.Context) {
	var req dto.CreateAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	year, err := yc.yearService.Create(c.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAPIResponse(dto.ToAcademicYearResponse(year)))
}

// List returns all school years
func (yc *AcademicYearController) List(c *gin.Context) {
	years, err := yc.yearService.List(c.Request.Context())
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	resp := make([]dto.AcademicYearResponse, 0, len(years))
	for _, y := range years {
		resp = append(resp, dto.ToAcademicYearResponse(y))
	}
	c.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// SetCurrent marks a year as the current one
func (yc *AcademicYearController) SetCurrent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid academic year id"))
		return
	}

	if err := yc.yearService.SetCurrent(c.Request.Context(), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Academic year set as current"))
}
