package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/app/services"
	"github.com/campuspay/studentbank/internal/middleware"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
)

// maxPhotoSizeBytes caps uploaded student photos at 5 MiB
const maxPhotoSizeBytes = 5 << 20

// StudentController handles student CRUD and photo uploads
type StudentController struct {
	studentService services.StudentService
	baseURL        string
}

// NewStudentController creates a StudentController
func NewStudentController(studentService services.StudentService, baseURL string) *StudentController {
	return &StudentController{studentService: studentService, baseURL: baseURL}
}

// StudentIDParam parses the :id path parameter
func StudentIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil
}

// Create registers a new student
func (sc *StudentController) Create(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	student, err := sc.studentService.Create(c.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAPIResponse(dto.ToStudentResponse(student, sc.baseURL)))
}

// List returns students matching the query filters
func (sc *StudentController) List(c *gin.Context) {
	var filter dto.StudentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	students, total, err := sc.studentService.List(c.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	resp := dto.StudentListResponse{
		Students: make([]dto.StudentResponse, 0, len(students)),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for _, s := range students {
		resp.Students = append(resp.Students, dto.ToStudentResponse(s, sc.baseURL))
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// Get returns one student
func (sc *StudentController) Get(c *gin.Context) {
	id, ok := StudentIDParam(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid student id"))
		return
	}

	student, err := sc.studentService.Get(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(dto.ToStudentResponse(student, sc.baseURL)))
}

// Update edits a student's descriptive fields
func (sc *StudentController) Update(c *gin.Context) {
	id, ok := StudentIDParam(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid student id"))
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	student, err := sc.studentService.Update(c.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(dto.ToStudentResponse(student, sc.baseURL)))
}

// Delete removes a student and their ledger
func (sc *StudentController) Delete(c *gin.Context) {
	id, ok := StudentIDParam(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid student id"))
		return
	}

	if err := sc.studentService.Delete(c.Request.Context(), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Student deleted"))
}

// UploadPhoto stores a new photo for a student
func (sc *StudentController) UploadPhoto(c *gin.Context) {
	id, ok := StudentIDParam(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid student id"))
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("photo file is required"))
		return
	}
	if file.Size > maxPhotoSizeBytes {
		middleware.HandleAPIError(c, apperrors.NewValidationError("photo must be 5 MB or smaller"))
		return
	}

	student, err := sc.studentService.UploadPhoto(c.Request.Context(), id, file)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(dto.ToStudentResponse(student, sc.baseURL)))
}

// DeletePhoto removes a student's photo
func (sc *StudentController) DeletePhoto(c *gin.Context) {
	id, ok := StudentIDParam(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid student id"))
		return
	}

	if err := sc.studentService.DeletePhoto(c.Request.Context(), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Photo deleted"))
}

// bindError rejects a request whose body or query failed validation
func bindError(c *gin.Context, err error) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request: "+err.Error())
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}

// bindStrictJSON decodes a JSON body, rejecting unknown fields, then runs the
// same struct validation ShouldBindJSON would
func bindStrictJSON(c *gin.Context, obj interface{}) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}
