package services

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
	"github.com/campuspay/studentbank/internal/pkg/filestorage"
	"github.com/campuspay/studentbank/internal/pkg/logger"
)

// photoSubPath is where student photos live under the storage root
const photoSubPath = "students"

// allowedPhotoExtensions are the accepted upload formats
var allowedPhotoExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

// studentStore is the student access the CRUD flows need
type studentStore interface {
	Create(ctx context.Context, student *models.Student) (*models.Student, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByCode(ctx context.Context, code string) (*models.Student, error)
	List(ctx context.Context, filter dto.StudentFilter) ([]*models.Student, int64, error)
	Update(ctx context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error)
	UpdatePhotoPath(ctx context.Context, id int64, photoPath *string) error
	Delete(ctx context.Context, id int64) error
}

// academicYearByID checks school year references
type academicYearByID interface {
	GetByID(ctx context.Context, id int64) (*models.AcademicYear, error)
}

// StudentService manages student records and photos
type StudentService interface {
	Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context, filter dto.StudentFilter) ([]*models.Student, int64, error)
	Update(ctx context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, id int64) error
	UploadPhoto(ctx context.Context, id int64, file *multipart.FileHeader) (*models.Student, error)
	DeletePhoto(ctx context.Context, id int64) error
}

type studentService struct {
	students studentStore
	years    academicYearByID
	storage  filestorage.FileStorage
	notifier Notifier
}

// NewStudentService creates a StudentService
func NewStudentService(students studentStore, years academicYearByID, storage filestorage.FileStorage, notifier Notifier) StudentService {
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &studentService{
		students: students,
		years:    years,
		storage:  storage,
		notifier: notifier,
	}
}

// Create registers a new student with a zero balance
func (s *studentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if req.AcademicYearID != nil {
		if _, err := s.years.GetByID(ctx, *req.AcademicYearID); err != nil {
			return nil, err
		}
	}

	student, err := s.students.Create(ctx, &models.Student{
		Code:           strings.TrimSpace(req.Code),
		Name:           strings.TrimSpace(req.Name),
		ClassName:      strings.TrimSpace(req.ClassName),
		AcademicYearID: req.AcademicYearID,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.StudentsChanged("student.created", map[string]interface{}{"studentId": student.ID})
	return student, nil
}

// Get returns a single student
func (s *studentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	return s.students.GetByID(ctx, id)
}

// List returns students matching the filter with the total count
func (s *studentService) List(ctx context.Context, filter dto.StudentFilter) ([]*models.Student, int64, error) {
	return s.students.List(ctx, filter)
}

// Update edits a student's descriptive fields
func (s *studentService) Update(ctx context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error) {
	if req.AcademicYearID != nil {
		if _, err := s.years.GetByID(ctx, *req.AcademicYearID); err != nil {
			return nil, err
		}
	}

	student, err := s.students.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.notifier.StudentsChanged("student.updated", map[string]interface{}{"studentId": student.ID})
	return student, nil
}

// Delete removes a student, their ledger and their stored photo
func (s *studentService) Delete(ctx context.Context, id int64) error {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}

	if student.PhotoPath != nil {
		if err := s.storage.Delete(*student.PhotoPath); err != nil {
			logger.Warn().Err(err).Int64("student_id", id).Msg("Failed to delete student photo")
		}
	}

	s.notifier.StudentsChanged("student.deleted", map[string]interface{}{"studentId": id})
	return nil
}

// UploadPhoto stores a new photo for a student, replacing any previous one
func (s *studentService) UploadPhoto(ctx context.Context, id int64, file *multipart.FileHeader) (*models.Student, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedPhotoExtensions[ext] {
		return nil, apperrors.NewValidationError("unsupported image format")
	}

	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path, err := s.storage.Save(file, photoSubPath)
	if err != nil {
		return nil, err
	}

	if err := s.students.UpdatePhotoPath(ctx, id, &path); err != nil {
		_ = s.storage.Delete(path)
		return nil, err
	}

	if student.PhotoPath != nil && *student.PhotoPath != path {
		if err := s.storage.Delete(*student.PhotoPath); err != nil {
			logger.Warn().Err(err).Int64("student_id", id).Msg("Failed to delete replaced photo")
		}
	}

	student.PhotoPath = &path
	s.notifier.StudentsChanged("student.updated", map[string]interface{}{"studentId": id})
	return student, nil
}

// DeletePhoto removes a student's photo
func (s *studentService) DeletePhoto(ctx context.Context, id int64) error {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if student.PhotoPath == nil {
		return nil
	}

	if err := s.students.UpdatePhotoPath(ctx, id, nil); err != nil {
		return err
	}
	if err := s.storage.Delete(*student.PhotoPath); err != nil {
		logger.Warn().Err(err).Int64("student_id", id).Msg("Failed to delete student photo")
	}

	s.notifier.StudentsChanged("student.updated", map[string]interface{}{"studentId": id})
	return nil
}
