package services

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
)

// fakeStudentStore keeps students in memory
type fakeStudentStore struct {
	nextID   int64
	students map[int64]*models.Student
	years    map[int64]*models.AcademicYear
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{
		nextID:   1,
		students: make(map[int64]*models.Student),
		years:    make(map[int64]*models.AcademicYear),
	}
}

func (f *fakeStudentStore) Create(_ context.Context, student *models.Student) (*models.Student, error) {
	for _, existing := range f.students {
		if existing.Code == student.Code {
			return nil, apperrors.ErrStudentCodeExists
		}
	}
	student.ID = f.nextID
	f.nextID++
	stored := *student
	f.students[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeStudentStore) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStudentStore) GetByCode(_ context.Context, code string) (*models.Student, error) {
	for _, s := range f.students {
		if s.Code == code {
			copied := *s
			return &copied, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) List(_ context.Context, _ dto.StudentFilter) ([]*models.Student, int64, error) {
	var out []*models.Student
	for _, s := range f.students {
		copied := *s
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStudentStore) Update(_ context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	if req.Code != nil {
		for _, other := range f.students {
			if other.ID != id && other.Code == *req.Code {
				return nil, apperrors.ErrStudentCodeExists
			}
		}
		s.Code = *req.Code
	}
	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.ClassName != nil {
		s.ClassName = *req.ClassName
	}
	if req.AcademicYearID != nil {
		s.AcademicYearID = req.AcademicYearID
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStudentStore) UpdatePhotoPath(_ context.Context, id int64, photoPath *string) error {
	s, ok := f.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	s.PhotoPath = photoPath
	return nil
}

func (f *fakeStudentStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(f.students, id)
	return nil
}

// academicYearByID
func (f *fakeStudentStore) yearByID(_ context.Context, id int64) (*models.AcademicYear, error) {
	y, ok := f.years[id]
	if !ok {
		return nil, apperrors.ErrAcademicYearNotFound
	}
	return y, nil
}

type yearLookup struct{ store *fakeStudentStore }

func (l yearLookup) GetByID(ctx context.Context, id int64) (*models.AcademicYear, error) {
	return l.store.yearByID(ctx, id)
}

// fakeStorage records saves and deletes without touching disk
type fakeStorage struct {
	saved   []string
	deleted []string
}

func (f *fakeStorage) Save(file *multipart.FileHeader, subPath string) (string, error) {
	path := subPath + "/" + file.Filename
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeStorage) Delete(relativePath string) error {
	f.deleted = append(f.deleted, relativePath)
	return nil
}

func (f *fakeStorage) AbsolutePath(relativePath string) string { return relativePath }

func newTestStudentService(store *fakeStudentStore, storage *fakeStorage) StudentService {
	return NewStudentService(store, yearLookup{store}, storage, NopNotifier())
}

func TestStudentCreateAndDuplicateCode(t *testing.T) {
	store := newFakeStudentStore()
	svc := newTestStudentService(store, &fakeStorage{})
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateStudentRequest{Code: " S-001 ", Name: " Aisha Khan ", ClassName: "4B"})
	require.NoError(t, err)
	assert.Equal(t, "S-001", created.Code)
	assert.Equal(t, "Aisha Khan", created.Name)
	assert.True(t, created.Balance.IsZero())

	_, err = svc.Create(ctx, dto.CreateStudentRequest{Code: "S-001", Name: "Someone Else"})
	assert.ErrorIs(t, err, apperrors.ErrStudentCodeExists)
}

func TestStudentCreateUnknownAcademicYear(t *testing.T) {
	store := newFakeStudentStore()
	svc := newTestStudentService(store, &fakeStorage{})

	yearID := int64(99)
	_, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		Code: "S-001", Name: "Aisha Khan", AcademicYearID: &yearID,
	})
	assert.ErrorIs(t, err, apperrors.ErrAcademicYearNotFound)
}

func TestStudentUpdateFields(t *testing.T) {
	store := newFakeStudentStore()
	svc := newTestStudentService(store, &fakeStorage{})
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateStudentRequest{Code: "S-001", Name: "Aisha Khan"})
	require.NoError(t, err)

	newName := "Aisha K. Khan"
	updated, err := svc.Update(ctx, created.ID, dto.UpdateStudentRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, "S-001", updated.Code)
}

func TestStudentDeleteRemovesPhoto(t *testing.T) {
	store := newFakeStudentStore()
	storage := &fakeStorage{}
	svc := newTestStudentService(store, storage)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateStudentRequest{Code: "S-001", Name: "Aisha Khan"})
	require.NoError(t, err)

	photo := "students/abc.jpg"
	require.NoError(t, store.UpdatePhotoPath(ctx, created.ID, &photo))

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Contains(t, storage.deleted, photo)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestStudentUploadPhotoRejectsBadExtension(t *testing.T) {
	store := newFakeStudentStore()
	svc := newTestStudentService(store, &fakeStorage{})
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateStudentRequest{Code: "S-001", Name: "Aisha Khan"})
	require.NoError(t, err)

	_, err = svc.UploadPhoto(ctx, created.ID, &multipart.FileHeader{Filename: "script.exe"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestStudentUploadPhotoReplacesOld(t *testing.T) {
	store := newFakeStudentStore()
	storage := &fakeStorage{}
	svc := newTestStudentService(store, storage)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateStudentRequest{Code: "S-001", Name: "Aisha Khan"})
	require.NoError(t, err)

	first, err := svc.UploadPhoto(ctx, created.ID, &multipart.FileHeader{Filename: "one.jpg"})
	require.NoError(t, err)
	require.NotNil(t, first.PhotoPath)

	second, err := svc.UploadPhoto(ctx, created.ID, &multipart.FileHeader{Filename: "two.png"})
	require.NoError(t, err)
	require.NotNil(t, second.PhotoPath)

	assert.NotEqual(t, *first.PhotoPath, *second.PhotoPath)
	assert.Contains(t, storage.deleted, *first.PhotoPath)
}
