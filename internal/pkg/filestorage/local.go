package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage stores uploaded files on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a LocalStorage rooted at basePath
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save stores an uploaded file under subPath with a random filename and
// returns the path relative to the storage root.
func (s *LocalStorage) Save(file *multipart.FileHeader, subPath string) (string, error) {
	dir := filepath.Join(s.basePath, subPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := uuid.New().String() + ext
	dst := filepath.Join(dir, filename)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filepath.ToSlash(filepath.Join(subPath, filename)), nil
}

// Delete removes a stored file; a missing file is treated as already deleted
func (s *LocalStorage) Delete(relativePath string) error {
	if relativePath == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(relativePath)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// AbsolutePath resolves a stored path against the storage root
func (s *LocalStorage) AbsolutePath(relativePath string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(relativePath))
}
