package filestorage

import "mime/multipart"

// FileStorage abstracts where uploaded files are kept
type FileStorage interface {
	// Save stores an uploaded file under subPath and returns its relative path
	Save(file *multipart.FileHeader, subPath string) (string, error)
	// Delete removes a stored file; deleting a missing file is not an error
	Delete(relativePath string) error
	// AbsolutePath resolves a stored path for serving
	AbsolutePath(relativePath string) string
}
