package filestorage

import (
	"mime/multipart"
)

// FileInfo represents information about a stored file
type FileInfo struct {
	URL      string // Public URL of the stored file
	Path     string // Path relative to the storage root
	Filename string // Original filename
	FileSize int64  // Size in bytes
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores a file under a subdirectory with a generated name
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (*FileInfo, error)

	// DeleteFile removes a file given its public URL or relative path
	DeleteFile(fileURL string) error

	// GetFullPath returns the full filesystem path for a given file URL
	GetFullPath(fileURL string) string
}
