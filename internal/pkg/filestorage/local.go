package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/internhub/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // Public URL prefix the root directory is served under
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the required directory path on the server.
// baseURL is optional; if provided, it will be prepended to returned file paths.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// SaveFileWithPath saves a file to a specified subdirectory
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (*FileInfo, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	subPath = filepath.Clean("/" + subPath)[1:]
	fullDirPath := filepath.Join(ls.basePath, subPath)
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	// Generate a unique filename to prevent collisions
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	relPath := filepath.ToSlash(filepath.Join(subPath, uniqueFilename))
	info := &FileInfo{
		URL:      ls.urlFor(relPath),
		Path:     relPath,
		Filename: fileHeader.Filename,
		FileSize: written,
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", relPath).Msg("File saved successfully")
	return info, nil
}

func (ls *LocalStorage) urlFor(relPath string) string {
	if ls.baseURL == "" {
		return "uploads/" + relPath
	}
	return ls.baseURL + "/" + relPath
}

// relativePath strips the public prefix from a stored URL.
func (ls *LocalStorage) relativePath(fileURL string) string {
	rel := fileURL
	if ls.baseURL != "" && strings.HasPrefix(rel, ls.baseURL+"/") {
		rel = strings.TrimPrefix(rel, ls.baseURL+"/")
	} else {
		rel = strings.TrimPrefix(rel, "uploads/")
	}
	return filepath.Clean("/" + rel)[1:]
}

// DeleteFile removes a file from the storage filesystem.
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	if fileURL == "" {
		return nil
	}

	physicalPath := ls.GetFullPath(fileURL)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// GetFullPath returns the full filesystem path for a given file URL.
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	rel := ls.relativePath(fileURL)
	if rel == "" || rel == "." {
		return ""
	}
	return filepath.Join(ls.basePath, rel)
}
