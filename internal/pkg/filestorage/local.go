package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/roster/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	now      func() time.Time
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath,
// creating the directory when missing.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath, now: time.Now}, nil
}

// BasePath returns the directory files are written to
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// storedName builds "<unixMillis>-<short uuid>-<original base name>"
func (ls *LocalStorage) storedName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	base = strings.Join(strings.Fields(base), "_")
	short := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return fmt.Sprintf("%d-%s-%s", ls.now().UnixMilli(), short, base)
}

// SaveFile copies the upload into basePath and returns "uploads/<name>"
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	name := ls.storedName(fileHeader.Filename)
	dstPath := filepath.Join(ls.basePath, name)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err = io.Copy(dst, file); err != nil {
		dst.Close()
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to flush file content: %w", err)
	}

	reference := path.Join(ReferencePrefix, name)
	logger.Info().Str("filename", fileHeader.Filename).Str("reference", reference).Msg("File saved successfully")
	return reference, nil
}

// DeleteFile removes a file by its reference (e.g. uploads/name.pdf).
// Returns nil if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(reference string) error {
	if reference == "" {
		return nil
	}

	physicalPath := ls.GetFullPath(reference)
	if physicalPath == "" {
		return fmt.Errorf("invalid file reference: %s", reference)
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

// GetFullPath returns the full filesystem path for a reference, or ""
// when the reference does not name a file.
func (ls *LocalStorage) GetFullPath(reference string) string {
	filename := path.Base(reference)
	if filename == "" || filename == "." || filename == "/" || filename == ReferencePrefix {
		return ""
	}
	return filepath.Join(ls.basePath, filename)
}
