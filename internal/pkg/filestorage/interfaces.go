package filestorage

import (
	"mime/multipart"
)

// ReferencePrefix is the path prefix of every reference handed out by a
// storage backend. The HTTP layer serves the same prefix statically.
const ReferencePrefix = "uploads"

// FileStorage defines the interface for attachment storage operations
type FileStorage interface {
	// SaveFile writes the upload under a unique name and returns its reference
	SaveFile(fileHeader *multipart.FileHeader) (string, error)

	// DeleteFile removes a previously saved file; unknown references are not an error
	DeleteFile(reference string) error

	// GetFullPath returns the filesystem path behind a reference
	GetFullPath(reference string) string
}
