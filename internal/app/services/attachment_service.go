package services

import (
	"context"
	"mime/multipart"

	"github.com/rs/zerolog"
	"github.com/yigit/roster/internal/app/models"
	"github.com/yigit/roster/internal/pkg/apperrors"
	"github.com/yigit/roster/internal/pkg/filestorage"
)

// UploadSet holds at most one uploaded file per attachment kind
type UploadSet map[models.AttachmentKind]*multipart.FileHeader

// UploadsFromForm picks the attachment files out of a multipart form.
// Only the first file sent under each kind is kept.
func UploadsFromForm(form *multipart.Form) UploadSet {
	uploads := make(UploadSet)
	if form == nil {
		return uploads
	}
	for _, kind := range models.AttachmentKinds {
		if files := form.File[string(kind)]; len(files) > 0 {
			uploads[kind] = files[0]
		}
	}
	return uploads
}

// AttachmentUpdate maps each uploaded kind to its new reference
type AttachmentUpdate map[models.AttachmentKind]string

// ApplyTo binds the new references onto the record. Kinds without a new
// file keep their current reference.
func (u AttachmentUpdate) ApplyTo(student *models.Student) {
	for kind, ref := range u {
		student.SetAttachment(kind, ref)
	}
}

// AttachmentService stores student attachments
type AttachmentService struct {
	storage filestorage.FileStorage
	logger  zerolog.Logger
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(storage filestorage.FileStorage, logger zerolog.Logger) *AttachmentService {
	return &AttachmentService{storage: storage, logger: logger}
}

// BindUploads stores every supplied file and returns the references to bind.
// On failure the files already written by this call are removed.
func (s *AttachmentService) BindUploads(ctx context.Context, uploads UploadSet) (AttachmentUpdate, error) {
	update := make(AttachmentUpdate, len(uploads))
	for _, kind := range models.AttachmentKinds {
		header, ok := uploads[kind]
		if !ok || header == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			s.Discard(update)
			return nil, err
		}

		ref, err := s.storage.SaveFile(header)
		if err != nil {
			s.Discard(update)
			return nil, apperrors.Persistence("store "+string(kind), err)
		}
		update[kind] = ref
	}
	return update, nil
}

// Discard removes files written for an update that was never persisted
func (s *AttachmentService) Discard(update AttachmentUpdate) {
	for kind, ref := range update {
		if err := s.storage.DeleteFile(ref); err != nil {
			s.logger.Warn().Err(err).Str("kind", string(kind)).Str("reference", ref).Msg("Failed to remove orphaned attachment")
		}
	}
}
