package service

import (
	"context"
	"os"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/repository"
	"github.com/Zachary2562/recordables-ticketquest/internal/storage"
	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

// AttachmentService serves stored ticket attachments back to clients.
type AttachmentService struct {
	uploads repository.UploadRepository
	store   storage.AttachmentStore
}

// NewAttachmentService constructs the service.
func NewAttachmentService(uploads repository.UploadRepository, store storage.AttachmentStore) *AttachmentService {
	return &AttachmentService{uploads: uploads, store: store}
}

// OpenAttachment resolves a storage key to its file handle plus the upload
// metadata carrying the original filename. The key only reaches the
// filesystem after the metadata lookup succeeds, so arbitrary paths can never
// be opened.
func (s *AttachmentService) OpenAttachment(ctx context.Context, storageKey string) (*os.File, *domain.Upload, error) {
	upload, err := s.uploads.GetByStorageKey(ctx, storageKey)
	if err != nil {
		return nil, nil, util.MapError(err)
	}
	file, err := s.store.Open(upload.StorageKey)
	if err != nil {
		return nil, nil, util.NewNotFound("attachment", map[string]any{"key": storageKey})
	}
	return file, upload, nil
}
