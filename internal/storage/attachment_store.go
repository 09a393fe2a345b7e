package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NamedStream is a file to store: a logical filename plus its contents.
type NamedStream struct {
	FileName string
	Reader   io.Reader
}

// StoredFile is the reference returned for a persisted attachment.
type StoredFile struct {
	FileName   string
	StorageKey string
}

// AttachmentStore accepts named byte streams and returns stored references.
// Extension filtering happens before any byte is written.
type AttachmentStore interface {
	AllowedExtension(filename string) bool
	Save(files []NamedStream) ([]StoredFile, error)
	Open(storageKey string) (*os.File, error)
	Delete(storageKey string) error
}

// DiskStore persists attachments on the local filesystem under a base
// directory, keyed by random names so colliding uploads never overwrite.
type DiskStore struct {
	baseDir    string
	extensions map[string]struct{}
}

// NewDiskStore ensures the base directory exists and returns a handle.
func NewDiskStore(baseDir string, allowedExtensions []string) (*DiskStore, error) {
	if baseDir == "" {
		baseDir = "uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	exts := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		exts[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &DiskStore{baseDir: baseDir, extensions: exts}, nil
}

// AllowedExtension checks the filename extension against the allow-list.
func (s *DiskStore) AllowedExtension(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	_, ok := s.extensions[ext]
	return ok
}

// Save stores each stream under a generated key, preserving the extension.
func (s *DiskStore) Save(files []NamedStream) ([]StoredFile, error) {
	stored := make([]StoredFile, 0, len(files))
	for _, file := range files {
		if !s.AllowedExtension(file.FileName) {
			return nil, fmt.Errorf("extension not allowed: %s", file.FileName)
		}
		key := uuid.NewString() + strings.ToLower(filepath.Ext(file.FileName))
		path := filepath.Join(s.baseDir, key)
		out, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create upload file: %w", err)
		}
		if _, err := io.Copy(out, file.Reader); err != nil {
			_ = out.Close()
			return nil, fmt.Errorf("write upload: %w", err)
		}
		if err := out.Close(); err != nil {
			return nil, fmt.Errorf("close upload: %w", err)
		}
		stored = append(stored, StoredFile{FileName: file.FileName, StorageKey: key})
	}
	return stored, nil
}

// Open returns a read-only handle for a stored attachment.
func (s *DiskStore) Open(storageKey string) (*os.File, error) {
	return os.Open(filepath.Join(s.baseDir, storageKey))
}

// Delete removes a stored attachment if present.
func (s *DiskStore) Delete(storageKey string) error {
	if err := os.Remove(filepath.Join(s.baseDir, storageKey)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
