package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/go-insurance-api/internal/domain"
	"github.com/go-insurance-api/internal/pkg/id"
)

// presignTTL bounds how long a download link stays valid.
const presignTTL = 15 * time.Minute

type Service interface {
	// Upload stores the document in object storage and records its metadata.
	Upload(ctx context.Context, uploaderID, name, contentType string, size int64, r io.Reader) (*domain.File, error)
	// GetDownloadURL returns the file metadata with a fresh presigned URL.
	GetDownloadURL(ctx context.Context, fileID string) (*domain.File, error)
	Delete(ctx context.Context, callerID, fileID string) error
}

type fileStore interface {
	Put(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, fileID string) (*domain.File, error)
	SoftDelete(ctx context.Context, fileID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	fileRepo fileStore
	objects  objectStore
}

func NewService(fileRepo fileStore, objects objectStore) Service {
	return &service{fileRepo: fileRepo, objects: objects}
}

func (s *service) Upload(ctx context.Context, uploaderID, name, contentType string, size int64, r io.Reader) (*domain.File, error) {
	if uploaderID == "" {
		return nil, fmt.Errorf("missing caller identity: %w", domain.ErrUnauthorized)
	}
	if name == "" || size <= 0 {
		return nil, fmt.Errorf("file name and content are required: %w", domain.ErrBadRequest)
	}

	fileID := id.New()
	key := fmt.Sprintf("proofs/%s/%s", uploaderID, fileID)

	// Hash while streaming so the content only passes through once.
	hasher := sha256.New()
	url, err := s.objects.Upload(ctx, key, io.TeeReader(r, hasher), contentType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	f := &domain.File{
		FileID:           fileID,
		Object:           key,
		Name:             name,
		Type:             contentType,
		Size:             size,
		Hash:             hex.EncodeToString(hasher.Sum(nil)),
		URL:              url,
		UploadedByUserID: uploaderID,
		Enable:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.fileRepo.Put(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) GetDownloadURL(ctx context.Context, fileID string) (*domain.File, error) {
	f, err := s.fileRepo.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !f.Enable {
		return nil, fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}
	url, err := s.objects.PresignedURL(ctx, f.Object, presignTTL)
	if err != nil {
		return nil, err
	}
	f.URL = url
	return f, nil
}

func (s *service) Delete(ctx context.Context, callerID, fileID string) error {
	f, err := s.fileRepo.Get(ctx, fileID)
	if err != nil {
		return err
	}
	if f.UploadedByUserID != callerID {
		return fmt.Errorf("file belongs to another user: %w", domain.ErrForbidden)
	}
	if err := s.objects.Delete(ctx, f.Object); err != nil {
		return err
	}
	return s.fileRepo.SoftDelete(ctx, fileID)
}
