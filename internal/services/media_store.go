package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/atelierhaus/backend/internal/config"
	"github.com/google/uuid"
)

// MediaStore implements collection.FileStore on top of S3 with a local
// write-through cache. S3 is the source of truth; cache failures are logged
// and ignored.
type MediaStore struct {
	cfg     *config.Config
	s3      *S3Service
	storage *StorageService
	prefix  string
}

func NewMediaStore(cfg *config.Config, s3Service *S3Service, storageService *StorageService, prefix string) *MediaStore {
	return &MediaStore{
		cfg:     cfg,
		s3:      s3Service,
		storage: storageService,
		prefix:  prefix,
	}
}

// Store writes the object to S3 under a generated key and caches it locally.
// Returns the storage key.
func (s *MediaStore) Store(ctx context.Context, r io.Reader, suggestedName, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(suggestedName))
	key := fmt.Sprintf("%s/%s%s", s.prefix, uuid.New().String(), ext)

	if err := s.s3.UploadMedia(ctx, s.cfg.MediaBucket, key, bytes.NewReader(data), contentType); err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	if s.storage != nil {
		if _, _, _, err := s.storage.SaveStream(ctx, key, bytes.NewReader(data)); err != nil {
			log.Printf("WARN: failed to cache %s locally: %v", key, err)
		}
	}

	return key, nil
}

// Delete removes the object from S3 and drops the local cache copy.
func (s *MediaStore) Delete(ctx context.Context, key string) error {
	if s.storage != nil {
		if err := s.storage.RemoveLocal(key); err != nil {
			log.Printf("WARN: failed to drop local cache for %s: %v", key, err)
		}
	}
	return s.s3.DeleteMedia(ctx, s.cfg.MediaBucket, key)
}

// LocalFilePath returns the local path for a key, downloading from S3 into
// the cache when the copy is missing.
func (s *MediaStore) LocalFilePath(ctx context.Context, key string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("no local storage configured")
	}
	if s.storage.HasLocal(key) {
		return s.storage.LocalPath(key)
	}

	buf, err := s.s3.DownloadMedia(ctx, s.cfg.MediaBucket, key)
	if err != nil {
		return "", fmt.Errorf("failed to download from S3: %w", err)
	}
	absPath, _, _, err := s.storage.SaveStream(ctx, key, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", fmt.Errorf("failed to cache locally: %w", err)
	}
	return absPath, nil
}

// PresignGet generates a short-lived presigned URL for a key.
func (s *MediaStore) PresignGet(ctx context.Context, key string) (string, error) {
	ttl := time.Duration(s.cfg.PresignedURLTTLMinutes) * time.Minute
	return s.s3.PresignMediaGet(ctx, s.cfg.MediaBucket, key, ttl)
}
