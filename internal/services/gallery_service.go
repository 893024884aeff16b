package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelierhaus/backend/internal/collection"
	"github.com/atelierhaus/backend/internal/config"
	"github.com/atelierhaus/backend/internal/models"
	"github.com/atelierhaus/backend/pkg/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GalleryService struct {
	db      *gorm.DB
	cfg     *config.Config
	store   *MediaStore
	mutator *collection.Mutator
}

func NewGalleryService(db *gorm.DB, cfg *config.Config, store *MediaStore) *GalleryService {
	return &GalleryService{
		db:      db,
		cfg:     cfg,
		store:   store,
		mutator: collection.NewMutator(store, &galleryMediaGateway{db: db}),
	}
}

// GalleryItemUpdate carries optional field updates; nil fields are untouched
type GalleryItemUpdate struct {
	Title       *string
	Description *string
	Slug        *string
	Published   *bool
}

// CreateItem creates a gallery item. An empty slug is derived from the title.
func (s *GalleryService) CreateItem(title, description, slug string) (*models.GalleryItem, error) {
	if title == "" {
		return nil, errors.New("title is required")
	}
	if slug == "" {
		slug = validation.Slugify(title)
	}
	if !validation.ValidateSlug(slug) {
		return nil, fmt.Errorf("invalid slug: %s", slug)
	}

	item := &models.GalleryItem{
		Title:       validation.SanitizeString(title),
		Description: validation.SanitizeString(description),
		Slug:        slug,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create gallery item: %w", err)
	}
	return item, nil
}

// UpdateItem updates item metadata; media is managed separately
func (s *GalleryService) UpdateItem(id uuid.UUID, update GalleryItemUpdate) (*models.GalleryItem, error) {
	item, err := s.GetItem(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Title != nil {
		changes["title"] = validation.SanitizeString(*update.Title)
	}
	if update.Description != nil {
		changes["description"] = validation.SanitizeString(*update.Description)
	}
	if update.Slug != nil {
		if !validation.ValidateSlug(*update.Slug) {
			return nil, fmt.Errorf("invalid slug: %s", *update.Slug)
		}
		changes["slug"] = *update.Slug
	}
	if update.Published != nil {
		changes["published"] = *update.Published
	}
	if len(changes) == 0 {
		return item, nil
	}

	if err := s.db.Model(item).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("failed to update gallery item: %w", err)
	}
	return s.GetItem(id)
}

// GetItem returns an item with its media in collection order
func (s *GalleryService) GetItem(id uuid.UUID) (*models.GalleryItem, error) {
	var item models.GalleryItem
	err := s.db.
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_key ASC, created_at ASC")
		}).
		First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: gallery item %s", collection.ErrOwnerNotFound, id)
		}
		return nil, err
	}
	return &item, nil
}

// GetItemBySlug returns a published item by slug (public site path)
func (s *GalleryService) GetItemBySlug(slug string) (*models.GalleryItem, error) {
	var item models.GalleryItem
	err := s.db.
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_key ASC, created_at ASC")
		}).
		First(&item, "slug = ? AND published = ?", slug, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: gallery item %s", collection.ErrOwnerNotFound, slug)
		}
		return nil, err
	}
	return &item, nil
}

// ListItems returns items with media, newest first
func (s *GalleryService) ListItems(limit, offset int, publishedOnly bool) ([]models.GalleryItem, int64, error) {
	var items []models.GalleryItem
	var total int64

	query := s.db.Model(&models.GalleryItem{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_key ASC, created_at ASC")
		}).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// DeleteItem removes the item, its media rows and their stored bytes
func (s *GalleryService) DeleteItem(ctx context.Context, id uuid.UUID) ([]collection.CleanupWarning, error) {
	return s.mutator.Destroy(ctx, id)
}

// AttachMedia validates and attaches a batch of uploads to an item. The
// whole batch is validated before any byte is stored, so a bad file rejects
// the request without side effects.
func (s *GalleryService) AttachMedia(ctx context.Context, id uuid.UUID, files []UploadFile) (*collection.OwnedCollection, error) {
	if len(files) == 0 {
		return nil, errors.New("no files provided")
	}
	if len(files) > s.cfg.UploadMaxBatch {
		return nil, fmt.Errorf("too many files: %d (max: %d)", len(files), s.cfg.UploadMaxBatch)
	}

	uploads := make([]collection.Upload, 0, len(files))
	for _, f := range files {
		up, err := classifyUpload(s.cfg, f)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, up)
	}
	return s.mutator.Attach(ctx, id, uploads)
}

// RemoveMedia detaches one media record and deletes its bytes
func (s *GalleryService) RemoveMedia(ctx context.Context, id, mediaID uuid.UUID) (*collection.OwnedCollection, []collection.CleanupWarning, error) {
	return s.mutator.Detach(ctx, id, mediaID)
}

// SetPrimaryMedia makes the given media record the cover of the item
func (s *GalleryService) SetPrimaryMedia(ctx context.Context, id, mediaID uuid.UUID) (*collection.OwnedCollection, error) {
	return s.mutator.Promote(ctx, id, mediaID)
}

// ReorderMedia rewrites the media order of the item
func (s *GalleryService) ReorderMedia(ctx context.Context, id uuid.UUID, mediaIDs []uuid.UUID) (*collection.OwnedCollection, error) {
	return s.mutator.Reorder(ctx, id, mediaIDs)
}

// PurgeMedia removes all media from the item
func (s *GalleryService) PurgeMedia(ctx context.Context, id uuid.UUID) ([]collection.CleanupWarning, error) {
	return s.mutator.Purge(ctx, id)
}

// GetMediaRow looks up a single media row (used for file serving)
func (s *GalleryService) GetMediaRow(mediaID uuid.UUID) (*models.GalleryMedia, error) {
	var row models.GalleryMedia
	if err := s.db.First(&row, "id = ?", mediaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: media %s", collection.ErrRecordNotFound, mediaID)
		}
		return nil, err
	}
	return &row, nil
}
