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

type ProjectService struct {
	db      *gorm.DB
	cfg     *config.Config
	store   *MediaStore
	mutator *collection.Mutator
}

func NewProjectService(db *gorm.DB, cfg *config.Config, store *MediaStore) *ProjectService {
	return &ProjectService{
		db:      db,
		cfg:     cfg,
		store:   store,
		mutator: collection.NewMutator(store, &projectMediaGateway{db: db}),
	}
}

// ProjectUpdate carries optional field updates; nil fields are untouched
type ProjectUpdate struct {
	Title       *string
	Summary     *string
	Description *string
	Slug        *string
	Year        *int
	ExternalURL *string
	Published   *bool
}

// CreateProject creates a project. An empty slug is derived from the title.
func (s *ProjectService) CreateProject(title, summary, description, slug string, year int) (*models.Project, error) {
	if title == "" {
		return nil, errors.New("title is required")
	}
	if slug == "" {
		slug = validation.Slugify(title)
	}
	if !validation.ValidateSlug(slug) {
		return nil, fmt.Errorf("invalid slug: %s", slug)
	}

	project := &models.Project{
		Title:       validation.SanitizeString(title),
		Summary:     validation.SanitizeString(summary),
		Description: validation.SanitizeString(description),
		Slug:        slug,
		Year:        year,
	}
	if err := s.db.Create(project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// UpdateProject updates project metadata; media is managed separately
func (s *ProjectService) UpdateProject(id uuid.UUID, update ProjectUpdate) (*models.Project, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Title != nil {
		changes["title"] = validation.SanitizeString(*update.Title)
	}
	if update.Summary != nil {
		changes["summary"] = validation.SanitizeString(*update.Summary)
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
	if update.Year != nil {
		changes["year"] = *update.Year
	}
	if update.ExternalURL != nil {
		changes["external_url"] = *update.ExternalURL
	}
	if update.Published != nil {
		changes["published"] = *update.Published
	}
	if len(changes) == 0 {
		return project, nil
	}

	if err := s.db.Model(project).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return s.GetProject(id)
}

// GetProject returns a project with its media in collection order
func (s *ProjectService) GetProject(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_key ASC, created_at ASC")
		}).
		First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %s", collection.ErrOwnerNotFound, id)
		}
		return nil, err
	}
	return &project, nil
}

// GetProjectBySlug returns a published project by slug (public site path)
func (s *ProjectService) GetProjectBySlug(slug string) (*models.Project, error) {
	var project models.Project
	err := s.db.
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_key ASC, created_at ASC")
		}).
		First(&project, "slug = ? AND published = ?", slug, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %s", collection.ErrOwnerNotFound, slug)
		}
		return nil, err
	}
	return &project, nil
}

// ListProjects returns projects with media, newest year first
func (s *ProjectService) ListProjects(limit, offset int, publishedOnly bool) ([]models.Project, int64, error) {
	var projects []models.Project
	var total int64

	query := s.db.Model(&models.Project{})
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
		Order("year DESC, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// DeleteProject removes the project, its media rows and their stored bytes
func (s *ProjectService) DeleteProject(ctx context.Context, id uuid.UUID) ([]collection.CleanupWarning, error) {
	return s.mutator.Destroy(ctx, id)
}

// AttachMedia validates and attaches a batch of photo/video uploads
func (s *ProjectService) AttachMedia(ctx context.Context, id uuid.UUID, files []UploadFile) (*collection.OwnedCollection, error) {
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

// AttachPartnerLogos attaches image uploads tagged as partner logos
func (s *ProjectService) AttachPartnerLogos(ctx context.Context, id uuid.UUID, files []UploadFile) (*collection.OwnedCollection, error) {
	if len(files) == 0 {
		return nil, errors.New("no files provided")
	}
	uploads := make([]collection.Upload, 0, len(files))
	for _, f := range files {
		up, err := classifyLogoUpload(s.cfg, f)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, up)
	}
	return s.mutator.Attach(ctx, id, uploads)
}

// RemoveMedia detaches one media record and deletes its bytes
func (s *ProjectService) RemoveMedia(ctx context.Context, id, mediaID uuid.UUID) (*collection.OwnedCollection, []collection.CleanupWarning, error) {
	return s.mutator.Detach(ctx, id, mediaID)
}

// SetPrimaryMedia makes the given media record the cover of the project
func (s *ProjectService) SetPrimaryMedia(ctx context.Context, id, mediaID uuid.UUID) (*collection.OwnedCollection, error) {
	return s.mutator.Promote(ctx, id, mediaID)
}

// ReorderMedia rewrites the media order of the project
func (s *ProjectService) ReorderMedia(ctx context.Context, id uuid.UUID, mediaIDs []uuid.UUID) (*collection.OwnedCollection, error) {
	return s.mutator.Reorder(ctx, id, mediaIDs)
}

// PurgeMedia removes all media from the project
func (s *ProjectService) PurgeMedia(ctx context.Context, id uuid.UUID) ([]collection.CleanupWarning, error) {
	return s.mutator.Purge(ctx, id)
}

// GetMediaRow looks up a single media row (used for file serving)
func (s *ProjectService) GetMediaRow(mediaID uuid.UUID) (*models.ProjectMedia, error) {
	var row models.ProjectMedia
	if err := s.db.First(&row, "id = ?", mediaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: media %s", collection.ErrRecordNotFound, mediaID)
		}
		return nil, err
	}
	return &row, nil
}
