package services

import (
	"errors"
	"fmt"

	"github.com/atelierhaus/backend/internal/models"
	"github.com/atelierhaus/backend/pkg/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PageService struct {
	db *gorm.DB
}

func NewPageService(db *gorm.DB) *PageService {
	return &PageService{db: db}
}

// PageUpdate carries optional field updates; nil fields are untouched
type PageUpdate struct {
	Title     *string
	Body      *string
	Slug      *string
	Published *bool
}

func (s *PageService) CreatePage(slug, title, body string) (*models.Page, error) {
	if title == "" {
		return nil, errors.New("title is required")
	}
	if slug == "" {
		slug = validation.Slugify(title)
	}
	if !validation.ValidateSlug(slug) {
		return nil, fmt.Errorf("invalid slug: %s", slug)
	}

	page := &models.Page{
		Slug:  slug,
		Title: validation.SanitizeString(title),
		Body:  body,
	}
	if err := s.db.Create(page).Error; err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return page, nil
}

func (s *PageService) UpdatePage(id uuid.UUID, update PageUpdate) (*models.Page, error) {
	page, err := s.GetPage(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Title != nil {
		changes["title"] = validation.SanitizeString(*update.Title)
	}
	if update.Body != nil {
		changes["body"] = *update.Body
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
		return page, nil
	}

	if err := s.db.Model(page).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("failed to update page: %w", err)
	}
	return s.GetPage(id)
}

func (s *PageService) GetPage(id uuid.UUID) (*models.Page, error) {
	var page models.Page
	if err := s.db.First(&page, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPageBySlug returns a published page by slug
func (s *PageService) GetPageBySlug(slug string) (*models.Page, error) {
	var page models.Page
	if err := s.db.First(&page, "slug = ? AND published = ?", slug, true).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *PageService) ListPages(publishedOnly bool) ([]models.Page, error) {
	var pages []models.Page
	query := s.db.Order("title ASC")
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if err := query.Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (s *PageService) DeletePage(id uuid.UUID) error {
	result := s.db.Delete(&models.Page{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
