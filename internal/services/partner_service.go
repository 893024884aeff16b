package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/atelierhaus/backend/internal/config"
	"github.com/atelierhaus/backend/internal/models"
	"github.com/atelierhaus/backend/pkg/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartnerService struct {
	db    *gorm.DB
	cfg   *config.Config
	store *MediaStore
}

func NewPartnerService(db *gorm.DB, cfg *config.Config, store *MediaStore) *PartnerService {
	return &PartnerService{db: db, cfg: cfg, store: store}
}

// PartnerUpdate carries optional field updates; nil fields are untouched
type PartnerUpdate struct {
	Name         *string
	WebsiteURL   *string
	DisplayOrder *int
	Published    *bool
}

func (s *PartnerService) CreatePartner(name, websiteURL string) (*models.Partner, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}

	// new partners go to the end of the listing
	var maxOrder int
	s.db.Model(&models.Partner{}).Select("COALESCE(MAX(display_order), -1)").Scan(&maxOrder)

	partner := &models.Partner{
		Name:         validation.SanitizeString(name),
		WebsiteURL:   websiteURL,
		DisplayOrder: maxOrder + 1,
	}
	if err := s.db.Create(partner).Error; err != nil {
		return nil, fmt.Errorf("failed to create partner: %w", err)
	}
	return partner, nil
}

func (s *PartnerService) UpdatePartner(id uuid.UUID, update PartnerUpdate) (*models.Partner, error) {
	partner, err := s.GetPartner(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Name != nil {
		changes["name"] = validation.SanitizeString(*update.Name)
	}
	if update.WebsiteURL != nil {
		changes["website_url"] = *update.WebsiteURL
	}
	if update.DisplayOrder != nil {
		changes["display_order"] = *update.DisplayOrder
	}
	if update.Published != nil {
		changes["published"] = *update.Published
	}
	if len(changes) == 0 {
		return partner, nil
	}

	if err := s.db.Model(partner).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("failed to update partner: %w", err)
	}
	return s.GetPartner(id)
}

func (s *PartnerService) GetPartner(id uuid.UUID) (*models.Partner, error) {
	var partner models.Partner
	if err := s.db.First(&partner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (s *PartnerService) ListPartners(publishedOnly bool) ([]models.Partner, error) {
	var partners []models.Partner
	query := s.db.Order("display_order ASC, created_at ASC")
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if err := query.Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

// SetLogo stores a new logo and replaces the previous one. The old
// object is deleted only after the row points at the new key.
func (s *PartnerService) SetLogo(ctx context.Context, id uuid.UUID, file UploadFile) (*models.Partner, error) {
	partner, err := s.GetPartner(id)
	if err != nil {
		return nil, err
	}
	up, err := classifyLogoUpload(s.cfg, file)
	if err != nil {
		return nil, err
	}

	key, err := s.store.Store(ctx, bytes.NewReader(up.Data), up.Filename, up.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}

	oldKey := partner.LogoKey
	if err := s.db.Model(partner).Update("logo_key", key).Error; err != nil {
		// compensate: the new object must not dangle
		if derr := s.store.Delete(ctx, key); derr != nil {
			log.Printf("WARN: failed to roll back logo %s: %v", key, derr)
		}
		return nil, fmt.Errorf("failed to update partner: %w", err)
	}
	if oldKey != "" {
		if derr := s.store.Delete(ctx, oldKey); derr != nil {
			log.Printf("WARN: failed to delete replaced logo %s: %v", oldKey, derr)
		}
	}
	return s.GetPartner(id)
}

func (s *PartnerService) DeletePartner(ctx context.Context, id uuid.UUID) error {
	partner, err := s.GetPartner(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.Partner{}, "id = ?", id).Error; err != nil {
		return err
	}
	if partner.LogoKey != "" {
		if derr := s.store.Delete(ctx, partner.LogoKey); derr != nil {
			log.Printf("WARN: deleted partner %s but failed to delete logo %s: %v", id, partner.LogoKey, derr)
		}
	}
	return nil
}
