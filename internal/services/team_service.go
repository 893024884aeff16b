package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/atelierhaus/backend/internal/collection"
	"github.com/atelierhaus/backend/internal/config"
	"github.com/atelierhaus/backend/internal/models"
	"github.com/atelierhaus/backend/pkg/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamService struct {
	db    *gorm.DB
	cfg   *config.Config
	store *MediaStore
}

func NewTeamService(db *gorm.DB, cfg *config.Config, store *MediaStore) *TeamService {
	return &TeamService{db: db, cfg: cfg, store: store}
}

// TeamMemberUpdate carries optional field updates; nil fields are untouched
type TeamMemberUpdate struct {
	Name         *string
	Role         *string
	Bio          *string
	Email        *string
	DisplayOrder *int
	Published    *bool
}

func (s *TeamService) CreateMember(name, role, bio, email string) (*models.TeamMember, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}
	if email != "" && !validation.ValidateEmail(email) {
		return nil, fmt.Errorf("invalid email: %s", email)
	}

	// new members go to the end of the listing
	var maxOrder int
	s.db.Model(&models.TeamMember{}).Select("COALESCE(MAX(display_order), -1)").Scan(&maxOrder)

	member := &models.TeamMember{
		Name:         validation.SanitizeString(name),
		Role:         validation.SanitizeString(role),
		Bio:          validation.SanitizeString(bio),
		Email:        email,
		DisplayOrder: maxOrder + 1,
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, fmt.Errorf("failed to create team member: %w", err)
	}
	return member, nil
}

func (s *TeamService) UpdateMember(id uuid.UUID, update TeamMemberUpdate) (*models.TeamMember, error) {
	member, err := s.GetMember(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Name != nil {
		changes["name"] = validation.SanitizeString(*update.Name)
	}
	if update.Role != nil {
		changes["role"] = validation.SanitizeString(*update.Role)
	}
	if update.Bio != nil {
		changes["bio"] = validation.SanitizeString(*update.Bio)
	}
	if update.Email != nil {
		if *update.Email != "" && !validation.ValidateEmail(*update.Email) {
			return nil, fmt.Errorf("invalid email: %s", *update.Email)
		}
		changes["email"] = *update.Email
	}
	if update.DisplayOrder != nil {
		changes["display_order"] = *update.DisplayOrder
	}
	if update.Published != nil {
		changes["published"] = *update.Published
	}
	if len(changes) == 0 {
		return member, nil
	}

	if err := s.db.Model(member).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("failed to update team member: %w", err)
	}
	return s.GetMember(id)
}

func (s *TeamService) GetMember(id uuid.UUID) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := s.db.First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *TeamService) ListMembers(publishedOnly bool) ([]models.TeamMember, error) {
	var members []models.TeamMember
	query := s.db.Order("display_order ASC, created_at ASC")
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if err := query.Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// SetPhoto stores a new portrait and replaces the previous one. The old
// object is deleted only after the row points at the new key.
func (s *TeamService) SetPhoto(ctx context.Context, id uuid.UUID, file UploadFile) (*models.TeamMember, error) {
	member, err := s.GetMember(id)
	if err != nil {
		return nil, err
	}
	up, err := classifyUpload(s.cfg, file)
	if err != nil {
		return nil, err
	}
	if up.Kind != collection.KindPhoto {
		return nil, errors.New("portrait must be an image")
	}

	key, err := s.store.Store(ctx, bytes.NewReader(up.Data), up.Filename, up.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store portrait: %w", err)
	}

	oldKey := member.PhotoKey
	if err := s.db.Model(member).Update("photo_key", key).Error; err != nil {
		// compensate: the new object must not dangle
		if derr := s.store.Delete(ctx, key); derr != nil {
			log.Printf("WARN: failed to roll back portrait %s: %v", key, derr)
		}
		return nil, fmt.Errorf("failed to update team member: %w", err)
	}
	if oldKey != "" {
		if derr := s.store.Delete(ctx, oldKey); derr != nil {
			log.Printf("WARN: failed to delete replaced portrait %s: %v", oldKey, derr)
		}
	}
	return s.GetMember(id)
}

func (s *TeamService) DeleteMember(ctx context.Context, id uuid.UUID) error {
	member, err := s.GetMember(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.TeamMember{}, "id = ?", id).Error; err != nil {
		return err
	}
	if member.PhotoKey != "" {
		if derr := s.store.Delete(ctx, member.PhotoKey); derr != nil {
			log.Printf("WARN: deleted team member %s but failed to delete portrait %s: %v", id, member.PhotoKey, derr)
		}
	}
	return nil
}
