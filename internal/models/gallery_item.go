package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GalleryItem is a publishable gallery entry owning an ordered set of media
type GalleryItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Published   bool      `gorm:"default:false" json:"published"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Media []GalleryMedia `gorm:"foreignKey:GalleryItemID" json:"media,omitempty"`
}

func (g *GalleryItem) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// GalleryMedia is one attachment row of a gallery item. Rows carry their
// position in sort_key and at most one row per item has is_primary set.
type GalleryMedia struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	GalleryItemID uuid.UUID `gorm:"type:uuid;not null;index" json:"gallery_item_id"`
	StorageKey    string    `gorm:"not null" json:"storage_key"`
	Filename      string    `gorm:"not null" json:"filename"`
	MimeType      string    `gorm:"not null" json:"mime_type"`
	SizeBytes     int64     `json:"size_bytes"`
	Kind          string    `gorm:"type:varchar(20);default:'photo'" json:"kind"`
	SortKey       int       `gorm:"index" json:"sort_key"`
	IsPrimary     bool      `gorm:"default:false" json:"is_primary"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *GalleryMedia) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
