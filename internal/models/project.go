package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a portfolio project owning an ordered set of media
type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Summary     string    `gorm:"type:text" json:"summary,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Year        int       `gorm:"index" json:"year"`
	ExternalURL string    `json:"external_url,omitempty"`
	Published   bool      `gorm:"default:false" json:"published"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Media []ProjectMedia `gorm:"foreignKey:ProjectID" json:"media,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProjectMedia is one attachment row of a project. Kind distinguishes
// photos, videos and partner logos.
type ProjectMedia struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID  uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	StorageKey string    `gorm:"not null" json:"storage_key"`
	Filename   string    `gorm:"not null" json:"filename"`
	MimeType   string    `gorm:"not null" json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	Kind       string    `gorm:"type:varchar(20);default:'photo'" json:"kind"`
	SortKey    int       `gorm:"index" json:"sort_key"`
	IsPrimary  bool      `gorm:"default:false" json:"is_primary"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *ProjectMedia) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
