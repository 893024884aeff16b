package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Partner is an organisation shown on the partners page. LogoKey points
// at the logo object in media storage and may be empty.
type Partner struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	WebsiteURL   string    `json:"website_url,omitempty"`
	LogoKey      string    `json:"logo_key,omitempty"`
	DisplayOrder int       `gorm:"index" json:"display_order"`
	Published    bool      `gorm:"default:true" json:"published"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Partner) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
