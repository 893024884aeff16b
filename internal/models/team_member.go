package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamMember is a person shown on the team page. PhotoKey points at the
// portrait object in media storage and may be empty.
type TeamMember struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Role         string    `json:"role,omitempty"`
	Bio          string    `gorm:"type:text" json:"bio,omitempty"`
	Email        string    `json:"email,omitempty"`
	PhotoKey     string    `json:"photo_key,omitempty"`
	DisplayOrder int       `gorm:"index" json:"display_order"`
	Published    bool      `gorm:"default:true" json:"published"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
