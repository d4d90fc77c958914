package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Page is a public link page. A personal profile and the site homepage are
// the same entity; at most one row may carry IsHomepage=true.
type Page struct {
	ID           string `gorm:"primaryKey;size:36"`
	Slug         string `gorm:"uniqueIndex;size:48;not null"`
	DisplayName  string `gorm:"size:100"`
	Bio          string `gorm:"size:500"`
	AvatarURL    string `gorm:"size:2048"`
	TemplateSlug string `gorm:"size:48;not null;default:default"`
	IsHomepage   bool   `gorm:"index"`
	OwnerEmail   string `gorm:"size:255;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BeforeCreate 在创建前填充 UUID 主键。
func (p *Page) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
