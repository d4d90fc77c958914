package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Link belongs to exactly one Page. Inactive links stay editable but never
// appear in public output.
type Link struct {
	ID        string `gorm:"primaryKey;size:36"`
	PageID    string `gorm:"size:36;index;not null"`
	Label     string `gorm:"size:100;not null"`
	URL       string `gorm:"size:2048;not null"`
	Type      string `gorm:"size:32"`
	Icon      string `gorm:"size:32"`
	SortOrder int    `gorm:"index"`
	IsActive  bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate 在创建前填充 UUID 主键。
func (l *Link) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
