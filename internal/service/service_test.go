package service

import (
	"testing"

	"github.com/linkhub/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Page{}, &db.Link{}, &db.Template{}, &db.LinkClickMonthly{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	if err := db.SeedDefaultTemplate(gdb); err != nil {
		t.Fatalf("failed to seed default template: %v", err)
	}

	db.DB = gdb

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func mustCreatePage(t *testing.T, gdb *gorm.DB, page db.Page) *db.Page {
	t.Helper()
	if page.TemplateSlug == "" {
		page.TemplateSlug = db.DefaultTemplateSlug
	}
	if err := gdb.Create(&page).Error; err != nil {
		t.Fatalf("failed to create page %s: %v", page.Slug, err)
	}
	return &page
}

func mustCreateLink(t *testing.T, gdb *gorm.DB, link db.Link) *db.Link {
	t.Helper()
	if err := gdb.Create(&link).Error; err != nil {
		t.Fatalf("failed to create link %s: %v", link.Label, err)
	}
	return &link
}
