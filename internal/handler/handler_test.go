package handler

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linkhub/internal/cache"
	"github.com/linkhub/internal/config"
	"github.com/linkhub/internal/db"
	"github.com/linkhub/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testRevalidateSecret = "test-revalidate-secret"
	testAdminToken       = "test-admin-token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// syncClickRecorder records clicks inline so tests can assert on counters
// deterministically.
type syncClickRecorder struct {
	clicks *service.ClickService
}

func (r syncClickRecorder) Record(linkID string, isBot bool) {
	_ = r.clicks.Record(linkID, isBot, time.Now())
}

func setupTestAPI(t *testing.T) (*API, *cache.Store, func()) {
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
	store := cache.New(time.Hour)

	api := NewAPI(gdb, store, config.AppConfig{
		RevalidateSecret: testRevalidateSecret,
		AdminAPIToken:    testAdminToken,
	})
	api.WithClickRecorder(syncClickRecorder{clicks: service.NewClickService(gdb)})

	return api, store, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func mustSeedPage(t *testing.T, page db.Page) *db.Page {
	t.Helper()
	if page.TemplateSlug == "" {
		page.TemplateSlug = db.DefaultTemplateSlug
	}
	if err := db.DB.Create(&page).Error; err != nil {
		t.Fatalf("failed to seed page %s: %v", page.Slug, err)
	}
	return &page
}

func mustSeedLink(t *testing.T, link db.Link) *db.Link {
	t.Helper()
	if err := db.DB.Create(&link).Error; err != nil {
		t.Fatalf("failed to seed link %s: %v", link.Label, err)
	}
	return &link
}
