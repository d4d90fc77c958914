package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linkhub/internal/cache"
	"github.com/linkhub/internal/config"
	"github.com/linkhub/internal/db"
	"github.com/linkhub/internal/handler"
	"github.com/linkhub/internal/sanitize"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(t *testing.T) (*gin.Engine, func()) {
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

	api := handler.NewAPI(gdb, cache.New(time.Hour), config.AppConfig{
		RevalidateSecret: "router-test-secret",
		AdminAPIToken:    "router-test-token",
	})

	return SetupRouter(api), func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestPingRoute(t *testing.T) {
	r, cleanup := setupTestRouter(t)
	defer cleanup()

	w := doRequest(r, http.MethodGet, "/ping")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "pong") {
		t.Fatalf("unexpected ping body: %s", w.Body.String())
	}
}

func TestRouteSegmentsBecomeReservedSlugs(t *testing.T) {
	_, cleanup := setupTestRouter(t)
	defer cleanup()

	for _, slug := range []string{"ping", "api", "admin", "go"} {
		if !sanitize.IsReservedSlug(slug) {
			t.Fatalf("route segment %q should be reserved after setup", slug)
		}
	}
}

func TestLiteralRoutesWinOverCatchAll(t *testing.T) {
	r, cleanup := setupTestRouter(t)
	defer cleanup()

	// /ping must hit the health handler, not the public slug handler.
	w := doRequest(r, http.MethodGet, "/ping")
	if !strings.Contains(w.Body.String(), "pong") {
		t.Fatalf("/ping fell through to the slug route: %s", w.Body.String())
	}

	// An unregistered single-segment path falls through to the slug route
	// and gets a page lookup.
	w = doRequest(r, http.MethodGet, "/nobody")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown slug, got %d", w.Code)
	}
}

func TestPublicPageServedThroughEngine(t *testing.T) {
	r, cleanup := setupTestRouter(t)
	defer cleanup()

	page := db.Page{Slug: "acme", DisplayName: "Acme Corp", TemplateSlug: db.DefaultTemplateSlug}
	if err := db.DB.Create(&page).Error; err != nil {
		t.Fatalf("failed to seed page: %v", err)
	}

	w := doRequest(r, http.MethodGet, "/acme")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Acme Corp") {
		t.Fatalf("page body missing display name: %s", w.Body.String())
	}
}

func TestAdminGroupGuardedThroughEngine(t *testing.T) {
	r, cleanup := setupTestRouter(t)
	defer cleanup()

	w := doRequest(r, http.MethodGet, "/admin/api/pages")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestRevalidateGuardedThroughEngine(t *testing.T) {
	r, cleanup := setupTestRouter(t)
	defer cleanup()

	w := doRequest(r, http.MethodPost, "/api/revalidate")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", w.Code)
	}
}
