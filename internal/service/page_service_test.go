package service

import (
	"errors"
	"testing"

	"github.com/linkhub/internal/db"
)

func TestCreatePageRejectsReservedSlug(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewPageService(gdb)
	for _, slug := range []string{"admin", "go", "Login", "x", ""} {
		if _, err := svc.Create(PageInput{Slug: slug, DisplayName: "X"}); !errors.Is(err, ErrInvalidSlug) {
			t.Fatalf("expected ErrInvalidSlug for %q, got %v", slug, err)
		}
	}
}

func TestCreatePageRejectsDuplicateSlug(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewPageService(gdb)
	if _, err := svc.Create(PageInput{Slug: "acme"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(PageInput{Slug: "ACME"}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
}

func TestGetBySlugIsCaseInsensitive(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewPageService(gdb)
	if _, err := svc.Create(PageInput{Slug: "acme", DisplayName: "Acme"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	page, err := svc.GetBySlug("  ACME ")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if page.Slug != "acme" {
		t.Fatalf("expected acme, got %s", page.Slug)
	}
}

func TestCreatePageStripsMarkupFromTextFields(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewPageService(gdb)
	page, err := svc.Create(PageInput{
		Slug:        "acme",
		DisplayName: `Acme <script>alert(1)</script>`,
		Bio:         "<b>bold</b> bio",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if page.DisplayName != "Acme" {
		t.Fatalf("markup survived in display name: %q", page.DisplayName)
	}
	if page.Bio != "bold bio" {
		t.Fatalf("markup survived in bio: %q", page.Bio)
	}
}

func TestHomepageSingletonTransfers(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewPageService(gdb)
	first, err := svc.Create(PageInput{Slug: "first", IsHomepage: true})
	if err != nil {
		t.Fatalf("create first failed: %v", err)
	}
	second, err := svc.Create(PageInput{Slug: "second", IsHomepage: true})
	if err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	home, err := svc.GetHomepage()
	if err != nil {
		t.Fatalf("homepage lookup failed: %v", err)
	}
	if home.ID != second.ID {
		t.Fatalf("expected homepage to transfer to %s, got %s", second.Slug, home.Slug)
	}

	var count int64
	gdb.Model(&db.Page{}).Where("is_homepage = ?", true).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one homepage, found %d", count)
	}

	reloaded, err := svc.GetByID(first.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.IsHomepage {
		t.Fatal("first page should have lost the homepage flag")
	}
}

func TestGetHomepageWhenNoneConfigured(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewPageService(gdb)
	if _, err := svc.GetHomepage(); !errors.Is(err, ErrHomepageNotFound) {
		t.Fatalf("expected ErrHomepageNotFound, got %v", err)
	}
}

func TestEnsureForEmailProvisionsOnce(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewPageService(gdb)
	page, created, err := svc.EnsureForEmail("Jean.Dupont@example.com", "Jean Dupont")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if !created {
		t.Fatal("expected page to be created on first access")
	}
	if page.Slug != "jean-dupont" {
		t.Fatalf("expected slug jean-dupont, got %s", page.Slug)
	}
	if page.TemplateSlug != db.DefaultTemplateSlug {
		t.Fatalf("expected default template, got %s", page.TemplateSlug)
	}

	again, created, err := svc.EnsureForEmail("jean.dupont@example.com", "")
	if err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if created {
		t.Fatal("second access must not create another page")
	}
	if again.ID != page.ID {
		t.Fatal("second access returned a different page")
	}
}

func TestEnsureForEmailRetriesOnSlugCollision(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewPageService(gdb)
	mustCreatePage(t, gdb, db.Page{Slug: "jean", OwnerEmail: "other@example.com"})

	page, _, err := svc.EnsureForEmail("jean@elsewhere.org", "")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if page.Slug != "jean-2" {
		t.Fatalf("expected jean-2 after collision, got %s", page.Slug)
	}
}

func TestUpdatePageRename(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewPageService(gdb)
	page, err := svc.Create(PageInput{Slug: "old-name", DisplayName: "Old"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(page.ID, PageInput{Slug: "new-name", DisplayName: "New"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Slug != "new-name" || updated.DisplayName != "New" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := svc.GetBySlug("old-name"); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("old slug should be gone, got %v", err)
	}
}
