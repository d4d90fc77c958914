package service

import (
	"errors"
	"testing"
	"time"

	"github.com/linkhub/internal/db"
)

func TestCreateLinkAppendsAtEnd(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	page := mustCreatePage(t, gdb, db.Page{Slug: "acme"})
	svc := NewLinkService(gdb)

	first, err := svc.Create(page.ID, LinkInput{Label: "One", URL: "https://one.example.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := svc.Create(page.ID, LinkInput{Label: "Two", URL: "https://two.example.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if first.SortOrder != 0 || second.SortOrder != 1 {
		t.Fatalf("expected orders 0,1 got %d,%d", first.SortOrder, second.SortOrder)
	}
	if !second.IsActive {
		t.Fatal("links should default to active")
	}
}

func TestCreateLinkRejectsUnsafeURL(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	page := mustCreatePage(t, gdb, db.Page{Slug: "acme"})
	svc := NewLinkService(gdb)

	for _, u := range []string{"javascript:alert(1)", "ftp://x", "not a url", ""} {
		if _, err := svc.Create(page.ID, LinkInput{Label: "L", URL: u}); !errors.Is(err, ErrUnsafeURL) {
			t.Fatalf("expected ErrUnsafeURL for %q, got %v", u, err)
		}
	}

	if _, err := svc.Create(page.ID, LinkInput{Label: "  ", URL: "https://x.example.com"}); !errors.Is(err, ErrLabelRequired) {
		t.Fatalf("expected ErrLabelRequired, got %v", err)
	}
}

func TestListActiveFiltersAndOrders(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	page := mustCreatePage(t, gdb, db.Page{Slug: "acme"})
	now := time.Now()
	mustCreateLink(t, gdb, db.Link{PageID: page.ID, Label: "third", URL: "https://3.example.com", SortOrder: 2, IsActive: true, CreatedAt: now})
	mustCreateLink(t, gdb, db.Link{PageID: page.ID, Label: "first", URL: "https://1.example.com", SortOrder: 0, IsActive: true, CreatedAt: now})
	mustCreateLink(t, gdb, db.Link{PageID: page.ID, Label: "hidden", URL: "https://h.example.com", SortOrder: 1, IsActive: false, CreatedAt: now})

	svc := NewLinkService(gdb)
	links, err := svc.ListActive(page.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(links) != 2 {
		t.Fatalf("expected 2 active links, got %d", len(links))
	}
	if links[0].Label != "first" || links[1].Label != "third" {
		t.Fatalf("wrong order: %s, %s", links[0].Label, links[1].Label)
	}
	for _, l := range links {
		if !l.IsActive {
			t.Fatalf("inactive link %s leaked into active list", l.Label)
		}
	}
}

func TestReorderAssignsPositions(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	page := mustCreatePage(t, gdb, db.Page{Slug: "acme"})
	svc := NewLinkService(gdb)

	a, _ := svc.Create(page.ID, LinkInput{Label: "A", URL: "https://a.example.com"})
	b, _ := svc.Create(page.ID, LinkInput{Label: "B", URL: "https://b.example.com"})
	c, _ := svc.Create(page.ID, LinkInput{Label: "C", URL: "https://c.example.com"})

	if err := svc.Reorder(page.ID, []string{c.ID, a.ID, b.ID, "ghost-id"}); err != nil {
		t.Fatalf("reorder failed: %v", err)
	}

	links, err := svc.ListAll(page.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"C", "A", "B"}
	for i, label := range want {
		if links[i].Label != label {
			t.Fatalf("position %d: expected %s got %s", i, label, links[i].Label)
		}
	}
}

func TestReorderIgnoresForeignLinks(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	mine := mustCreatePage(t, gdb, db.Page{Slug: "mine"})
	other := mustCreatePage(t, gdb, db.Page{Slug: "other"})
	svc := NewLinkService(gdb)

	if _, err := svc.Create(other.ID, LinkInput{Label: "E", URL: "https://e.example.com"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	foreign, _ := svc.Create(other.ID, LinkInput{Label: "F", URL: "https://f.example.com"})

	if err := svc.Reorder(mine.ID, []string{foreign.ID}); err != nil {
		t.Fatalf("reorder failed: %v", err)
	}

	reloaded, _ := svc.GetByID(foreign.ID)
	if reloaded.SortOrder != 1 {
		t.Fatalf("foreign link sort order changed to %d", reloaded.SortOrder)
	}
}

func TestDeleteLink(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	page := mustCreatePage(t, gdb, db.Page{Slug: "acme"})
	svc := NewLinkService(gdb)

	link, _ := svc.Create(page.ID, LinkInput{Label: "A", URL: "https://a.example.com"})
	if err := svc.Delete(link.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(link.ID); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound on second delete, got %v", err)
	}
}
