package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/linkhub/internal/db"
	"github.com/linkhub/internal/sanitize"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound     = errors.New("page not found")
	ErrHomepageNotFound = errors.New("homepage not configured")
	ErrInvalidSlug      = errors.New("slug is invalid or reserved")
	ErrSlugTaken        = errors.New("slug is already taken")
	ErrEmailRequired    = errors.New("owner email is required")
)

// textPolicy strips any markup from free-text fields before storage.
var textPolicy = bluemonday.StrictPolicy()

// stripMarkup removes tags and decodes the entities bluemonday introduces,
// so stored text stays raw. Rendering escapes exactly once, at output time.
func stripMarkup(s string) string {
	return html.UnescapeString(textPolicy.Sanitize(s))
}

// PageService manages link pages and the homepage singleton.
type PageService struct {
	db *gorm.DB
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb}
}

// PageInput carries the editable fields of a page.
type PageInput struct {
	Slug         string
	DisplayName  string
	Bio          string
	AvatarURL    string
	TemplateSlug string
	IsHomepage   bool
	OwnerEmail   string
}

// GetBySlug fetches a page by its slug. Lookup is case-insensitive because
// slugs are stored lowercase.
func (s *PageService) GetBySlug(slug string) (*db.Page, error) {
	var page db.Page
	normalized := strings.ToLower(strings.TrimSpace(slug))
	if err := s.db.Where("slug = ?", normalized).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// GetByID fetches a page by its opaque id.
func (s *PageService) GetByID(id string) (*db.Page, error) {
	var page db.Page
	if err := s.db.Where("id = ?", id).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// GetHomepage fetches the distinguished homepage page.
func (s *PageService) GetHomepage() (*db.Page, error) {
	var page db.Page
	if err := s.db.Where("is_homepage = ?", true).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHomepageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// List returns all pages ordered by slug.
func (s *PageService) List() ([]db.Page, error) {
	var pages []db.Page
	if err := s.db.Order("slug asc").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// Create validates and persists a new page. When IsHomepage is set, the flag
// is cleared from every other page in the same transaction so the singleton
// invariant holds.
func (s *PageService) Create(input PageInput) (*db.Page, error) {
	page, err := s.sanitizeInput(input)
	if err != nil {
		return nil, err
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureSlugFree(tx, page.Slug, ""); err != nil {
			return err
		}
		if page.IsHomepage {
			if err := clearHomepageFlag(tx, ""); err != nil {
				return err
			}
		}
		return tx.Create(page).Error
	}); err != nil {
		return nil, err
	}

	return page, nil
}

// Update applies new field values to an existing page.
func (s *PageService) Update(id string, input PageInput) (*db.Page, error) {
	updated, err := s.sanitizeInput(input)
	if err != nil {
		return nil, err
	}

	var page db.Page
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&page).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPageNotFound
			}
			return err
		}
		if err := ensureSlugFree(tx, updated.Slug, id); err != nil {
			return err
		}
		if updated.IsHomepage && !page.IsHomepage {
			if err := clearHomepageFlag(tx, id); err != nil {
				return err
			}
		}

		page.Slug = updated.Slug
		page.DisplayName = updated.DisplayName
		page.Bio = updated.Bio
		page.AvatarURL = updated.AvatarURL
		page.TemplateSlug = updated.TemplateSlug
		page.IsHomepage = updated.IsHomepage
		if updated.OwnerEmail != "" {
			page.OwnerEmail = updated.OwnerEmail
		}
		return tx.Save(&page).Error
	}); err != nil {
		return nil, err
	}

	return &page, nil
}

// EnsureForEmail returns the page owned by the given email, provisioning one
// on first access. The slug is derived from the email local part with a
// numeric suffix retry on collision. The second return value reports whether
// a page was created.
func (s *PageService) EnsureForEmail(email, displayName string) (*db.Page, bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, false, ErrEmailRequired
	}

	var existing db.Page
	err := s.db.Where("owner_email = ?", normalized).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	name := strings.TrimSpace(stripMarkup(displayName))
	if name == "" {
		name, _, _ = strings.Cut(normalized, "@")
	}

	base := sanitize.SlugFromEmail(normalized)
	page := db.Page{
		DisplayName:  truncate(name, sanitize.MaxDisplayName),
		TemplateSlug: db.DefaultTemplateSlug,
		OwnerEmail:   normalized,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		slug, err := freeSlugVariant(tx, base)
		if err != nil {
			return err
		}
		page.Slug = slug
		return tx.Create(&page).Error
	}); err != nil {
		return nil, false, err
	}

	return &page, true, nil
}

func (s *PageService) sanitizeInput(input PageInput) (*db.Page, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if !sanitize.IsValidSlug(slug) {
		return nil, ErrInvalidSlug
	}

	templateSlug := strings.ToLower(strings.TrimSpace(input.TemplateSlug))
	if templateSlug == "" {
		templateSlug = db.DefaultTemplateSlug
	}

	return &db.Page{
		Slug:         slug,
		DisplayName:  truncate(strings.TrimSpace(stripMarkup(input.DisplayName)), sanitize.MaxDisplayName),
		Bio:          truncate(strings.TrimSpace(stripMarkup(input.Bio)), sanitize.MaxBio),
		AvatarURL:    truncate(strings.TrimSpace(input.AvatarURL), sanitize.MaxAvatarURL),
		TemplateSlug: templateSlug,
		IsHomepage:   input.IsHomepage,
		OwnerEmail:   strings.ToLower(strings.TrimSpace(input.OwnerEmail)),
	}, nil
}

func ensureSlugFree(tx *gorm.DB, slug, excludeID string) error {
	var count int64
	query := tx.Model(&db.Page{}).Where("slug = ?", slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugTaken
	}
	return nil
}

func clearHomepageFlag(tx *gorm.DB, excludeID string) error {
	query := tx.Model(&db.Page{}).Where("is_homepage = ?", true)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	return query.Update("is_homepage", false).Error
}

// freeSlugVariant finds the first unclaimed variant of base: base, base-2,
// base-3, ... Reserved slugs are skipped the same way taken ones are.
func freeSlugVariant(tx *gorm.DB, base string) (string, error) {
	if len(base) < sanitize.MinSlugLen {
		base = sanitize.DefaultSlugToken
	}
	if len(base) > sanitize.MaxSlugLen {
		base = strings.Trim(base[:sanitize.MaxSlugLen], "-")
	}

	for i := 1; i <= 500; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		if sanitize.IsReservedSlug(candidate) {
			continue
		}
		var count int64
		if err := tx.Model(&db.Page{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", ErrSlugTaken
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
