package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/linkhub/internal/db"
	"github.com/linkhub/internal/sanitize"
	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound     = errors.New("template not found")
	ErrInvalidTemplateSlug  = errors.New("template slug is invalid")
	ErrTemplateSlugTaken    = errors.New("template slug is already taken")
	ErrTemplateHTMLTooLarge = errors.New("template html exceeds the size limit")
)

var templateSlugPattern = regexp.MustCompile(`^[a-z0-9-]{2,48}$`)

// TemplateService manages the admin-authored HTML skeletons. Template markup
// is trusted input; only privileged roles may reach these mutations.
type TemplateService struct {
	db *gorm.DB
}

// NewTemplateService returns a new TemplateService instance.
func NewTemplateService(gdb *gorm.DB) *TemplateService {
	return &TemplateService{db: gdb}
}

// TemplateInput carries the editable fields of a template.
type TemplateInput struct {
	Slug string
	Name string
	HTML string
}

// GetBySlug fetches a template by slug.
func (s *TemplateService) GetBySlug(slug string) (*db.Template, error) {
	var tpl db.Template
	normalized := strings.ToLower(strings.TrimSpace(slug))
	if err := s.db.Where("slug = ?", normalized).First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// List returns all templates ordered by slug.
func (s *TemplateService) List() ([]db.Template, error) {
	var templates []db.Template
	if err := s.db.Order("slug asc").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Create persists a new template.
func (s *TemplateService) Create(input TemplateInput) (*db.Template, error) {
	tpl, err := validateTemplateInput(input)
	if err != nil {
		return nil, err
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Template{}).Where("slug = ?", tpl.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrTemplateSlugTaken
		}
		return tx.Create(tpl).Error
	}); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Update applies new field values to an existing template.
func (s *TemplateService) Update(id string, input TemplateInput) (*db.Template, error) {
	updated, err := validateTemplateInput(input)
	if err != nil {
		return nil, err
	}

	var tpl db.Template
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&tpl).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTemplateNotFound
			}
			return err
		}
		var count int64
		if err := tx.Model(&db.Template{}).
			Where("slug = ? AND id <> ?", updated.Slug, id).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrTemplateSlugTaken
		}

		tpl.Slug = updated.Slug
		tpl.Name = updated.Name
		tpl.HTML = updated.HTML
		return tx.Save(&tpl).Error
	}); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func validateTemplateInput(input TemplateInput) (*db.Template, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if !templateSlugPattern.MatchString(slug) {
		return nil, ErrInvalidTemplateSlug
	}
	if len(input.HTML) > sanitize.MaxTemplateLen {
		return nil, ErrTemplateHTMLTooLarge
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = slug
	}

	return &db.Template{
		Slug: slug,
		Name: truncate(name, 100),
		HTML: input.HTML,
	}, nil
}
