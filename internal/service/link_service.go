package service

import (
	"errors"
	"strings"

	"github.com/linkhub/internal/db"
	"github.com/linkhub/internal/sanitize"
	"gorm.io/gorm"
)

var (
	ErrLinkNotFound  = errors.New("link not found")
	ErrLabelRequired = errors.New("link label is required")
	ErrUnsafeURL     = errors.New("link url must be http or https")
)

// LinkService manages the links belonging to pages.
type LinkService struct {
	db *gorm.DB
}

// NewLinkService returns a new LinkService instance.
func NewLinkService(gdb *gorm.DB) *LinkService {
	return &LinkService{db: gdb}
}

// LinkInput carries the editable fields of a link.
type LinkInput struct {
	Label    string
	URL      string
	Type     string
	Icon     string
	IsActive *bool
}

// GetByID fetches a single link.
func (s *LinkService) GetByID(id string) (*db.Link, error) {
	var link db.Link
	if err := s.db.Where("id = ?", id).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

// ListActive returns the active links of a page in display order. Ties on
// sort order fall back to insertion order.
func (s *LinkService) ListActive(pageID string) ([]db.Link, error) {
	var links []db.Link
	if err := s.db.
		Where("page_id = ? AND is_active = ?", pageID, true).
		Order("sort_order asc, created_at asc").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// ListAll returns every link of a page, active or not, in display order.
func (s *LinkService) ListAll(pageID string) ([]db.Link, error) {
	var links []db.Link
	if err := s.db.
		Where("page_id = ?", pageID).
		Order("sort_order asc, created_at asc").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// Create appends a link at the end of the page's list.
func (s *LinkService) Create(pageID string, input LinkInput) (*db.Link, error) {
	label, url, err := validateLinkFields(input)
	if err != nil {
		return nil, err
	}

	link := db.Link{
		PageID:   pageID,
		Label:    label,
		URL:      url,
		Type:     truncate(strings.TrimSpace(input.Type), 32),
		Icon:     truncate(strings.TrimSpace(input.Icon), 32),
		IsActive: true,
	}
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		row := tx.Model(&db.Link{}).
			Where("page_id = ?", pageID).
			Select("COALESCE(MAX(sort_order), -1)").
			Row()
		if err := row.Scan(&maxOrder); err != nil {
			return err
		}
		link.SortOrder = maxOrder + 1
		return tx.Create(&link).Error
	}); err != nil {
		return nil, err
	}

	return &link, nil
}

// Update applies new field values to a link.
func (s *LinkService) Update(id string, input LinkInput) (*db.Link, error) {
	label, url, err := validateLinkFields(input)
	if err != nil {
		return nil, err
	}

	link, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	link.Label = label
	link.URL = url
	link.Type = truncate(strings.TrimSpace(input.Type), 32)
	link.Icon = truncate(strings.TrimSpace(input.Icon), 32)
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}

	if err := s.db.Save(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

// Delete removes a link.
func (s *LinkService) Delete(id string) error {
	result := s.db.Where("id = ?", id).Delete(&db.Link{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// Reorder bulk-assigns sort order from an ordered id list. Ids not belonging
// to the page are ignored rather than erroring, since the editor may race a
// concurrent delete.
func (s *LinkService) Reorder(pageID string, orderedIDs []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for position, id := range orderedIDs {
			if err := tx.Model(&db.Link{}).
				Where("id = ? AND page_id = ?", id, pageID).
				Update("sort_order", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func validateLinkFields(input LinkInput) (label, url string, err error) {
	label = truncate(strings.TrimSpace(stripMarkup(input.Label)), sanitize.MaxLabel)
	if label == "" {
		return "", "", ErrLabelRequired
	}
	url = strings.TrimSpace(input.URL)
	if len(url) > sanitize.MaxURL || !sanitize.IsSafeURL(url) {
		return "", "", ErrUnsafeURL
	}
	return label, url, nil
}
