package service

import (
	"errors"
	"strings"

	"github.com/linkhub/internal/cache"
	"github.com/linkhub/internal/sanitize"
)

// ChangeEvent is a row-change notification as delivered by the data store's
// webhook: which table changed and the row before and after the change.
type ChangeEvent struct {
	Type      string         `json:"type"`
	Table     string         `json:"table"`
	Record    map[string]any `json:"record"`
	OldRecord map[string]any `json:"old_record"`
}

// Invalidator maps mutations to the minimal set of cache tags to purge.
// It is stateless; every call purges synchronously and reports exactly which
// tags were hit so stale-cache incidents can be debugged from responses.
type Invalidator struct {
	cache *cache.Store
	pages *PageService
}

// NewInvalidator wires an Invalidator over the cache store. The page service
// is needed to resolve link events to their owning page.
func NewInvalidator(store *cache.Store, pages *PageService) *Invalidator {
	return &Invalidator{cache: store, pages: pages}
}

// Purge expires every cache entry carrying any of the given tags and returns
// the deduplicated tag list, preserving first-seen order.
func (i *Invalidator) Purge(tags ...string) []string {
	deduped := dedupe(tags)
	if len(deduped) > 0 {
		i.cache.Purge(deduped...)
	}
	return deduped
}

// ManualTags translates an explicit invalidation request into tags. Reserved
// page slugs are ignored since no page cache entry can exist for them.
func (i *Invalidator) ManualTags(pageSlug string, homepage bool, templateSlug string) []string {
	var tags []string
	if homepage {
		tags = append(tags, HomepageTag)
	}
	if t := strings.ToLower(strings.TrimSpace(templateSlug)); t != "" {
		tags = append(tags, TemplateTag(t))
	}
	if p := strings.ToLower(strings.TrimSpace(pageSlug)); p != "" && !sanitize.IsReservedSlug(p) {
		tags = append(tags, PageTag(p))
	}
	return tags
}

// ApplyChange maps a row-change event to tags and purges them. Unknown
// tables and malformed rows are a successful no-op: webhook delivery is
// at-least-once, so spurious payloads are routine.
func (i *Invalidator) ApplyChange(ev ChangeEvent) ([]string, error) {
	switch strings.TrimSpace(ev.Table) {
	case "templates":
		return i.Purge(templateChangeTags(ev)...), nil
	case "pages":
		return i.Purge(pageChangeTags(ev)...), nil
	case "links":
		tags, err := i.linkChangeTags(ev)
		if err != nil {
			return nil, err
		}
		return i.Purge(tags...), nil
	default:
		return []string{}, nil
	}
}

func templateChangeTags(ev ChangeEvent) []string {
	var tags []string
	oldSlug := stringField(ev.OldRecord, "slug")
	newSlug := stringField(ev.Record, "slug")
	if oldSlug != "" {
		tags = append(tags, TemplateTag(oldSlug))
	}
	if newSlug != "" && newSlug != oldSlug {
		tags = append(tags, TemplateTag(newSlug))
	}
	return tags
}

func pageChangeTags(ev ChangeEvent) []string {
	var tags []string
	oldSlug := stringField(ev.OldRecord, "slug")
	newSlug := stringField(ev.Record, "slug")
	if oldSlug != "" {
		tags = append(tags, PageTag(oldSlug))
	}
	if newSlug != "" && newSlug != oldSlug {
		tags = append(tags, PageTag(newSlug))
	}
	if boolField(ev.Record, "is_homepage") || boolField(ev.OldRecord, "is_homepage") {
		tags = append(tags, HomepageTag)
	}
	return tags
}

// linkChangeTags resolves the owning page, since link events only carry a
// foreign key. A vanished page yields no tags rather than an error.
func (i *Invalidator) linkChangeTags(ev ChangeEvent) ([]string, error) {
	pageID := stringField(ev.Record, "page_id")
	if pageID == "" {
		pageID = stringField(ev.OldRecord, "page_id")
	}
	if pageID == "" {
		return nil, nil
	}

	page, err := i.pages.GetByID(pageID)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil, nil
		}
		return nil, err
	}

	tags := []string{PageTag(page.Slug)}
	if page.IsHomepage {
		tags = append(tags, HomepageTag)
	}
	return tags, nil
}

func stringField(row map[string]any, key string) string {
	if row == nil {
		return ""
	}
	if v, ok := row[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func boolField(row map[string]any, key string) bool {
	if row == nil {
		return false
	}
	v, _ := row[key].(bool)
	return v
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
