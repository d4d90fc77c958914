package service

import (
	"errors"
	"strings"

	"github.com/linkhub/internal/cache"
	"github.com/linkhub/internal/db"
	"github.com/linkhub/internal/render"
	"github.com/linkhub/internal/sanitize"
)

// ErrTemplateMissing marks a page whose template reference dangles. This is
// a data-integrity fault surfaced as a server error, never as a 404.
var ErrTemplateMissing = errors.New("page references a missing template")

// Cache tags. Invalidation operates on these, never on raw keys.
const (
	HomepageTag = "homepage"

	pageTagPrefix     = "page:"
	templateTagPrefix = "template:"

	renderKeyPrefix   = "render:page:"
	renderKeyHomepage = "render:homepage"
	templateKeyPrefix = "template:"
)

// PageTag returns the invalidation tag for a page slug.
func PageTag(slug string) string {
	return pageTagPrefix + strings.ToLower(strings.TrimSpace(slug))
}

// TemplateTag returns the invalidation tag for a template slug.
func TemplateTag(slug string) string {
	return templateTagPrefix + strings.ToLower(strings.TrimSpace(slug))
}

// Resolver computes the public HTML for a slug or the homepage, caching both
// the rendered result and the template lookup. Rendered output is tagged
// with its page tag and its template tag, so a template edit invalidates
// every page using it without enumerating them.
type Resolver struct {
	pages     *PageService
	links     *LinkService
	templates *TemplateService
	cache     *cache.Store
}

// NewResolver wires a Resolver over the given services and cache store.
func NewResolver(pages *PageService, links *LinkService, templates *TemplateService, store *cache.Store) *Resolver {
	return &Resolver{pages: pages, links: links, templates: templates, cache: store}
}

// ResolveSlug renders the public page for a slug. Empty and reserved slugs
// fail with ErrPageNotFound before any data store access.
func (r *Resolver) ResolveSlug(slug string) ([]byte, error) {
	normalized := strings.ToLower(strings.TrimSpace(slug))
	if normalized == "" || sanitize.IsReservedSlug(normalized) {
		return nil, ErrPageNotFound
	}

	key := renderKeyPrefix + normalized
	if html, ok := r.cache.Get(key); ok {
		return html, nil
	}

	page, err := r.pages.GetBySlug(normalized)
	if err != nil {
		return nil, err
	}

	html, err := r.renderPage(page)
	if err != nil {
		return nil, err
	}

	tags := []string{PageTag(page.Slug), TemplateTag(page.TemplateSlug)}
	if page.IsHomepage {
		tags = append(tags, HomepageTag)
	}
	r.cache.Set(key, html, tags...)

	return html, nil
}

// ResolveHomepage renders the homepage singleton.
func (r *Resolver) ResolveHomepage() ([]byte, error) {
	if html, ok := r.cache.Get(renderKeyHomepage); ok {
		return html, nil
	}

	page, err := r.pages.GetHomepage()
	if err != nil {
		return nil, err
	}

	html, err := r.renderPage(page)
	if err != nil {
		return nil, err
	}

	r.cache.Set(renderKeyHomepage, html,
		HomepageTag, PageTag(page.Slug), TemplateTag(page.TemplateSlug))

	return html, nil
}

func (r *Resolver) renderPage(page *db.Page) ([]byte, error) {
	tplHTML, err := r.templateHTML(page.TemplateSlug)
	if err != nil {
		return nil, err
	}

	links, err := r.links.ListActive(page.ID)
	if err != nil {
		return nil, err
	}

	linkData := make([]render.LinkData, 0, len(links))
	for _, link := range links {
		linkData = append(linkData, render.LinkData{
			Label: link.Label,
			URL:   link.URL,
			Type:  link.Type,
			Icon:  link.Icon,
		})
	}

	html := render.Render(
		render.TrustedHTML(tplHTML),
		render.PageData{
			DisplayName: page.DisplayName,
			Bio:         page.Bio,
			AvatarURL:   page.AvatarURL,
		},
		render.BuildLinksHTML(linkData),
	)
	return []byte(html), nil
}

// templateHTML fetches a template's markup through its own cache entry.
// Many pages share one template, so the lookup is cached under the template
// tag independently of any page.
func (r *Resolver) templateHTML(slug string) (string, error) {
	key := templateKeyPrefix + strings.ToLower(strings.TrimSpace(slug))
	if html, ok := r.cache.Get(key); ok {
		return string(html), nil
	}

	tpl, err := r.templates.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			return "", ErrTemplateMissing
		}
		return "", err
	}

	r.cache.Set(key, []byte(tpl.HTML), TemplateTag(tpl.Slug))
	return tpl.HTML, nil
}
