package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linkhub/internal/db"
	"github.com/linkhub/internal/service"
)

const adminTokenHeader = "X-Admin-Token"

// AdminAuthRequired guards the management API with a static token header.
// Staff identity and sessions live in the dashboard frontend, outside this
// service.
func (a *API) AdminAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(adminTokenHeader)
		if a.adminToken == "" || token == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(a.adminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

type pagePayload struct {
	Slug         string `json:"slug"`
	DisplayName  string `json:"display_name"`
	Bio          string `json:"bio"`
	AvatarURL    string `json:"avatar_url"`
	TemplateSlug string `json:"template_slug"`
	IsHomepage   bool   `json:"is_homepage"`
	OwnerEmail   string `json:"owner_email"`
}

func (p pagePayload) toInput() service.PageInput {
	return service.PageInput{
		Slug:         p.Slug,
		DisplayName:  p.DisplayName,
		Bio:          p.Bio,
		AvatarURL:    p.AvatarURL,
		TemplateSlug: p.TemplateSlug,
		IsHomepage:   p.IsHomepage,
		OwnerEmail:   p.OwnerEmail,
	}
}

// ListPages returns every page.
func (a *API) ListPages(c *gin.Context) {
	pages, err := a.pages.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

// GetAdminPage returns one page with its full link list.
func (a *API) GetAdminPage(c *gin.Context) {
	page, err := a.pages.GetByID(c.Param("id"))
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	links, err := a.links.ListAll(page.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list links"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "links": links})
}

// CreatePage creates a page and purges its cache tags.
func (a *API) CreatePage(c *gin.Context) {
	var payload pagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	page, err := a.pages.Create(payload.toInput())
	if err != nil {
		a.writeServiceError(c, err)
		return
	}

	a.purgePage(page)
	c.JSON(http.StatusCreated, gin.H{"page": page})
}

// UpdatePage updates a page. Both the old and the new slug tags are purged
// so a rename leaves no stale entry behind.
func (a *API) UpdatePage(c *gin.Context) {
	var payload pagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	before, err := a.pages.GetByID(c.Param("id"))
	if err != nil {
		a.writeServiceError(c, err)
		return
	}

	page, err := a.pages.Update(before.ID, payload.toInput())
	if err != nil {
		a.writeServiceError(c, err)
		return
	}

	tags := []string{service.PageTag(before.Slug), service.PageTag(page.Slug)}
	if before.IsHomepage || page.IsHomepage {
		tags = append(tags, service.HomepageTag)
	}
	a.invalidator.Purge(tags...)

	c.JSON(http.StatusOK, gin.H{"page": page})
}

type ensurePageRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// EnsurePage provisions the page owned by an email on first access, deriving
// the slug from the email local part with collision retry.
func (a *API) EnsurePage(c *gin.Context) {
	var req ensurePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	page, created, err := a.pages.EnsureForEmail(req.Email, req.DisplayName)
	if err != nil {
		a.writeServiceError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"page": page, "created": created})
}

type linkPayload struct {
	Label    string `json:"label"`
	URL      string `json:"url"`
	Type     string `json:"type"`
	Icon     string `json:"icon"`
	IsActive *bool  `json:"is_active"`
}

func (l linkPayload) toInput() service.LinkInput {
	return service.LinkInput{
		Label:    l.Label,
		URL:      l.URL,
		Type:     l.Type,
		Icon:     l.Icon,
		IsActive: l.IsActive,
	}
}

// ListPageLinks returns every link of a page, including inactive ones.
func (a *API) ListPageLinks(c *gin.Context) {
	page, err := a.pages.GetByID(c.Param("id"))
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	links, err := a.links.ListAll(page.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list links"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

// CreateLink appends a link to a page.
func (a *API) CreateLink(c *gin.Context) {
	page, err := a.pages.GetByID(c.Param("id"))
	if err != nil {
		a.writeServiceError(c, err)
		return
	}

	var payload linkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	link, err := a.links.Create(page.ID, payload.toInput())
	if err != nil {
		a.writeServiceError(c, err)
		return
	}

	a.purgePage(page)
	c.JSON(http.StatusCreated, gin.H{"link": link})
}

// UpdateLink updates a link's fields.
func (a *API) UpdateLink(c *gin.Context) {
	var payload linkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	link, err := a.links.Update(c.Param("id"), payload.toInput())
	if err != nil {
		a.writeServiceError(c, err)
		return
	}

	a.purgeLinkOwner(link.PageID)
	c.JSON(http.StatusOK, gin.H{"link": link})
}

// DeleteLink removes a link.
func (a *API) DeleteLink(c *gin.Context) {
	link, err := a.links.GetByID(c.Param("id"))
	if err != nil {
		a.writeServiceError(c, err)
		return
	}

	if err := a.links.Delete(link.ID); err != nil {
		a.writeServiceError(c, err)
		return
	}

	a.purgeLinkOwner(link.PageID)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

// ReorderLinks bulk-assigns sort order from an ordered id list.
func (a *API) ReorderLinks(c *gin.Context) {
	page, err := a.pages.GetByID(c.Param("id"))
	if err != nil {
		a.writeServiceError(c, err)
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := a.links.Reorder(page.ID, req.IDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reorder links"})
		return
	}

	a.purgePage(page)
	c.JSON(http.StatusOK, gin.H{"reordered": true})
}

// LinkClicks returns the monthly click aggregates of a link.
func (a *API) LinkClicks(c *gin.Context) {
	link, err := a.links.GetByID(c.Param("id"))
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	stats, err := a.clicks.MonthlyStats(link.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load click stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clicks": stats})
}

type templatePayload struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	HTML string `json:"html"`
}

// ListTemplates returns every template.
func (a *API) ListTemplates(c *gin.Context) {
	templates, err := a.templates.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list templates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// CreateTemplate creates a template.
func (a *API) CreateTemplate(c *gin.Context) {
	var payload templatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tpl, err := a.templates.Create(service.TemplateInput(payload))
	if err != nil {
		a.writeServiceError(c, err)
		return
	}

	a.invalidator.Purge(service.TemplateTag(tpl.Slug))
	c.JSON(http.StatusCreated, gin.H{"template": tpl})
}

// UpdateTemplate updates a template, purging old and new slug tags so every
// page rendered with it is recomputed.
func (a *API) UpdateTemplate(c *gin.Context) {
	var payload templatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var before db.Template
	if err := a.db.Where("id = ?", c.Param("id")).First(&before).Error; err != nil {
		a.writeServiceError(c, service.ErrTemplateNotFound)
		return
	}

	tpl, err := a.templates.Update(before.ID, service.TemplateInput(payload))
	if err != nil {
		a.writeServiceError(c, err)
		return
	}

	a.invalidator.Purge(service.TemplateTag(before.Slug), service.TemplateTag(tpl.Slug))
	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

func (a *API) purgePage(page *db.Page) {
	tags := []string{service.PageTag(page.Slug)}
	if page.IsHomepage {
		tags = append(tags, service.HomepageTag)
	}
	a.invalidator.Purge(tags...)
}

func (a *API) purgeLinkOwner(pageID string) {
	page, err := a.pages.GetByID(pageID)
	if err != nil {
		return
	}
	a.purgePage(page)
}

// writeServiceError maps service sentinel errors to the HTTP taxonomy.
func (a *API) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPageNotFound),
		errors.Is(err, service.ErrLinkNotFound),
		errors.Is(err, service.ErrTemplateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrTemplateSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidSlug),
		errors.Is(err, service.ErrInvalidTemplateSlug),
		errors.Is(err, service.ErrTemplateHTMLTooLarge),
		errors.Is(err, service.ErrLabelRequired),
		errors.Is(err, service.ErrUnsafeURL),
		errors.Is(err, service.ErrEmailRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
