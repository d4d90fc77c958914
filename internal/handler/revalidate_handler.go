package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linkhub/internal/service"
)

const revalidateSecretHeader = "X-Revalidate-Secret"

// authorizeRevalidate checks the shared-secret header. An unconfigured
// secret rejects everything; responses never hint at what would have been
// invalidated.
func (a *API) authorizeRevalidate(c *gin.Context) bool {
	secret := c.GetHeader(revalidateSecretHeader)
	if a.revalidateSecret == "" || secret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(a.revalidateSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
		return false
	}
	return true
}

type revalidateRequest struct {
	Page         string `json:"page"`
	Slug         string `json:"slug"` // legacy alias for page
	Homepage     bool   `json:"homepage"`
	TemplateSlug string `json:"template_slug"`
}

// Revalidate handles explicit manual invalidation: the body enumerates a
// page slug, the homepage and/or a template slug, and the response lists
// exactly which tags were purged.
func (a *API) Revalidate(c *gin.Context) {
	if !a.authorizeRevalidate(c) {
		return
	}

	var req revalidateRequest
	// An unreadable body is treated as an empty request, not an error.
	_ = c.ShouldBindJSON(&req)

	pageSlug := req.Page
	if pageSlug == "" {
		pageSlug = req.Slug
	}

	tags := a.invalidator.ManualTags(pageSlug, req.Homepage, req.TemplateSlug)
	purged := a.invalidator.Purge(tags...)
	if purged == nil {
		purged = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "revalidated": purged})
}

// WebhookRevalidate receives row-change events from the data store and
// purges the tags the change maps to. Unknown tables are a successful no-op
// since webhook delivery is at-least-once.
func (a *API) WebhookRevalidate(c *gin.Context) {
	if !a.authorizeRevalidate(c) {
		return
	}

	var ev service.ChangeEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_json"})
		return
	}

	purged, err := a.invalidator.ApplyChange(ev)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "server_error"})
		return
	}
	if purged == nil {
		purged = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "revalidated": purged})
}
