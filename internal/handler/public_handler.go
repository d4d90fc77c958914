package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/linkhub/internal/sanitize"
	"github.com/linkhub/internal/service"
)

// securityHeaders is the fixed header set attached to every public HTML
// response. The Cache-Control value is the edge tier of the cache design:
// shared caches keep the page a day and may serve it stale for a week while
// revalidating.
var securityHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "DENY",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
	"Permissions-Policy":     "camera=(), microphone=(), geolocation=()",
	"Content-Security-Policy": "default-src 'none'; " +
		"base-uri 'none'; " +
		"form-action 'none'; " +
		"style-src 'unsafe-inline' https://fonts.googleapis.com; " +
		"font-src https://fonts.gstatic.com; " +
		"img-src https: data:; " +
		"connect-src 'none'; " +
		"script-src 'none'; " +
		"frame-ancestors 'none';",
	"Cache-Control": "public, s-maxage=86400, stale-while-revalidate=604800",
}

func applySecurityHeaders(c *gin.Context) {
	for name, value := range securityHeaders {
		c.Header(name, value)
	}
}

const missingHomepageHTML = `<!doctype html><html lang="fr"><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1"><title>Links</title><body style="font-family:system-ui;padding:32px">Homepage not configured.</body></html>`

// ShowPage renders the public page for a vanity slug.
func (a *API) ShowPage(c *gin.Context) {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	if slug == "" || sanitize.IsReservedSlug(slug) {
		c.String(http.StatusNotFound, "Not Found")
		return
	}

	html, err := a.resolver.ResolveSlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			c.String(http.StatusNotFound, "Not Found")
			return
		}
		c.String(http.StatusInternalServerError, "Server Error")
		return
	}

	applySecurityHeaders(c)
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// ShowHomepage renders the homepage singleton at the root path.
func (a *API) ShowHomepage(c *gin.Context) {
	html, err := a.resolver.ResolveHomepage()
	if err != nil {
		if errors.Is(err, service.ErrHomepageNotFound) {
			applySecurityHeaders(c)
			c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(missingHomepageHTML))
			return
		}
		c.String(http.StatusInternalServerError, "Server Error")
		return
	}

	applySecurityHeaders(c)
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}
