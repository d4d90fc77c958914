package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linkhub/internal/sanitize"
	"github.com/linkhub/internal/service"
)

// FollowLink handles GET /go/:id: look up the link, count the click and
// redirect. Click recording is fire-and-forget; its failure can never change
// the response.
func (a *API) FollowLink(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.String(http.StatusNotFound, "Not Found")
		return
	}

	link, err := a.links.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			c.String(http.StatusNotFound, "Not Found")
			return
		}
		c.String(http.StatusInternalServerError, "Server Error")
		return
	}
	if !link.IsActive {
		c.String(http.StatusNotFound, "Not Found")
		return
	}

	if !sanitize.IsSafeURL(link.URL) {
		c.String(http.StatusBadRequest, "Invalid URL")
		return
	}

	a.tracker.Record(link.ID, sanitize.IsBotUserAgent(c.Request.UserAgent()))

	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, link.URL)
}
