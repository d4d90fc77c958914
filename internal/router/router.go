package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/linkhub/internal/handler"
	"github.com/linkhub/internal/sanitize"
)

// SetupRouter 配置 Gin 引擎和路由。
// The catch-all public slug route is registered last so literal routes win,
// and every literal top-level segment is fed into the reserved-slug set so
// the set cannot drift from the real route table.
func SetupRouter(api *handler.API) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 缓存失效控制端点
	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/revalidate", api.Revalidate)
		apiGroup.POST("/webhook/revalidate", api.WebhookRevalidate)
	}

	// 后台管理 API
	admin := r.Group("/admin/api")
	admin.Use(api.AdminAuthRequired())
	{
		admin.GET("/pages", api.ListPages)
		admin.POST("/pages", api.CreatePage)
		admin.POST("/pages/ensure", api.EnsurePage)
		admin.GET("/pages/:id", api.GetAdminPage)
		admin.PUT("/pages/:id", api.UpdatePage)

		admin.GET("/pages/:id/links", api.ListPageLinks)
		admin.POST("/pages/:id/links", api.CreateLink)
		admin.PUT("/pages/:id/links/order", api.ReorderLinks)
		admin.PUT("/links/:id", api.UpdateLink)
		admin.DELETE("/links/:id", api.DeleteLink)
		admin.GET("/links/:id/clicks", api.LinkClicks)

		admin.GET("/templates", api.ListTemplates)
		admin.POST("/templates", api.CreateTemplate)
		admin.PUT("/templates/:id", api.UpdateTemplate)
	}

	// 公共路由
	r.GET("/go/:id", api.FollowLink)
	r.GET("/", api.ShowHomepage)
	r.GET("/:slug", api.ShowPage)

	sanitize.ReserveSlugs(routeSegments(r)...)

	return r
}

// routeSegments collects the literal first path segment of every registered
// route; parameter and wildcard segments are skipped.
func routeSegments(r *gin.Engine) []string {
	var segments []string
	for _, route := range r.Routes() {
		path := strings.TrimPrefix(route.Path, "/")
		segment, _, _ := strings.Cut(path, "/")
		if segment == "" || strings.HasPrefix(segment, ":") || strings.HasPrefix(segment, "*") {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}
