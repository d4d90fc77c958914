package handler

import (
	"log"
	"time"

	"github.com/linkhub/internal/cache"
	"github.com/linkhub/internal/config"
	"github.com/linkhub/internal/service"
	"gorm.io/gorm"
)

// ClickRecorder records a redirect traversal. The production implementation
// is asynchronous; tests substitute a synchronous one.
type ClickRecorder interface {
	Record(linkID string, isBot bool)
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	pages       *service.PageService
	links       *service.LinkService
	templates   *service.TemplateService
	clicks      *service.ClickService
	resolver    *service.Resolver
	invalidator *service.Invalidator
	tracker     ClickRecorder

	revalidateSecret string
	adminToken       string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, store *cache.Store, cfg config.AppConfig) *API {
	pages := service.NewPageService(gdb)
	links := service.NewLinkService(gdb)
	templates := service.NewTemplateService(gdb)
	clicks := service.NewClickService(gdb)

	return &API{
		db:               gdb,
		pages:            pages,
		links:            links,
		templates:        templates,
		clicks:           clicks,
		resolver:         service.NewResolver(pages, links, templates, store),
		invalidator:      service.NewInvalidator(store, pages),
		tracker:          asyncClickRecorder{clicks: clicks},
		revalidateSecret: cfg.RevalidateSecret,
		adminToken:       cfg.AdminAPIToken,
	}
}

// WithClickRecorder swaps the click recorder, used by tests to record
// synchronously.
func (a *API) WithClickRecorder(r ClickRecorder) *API {
	if r != nil {
		a.tracker = r
	}
	return a
}

// asyncClickRecorder detaches click recording from the request. A failure is
// logged and otherwise dropped; it must never reach the redirect response.
type asyncClickRecorder struct {
	clicks *service.ClickService
}

func (r asyncClickRecorder) Record(linkID string, isBot bool) {
	go func() {
		if err := r.clicks.Record(linkID, isBot, time.Now()); err != nil {
			log.Printf("click tracking failed for link %s: %v", linkID, err)
		}
	}()
}
