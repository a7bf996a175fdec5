// Package shopdesk is the admin backend for a multilingual storefront built
// with Go, Echo and templ. It manages pages and their per-locale section
// lists, products, blog posts, the media library, redirects and site
// settings, and serves a read API and feeds for the storefront.
package shopdesk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/shopdesk/locale"
	"github.com/eringen/shopdesk/sections"
)

// App is the central shopdesk application. It wires together the store,
// section service, page cache, publisher, handlers and middleware.
type App struct {
	Config   Config
	Echo     *echo.Echo
	Store    *Store
	Sections *sections.Service
	Cache    *PageCache
	Logger   *zap.Logger
	Views    ViewFuncs

	publisher       *Publisher
	loginLimiter    *RateLimiter
	publishLimiter  *RateLimiter
	httpClient      *http.Client
	customRoutes    []func(*App)
	extraMiddleware []echo.MiddlewareFunc
}

// New validates cfg, opens the store and builds a ready-to-serve App.
func New(cfg Config, opts ...Option) (*App, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	a.Views = a.Views.withDefaults()

	if a.Logger == nil {
		logger, err := NewLogger(cfg.LogLevel, cfg.Development)
		if err != nil {
			return nil, err
		}
		a.Logger = logger
	}

	store, err := NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("shopdesk: init store: %w", err)
	}
	a.Store = store
	a.Sections = sections.NewService(store)
	a.Cache = NewPageCache(cfg.PageCacheTTL, a.loadPageView)
	a.publisher = NewPublisher(cfg, a.httpClient, store, a.Logger.Named("publish"))
	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.publishLimiter = NewRateLimiter(3, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a, nil
}

// Start serves HTTP on Config.Addr until the server is shut down.
func (a *App) Start() error {
	a.Logger.Info("listening", zap.String("addr", a.Config.Addr))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/admin/assets/*", echo.WrapHandler(http.StripPrefix("/admin/assets/", http.FileServer(http.FS(assets)))))
	e.Static(a.Config.UploadURLPrefix, a.Config.UploadDir)
	e.GET("/healthz", a.handleHealth)

	// Public read API
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/api/pages/:slug", a.handlePublicPage)
	e.GET("/api/products", a.handlePublicProducts)
	e.GET("/api/products/:slug", a.handlePublicProduct)
	e.GET("/api/posts", a.handlePublicPosts)
	e.GET("/api/posts/:slug", a.handlePublicPost)
	e.GET("/api/redirects/resolve", a.handleResolveRedirect)
	e.GET("/api/settings", a.handlePublicSettings)

	// Admin pages
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/publish/", a.handleAdminPublish, requireAdminPage)
	e.GET("/admin/pages/:id/:locale/", a.handlePageEditor, requireAdminPage)

	// Admin JSON API
	api := e.Group("/admin/api", a.requireAdmin()...)

	api.GET("/pages", a.handleListPages)
	api.POST("/pages", a.handleCreatePage)
	api.GET("/pages/:id", a.handleGetPage)
	api.PUT("/pages/:id", a.handleUpdatePage)
	api.POST("/pages/:id/publish", a.handleSetPagePublished(true))
	api.POST("/pages/:id/unpublish", a.handleSetPagePublished(false))
	api.DELETE("/pages/:id", a.handleDeletePage)

	api.GET("/section-types", a.handleSectionTypes)
	api.GET("/pages/:id/sections/:locale", a.handleListSections)
	api.POST("/pages/:id/sections/:locale", a.handleCreateSection)
	api.PUT("/pages/:id/sections/:locale/order", a.handleReorderSections)
	api.POST("/pages/:id/sections/:locale/copy", a.handleCopySections)
	api.GET("/pages/:id/sections/:locale/preview", a.handlePreviewSections)
	api.GET("/sections/:sid", a.handleGetSection)
	api.PUT("/sections/:sid", a.handleUpdateSection)
	api.POST("/sections/:sid/toggle", a.handleToggleSection)
	api.POST("/sections/:sid/move", a.handleMoveSection)
	api.DELETE("/sections/:sid", a.handleDeleteSection)

	api.GET("/products", a.handleListProducts)
	api.POST("/products", a.handleCreateProduct)
	api.GET("/products/:id", a.handleGetProduct)
	api.PUT("/products/:id", a.handleUpdateProduct)
	api.DELETE("/products/:id", a.handleDeleteProduct)

	api.GET("/posts", a.handleListPosts)
	api.POST("/posts", a.handleCreatePost)
	api.POST("/posts/preview", a.handlePreviewMarkdown)
	api.GET("/posts/:id", a.handleGetPost)
	api.PUT("/posts/:id", a.handleUpdatePost)
	api.DELETE("/posts/:id", a.handleDeletePost)

	api.GET("/media", a.handleListMedia)
	api.POST("/media/upload", a.handleUpload)
	api.GET("/media/:id", a.handleGetMedia)
	api.PATCH("/media/:id", a.handleUpdateMedia)
	api.DELETE("/media/:id", a.handleDeleteMedia)

	api.GET("/redirects", a.handleListRedirects)
	api.POST("/redirects", a.handleCreateRedirect)
	api.PUT("/redirects/:id", a.handleUpdateRedirect)
	api.DELETE("/redirects/:id", a.handleDeleteRedirect)

	api.GET("/settings", a.handleGetSettings)
	api.PUT("/settings", a.handleSaveSettings)

	api.POST("/publish", a.handlePublish)
}

// loadPageView builds the storefront view of a published page.
func (a *App) loadPageView(ctx context.Context, slug string, loc locale.Locale) (PageView, error) {
	page, err := a.Store.GetPageBySlug(ctx, slug)
	if err != nil {
		return PageView{}, err
	}
	if !page.Published {
		return PageView{}, ErrNotFound
	}
	secs, err := a.Sections.List(ctx, page.ID, loc)
	if err != nil {
		return PageView{}, err
	}
	enabled := make([]sections.Section, 0, len(secs))
	for _, s := range secs {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	return PageView{
		Page:     page,
		Locale:   loc,
		Name:     page.Names.Display(loc),
		Sections: enabled,
	}, nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.publishLimiter != nil {
		a.publishLimiter.Stop()
	}
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	_ = a.Logger.Sync()
	return err
}
