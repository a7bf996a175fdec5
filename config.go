package shopdesk

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Config holds all configuration for a shopdesk instance. Every field can be
// set from the environment; LoadConfig applies the envDefault values and
// setDefaults covers configs built in code.
type Config struct {
	SiteName string `env:"SITE_NAME" envDefault:"Storefront"`
	SiteURL  string `env:"SITE_URL" envDefault:"http://localhost:3000"`

	Addr         string `env:"ADDR" envDefault:":3000"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/shopdesk.db"`

	UploadDir       string `env:"UPLOAD_DIR" envDefault:"public/uploads"`
	UploadURLPrefix string `env:"UPLOAD_URL_PREFIX" envDefault:"/uploads"`
	MaxUploadBytes  int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	MaxImageWidth   int    `env:"MAX_IMAGE_WIDTH" envDefault:"1600"`
	MaxImagePixels  int    `env:"MAX_IMAGE_PIXELS" envDefault:"40000000"`

	// AdminPassword and SessionSecret are required. APIToken enables bearer
	// authentication for API clients and the upload endpoint.
	AdminPassword string `env:"ADMIN_PASSWORD"`
	SessionSecret string `env:"ADMIN_SESSION_SECRET"`
	APIToken      string `env:"ADMIN_API_TOKEN"`
	CookieSecure  bool   `env:"COOKIE_SECURE"`

	PublishWebhookURL    string        `env:"PUBLISH_WEBHOOK_URL"`
	PublishWebhookSecret string        `env:"PUBLISH_WEBHOOK_SECRET"`
	PublishTimeout       time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"10s"`
	PublishMaxTries      uint          `env:"PUBLISH_MAX_TRIES" envDefault:"4"`

	PageCacheTTL time.Duration `env:"PAGE_CACHE_TTL" envDefault:"5m"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Development bool   `env:"DEV"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.SiteName == "" {
		c.SiteName = "Storefront"
	}
	if c.SiteURL == "" {
		c.SiteURL = "http://localhost:3000"
	}
	c.SiteURL = strings.TrimSuffix(c.SiteURL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/shopdesk.db"
	}
	if c.UploadDir == "" {
		c.UploadDir = "public/uploads"
	}
	if c.UploadURLPrefix == "" {
		c.UploadURLPrefix = "/uploads"
	}
	c.UploadURLPrefix = "/" + strings.Trim(c.UploadURLPrefix, "/")
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 10 << 20
	}
	if c.MaxImageWidth == 0 {
		c.MaxImageWidth = 1600
	}
	if c.MaxImagePixels == 0 {
		c.MaxImagePixels = 40_000_000
	}
	if c.PublishTimeout == 0 {
		c.PublishTimeout = 10 * time.Second
	}
	if c.PublishMaxTries == 0 {
		c.PublishMaxTries = 4
	}
	if c.PageCacheTTL == 0 {
		c.PageCacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports missing required settings.
func (c Config) Validate() error {
	var errs []error
	if c.AdminPassword == "" {
		errs = append(errs, errors.New("AdminPassword is required"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SessionSecret is required"))
	}
	if c.MaxUploadBytes < 0 {
		errs = append(errs, errors.New("MaxUploadBytes must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("shopdesk: %w", errors.Join(errs...))
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger replaces the logger built from Config.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithHTTPClient sets the client used for outbound publish webhooks.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) {
		a.httpClient = c
	}
}

// WithViews replaces admin UI components. Nil fields keep the defaults.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithMiddleware adds Echo middleware after the built-in stack.
func WithMiddleware(m ...echo.MiddlewareFunc) Option {
	return func(a *App) {
		a.extraMiddleware = append(a.extraMiddleware, m...)
	}
}
