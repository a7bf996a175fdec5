package shopdesk

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/shopdesk/locale"
	"github.com/eringen/shopdesk/sections"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSlugTaken is returned when a slug, SKU, filename or redirect source
	// is already used by another record.
	ErrSlugTaken = errors.New("already in use")
	// ErrRedirectLoop is returned when a redirect would lead back to itself.
	ErrRedirectLoop = errors.New("redirect loop")
)

// Page is a routable storefront page. Its content lives in per-locale
// section lists.
type Page struct {
	ID        uuid.UUID   `json:"id"`
	Slug      string      `json:"slug"`
	Names     locale.Text `json:"names"`
	Published bool        `json:"published"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// PageView is a published page with the enabled sections of one locale, as
// served to the storefront.
type PageView struct {
	Page     Page               `json:"page"`
	Locale   locale.Locale      `json:"locale"`
	Name     string             `json:"name"`
	Sections []sections.Section `json:"sections"`
}

// ProductTranslation holds the localized fields of a product.
type ProductTranslation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductLink is an outbound link shown with a product (marketplace
// listings, manuals).
type ProductLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Product is a catalog item. Prices are in minor currency units.
type Product struct {
	ID           uuid.UUID                            `json:"id"`
	Slug         string                               `json:"slug"`
	SKU          string                               `json:"sku"`
	PriceMinor   int64                                `json:"price_minor"`
	Currency     string                               `json:"currency"`
	Stock        int                                  `json:"stock"`
	Active       bool                                 `json:"active"`
	Translations map[locale.Locale]ProductTranslation `json:"translations"`
	MediaIDs     []uuid.UUID                          `json:"media_ids"`
	Links        []ProductLink                        `json:"links"`
	CreatedAt    time.Time                            `json:"created_at"`
	UpdatedAt    time.Time                            `json:"updated_at"`
}

// PostTranslation holds the localized fields of a blog post.
type PostTranslation struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

// BlogPost is a blog article with per-locale translations.
type BlogPost struct {
	ID           uuid.UUID                         `json:"id"`
	Slug         string                            `json:"slug"`
	CoverMediaID *uuid.UUID                        `json:"cover_media_id,omitempty"`
	Tags         []string                          `json:"tags"`
	Published    bool                              `json:"published"`
	PublishedAt  *time.Time                        `json:"published_at,omitempty"`
	Translations map[locale.Locale]PostTranslation `json:"translations"`
	CreatedAt    time.Time                         `json:"created_at"`
	UpdatedAt    time.Time                         `json:"updated_at"`
}

// MediaAsset describes an uploaded file in the media library.
type MediaAsset struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	URL          string    `json:"url"`
	MimeType     string    `json:"mime_type"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Size         int       `json:"size"`
	Alt          string    `json:"alt"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Redirect maps an old storefront path to a new location.
type Redirect struct {
	ID         uuid.UUID `json:"id"`
	FromPath   string    `json:"from_path"`
	ToPath     string    `json:"to_path"`
	StatusCode int       `json:"status_code"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SiteSettings is the typed view of the site-wide settings record.
type SiteSettings struct {
	SiteName        locale.Text       `json:"site_name"`
	ContactEmail    string            `json:"contact_email"`
	Phone           string            `json:"phone"`
	Address         locale.Text       `json:"address"`
	SocialLinks     map[string]string `json:"social_links"`
	Currency        string            `json:"currency"`
	MaintenanceMode bool              `json:"maintenance_mode"`
}
