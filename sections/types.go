// Package sections implements the page-section builder: per-locale ordered
// lists of typed content blocks whose configuration shape is selected by the
// section type.
package sections

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/shopdesk/locale"
)

// Type tags a section and selects the shape of its configuration.
type Type string

const (
	TypeHero             Type = "hero"
	TypeRichText         Type = "rich_text"
	TypeFeaturedProducts Type = "featured_products"
	TypeProductGrid      Type = "product_grid"
	TypeImageGallery     Type = "image_gallery"
	TypeFAQ              Type = "faq"
	TypeCTABanner        Type = "cta_banner"
	TypeTestimonials     Type = "testimonials"
	TypeFeatureList      Type = "feature_list"
	TypeVideo            Type = "video"
	TypeNewsletter       Type = "newsletter"
	TypeBlogHighlights   Type = "blog_highlights"
)

// Types lists every section type this build can edit, in editor order.
var Types = []Type{
	TypeHero,
	TypeRichText,
	TypeFeaturedProducts,
	TypeProductGrid,
	TypeImageGallery,
	TypeFAQ,
	TypeCTABanner,
	TypeTestimonials,
	TypeFeatureList,
	TypeVideo,
	TypeNewsletter,
	TypeBlogHighlights,
}

// Known reports whether t has a registered config variant.
func (t Type) Known() bool {
	_, ok := registry[t]
	return ok
}

// Section is one configurable content block of a page in one locale.
type Section struct {
	ID        uuid.UUID     `json:"id"`
	PageID    uuid.UUID     `json:"page_id"`
	Locale    locale.Locale `json:"locale"`
	Type      Type          `json:"section_type"`
	Position  int           `json:"position"`
	Enabled   bool          `json:"is_enabled"`
	Config    Config        `json:"config"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// UnmarshalJSON decodes Config using the variant selected by section_type.
func (s *Section) UnmarshalJSON(data []byte) error {
	type alias Section
	var wire struct {
		alias
		Config json.RawMessage `json:"config"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*s = Section(wire.alias)
	if len(wire.Config) == 0 || string(wire.Config) == "null" {
		s.Config = nil
		return nil
	}
	cfg, err := DecodeConfig(s.Type, wire.Config)
	if err != nil {
		return err
	}
	s.Config = cfg
	return nil
}

// Config is the discriminated union of section configurations. Each variant
// reports the tag it belongs to.
type Config interface {
	SectionType() Type
}

// Button is a labelled link used by several variants.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Style string `json:"style,omitempty"`
}

type HeroConfig struct {
	Heading           string     `json:"heading"`
	Subheading        string     `json:"subheading,omitempty"`
	CTA               *Button    `json:"cta,omitempty"`
	BackgroundMediaID *uuid.UUID `json:"background_media_id,omitempty"`
	Alignment         string     `json:"alignment,omitempty"`
}

type RichTextConfig struct {
	Heading string `json:"heading,omitempty"`
	Body    string `json:"body"`
}

type FeaturedProductsConfig struct {
	Heading    string      `json:"heading,omitempty"`
	ProductIDs []uuid.UUID `json:"product_ids,omitempty"`
}

type ProductGridConfig struct {
	Heading  string `json:"heading,omitempty"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit"`
	Columns  int    `json:"columns"`
	SortBy   string `json:"sort_by,omitempty"`
}

type GalleryImage struct {
	MediaID uuid.UUID `json:"media_id"`
	Caption string    `json:"caption,omitempty"`
}

type ImageGalleryConfig struct {
	Heading string         `json:"heading,omitempty"`
	Images  []GalleryImage `json:"images,omitempty"`
	Layout  string         `json:"layout,omitempty"`
}

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FAQConfig struct {
	Heading string    `json:"heading,omitempty"`
	Items   []FAQItem `json:"items,omitempty"`
}

type CTABannerConfig struct {
	Heading         string `json:"heading"`
	Text            string `json:"text,omitempty"`
	Button          Button `json:"button"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color,omitempty"`
}

type Testimonial struct {
	Quote         string     `json:"quote"`
	Author        string     `json:"author"`
	Role          string     `json:"role,omitempty"`
	AvatarMediaID *uuid.UUID `json:"avatar_media_id,omitempty"`
	Rating        int        `json:"rating,omitempty"`
}

type TestimonialsConfig struct {
	Heading string        `json:"heading,omitempty"`
	Items   []Testimonial `json:"items,omitempty"`
}

type Feature struct {
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type FeatureListConfig struct {
	Heading string    `json:"heading,omitempty"`
	Columns int       `json:"columns"`
	Items   []Feature `json:"items,omitempty"`
}

type VideoConfig struct {
	Heading       string     `json:"heading,omitempty"`
	URL           string     `json:"url"`
	PosterMediaID *uuid.UUID `json:"poster_media_id,omitempty"`
	Autoplay      bool       `json:"autoplay,omitempty"`
	Loop          bool       `json:"loop,omitempty"`
}

type NewsletterConfig struct {
	Heading     string `json:"heading"`
	Description string `json:"description,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	ButtonLabel string `json:"button_label"`
}

type BlogHighlightsConfig struct {
	Heading string `json:"heading,omitempty"`
	Limit   int    `json:"limit"`
	Tag     string `json:"tag,omitempty"`
}

func (HeroConfig) SectionType() Type             { return TypeHero }
func (RichTextConfig) SectionType() Type         { return TypeRichText }
func (FeaturedProductsConfig) SectionType() Type { return TypeFeaturedProducts }
func (ProductGridConfig) SectionType() Type      { return TypeProductGrid }
func (ImageGalleryConfig) SectionType() Type     { return TypeImageGallery }
func (FAQConfig) SectionType() Type              { return TypeFAQ }
func (CTABannerConfig) SectionType() Type        { return TypeCTABanner }
func (TestimonialsConfig) SectionType() Type     { return TypeTestimonials }
func (FeatureListConfig) SectionType() Type      { return TypeFeatureList }
func (VideoConfig) SectionType() Type            { return TypeVideo }
func (NewsletterConfig) SectionType() Type       { return TypeNewsletter }
func (BlogHighlightsConfig) SectionType() Type   { return TypeBlogHighlights }

// UnknownConfig preserves the payload of a section type this build does not
// know, so rows written by newer versions survive a read-modify-write.
type UnknownConfig struct {
	Kind Type
	Raw  json.RawMessage
}

func (u UnknownConfig) SectionType() Type { return u.Kind }

func (u UnknownConfig) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return []byte("{}"), nil
	}
	return u.Raw, nil
}

// ConfigError lists schema violations for a section config payload.
type ConfigError struct {
	Type   Type
	Issues []Issue
}

// Issue is a single schema violation at a JSON pointer location.
type Issue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

func (e *ConfigError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("sections: invalid %s config", e.Type)
	}
	first := e.Issues[0]
	msg := fmt.Sprintf("sections: invalid %s config: %s: %s", e.Type, first.Location, first.Message)
	if n := len(e.Issues) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }
