package sections

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/shopdesk/markdown"
)

// html accumulates escaped markup for a section preview.
type html struct {
	b strings.Builder
}

func (h *html) raw(s string) *html {
	h.b.WriteString(s)
	return h
}

func (h *html) text(s string) *html {
	h.b.WriteString(templ.EscapeString(s))
	return h
}

func (h *html) tag(name, class, content string) *html {
	if content == "" {
		return h
	}
	h.raw("<" + name)
	if class != "" {
		h.raw(` class="` + class + `"`)
	}
	return h.raw(">").text(content).raw("</" + name + ">")
}

func (h *html) link(b Button, class string) *html {
	if b.Label == "" {
		return h
	}
	href := string(templ.URL(b.URL))
	if b.Style != "" {
		class += " " + class + "--" + b.Style
	}
	h.raw(`<a class="` + class + `" href="`).text(href).raw(`">`).text(b.Label).raw("</a>")
	return h
}

func component(t Type, build func(h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var h html
		h.raw(`<section class="section section--` + string(t) + `" data-section-type="` + string(t) + `">`)
		build(&h)
		h.raw("</section>")
		_, err := io.WriteString(w, h.b.String())
		return err
	})
}

func unsupportedView(t Type) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var h html
		h.raw(`<section class="section section--unsupported" data-section-type="`).text(string(t)).raw(`">`)
		h.raw("<p>").text(fmt.Sprintf("Section type %q is not supported yet.", string(t))).raw("</p>")
		h.raw("</section>")
		_, err := io.WriteString(w, h.b.String())
		return err
	})
}

func heroView(c HeroConfig) templ.Component {
	return component(TypeHero, func(h *html) {
		align := c.Alignment
		if align == "" {
			align = "center"
		}
		h.raw(`<div class="hero hero--` + align + `"`)
		if c.BackgroundMediaID != nil {
			h.raw(` data-media-id="` + c.BackgroundMediaID.String() + `"`)
		}
		h.raw(">")
		h.tag("h1", "hero__heading", c.Heading)
		h.tag("p", "hero__subheading", c.Subheading)
		if c.CTA != nil {
			h.link(*c.CTA, "button")
		}
		h.raw("</div>")
	})
}

func richTextView(c RichTextConfig) templ.Component {
	return component(TypeRichText, func(h *html) {
		h.tag("h2", "", c.Heading)
		h.raw(`<div class="prose">`).raw(markdown.String(c.Body)).raw("</div>")
	})
}

func featuredProductsView(c FeaturedProductsConfig) templ.Component {
	return component(TypeFeaturedProducts, func(h *html) {
		h.tag("h2", "", c.Heading)
		h.raw(`<ul class="product-list">`)
		for _, id := range c.ProductIDs {
			h.raw(`<li data-product-id="` + id.String() + `"></li>`)
		}
		h.raw("</ul>")
	})
}

func productGridView(c ProductGridConfig) templ.Component {
	return component(TypeProductGrid, func(h *html) {
		h.tag("h2", "", c.Heading)
		h.raw(fmt.Sprintf(`<div class="product-grid" data-columns="%d" data-limit="%d"`, c.Columns, c.Limit))
		if c.Category != "" {
			h.raw(` data-category="`).text(c.Category).raw(`"`)
		}
		if c.SortBy != "" {
			h.raw(` data-sort="` + c.SortBy + `"`)
		}
		h.raw("></div>")
	})
}

func imageGalleryView(c ImageGalleryConfig) templ.Component {
	return component(TypeImageGallery, func(h *html) {
		h.tag("h2", "", c.Heading)
		layout := c.Layout
		if layout == "" {
			layout = "grid"
		}
		h.raw(`<div class="gallery gallery--` + layout + `">`)
		for _, img := range c.Images {
			h.raw(`<figure data-media-id="` + img.MediaID.String() + `">`)
			h.tag("figcaption", "", img.Caption)
			h.raw("</figure>")
		}
		h.raw("</div>")
	})
}

func faqView(c FAQConfig) templ.Component {
	return component(TypeFAQ, func(h *html) {
		h.tag("h2", "", c.Heading)
		for _, item := range c.Items {
			h.raw("<details>")
			h.tag("summary", "", item.Question)
			h.tag("p", "", item.Answer)
			h.raw("</details>")
		}
	})
}

func ctaBannerView(c CTABannerConfig) templ.Component {
	return component(TypeCTABanner, func(h *html) {
		style := "background-color:" + c.BackgroundColor
		if c.TextColor != "" {
			style += ";color:" + c.TextColor
		}
		h.raw(`<div class="cta-banner" style="`).text(style).raw(`">`)
		h.tag("h2", "", c.Heading)
		h.tag("p", "", c.Text)
		h.link(c.Button, "button")
		h.raw("</div>")
	})
}

func testimonialsView(c TestimonialsConfig) templ.Component {
	return component(TypeTestimonials, func(h *html) {
		h.tag("h2", "", c.Heading)
		for _, t := range c.Items {
			h.raw("<blockquote>")
			h.tag("p", "", t.Quote)
			author := t.Author
			if t.Role != "" {
				author += ", " + t.Role
			}
			h.tag("cite", "", author)
			if t.Rating > 0 {
				h.raw(fmt.Sprintf(`<span class="rating" data-rating="%d"></span>`, t.Rating))
			}
			h.raw("</blockquote>")
		}
	})
}

func featureListView(c FeatureListConfig) templ.Component {
	return component(TypeFeatureList, func(h *html) {
		h.tag("h2", "", c.Heading)
		h.raw(fmt.Sprintf(`<ul class="features" data-columns="%d">`, c.Columns))
		for _, f := range c.Items {
			h.raw("<li>")
			if f.Icon != "" {
				h.raw(`<i class="icon" data-icon="`).text(f.Icon).raw(`"></i>`)
			}
			h.tag("h3", "", f.Title)
			h.tag("p", "", f.Description)
			h.raw("</li>")
		}
		h.raw("</ul>")
	})
}

func videoView(c VideoConfig) templ.Component {
	return component(TypeVideo, func(h *html) {
		h.tag("h2", "", c.Heading)
		if c.URL == "" {
			return
		}
		h.raw(`<video controls src="`).text(string(templ.URL(c.URL))).raw(`"`)
		if c.Autoplay {
			h.raw(" autoplay muted")
		}
		if c.Loop {
			h.raw(" loop")
		}
		if c.PosterMediaID != nil {
			h.raw(` data-poster-id="` + c.PosterMediaID.String() + `"`)
		}
		h.raw("></video>")
	})
}

func newsletterView(c NewsletterConfig) templ.Component {
	return component(TypeNewsletter, func(h *html) {
		h.tag("h2", "", c.Heading)
		h.tag("p", "", c.Description)
		h.raw(`<form class="newsletter"><input type="email" placeholder="`).text(c.Placeholder).raw(`">`)
		h.raw(`<button type="submit">`).text(c.ButtonLabel).raw("</button></form>")
	})
}

func blogHighlightsView(c BlogHighlightsConfig) templ.Component {
	return component(TypeBlogHighlights, func(h *html) {
		h.tag("h2", "", c.Heading)
		h.raw(fmt.Sprintf(`<div class="blog-highlights" data-limit="%d"`, c.Limit))
		if c.Tag != "" {
			h.raw(` data-tag="`).text(c.Tag).raw(`"`)
		}
		h.raw("></div>")
	})
}

// RenderPage renders the enabled sections of a list in position order.
func RenderPage(secs []Section) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, sec := range Sorted(secs) {
			if !sec.Enabled {
				continue
			}
			if err := Render(sec).Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}
