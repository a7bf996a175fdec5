package sections

import (
	"encoding/json"
	"fmt"

	"github.com/a-h/templ"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

type variant struct {
	label     string
	rawSchema json.RawMessage
	schema    *jsonschema.Schema
	defaults  func() Config
	decode    func([]byte) (Config, error)
	view      func(Config) templ.Component
}

var registry = map[Type]*variant{}

func init() {
	schemas, err := loadSchemas()
	if err != nil {
		panic(err)
	}
	register(schemas, TypeHero, "Hero", func() HeroConfig {
		return HeroConfig{Alignment: "center"}
	}, heroView)
	register(schemas, TypeRichText, "Rich text", func() RichTextConfig {
		return RichTextConfig{}
	}, richTextView)
	register(schemas, TypeFeaturedProducts, "Featured products", func() FeaturedProductsConfig {
		return FeaturedProductsConfig{}
	}, featuredProductsView)
	register(schemas, TypeProductGrid, "Product grid", func() ProductGridConfig {
		return ProductGridConfig{Limit: 8, Columns: 4, SortBy: "newest"}
	}, productGridView)
	register(schemas, TypeImageGallery, "Image gallery", func() ImageGalleryConfig {
		return ImageGalleryConfig{Layout: "grid"}
	}, imageGalleryView)
	register(schemas, TypeFAQ, "FAQ", func() FAQConfig {
		return FAQConfig{}
	}, faqView)
	register(schemas, TypeCTABanner, "Call to action banner", func() CTABannerConfig {
		return CTABannerConfig{
			Button:          Button{Style: "primary"},
			BackgroundColor: "#111827",
			TextColor:       "#ffffff",
		}
	}, ctaBannerView)
	register(schemas, TypeTestimonials, "Testimonials", func() TestimonialsConfig {
		return TestimonialsConfig{}
	}, testimonialsView)
	register(schemas, TypeFeatureList, "Feature list", func() FeatureListConfig {
		return FeatureListConfig{Columns: 3}
	}, featureListView)
	register(schemas, TypeVideo, "Video", func() VideoConfig {
		return VideoConfig{}
	}, videoView)
	register(schemas, TypeNewsletter, "Newsletter signup", func() NewsletterConfig {
		return NewsletterConfig{}
	}, newsletterView)
	register(schemas, TypeBlogHighlights, "Blog highlights", func() BlogHighlightsConfig {
		return BlogHighlightsConfig{Limit: 3}
	}, blogHighlightsView)

	for _, t := range Types {
		if _, ok := registry[t]; !ok {
			panic(fmt.Sprintf("sections: type %s has no registered variant", t))
		}
	}
}

// register binds a tag to its config variant. The generic parameter ties the
// view to the variant so a mismatched config can only arrive through a
// programming mistake, which panics.
func register[C Config](schemas map[Type]json.RawMessage, t Type, label string, defaults func() C, view func(C) templ.Component) {
	raw, ok := schemas[t]
	if !ok {
		panic(fmt.Sprintf("sections: no schema for %s", t))
	}
	compiled, err := compileSchema(t, raw)
	if err != nil {
		panic(fmt.Sprintf("sections: compile %s schema: %v", t, err))
	}
	registry[t] = &variant{
		label:     label,
		rawSchema: raw,
		schema:    compiled,
		defaults:  func() Config { return defaults() },
		decode:    strictDecode[C],
		view: func(cfg Config) templ.Component {
			c, ok := cfg.(C)
			if !ok {
				panic(fmt.Sprintf("sections: %s view called with %T", t, cfg))
			}
			return view(c)
		},
	}
}

// Editor describes how the admin UI edits and previews one section type.
type Editor struct {
	Type      Type            `json:"type"`
	Label     string          `json:"label"`
	Supported bool            `json:"supported"`
	Schema    json.RawMessage `json:"schema,omitempty"`
	Defaults  Config          `json:"defaults,omitempty"`

	view func(Config) templ.Component
}

// EditorFor returns the editor bound to t. Unknown tags get a placeholder
// editor whose view renders a "not yet supported" notice.
func EditorFor(t Type) Editor {
	v, ok := registry[t]
	if !ok {
		return Editor{
			Type:  t,
			Label: string(t),
			view: func(Config) templ.Component {
				return unsupportedView(t)
			},
		}
	}
	return Editor{
		Type:      t,
		Label:     v.label,
		Supported: true,
		Schema:    v.rawSchema,
		Defaults:  v.defaults(),
		view:      v.view,
	}
}

// Editors lists the supported editors in Types order.
func Editors() []Editor {
	out := make([]Editor, 0, len(Types))
	for _, t := range Types {
		out = append(out, EditorFor(t))
	}
	return out
}

// NewConfig returns the default configuration for the editor's type, or nil
// for unsupported types.
func (e Editor) NewConfig() Config {
	if !e.Supported {
		return nil
	}
	return registry[e.Type].defaults()
}

// View renders cfg with the editor's view function.
func (e Editor) View(cfg Config) templ.Component {
	if e.view == nil {
		return unsupportedView(e.Type)
	}
	return e.view(cfg)
}

// Render renders a single section through the editor selected by its type.
func Render(sec Section) templ.Component {
	return EditorFor(sec.Type).View(sec.Config)
}
