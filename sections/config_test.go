package sections

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigReturnsVariantForEveryType(t *testing.T) {
	payloads := map[Type]string{
		TypeHero:             `{"heading":"Summer sale","cta":{"label":"Shop","url":"/sale","style":"primary"},"alignment":"left"}`,
		TypeRichText:         `{"body":"Hello"}`,
		TypeFeaturedProducts: `{"product_ids":["2f1a6c2e-8a35-4a4b-9df3-6f1f4f1f9a01"]}`,
		TypeProductGrid:      `{"limit":8,"columns":4,"sort_by":"price_asc"}`,
		TypeImageGallery:     `{"images":[{"media_id":"2f1a6c2e-8a35-4a4b-9df3-6f1f4f1f9a01","caption":"x"}],"layout":"carousel"}`,
		TypeFAQ:              `{"items":[{"question":"Ship abroad?","answer":"Yes"}]}`,
		TypeCTABanner:        `{"heading":"Join","button":{"label":"Go","url":"/join"},"background_color":"#ff0000"}`,
		TypeTestimonials:     `{"items":[{"quote":"Great","author":"Lan","rating":5}]}`,
		TypeFeatureList:      `{"columns":3,"items":[{"title":"Fast delivery"}]}`,
		TypeVideo:            `{"url":"https://example.com/v.mp4","autoplay":true}`,
		TypeNewsletter:       `{"heading":"News","button_label":"Subscribe"}`,
		TypeBlogHighlights:   `{"limit":3,"tag":"news"}`,
	}
	require.Len(t, payloads, len(Types))
	for typ, raw := range payloads {
		cfg, err := DecodeConfig(typ, json.RawMessage(raw))
		require.NoError(t, err, typ)
		assert.Equal(t, typ, cfg.SectionType(), typ)
	}
}

func TestDecodeConfigRejectsMismatchedShape(t *testing.T) {
	// An FAQ payload under the hero tag.
	_, err := DecodeConfig(TypeHero, json.RawMessage(`{"items":[{"question":"q","answer":"a"}]}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, TypeHero, cfgErr.Type)
	assert.NotEmpty(t, cfgErr.Issues)
}

func TestDecodeConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		typ  Type
		raw  string
	}{
		{"bad color", TypeCTABanner, `{"heading":"x","button":{"label":"a","url":"/"},"background_color":"red"}`},
		{"limit out of range", TypeProductGrid, `{"limit":0,"columns":4}`},
		{"bad enum", TypeHero, `{"heading":"x","alignment":"diagonal"}`},
		{"bad uuid", TypeFeaturedProducts, `{"product_ids":["nope"]}`},
		{"missing required", TypeNewsletter, `{"heading":"x"}`},
		{"malformed", TypeRichText, `{"body":`},
		{"empty", TypeRichText, ``},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeConfig(tc.typ, json.RawMessage(tc.raw))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestDecodeConfigPreservesUnknownTypes(t *testing.T) {
	raw := json.RawMessage(`{"countdown_to":"2026-12-24"}`)
	cfg, err := DecodeConfig(Type("countdown"), raw)
	require.NoError(t, err)
	unknown, ok := cfg.(UnknownConfig)
	require.True(t, ok)
	assert.Equal(t, Type("countdown"), unknown.SectionType())

	encoded, err := EncodeConfig(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(encoded))
}

func TestEncodeConfigDefaultsAreValid(t *testing.T) {
	for _, typ := range Types {
		cfg := EditorFor(typ).NewConfig()
		require.NotNil(t, cfg, typ)
		_, err := EncodeConfig(cfg)
		assert.NoError(t, err, typ)
	}
}

func TestSectionJSONRoundTripUsesTag(t *testing.T) {
	in := Section{Type: TypeFAQ, Config: FAQConfig{Items: []FAQItem{{Question: "q", Answer: "a"}}}}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Section
	require.NoError(t, json.Unmarshal(b, &out))
	faq, ok := out.Config.(FAQConfig)
	require.True(t, ok, "config decoded as %T", out.Config)
	assert.Equal(t, "q", faq.Items[0].Question)
}
