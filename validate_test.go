package shopdesk

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/shopdesk/locale"
)

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	require.Error(t, err)
	var errs validation.Errors
	require.True(t, errors.As(err, &errs), "want validation.Errors, got %T", err)
	return errs
}

func TestPageValidate(t *testing.T) {
	ok := Page{Slug: "about-us", Names: locale.Text{locale.VI: "Giới thiệu"}}
	assert.NoError(t, ok.Validate())

	errs := fieldErrors(t, Page{Slug: "About Us", Names: locale.Text{locale.EN: "About"}}.Validate())
	assert.Contains(t, errs, "slug")
	assert.Contains(t, errs, "names")

	errs = fieldErrors(t, Page{Slug: "x", Names: locale.Text{locale.VI: "x", "fr": "x"}}.Validate())
	assert.ErrorIs(t, errs["names"], locale.ErrUnsupported)
}

func TestProductValidate(t *testing.T) {
	p := testProduct("ao-thun", "TS-1")
	assert.NoError(t, p.Validate())

	bad := p
	bad.Currency = "vnd"
	bad.PriceMinor = -1
	bad.Links = []ProductLink{{Label: "", URL: "ftp://x"}}
	bad.Translations = map[locale.Locale]ProductTranslation{locale.EN: {Name: "Only English"}}
	errs := fieldErrors(t, bad.Validate())
	for _, field := range []string{"currency", "price_minor", "links", "translations"} {
		assert.Contains(t, errs, field)
	}
}

func TestBlogPostValidate(t *testing.T) {
	p := BlogPost{Slug: "hello", Tags: []string{"go"}, Translations: map[locale.Locale]PostTranslation{locale.VI: {Title: "Chào"}}}
	assert.NoError(t, p.Validate())

	p.Translations = map[locale.Locale]PostTranslation{locale.KO: {Title: "안녕"}}
	errs := fieldErrors(t, p.Validate())
	assert.Contains(t, errs, "translations")
}

func TestRedirectValidate(t *testing.T) {
	tests := []struct {
		name  string
		r     Redirect
		field string
	}{
		{"valid path", Redirect{FromPath: "/old", ToPath: "/new", StatusCode: 301}, ""},
		{"valid url", Redirect{FromPath: "/old", ToPath: "https://other.vn/x", StatusCode: 308}, ""},
		{"relative from", Redirect{FromPath: "old", ToPath: "/new", StatusCode: 301}, "from_path"},
		{"query in from", Redirect{FromPath: "/old?x=1", ToPath: "/new", StatusCode: 301}, "from_path"},
		{"protocol relative to", Redirect{FromPath: "/old", ToPath: "//evil.com", StatusCode: 301}, "to_path"},
		{"bad status", Redirect{FromPath: "/old", ToPath: "/new", StatusCode: 303}, "status_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			assert.Contains(t, fieldErrors(t, err), tt.field)
		})
	}
}

func TestSiteSettingsValidate(t *testing.T) {
	s := DefaultSiteSettings("Shop")
	assert.NoError(t, s.Validate())

	s.ContactEmail = "not-an-email"
	s.SocialLinks = map[string]string{"facebook": "facebook.com/shop"}
	errs := fieldErrors(t, s.Validate())
	assert.Contains(t, errs, "contact_email")
	assert.Contains(t, errs, "social_links")
}
