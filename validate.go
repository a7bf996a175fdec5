package shopdesk

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/eringen/shopdesk/locale"
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

var slugRules = []validation.Rule{
	validation.Required,
	validation.Length(1, 120),
	validation.Match(slugPattern).Error("must be lowercase letters, digits and single hyphens"),
}

// Validate checks a page before it is written.
func (p Page) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Slug, slugRules...),
		validation.Field(&p.Names),
	)
}

// Validate checks a product before it is written.
func (p Product) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Slug, slugRules...),
		validation.Field(&p.SKU, validation.Required, validation.Length(1, 64)),
		validation.Field(&p.PriceMinor, validation.Min(0)),
		validation.Field(&p.Currency, validation.Required, validation.Match(currencyPattern).Error("must be a three-letter currency code")),
		validation.Field(&p.Stock, validation.Min(0)),
		validation.Field(&p.Translations, validation.By(productTranslations)),
		validation.Field(&p.Links, validation.Each(validation.By(productLink))),
	)
}

func productTranslations(value any) error {
	trs, _ := value.(map[locale.Locale]ProductTranslation)
	if err := checkLocales(keys(trs)); err != nil {
		return err
	}
	if strings.TrimSpace(trs[locale.Default].Name) == "" {
		return fmt.Errorf("a %s name is required", locale.Default)
	}
	return nil
}

func productLink(value any) error {
	l, _ := value.(ProductLink)
	if strings.TrimSpace(l.Label) == "" {
		return errors.New("label is required")
	}
	return absoluteURL(l.URL)
}

// Validate checks a blog post before it is written.
func (p BlogPost) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Slug, slugRules...),
		validation.Field(&p.Tags, validation.Each(validation.Length(1, 40))),
		validation.Field(&p.Translations, validation.By(postTranslations)),
	)
}

func postTranslations(value any) error {
	trs, _ := value.(map[locale.Locale]PostTranslation)
	if err := checkLocales(keys(trs)); err != nil {
		return err
	}
	if strings.TrimSpace(trs[locale.Default].Title) == "" {
		return fmt.Errorf("a %s title is required", locale.Default)
	}
	return nil
}

// Validate checks a redirect before it is written.
func (r Redirect) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FromPath, validation.Required, validation.By(localPath)),
		validation.Field(&r.ToPath, validation.Required, validation.By(pathOrURL)),
		validation.Field(&r.StatusCode, validation.Required, validation.In(301, 302, 307, 308)),
	)
}

// Validate checks site settings before they are saved.
func (s SiteSettings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.SiteName),
		validation.Field(&s.ContactEmail, validation.Match(emailPattern).Error("must be a valid email address")),
		validation.Field(&s.Currency, validation.Required, validation.Match(currencyPattern).Error("must be a three-letter currency code")),
		validation.Field(&s.SocialLinks, validation.Each(validation.By(absoluteURL))),
	)
}

func localPath(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") {
		return errors.New("must be a path starting with /")
	}
	if strings.ContainsAny(s, " \t\n?#") {
		return errors.New("must not contain whitespace, a query or a fragment")
	}
	return nil
}

func pathOrURL(value any) error {
	s, _ := value.(string)
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return nil
	}
	return absoluteURL(s)
}

func absoluteURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

func checkLocales(locs []locale.Locale) error {
	for _, l := range locs {
		if !l.Valid() {
			return fmt.Errorf("%w: %q", locale.ErrUnsupported, l)
		}
	}
	return nil
}

func keys[V any](m map[locale.Locale]V) []locale.Locale {
	out := make([]locale.Locale, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
