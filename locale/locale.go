// Package locale defines the storefront languages and localized text values.
//
// Vietnamese is mandatory; English and Korean are optional. Locales are
// independent: content in one locale never falls back to another, except for
// display labels via Text.Display.
package locale

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported content language code.
type Locale string

const (
	VI Locale = "vi"
	EN Locale = "en"
	KO Locale = "ko"
)

// Default is the mandatory locale.
const Default = VI

// All lists the supported locales, default first.
var All = []Locale{VI, EN, KO}

// ErrUnsupported is returned for locale codes outside All.
var ErrUnsupported = errors.New("locale: unsupported locale")

var tags = []language.Tag{language.Vietnamese, language.English, language.Korean}

var matcher = language.NewMatcher(tags)

// Parse normalizes s and returns the matching Locale.
func Parse(s string) (Locale, error) {
	l := Locale(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, s)
	}
	return l, nil
}

// Valid reports whether l is one of the supported locales.
func (l Locale) Valid() bool {
	for _, v := range All {
		if v == l {
			return true
		}
	}
	return false
}

// Required reports whether content must exist in l.
func (l Locale) Required() bool { return l == Default }

// Tag returns the BCP 47 tag for l.
func (l Locale) Tag() language.Tag {
	for i, v := range All {
		if v == l {
			return tags[i]
		}
	}
	return language.Und
}

func (l Locale) String() string { return string(l) }

// Match picks the best supported locale for an Accept-Language header value.
func Match(acceptLanguage string) Locale {
	if strings.TrimSpace(acceptLanguage) == "" {
		return Default
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(prefs...)
	if conf == language.No || idx < 0 || idx >= len(All) {
		return Default
	}
	return All[idx]
}

// Text holds one string per locale. Missing keys mean "not translated".
type Text map[Locale]string

// Get returns the exact value for l without fallback.
func (t Text) Get(l Locale) string { return t[l] }

// Display returns the value for l, falling back to the default locale.
func (t Text) Display(l Locale) string {
	if v := strings.TrimSpace(t[l]); v != "" {
		return v
	}
	return t[Default]
}

// Locales returns the locales present in t in All order.
func (t Text) Locales() []Locale {
	out := make([]Locale, 0, len(t))
	for _, l := range All {
		if _, ok := t[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Validate requires a non-blank default-locale value and rejects unknown keys.
// It implements ozzo-validation's Validatable.
func (t Text) Validate() error {
	var unknown []string
	for l := range t {
		if !l.Valid() {
			unknown = append(unknown, string(l))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", ErrUnsupported, strings.Join(unknown, ", "))
	}
	if strings.TrimSpace(t[Default]) == "" {
		return fmt.Errorf("a %s value is required", Default)
	}
	return nil
}

// Clean trims values and drops blank entries.
func (t Text) Clean() Text {
	out := make(Text, len(t))
	for l, v := range t {
		if v = strings.TrimSpace(v); v != "" {
			out[l] = v
		}
	}
	return out
}
