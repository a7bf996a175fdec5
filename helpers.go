package shopdesk

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/shopdesk/locale"
)

// Slugify converts a title to a URL-safe slug. Vietnamese diacritics are
// folded to their base letters first.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(foldVietnamese(s)))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

var vietnameseFold = func() map[rune]rune {
	groups := map[rune]string{
		'a': "àáạảãâầấậẩẫăằắặẳẵ",
		'e': "èéẹẻẽêềếệểễ",
		'i': "ìíịỉĩ",
		'o': "òóọỏõôồốộổỗơờớợởỡ",
		'u': "ùúụủũưừứựửữ",
		'y': "ỳýỵỷỹ",
		'd': "đ",
	}
	m := make(map[rune]rune)
	for base, chars := range groups {
		for _, r := range chars {
			m[r] = base
		}
		for _, r := range strings.ToUpper(chars) {
			m[r] = base
		}
	}
	return m
}()

func foldVietnamese(s string) string {
	return strings.Map(func(r rune) rune {
		if base, ok := vietnameseFold[r]; ok {
			return base
		}
		return r
	}, s)
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeTags lowercases, trims and de-duplicates tags, keeping first-seen
// order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := []string{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// RelatedPosts finds posts that share at least one tag with current.
func RelatedPosts(current BlogPost, posts []BlogPost, limit int) []BlogPost {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		tagSet[t] = struct{}{}
	}
	related := []BlogPost{}
	for _, p := range posts {
		if p.ID == current.ID {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[t]; ok {
				related = append(related, p)
				break
			}
		}
		if limit > 0 && len(related) == limit {
			break
		}
	}
	return related
}

// ProductJsonLD returns a schema.org Product document for p in loc.
func ProductJsonLD(p Product, loc locale.Locale, siteURL string, media []MediaAsset) string {
	tr := p.Translations[loc]
	if tr.Name == "" {
		tr = p.Translations[locale.Default]
	}
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        tr.Name,
		"description": tr.Description,
		"sku":         p.SKU,
		"url":         BuildURL(siteURL, string(loc), "products", p.Slug),
		"offers": map[string]any{
			"@type":         "Offer",
			"price":         p.PriceMinor,
			"priceCurrency": p.Currency,
			"availability":  availability(p),
		},
	}
	if len(media) > 0 {
		images := make([]string, len(media))
		for i, m := range media {
			images[i] = strings.TrimSuffix(siteURL, "/") + m.URL
		}
		data["image"] = images
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func availability(p Product) string {
	if p.Active && p.Stock > 0 {
		return "https://schema.org/InStock"
	}
	return "https://schema.org/OutOfStock"
}
