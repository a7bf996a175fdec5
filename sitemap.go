package shopdesk

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/shopdesk/locale"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// sitemapPage is a published page and the locales that have sections.
type sitemapPage struct {
	Page    Page
	Locales []locale.Locale
}

// pagePath maps a page slug to its storefront path; "home" is the locale root.
func pagePath(loc locale.Locale, slug string) []string {
	if slug == "home" {
		return []string{string(loc)}
	}
	return []string{string(loc), slug}
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func buildSitemap(base string, pages []sitemapPage, products []Product, posts []BlogPost) sitemapURLSet {
	var urls []sitemapURL
	for _, p := range pages {
		for _, l := range p.Locales {
			urls = append(urls, sitemapURL{Loc: BuildURL(base, pagePath(l, p.Page.Slug)...), LastMod: lastMod(p.Page.UpdatedAt)})
		}
	}
	for _, p := range products {
		for _, l := range locale.All {
			if _, ok := p.Translations[l]; ok {
				urls = append(urls, sitemapURL{Loc: BuildURL(base, string(l), "products", p.Slug), LastMod: lastMod(p.UpdatedAt)})
			}
		}
	}
	for _, p := range posts {
		for _, l := range locale.All {
			if _, ok := p.Translations[l]; ok {
				urls = append(urls, sitemapURL{Loc: BuildURL(base, string(l), "blog", p.Slug), LastMod: lastMod(p.UpdatedAt)})
			}
		}
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, pages []sitemapPage, products []Product, posts []BlogPost) error {
	sitemap := buildSitemap(a.Config.SiteURL, pages, products, posts)
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
