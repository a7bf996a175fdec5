package shopdesk

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/shopdesk/locale"
	"github.com/eringen/shopdesk/markdown"
	"github.com/eringen/shopdesk/sections"
)

// requestLocale reads ?locale= and falls back to Accept-Language.
func requestLocale(c echo.Context) (locale.Locale, error) {
	if q := c.QueryParam("locale"); q != "" {
		return locale.Parse(q)
	}
	return locale.Match(c.Request().Header.Get("Accept-Language")), nil
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handlePublicPage(c echo.Context) error {
	loc, err := requestLocale(c)
	if err != nil {
		return err
	}
	view, err := a.Cache.Get(c.Request().Context(), c.Param("slug"), loc)
	if err != nil {
		return err
	}
	c.Response().Header().Set("Content-Language", string(loc))
	if c.QueryParam("format") == "html" {
		return Render(c, sections.RenderPage(view.Sections))
	}
	return c.JSON(http.StatusOK, view)
}

// publicProduct is a product as the storefront sees it in one locale.
type publicProduct struct {
	ID          string        `json:"id"`
	Slug        string        `json:"slug"`
	SKU         string        `json:"sku"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	PriceMinor  int64         `json:"price_minor"`
	Currency    string        `json:"currency"`
	InStock     bool          `json:"in_stock"`
	Images      []MediaAsset  `json:"images"`
	Links       []ProductLink `json:"links"`
	JSONLD      string        `json:"json_ld,omitempty"`
}

func (a *App) publicProduct(c echo.Context, p Product, loc locale.Locale, withLD bool) (publicProduct, error) {
	ctx := c.Request().Context()
	images := make([]MediaAsset, 0, len(p.MediaIDs))
	for _, id := range p.MediaIDs {
		m, err := a.Store.GetMedia(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return publicProduct{}, err
		}
		images = append(images, m)
	}
	tr := p.Translations[loc]
	out := publicProduct{
		ID:          p.ID.String(),
		Slug:        p.Slug,
		SKU:         p.SKU,
		Name:        tr.Name,
		Description: tr.Description,
		PriceMinor:  p.PriceMinor,
		Currency:    p.Currency,
		InStock:     p.Stock > 0,
		Images:      images,
		Links:       p.Links,
	}
	if withLD {
		out.JSONLD = ProductJsonLD(p, loc, a.Config.SiteURL, images)
	}
	return out, nil
}

func (a *App) handlePublicProducts(c echo.Context) error {
	loc, err := requestLocale(c)
	if err != nil {
		return err
	}
	products, err := a.Store.ListProducts(c.Request().Context(), true)
	if err != nil {
		return err
	}
	out := make([]publicProduct, 0, len(products))
	for _, p := range products {
		if _, ok := p.Translations[loc]; !ok {
			continue
		}
		pp, err := a.publicProduct(c, p, loc, false)
		if err != nil {
			return err
		}
		out = append(out, pp)
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handlePublicProduct(c echo.Context) error {
	loc, err := requestLocale(c)
	if err != nil {
		return err
	}
	p, err := a.Store.GetProductBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if _, ok := p.Translations[loc]; !ok || !p.Active {
		return ErrNotFound
	}
	pp, err := a.publicProduct(c, p, loc, true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pp)
}

// publicPost is a published blog post in one locale.
type publicPost struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	HTML        string     `json:"html,omitempty"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func toPublicPost(p BlogPost, loc locale.Locale, withHTML bool) publicPost {
	tr := p.Translations[loc]
	out := publicPost{
		ID:          p.ID.String(),
		Slug:        p.Slug,
		Title:       tr.Title,
		Summary:     tr.Summary,
		Tags:        p.Tags,
		PublishedAt: p.PublishedAt,
	}
	if withHTML {
		out.HTML = markdown.String(tr.Content)
	}
	return out
}

// postsIn returns published posts that have a translation in loc.
func (a *App) postsIn(c echo.Context, loc locale.Locale) ([]BlogPost, error) {
	posts, err := a.Store.ListPosts(c.Request().Context(), true)
	if err != nil {
		return nil, err
	}
	out := posts[:0]
	for _, p := range posts {
		if _, ok := p.Translations[loc]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (a *App) handlePublicPosts(c echo.Context) error {
	loc, err := requestLocale(c)
	if err != nil {
		return err
	}
	posts, err := a.postsIn(c, loc)
	if err != nil {
		return err
	}
	tag := c.QueryParam("tag")
	out := make([]publicPost, 0, len(posts))
	for _, p := range posts {
		if tag != "" && !hasTag(p, tag) {
			continue
		}
		out = append(out, toPublicPost(p, loc, false))
	}
	return c.JSON(http.StatusOK, out)
}

func hasTag(p BlogPost, tag string) bool {
	want := NormalizeTags([]string{tag})
	if len(want) == 0 {
		return true
	}
	for _, t := range p.Tags {
		if t == want[0] {
			return true
		}
	}
	return false
}

func (a *App) handlePublicPost(c echo.Context) error {
	loc, err := requestLocale(c)
	if err != nil {
		return err
	}
	post, err := a.Store.GetPublishedPostBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if _, ok := post.Translations[loc]; !ok {
		return ErrNotFound
	}
	posts, err := a.postsIn(c, loc)
	if err != nil {
		return err
	}
	related := RelatedPosts(post, posts, 3)
	relatedOut := make([]publicPost, len(related))
	for i, r := range related {
		relatedOut[i] = toPublicPost(r, loc, false)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"post":    toPublicPost(post, loc, true),
		"related": relatedOut,
	})
}

func (a *App) handleResolveRedirect(c echo.Context) error {
	path := c.QueryParam("path")
	if err := localPath(path); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "path "+err.Error())
	}
	to, status, err := a.Store.ResolveRedirect(c.Request().Context(), path)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"from_path":   path,
		"to_path":     to,
		"status_code": status,
	})
}

func (a *App) handlePublicSettings(c echo.Context) error {
	s, err := a.Store.GetSiteSettings(c.Request().Context(), a.Config.SiteName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	pages, err := a.Store.ListPages(ctx)
	if err != nil {
		return err
	}
	products, err := a.Store.ListProducts(ctx, true)
	if err != nil {
		return err
	}
	posts, err := a.Store.ListPosts(ctx, true)
	if err != nil {
		return err
	}
	published := make([]sitemapPage, 0, len(pages))
	for _, p := range pages {
		if !p.Published {
			continue
		}
		counts, err := a.Store.CountSections(ctx, p.ID)
		if err != nil {
			return err
		}
		sp := sitemapPage{Page: p}
		for _, l := range locale.All {
			if counts[l] > 0 {
				sp.Locales = append(sp.Locales, l)
			}
		}
		published = append(published, sp)
	}
	return a.renderSitemap(c, published, products, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	loc, err := requestLocale(c)
	if err != nil {
		return err
	}
	posts, err := a.postsIn(c, loc)
	if err != nil {
		return err
	}
	settings, err := a.Store.GetSiteSettings(c.Request().Context(), a.Config.SiteName)
	if err != nil {
		return err
	}
	return a.renderRSS(c, loc, settings.SiteName.Display(loc), posts)
}
