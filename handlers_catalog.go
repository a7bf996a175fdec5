package shopdesk

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eringen/shopdesk/locale"
	"github.com/eringen/shopdesk/markdown"
)

type productInput struct {
	Slug         string                               `json:"slug"`
	SKU          string                               `json:"sku"`
	PriceMinor   int64                                `json:"price_minor"`
	Currency     string                               `json:"currency"`
	Stock        int                                  `json:"stock"`
	Active       bool                                 `json:"active"`
	Translations map[locale.Locale]ProductTranslation `json:"translations"`
	MediaIDs     []uuid.UUID                          `json:"media_ids"`
	Links        []ProductLink                        `json:"links"`
}

func (in productInput) product() Product {
	trs := make(map[locale.Locale]ProductTranslation, len(in.Translations))
	for l, tr := range in.Translations {
		tr.Name = strings.TrimSpace(tr.Name)
		tr.Description = strings.TrimSpace(tr.Description)
		if tr.Name == "" && tr.Description == "" {
			continue
		}
		trs[l] = tr
	}
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(trs[locale.Default].Name)
	}
	return Product{
		Slug:         slug,
		SKU:          strings.TrimSpace(in.SKU),
		PriceMinor:   in.PriceMinor,
		Currency:     strings.ToUpper(strings.TrimSpace(in.Currency)),
		Stock:        in.Stock,
		Active:       in.Active,
		Translations: trs,
		MediaIDs:     in.MediaIDs,
		Links:        in.Links,
	}
}

func (a *App) handleListProducts(c echo.Context) error {
	products, err := a.Store.ListProducts(c.Request().Context(), false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (a *App) handleCreateProduct(c echo.Context) error {
	var in productInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p := in.product()
	if err := p.Validate(); err != nil {
		return err
	}
	created, err := a.Store.CreateProduct(c.Request().Context(), p)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handleGetProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := a.Store.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) handleUpdateProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in productInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p := in.product()
	p.ID = id
	if err := p.Validate(); err != nil {
		return err
	}
	updated, err := a.Store.UpdateProduct(c.Request().Context(), p)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleDeleteProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := a.Store.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.NoContent(http.StatusNoContent)
}

// --- blog posts ---

type postInput struct {
	Slug         string                            `json:"slug"`
	CoverMediaID *uuid.UUID                        `json:"cover_media_id"`
	Tags         []string                          `json:"tags"`
	Published    bool                              `json:"published"`
	Translations map[locale.Locale]PostTranslation `json:"translations"`
}

func (in postInput) post() BlogPost {
	trs := make(map[locale.Locale]PostTranslation, len(in.Translations))
	for l, tr := range in.Translations {
		tr.Title = strings.TrimSpace(tr.Title)
		tr.Summary = strings.TrimSpace(tr.Summary)
		if tr.Title == "" && tr.Summary == "" && strings.TrimSpace(tr.Content) == "" {
			continue
		}
		trs[l] = tr
	}
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(trs[locale.Default].Title)
	}
	return BlogPost{
		Slug:         slug,
		CoverMediaID: in.CoverMediaID,
		Tags:         NormalizeTags(in.Tags),
		Published:    in.Published,
		Translations: trs,
	}
}

func (a *App) handleListPosts(c echo.Context) error {
	posts, err := a.Store.ListPosts(c.Request().Context(), false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleCreatePost(c echo.Context) error {
	var in postInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p := in.post()
	if err := p.Validate(); err != nil {
		return err
	}
	created, err := a.Store.CreatePost(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handleGetPost(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := a.Store.GetPost(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) handleUpdatePost(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in postInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p := in.post()
	p.ID = id
	if err := p.Validate(); err != nil {
		return err
	}
	updated, err := a.Store.UpdatePost(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleDeletePost(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := a.Store.DeletePost(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type markdownInput struct {
	Content string `json:"content"`
}

func (a *App) handlePreviewMarkdown(c echo.Context) error {
	var in markdownInput
	if err := bind(c, &in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"html": markdown.String(in.Content)})
}
