package shopdesk

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eringen/shopdesk/locale"
	"github.com/eringen/shopdesk/sections"
)

func paramID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

func paramLocale(c echo.Context) (locale.Locale, error) {
	return locale.Parse(c.Param("locale"))
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return nil
}

type pageInput struct {
	Slug      string      `json:"slug"`
	Names     locale.Text `json:"names"`
	Published bool        `json:"published"`
}

func (in pageInput) page() Page {
	names := in.Names.Clean()
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(names[locale.Default])
	}
	return Page{Slug: slug, Names: names, Published: in.Published}
}

func (a *App) handleListPages(c echo.Context) error {
	pages, err := a.Store.ListPages(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pages)
}

func (a *App) handleCreatePage(c echo.Context) error {
	var in pageInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p := in.page()
	if err := p.Validate(); err != nil {
		return err
	}
	created, err := a.Store.CreatePage(c.Request().Context(), p)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusCreated, created)
}

// pageDetail is a page with its per-locale section counts.
type pageDetail struct {
	Page
	SectionCounts map[locale.Locale]int `json:"section_counts"`
}

func (a *App) handleGetPage(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := a.Store.GetPage(ctx, id)
	if err != nil {
		return err
	}
	counts, err := a.Store.CountSections(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageDetail{Page: p, SectionCounts: counts})
}

func (a *App) handleUpdatePage(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in pageInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p := in.page()
	p.ID = id
	if err := p.Validate(); err != nil {
		return err
	}
	updated, err := a.Store.UpdatePage(c.Request().Context(), p)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleSetPagePublished(published bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		p, err := a.Store.SetPagePublished(c.Request().Context(), id, published)
		if err != nil {
			return err
		}
		a.Cache.Invalidate()
		return c.JSON(http.StatusOK, p)
	}
}

func (a *App) handleDeletePage(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := a.Store.DeletePage(c.Request().Context(), id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.NoContent(http.StatusNoContent)
}

// --- sections ---

func (a *App) handleSectionTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, sections.Editors())
}

func (a *App) handleListSections(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	loc, err := paramLocale(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := a.Store.GetPage(ctx, id); err != nil {
		return err
	}
	secs, err := a.Sections.List(ctx, id, loc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, secs)
}

func (a *App) handleCreateSection(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	loc, err := paramLocale(c)
	if err != nil {
		return err
	}
	var in sections.CreateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	in.PageID, in.Locale = id, loc
	sec, err := a.Sections.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusCreated, sec)
}

type orderInput struct {
	IDs []uuid.UUID `json:"ids"`
}

func (a *App) handleReorderSections(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	loc, err := paramLocale(c)
	if err != nil {
		return err
	}
	var in orderInput
	if err := bind(c, &in); err != nil {
		return err
	}
	secs, err := a.Sections.Reorder(c.Request().Context(), id, loc, in.IDs)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, secs)
}

type copyInput struct {
	From locale.Locale `json:"from"`
}

func (a *App) handleCopySections(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	to, err := paramLocale(c)
	if err != nil {
		return err
	}
	var in copyInput
	if q := c.QueryParam("from"); q != "" {
		in.From = locale.Locale(q)
	} else if err := bind(c, &in); err != nil {
		return err
	}
	from, err := locale.Parse(string(in.From))
	if err != nil {
		return err
	}
	secs, err := a.Sections.CopyLocale(c.Request().Context(), id, from, to)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, secs)
}

func (a *App) handlePreviewSections(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	loc, err := paramLocale(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	page, err := a.Store.GetPage(ctx, id)
	if err != nil {
		return err
	}
	secs, err := a.Sections.List(ctx, id, loc)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Preview(page.Names.Display(loc), sections.RenderPage(secs)))
}

func (a *App) handleGetSection(c echo.Context) error {
	id, err := paramID(c, "sid")
	if err != nil {
		return err
	}
	sec, err := a.Sections.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sec)
}

func (a *App) handleUpdateSection(c echo.Context) error {
	id, err := paramID(c, "sid")
	if err != nil {
		return err
	}
	var in sections.UpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	in.ID = id
	sec, err := a.Sections.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, sec)
}

func (a *App) handleToggleSection(c echo.Context) error {
	id, err := paramID(c, "sid")
	if err != nil {
		return err
	}
	sec, err := a.Sections.Toggle(c.Request().Context(), id)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, sec)
}

type moveInput struct {
	To int `json:"to"`
}

func (a *App) handleMoveSection(c echo.Context) error {
	id, err := paramID(c, "sid")
	if err != nil {
		return err
	}
	var in moveInput
	if err := bind(c, &in); err != nil {
		return err
	}
	secs, err := a.Sections.Move(c.Request().Context(), id, in.To)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, secs)
}

func (a *App) handleDeleteSection(c echo.Context) error {
	id, err := paramID(c, "sid")
	if err != nil {
		return err
	}
	if err := a.Sections.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.NoContent(http.StatusNoContent)
}
