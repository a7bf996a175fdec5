package shopdesk

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/shopdesk/sections"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		a.loginLimiter.Reset(ip)
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Logger.Warn("failed admin login", zap.String("ip", ip))
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminPublish(c echo.Context) error {
	if _, err := a.publish(c); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return err
		}
		a.Logger.Error("publish failed", zap.Error(err))
		return a.renderAdminDashboard(c, "Publish failed: "+err.Error())
	}
	return a.renderAdminDashboard(c, "Site published.")
}

func (a *App) handlePageEditor(c echo.Context) error {
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
	counts, err := a.Store.CountSections(ctx, id)
	if err != nil {
		return err
	}
	secs, err := a.Sections.List(ctx, id, loc)
	if err != nil {
		return err
	}
	return Render(c, a.Views.PageEditor(PageEditor{
		Page:     page,
		Locale:   loc,
		Counts:   counts,
		Sections: secs,
		Editors:  sections.Editors(),
	}, CsrfToken(c)))
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	d, err := a.dashboard(c, msg)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(d, CsrfToken(c)))
}

func (a *App) dashboard(c echo.Context, msg string) (Dashboard, error) {
	ctx := c.Request().Context()
	d := Dashboard{SiteName: a.Config.SiteName, Message: msg, PublishEnabled: a.publisher.Enabled()}
	var err error
	if d.Pages, err = a.Store.ListPages(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.Products, err = a.Store.CountProducts(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.Posts, d.PublishedPosts, err = a.Store.CountPosts(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.Media, err = a.Store.CountMedia(ctx); err != nil {
		return Dashboard{}, err
	}
	redirects, err := a.Store.ListRedirects(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	d.Redirects = len(redirects)
	if d.LastPublished, err = a.Store.LastPublished(ctx); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
