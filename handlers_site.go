package shopdesk

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type redirectInput struct {
	FromPath   string `json:"from_path"`
	ToPath     string `json:"to_path"`
	StatusCode int    `json:"status_code"`
	Active     *bool  `json:"active"`
}

func (in redirectInput) redirect() Redirect {
	r := Redirect{
		FromPath:   strings.TrimSpace(in.FromPath),
		ToPath:     strings.TrimSpace(in.ToPath),
		StatusCode: in.StatusCode,
		Active:     true,
	}
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusMovedPermanently
	}
	if in.Active != nil {
		r.Active = *in.Active
	}
	return r
}

func (a *App) handleListRedirects(c echo.Context) error {
	redirects, err := a.Store.ListRedirects(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, redirects)
}

func (a *App) handleCreateRedirect(c echo.Context) error {
	var in redirectInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r := in.redirect()
	if err := r.Validate(); err != nil {
		return err
	}
	created, err := a.Store.CreateRedirect(c.Request().Context(), r)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handleUpdateRedirect(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in redirectInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r := in.redirect()
	r.ID = id
	if err := r.Validate(); err != nil {
		return err
	}
	updated, err := a.Store.UpdateRedirect(c.Request().Context(), r)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleDeleteRedirect(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := a.Store.DeleteRedirect(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- settings ---

func (a *App) handleGetSettings(c echo.Context) error {
	s, err := a.Store.GetSiteSettings(c.Request().Context(), a.Config.SiteName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (a *App) handleSaveSettings(c echo.Context) error {
	var s SiteSettings
	if err := bind(c, &s); err != nil {
		return err
	}
	s.SiteName = s.SiteName.Clean()
	s.Address = s.Address.Clean()
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	if s.SocialLinks == nil {
		s.SocialLinks = map[string]string{}
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if err := a.Store.SaveSiteSettings(c.Request().Context(), s); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// --- publish ---

const publishLimiterKey = "publish"

func (a *App) publish(c echo.Context) (PublishResult, error) {
	if !a.publisher.Enabled() {
		return PublishResult{}, ErrPublishDisabled
	}
	if !a.publishLimiter.Allow(publishLimiterKey) {
		return PublishResult{}, echo.NewHTTPError(http.StatusTooManyRequests, "publish rate limit reached, try again shortly")
	}
	return a.publisher.Trigger(c.Request().Context())
}

func (a *App) handlePublish(c echo.Context) error {
	res, err := a.publish(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
