package shopdesk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// uploadField is the multipart form field carrying the file.
const uploadField = "file"

func (a *App) handleUpload(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, a.Config.MaxUploadBytes+1<<20)

	file, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
		}
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("multipart field %q is required", uploadField))
	}
	if file.Size > a.Config.MaxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file too large (max %d bytes)", a.Config.MaxUploadBytes))
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	asset, err := a.SaveUpload(req.Context(), src, file.Filename, c.FormValue("alt"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, asset)
}

func (a *App) handleListMedia(c echo.Context) error {
	media, err := a.Store.ListMedia(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, media)
}

func (a *App) handleGetMedia(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	m, err := a.Store.GetMedia(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

type mediaInput struct {
	Alt string `json:"alt"`
}

func (a *App) handleUpdateMedia(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in mediaInput
	if err := bind(c, &in); err != nil {
		return err
	}
	m, err := a.Store.UpdateMediaAlt(c.Request().Context(), id, in.Alt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (a *App) handleDeleteMedia(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := a.RemoveMedia(c.Request().Context(), id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.NoContent(http.StatusNoContent)
}
