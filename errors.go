package shopdesk

import (
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/shopdesk/locale"
	"github.com/eringen/shopdesk/sections"
)

// errorBody is the JSON shape of every API error response.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	Issues []sections.Issue  `json:"issues,omitempty"`
}

// classify maps a domain error to an HTTP status and response body.
func classify(err error) (int, errorBody) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for k, v := range verrs {
			fields[k] = v.Error()
		}
		return http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: fields}
	}
	var cfgErr *sections.ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusUnprocessableEntity, errorBody{Error: "invalid section config", Issues: cfgErr.Issues}
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		return he.Code, errorBody{Error: msg}
	}

	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, sections.ErrSectionNotFound),
		errors.Is(err, sections.ErrPageNotFound):
		return http.StatusNotFound, errorBody{Error: err.Error()}
	case errors.Is(err, ErrSlugTaken),
		errors.Is(err, sections.ErrOrderMismatch),
		errors.Is(err, ErrPublishDisabled):
		return http.StatusConflict, errorBody{Error: err.Error()}
	case errors.Is(err, ErrRedirectLoop):
		return http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: map[string]string{"to_path": err.Error()}}
	case errors.Is(err, locale.ErrUnsupported),
		errors.Is(err, sections.ErrUnknownType),
		errors.Is(err, sections.ErrInvalidPosition),
		errors.Is(err, sections.ErrSameLocale),
		errors.Is(err, sections.ErrUnsupportedWrite),
		errors.Is(err, sections.ErrInvalidConfig),
		errors.Is(err, errBadImage):
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	case errors.Is(err, ErrPublishFailed):
		return http.StatusBadGateway, errorBody{Error: err.Error()}
	}
	return http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, body := classify(err)
	if code >= 500 {
		a.Logger.Error("server error",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	var werr error
	switch {
	case c.Request().Method == http.MethodHead:
		werr = c.NoContent(code)
	case wantsHTML(c):
		werr = RenderStatus(c, code, a.Views.Error(code, body.Error))
	default:
		werr = c.JSON(code, body)
	}
	if werr != nil {
		a.Logger.Error("write error response", zap.Error(werr))
	}
}

// wantsHTML reports whether the error should be rendered as a page rather
// than JSON: admin pages outside the API.
func wantsHTML(c echo.Context) bool {
	p := c.Request().URL.Path
	if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/admin/api/") {
		return false
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
