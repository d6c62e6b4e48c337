package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dawnhq/stickyboard/internal/i18n"
)

// I18nHandler serves the embedded UI string tables.
type I18nHandler struct {
	catalog *i18n.Catalog
	logger  *slog.Logger
}

// NewI18nHandler creates an i18n handler.
func NewI18nHandler(log *slog.Logger, catalog *i18n.Catalog) *I18nHandler {
	if log == nil {
		log = slog.Default()
	}
	return &I18nHandler{
		catalog: catalog,
		logger:  log.With(slog.String("handler", "i18n")),
	}
}

// Register mounts the locale endpoints.
func (h *I18nHandler) Register(e *echo.Echo) {
	e.GET("/i18n", h.Languages)
	e.GET("/i18n/:lang", h.Table)
}

// Languages lists available languages.
func (h *I18nHandler) Languages(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Languages())
}

// Table returns the full string table for a language.
func (h *I18nHandler) Table(c echo.Context) error {
	lang := c.Param("lang")
	table, ok := h.catalog.Table(lang)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown language")
	}
	return c.JSON(http.StatusOK, table)
}
