package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dawnhq/stickyboard/internal/support"
)

// SupportHandler serves feedback submission.
type SupportHandler struct {
	service *support.Service
	logger  *slog.Logger
}

// NewSupportHandler creates a support handler.
func NewSupportHandler(log *slog.Logger, service *support.Service) *SupportHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SupportHandler{
		service: service,
		logger:  log.With(slog.String("handler", "support")),
	}
}

// Register mounts the support endpoint.
func (h *SupportHandler) Register(e *echo.Echo) {
	e.POST("/api/support", h.Submit)
}

type supportRequest struct {
	Token string `json:"token"`
	Input string `json:"input"`
}

// Submit records the caller's feedback.
func (h *SupportHandler) Submit(c echo.Context) error {
	var req supportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	if err := h.service.Submit(c.Request().Context(), token, req.Input); err != nil {
		if errors.Is(err, support.ErrEmptyInput) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return ServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
