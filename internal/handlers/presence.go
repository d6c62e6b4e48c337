package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dawnhq/stickyboard/internal/presence"
)

// PresenceHandler serves live-cursor updates and rosters.
type PresenceHandler struct {
	service *presence.Service
	logger  *slog.Logger
}

// NewPresenceHandler creates a presence handler.
func NewPresenceHandler(log *slog.Logger, service *presence.Service) *PresenceHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PresenceHandler{
		service: service,
		logger:  log.With(slog.String("handler", "presence")),
	}
}

// Register mounts the presence endpoints.
func (h *PresenceHandler) Register(e *echo.Echo) {
	g := e.Group("/api/presence")
	g.POST("/update", h.Update)
	g.POST("/active", h.ActiveUsers)
	g.POST("/remove", h.Remove)
}

type presenceUpdateRequest struct {
	Token          string                  `json:"token"`
	BoardID        string                  `json:"boardId"`
	CursorPosition presence.CursorPosition `json:"cursorPosition"`
	IsHeartbeat    bool                    `json:"isHeartbeat"`
}

type presenceBoardRequest struct {
	Token   string `json:"token"`
	BoardID string `json:"boardId"`
}

// Update records the caller's cursor position, or refreshes the
// timestamp only when isHeartbeat is set.
func (h *PresenceHandler) Update(c echo.Context) error {
	var req presenceUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	if req.BoardID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "boardId is required")
	}
	if err := h.service.Update(c.Request().Context(), token, req.BoardID, req.CursorPosition, req.IsHeartbeat); err != nil {
		return ServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ActiveUsers returns the fresh roster for a board, scoped to the
// caller's company.
func (h *PresenceHandler) ActiveUsers(c echo.Context) error {
	var req presenceBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	if req.BoardID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "boardId is required")
	}
	active, err := h.service.ActiveUsers(c.Request().Context(), token, req.BoardID)
	if err != nil {
		return ServiceError(err)
	}
	return c.JSON(http.StatusOK, active)
}

// Remove immediately withdraws the caller from a board's roster.
func (h *PresenceHandler) Remove(c echo.Context) error {
	var req presenceBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	if req.BoardID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "boardId is required")
	}
	if err := h.service.Remove(c.Request().Context(), token, req.BoardID); err != nil {
		return ServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
