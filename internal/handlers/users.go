package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dawnhq/stickyboard/internal/users"
)

// UsersHandler serves user provisioning and lookup.
type UsersHandler struct {
	service *users.Service
	logger  *slog.Logger
}

// NewUsersHandler creates a users handler.
func NewUsersHandler(log *slog.Logger, service *users.Service) *UsersHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UsersHandler{
		service: service,
		logger:  log.With(slog.String("handler", "users")),
	}
}

// Register mounts the user endpoints.
func (h *UsersHandler) Register(e *echo.Echo) {
	g := e.Group("/api/users")
	g.POST("", h.CreateOrUpdate)
	g.POST("/me", h.GetMe)
}

type tokenRequest struct {
	Token string `json:"token"`
}

type createUserResponse struct {
	ID string `json:"id"`
}

// CreateOrUpdate provisions the user identified by the token subject.
func (h *UsersHandler) CreateOrUpdate(c echo.Context) error {
	var req users.UpsertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	req.Token = token
	id, err := h.service.CreateOrUpdate(c.Request().Context(), req)
	if err != nil {
		return ServiceError(err)
	}
	return c.JSON(http.StatusOK, createUserResponse{ID: id})
}

// GetMe returns the profile of the token's subject.
func (h *UsersHandler) GetMe(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	user, err := h.service.GetCurrent(c.Request().Context(), token)
	if err != nil {
		return ServiceError(err)
	}
	return c.JSON(http.StatusOK, user)
}
