package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dawnhq/stickyboard/internal/boards"
)

// BoardsHandler serves board CRUD.
type BoardsHandler struct {
	service *boards.Service
	logger  *slog.Logger
}

// NewBoardsHandler creates a boards handler.
func NewBoardsHandler(log *slog.Logger, service *boards.Service) *BoardsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &BoardsHandler{
		service: service,
		logger:  log.With(slog.String("handler", "boards")),
	}
}

// Register mounts the board endpoints.
func (h *BoardsHandler) Register(e *echo.Echo) {
	g := e.Group("/api/boards")
	g.POST("", h.Create)
	g.POST("/list", h.List)
	g.POST("/get", h.Get)
	g.POST("/update", h.Update)
	g.POST("/trash", h.Trash)
	g.POST("/delete", h.Delete)
}

type createBoardRequest struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

type boardRequest struct {
	Token   string `json:"token"`
	BoardID string `json:"boardId"`
}

type updateBoardRequest struct {
	Token   string `json:"token"`
	BoardID string `json:"boardId"`
	boards.UpdateRequest
}

type trashBoardRequest struct {
	Token   string `json:"token"`
	BoardID string `json:"boardId"`
	InTrash bool   `json:"inTrash"`
}

func (h *BoardsHandler) Create(c echo.Context) error {
	var req createBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	board, err := h.service.Create(c.Request().Context(), token, req.Name)
	if err != nil {
		return ServiceError(err)
	}
	return c.JSON(http.StatusOK, board)
}

func (h *BoardsHandler) List(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.Request().Context(), token)
	if err != nil {
		return ServiceError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *BoardsHandler) Get(c echo.Context) error {
	var req boardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	board, err := h.service.Get(c.Request().Context(), token, req.BoardID)
	if err != nil {
		return ServiceError(err)
	}
	return c.JSON(http.StatusOK, board)
}

func (h *BoardsHandler) Update(c echo.Context) error {
	var req updateBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	board, err := h.service.Update(c.Request().Context(), token, req.BoardID, req.UpdateRequest)
	if err != nil {
		return ServiceError(err)
	}
	return c.JSON(http.StatusOK, board)
}

func (h *BoardsHandler) Trash(c echo.Context) error {
	var req trashBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	board, err := h.service.SetTrash(c.Request().Context(), token, req.BoardID, req.InTrash)
	if err != nil {
		return ServiceError(err)
	}
	return c.JSON(http.StatusOK, board)
}

func (h *BoardsHandler) Delete(c echo.Context) error {
	var req boardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), token, req.BoardID); err != nil {
		return ServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
