package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dawnhq/stickyboard/internal/notes"
)

// NotesHandler serves note CRUD.
type NotesHandler struct {
	service *notes.Service
	logger  *slog.Logger
}

// NewNotesHandler creates a notes handler.
func NewNotesHandler(log *slog.Logger, service *notes.Service) *NotesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &NotesHandler{
		service: service,
		logger:  log.With(slog.String("handler", "notes")),
	}
}

// Register mounts the note endpoints.
func (h *NotesHandler) Register(e *echo.Echo) {
	g := e.Group("/api/notes")
	g.POST("", h.Create)
	g.POST("/list", h.List)
	g.POST("/update", h.Update)
	g.POST("/delete", h.Delete)
}

type createNoteRequest struct {
	Token string `json:"token"`
	notes.CreateRequest
}

type listNotesRequest struct {
	Token   string `json:"token"`
	BoardID string `json:"boardId"`
}

type updateNoteRequest struct {
	Token  string `json:"token"`
	NoteID string `json:"noteId"`
	notes.UpdateRequest
}

type deleteNoteRequest struct {
	Token  string `json:"token"`
	NoteID string `json:"noteId"`
}

func (h *NotesHandler) Create(c echo.Context) error {
	var req createNoteRequest
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
	note, err := h.service.Create(c.Request().Context(), token, req.CreateRequest)
	if err != nil {
		return ServiceError(err)
	}
	return c.JSON(http.StatusOK, note)
}

func (h *NotesHandler) List(c echo.Context) error {
	var req listNotesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.Request().Context(), token, req.BoardID)
	if err != nil {
		return ServiceError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *NotesHandler) Update(c echo.Context) error {
	var req updateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	note, err := h.service.Update(c.Request().Context(), token, req.NoteID, req.UpdateRequest)
	if err != nil {
		return ServiceError(err)
	}
	return c.JSON(http.StatusOK, note)
}

func (h *NotesHandler) Delete(c echo.Context) error {
	var req deleteNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := RequireToken(c, req.Token)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), token, req.NoteID); err != nil {
		return ServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
