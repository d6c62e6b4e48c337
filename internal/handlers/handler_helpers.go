package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dawnhq/stickyboard/internal/auth"
	"github.com/dawnhq/stickyboard/internal/boards"
	"github.com/dawnhq/stickyboard/internal/notes"
	"github.com/dawnhq/stickyboard/internal/users"
)

// RequireToken resolves the caller's bearer token. The web client sends
// it in the request body; the Authorization header is the fallback for
// other callers.
func RequireToken(c echo.Context, bodyToken string) (string, error) {
	if token := strings.TrimSpace(bodyToken); token != "" {
		return token, nil
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		if token := strings.TrimSpace(rest); token != "" {
			return token, nil
		}
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidToken.Error())
}

// ServiceError maps domain errors onto HTTP errors. Every auth failure
// collapses to the same 401 body so callers learn nothing about why a
// token was rejected.
func ServiceError(err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidToken.Error())
	case errors.Is(err, users.ErrIdentifierMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, boards.ErrAccessDenied):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, boards.ErrBoardNotFound),
		errors.Is(err, notes.ErrNoteNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
