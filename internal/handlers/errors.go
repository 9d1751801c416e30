package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/anonto42/nano-comments/backend/internal/logger"
	"github.com/anonto42/nano-comments/backend/internal/middleware"
	"github.com/anonto42/nano-comments/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// httpError maps a service error to the HTTP status of its kind.
func httpError(c echo.Context, err error, fallback string) error {
	msg := services.Message(err, fallback)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msg)
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, msg)
	case errors.Is(err, services.ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	case errors.Is(err, services.ErrUnavailable):
		requestLogger(c).ErrorContext(c.Request().Context(), msg, slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusServiceUnavailable, msg)
	default:
		requestLogger(c).ErrorContext(c.Request().Context(), fallback, slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, fallback)
	}
}

func requestLogger(c echo.Context) *slog.Logger {
	return logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID))
}

func getUserIDFromContext(c echo.Context) uint {
	return middleware.UserID(c)
}

func parseIDParam(c echo.Context, name, label string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+label+" ID")
	}
	return uint(id), nil
}
