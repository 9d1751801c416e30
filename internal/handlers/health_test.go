package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyCheck(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name   string
		checks map[string]Pinger
		status int
		body   string
	}{
		{
			name:   "all up",
			checks: map[string]Pinger{"database": ok, "relay": ok},
			status: http.StatusOK,
			body:   `{"status":"ready","checks":{"database":"ok","relay":"ok"}}`,
		},
		{
			name:   "relay down",
			checks: map[string]Pinger{"database": ok, "relay": down},
			status: http.StatusServiceUnavailable,
			body:   `{"status":"not ready","checks":{"database":"ok","relay":"connection refused"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			NewHealthHandler(tt.checks).RegisterHealthRoutes(e)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	NewHealthHandler(nil).RegisterHealthRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"nano-comments"}`, rec.Body.String())
}
