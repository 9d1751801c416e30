package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/nano-comments/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", &services.Error{Kind: services.ErrNotFound, Message: "Comment not found"}, http.StatusNotFound, "Comment not found"},
		{"forbidden", &services.Error{Kind: services.ErrForbidden, Message: "Nope"}, http.StatusForbidden, "Nope"},
		{"invalid", &services.Error{Kind: services.ErrInvalidArgument, Message: "Bad"}, http.StatusBadRequest, "Bad"},
		{"unavailable", &services.Error{Kind: services.ErrUnavailable, Message: "Store down", Err: errors.New("dial")}, http.StatusServiceUnavailable, "Store down"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

			var he *echo.HTTPError
			require.ErrorAs(t, httpError(c, tt.err, "Failed"), &he)
			assert.Equal(t, tt.status, he.Code)
			assert.Equal(t, tt.message, he.Message)
		})
	}
}

func TestParseIDParam(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-1"} {
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)

		_, err := parseIDParam(c, "id", "comment")
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he, raw)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Equal(t, "Invalid comment ID", he.Message)
	}

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, err := parseIDParam(c, "id", "comment")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}
