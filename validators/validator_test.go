package validators

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Body string `validate:"required,max=5"`
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&sample{Body: "ok"}))

	err := v.Validate(&sample{})
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Equal(t, "Invalid field Body: failed required", httpErr.Message)

	err = v.Validate(&sample{Body: "too long"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max")
}
