package firebase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAuthClient_MissingCredentials(t *testing.T) {
	_, err := NewAuthClient(context.Background(), "")
	assert.Error(t, err)

	_, err = NewAuthClient(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "credentials file")
}
