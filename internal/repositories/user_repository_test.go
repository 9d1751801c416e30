package repositories_test

import (
	"context"
	"testing"

	"github.com/anonto42/nano-comments/backend/internal/models"
	"github.com/anonto42/nano-comments/backend/internal/repositories"
	"github.com/anonto42/nano-comments/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewPostgresUserRepository(db)
	ctx := context.Background()

	uid := "firebase-uid"
	user := &models.User{Name: "Bob", Email: "bob@example.com", FirebaseUID: &uid}
	require.NoError(t, repo.CreateUser(ctx, user))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)

	got, err = repo.GetUserByFirebaseUID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetUserByFirebaseUID(ctx, "other")
	assert.True(t, repositories.IsNotFound(err))
}
