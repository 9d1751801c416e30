// Package testutil builds throwaway stores for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/anonto42/nano-comments/backend/internal/models"
	"github.com/anonto42/nano-comments/backend/internal/repositories"
	"github.com/anonto42/nano-comments/backend/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated SQLite database in the test's temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), true)
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with the given name and a unique email.
func CreateUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email}
	require.NoError(t, repositories.NewPostgresUserRepository(db).CreateUser(context.Background(), user))
	return user
}

// CreatePost inserts a post authored by authorID.
func CreatePost(t *testing.T, db *gorm.DB, authorID uint) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: authorID, Content: "post"}
	require.NoError(t, repositories.NewPostgresPostRepository(db).CreatePost(context.Background(), post))
	return post
}
