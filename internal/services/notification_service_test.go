package services

import (
	"context"
	"testing"

	"github.com/anonto42/nano-comments/backend/internal/models"
	"github.com/anonto42/nano-comments/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotifications(t *testing.T, env *testEnv, userID uint, n int) []*models.Notification {
	t.Helper()
	out := make([]*models.Notification, n)
	for i := range out {
		out[i] = &models.Notification{UserID: userID, Type: models.NotificationTypeTest, Title: "t"}
		require.NoError(t, env.notificationRepo.CreateNotification(context.Background(), out[i]))
	}
	return out
}

func TestNotificationService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := testutil.CreateUser(t, env.db, "Bob", "bob@example.com")
	alice := testutil.CreateUser(t, env.db, "Alice", "alice@example.com")
	seeded := seedNotifications(t, env, bob.ID, 3)
	seedNotifications(t, env, alice.ID, 1)
	require.NoError(t, env.notifications.MarkRead(ctx, seeded[0].ID, bob.ID))

	list, err := env.notifications.List(ctx, bob.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Total)
	assert.Equal(t, int64(2), list.UnreadCount)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, seeded[2].ID, list.Notifications[0].ID, "newest first")

	list, err = env.notifications.List(ctx, bob.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, seeded[0].ID, list.Notifications[0].ID)

	list, err = env.notifications.List(ctx, bob.ID, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, MaxNotificationLimit, list.Limit)

	list, err = env.notifications.List(ctx, bob.ID, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultNotificationLimit, list.Limit)
}

func TestNotificationService_MarkRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := testutil.CreateUser(t, env.db, "Bob", "bob@example.com")
	alice := testutil.CreateUser(t, env.db, "Alice", "alice@example.com")
	n := seedNotifications(t, env, bob.ID, 2)[0]

	assertKind(t, env.notifications.MarkRead(ctx, n.ID, alice.ID), ErrForbidden)
	assertKind(t, env.notifications.MarkRead(ctx, 9999, bob.ID), ErrNotFound)

	require.NoError(t, env.notifications.MarkRead(ctx, n.ID, bob.ID))
	require.NoError(t, env.notifications.MarkRead(ctx, n.ID, bob.ID), "marking twice succeeds")
	assert.Equal(t, int64(1), env.unread(t, bob.ID))
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := testutil.CreateUser(t, env.db, "Bob", "bob@example.com")
	alice := testutil.CreateUser(t, env.db, "Alice", "alice@example.com")
	seeded := seedNotifications(t, env, bob.ID, 3)
	seedNotifications(t, env, alice.ID, 2)
	require.NoError(t, env.notifications.MarkRead(ctx, seeded[0].ID, bob.ID))

	updated, err := env.notifications.MarkAllRead(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)
	assert.Zero(t, env.unread(t, bob.ID))
	assert.Equal(t, int64(2), env.unread(t, alice.ID), "other users untouched")
}

func TestNotificationService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := testutil.CreateUser(t, env.db, "Bob", "bob@example.com")
	alice := testutil.CreateUser(t, env.db, "Alice", "alice@example.com")
	n := seedNotifications(t, env, bob.ID, 1)[0]

	assertKind(t, env.notifications.Delete(ctx, n.ID, alice.ID), ErrForbidden)

	require.NoError(t, env.notifications.Delete(ctx, n.ID, bob.ID))
	assert.Zero(t, env.unread(t, bob.ID))
	assertKind(t, env.notifications.Delete(ctx, n.ID, bob.ID), ErrNotFound)
}
