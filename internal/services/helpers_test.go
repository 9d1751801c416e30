package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/nano-comments/backend/internal/models"
	"github.com/anonto42/nano-comments/backend/internal/repositories"
	"github.com/anonto42/nano-comments/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type publishedMessage struct {
	channel string
	payload []byte
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []publishedMessage
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, publishedMessage{channel: channel, payload: payload})
	return nil
}

func (p *recordingPublisher) messages() []publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedMessage(nil), p.msgs...)
}

type testEnv struct {
	db               *gorm.DB
	clock            *fakeClock
	publisher        *recordingPublisher
	commentRepo      repositories.CommentRepository
	notificationRepo repositories.NotificationRepository
	comments         *CommentService
	notifications    *NotificationService
	dispatcher       *NotificationDispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	env := &testEnv{
		db:               db,
		clock:            &fakeClock{now: base},
		publisher:        &recordingPublisher{},
		commentRepo:      repositories.NewPostgresCommentRepository(db),
		notificationRepo: repositories.NewPostgresNotificationRepository(db),
	}
	env.dispatcher = NewNotificationDispatcher(env.notificationRepo, env.commentRepo, repositories.NewPostgresUserRepository(db), env.publisher)
	env.comments = NewCommentService(env.commentRepo, repositories.NewPostgresPostRepository(db), env.dispatcher, WithClock(env.clock.Now))
	env.notifications = NewNotificationService(env.notificationRepo)
	return env
}

func (env *testEnv) comment(t *testing.T, postID string, authorID uint, body string, parentID *uint) *models.Comment {
	t.Helper()
	c, err := env.comments.Create(context.Background(), CreateCommentInput{
		PostID:   postID,
		AuthorID: authorID,
		Body:     body,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return c
}

func (env *testEnv) unread(t *testing.T, userID uint) int64 {
	t.Helper()
	n, err := env.notifications.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	return n
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, kind), "want %v, got %v", kind, err)
}

// flatten lists a forest in pre-order as "body@depth".
func flatten(nodes []*models.CommentNode) []string {
	var out []string
	var walk func([]*models.CommentNode)
	walk = func(ns []*models.CommentNode) {
		for _, n := range ns {
			out = append(out, n.Body+"@"+strconv.Itoa(n.Depth))
			walk(n.Children)
		}
	}
	walk(nodes)
	return out
}
