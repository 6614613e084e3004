package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gambleio-server/internal/config"
	"gambleio-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChat(t *testing.T) (*ChatService, *MemoryStore, *time.Time) {
	t.Helper()

	store := NewMemoryStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	user := models.NewUser("alice", "Alice", "", 100, now)
	user.SetRole(models.RoleMember)
	require.NoError(t, store.CreateUser(context.Background(), user))

	chat := NewChatService(store, config.DefaultGameConfig().Chat, nil)
	chat.now = func() time.Time { return now }
	return chat, store, &now
}

func rejection(t *testing.T, err error) *ChatRejection {
	t.Helper()
	var r *ChatRejection
	require.True(t, errors.As(err, &r), "expected chat rejection, got %v", err)
	return r
}

func TestChatAcceptsAndTagsMessage(t *testing.T) {
	chat, _, now := newTestChat(t)

	msg, err := chat.Post(context.Background(), "alice", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, "Alice", msg.DisplayName)
	require.NotNil(t, msg.Role)
	assert.Equal(t, models.RoleMember, *msg.Role)
	assert.Equal(t, now.UnixMilli(), msg.Timestamp)
	assert.NotEmpty(t, msg.ID)
	assert.Len(t, chat.Recent(), 1)
}

func TestChatMinimumDelay(t *testing.T) {
	chat, _, now := newTestChat(t)
	ctx := context.Background()

	_, err := chat.Post(ctx, "alice", "one")
	require.NoError(t, err)

	*now = now.Add(500 * time.Millisecond)
	_, err = chat.Post(ctx, "alice", "two")
	r := rejection(t, err)
	assert.Equal(t, CodeChatDelay, r.Code)
	assert.Equal(t, int64(1500), r.RetryAfterMs)
	assert.ErrorIs(t, err, ErrChatTooFast)

	*now = now.Add(1500 * time.Millisecond)
	_, err = chat.Post(ctx, "alice", "two")
	assert.NoError(t, err)
}

func TestChatBurstMute(t *testing.T) {
	chat, _, now := newTestChat(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := chat.Post(ctx, "alice", "spam")
		require.NoError(t, err, "message %d", i)
		*now = now.Add(2 * time.Second)
	}

	_, err := chat.Post(ctx, "alice", "one more")
	r := rejection(t, err)
	assert.Equal(t, CodeChatRateMuted, r.Code)
	assert.Equal(t, now.Add(15*time.Second).UnixMilli(), r.MutedUntil)

	// Still muted later in the window, and the rejection keeps its deadline.
	mutedUntil := r.MutedUntil
	*now = now.Add(10 * time.Second)
	_, err = chat.Post(ctx, "alice", "again")
	r = rejection(t, err)
	assert.Equal(t, CodeChatRateMuted, r.Code)
	assert.Equal(t, mutedUntil, r.MutedUntil)

	*now = now.Add(6 * time.Second)
	_, err = chat.Post(ctx, "alice", "back")
	assert.NoError(t, err)
}

func TestChatAdminMuteTakesPrecedence(t *testing.T) {
	chat, store, now := newTestChat(t)
	ctx := context.Background()

	until := now.Add(time.Minute).UnixMilli()
	_, err := store.UpdateUser(ctx, "alice", func(u *models.User) error {
		u.ChatMutedUntil = &until
		return nil
	})
	require.NoError(t, err)

	_, err = chat.Post(ctx, "alice", "hi")
	r := rejection(t, err)
	assert.Equal(t, CodeChatMuted, r.Code)
	assert.Equal(t, until, r.MutedUntil)

	*now = now.Add(2 * time.Minute)
	_, err = chat.Post(ctx, "alice", "hi")
	assert.NoError(t, err)
}

func TestChatRejectsInvalidText(t *testing.T) {
	chat, _, _ := newTestChat(t)
	ctx := context.Background()

	_, err := chat.Post(ctx, "alice", "   ")
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = chat.Post(ctx, "alice", strings.Repeat("x", 501))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	// Rejected text does not start the delay timer.
	_, err = chat.Post(ctx, "alice", strings.Repeat("é", 500))
	assert.NoError(t, err)
	assert.Len(t, chat.Recent(), 1)
}

func TestChatHistoryBounds(t *testing.T) {
	chat, _, now := newTestChat(t)
	chat.cfg.HistorySize = 3
	chat.cfg.PublicLimit = 2
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c", "d"} {
		_, err := chat.Post(ctx, "alice", text)
		require.NoError(t, err)
		*now = now.Add(5 * time.Second)
	}

	recent := chat.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Text)
	assert.Equal(t, "d", recent[1].Text)
	assert.Len(t, chat.MessagesBy("ALICE"), 3)
	assert.Empty(t, chat.MessagesBy("bob"))
}
