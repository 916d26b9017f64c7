package chat

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*KVRepository, kv.Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	store := kv.NewMemoryStore()
	return NewKVRepository(store, log), store, &buf
}

func TestChatrooms_RoundTripPreservesOrder(t *testing.T) {
	r, _, _ := newRepo(t)
	ctx := context.Background()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rooms := []models.Chatroom{
		{ID: "c2", Name: "Second", UserID: "u1", CreatedAt: now, LastMessage: "hi", LastMessageTime: &now},
		{ID: "c1", Name: "First", UserID: "u1", CreatedAt: now.Add(-time.Hour)},
	}
	require.NoError(t, r.SaveChatrooms(ctx, "u1", rooms))

	got, err := r.Chatrooms(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(rooms, got))
}

func TestChatrooms_AbsentIsEmpty(t *testing.T) {
	r, _, _ := newRepo(t)

	got, err := r.Chatrooms(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestChatrooms_CorruptRecordIsDiscarded(t *testing.T) {
	r, store, buf := newRepo(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, common.ChatroomsKey("u1"), []byte(`{not json`)))

	got, err := r.Chatrooms(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)

	raw, err := store.Get(ctx, common.ChatroomsKey("u1"))
	require.NoError(t, err)
	assert.Nil(t, raw, "corrupt key must be removed")
	assert.Contains(t, buf.String(), "discarding corrupt record")
	assert.Contains(t, buf.String(), "storage corruption")
}

func TestMessages_CorruptRecordIsDiscarded(t *testing.T) {
	r, store, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, common.MessagesKey("c1"), []byte(`{"id":1}`)))

	got, err := r.Messages(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMessages_SaveAndDelete(t *testing.T) {
	r, store, _ := newRepo(t)
	ctx := context.Background()

	msgs := []models.Message{
		{ID: "m1", ChatroomID: "c1", Content: "Hello", IsUser: true, Timestamp: time.Unix(10, 0).UTC()},
		{ID: "m2", ChatroomID: "c1", Content: "Hi!", Timestamp: time.Unix(11, 0).UTC()},
	}
	require.NoError(t, r.SaveMessages(ctx, "c1", msgs))

	got, err := r.Messages(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(msgs, got))

	require.NoError(t, r.DeleteMessages(ctx, "c1"))
	raw, err := store.Get(ctx, common.MessagesKey("c1"))
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSave_NilSliceStoredAsEmptyArray(t *testing.T) {
	r, store, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SaveChatrooms(ctx, "u1", nil))

	raw, err := store.Get(ctx, common.ChatroomsKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
