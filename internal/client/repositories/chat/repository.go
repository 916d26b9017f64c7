package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

// Repository reads and writes chat documents.
type Repository interface {
	Chatrooms(ctx context.Context, userID string) ([]models.Chatroom, error)
	SaveChatrooms(ctx context.Context, userID string, rooms []models.Chatroom) error
	Messages(ctx context.Context, chatroomID string) ([]models.Message, error)
	SaveMessages(ctx context.Context, chatroomID string, msgs []models.Message) error
	DeleteMessages(ctx context.Context, chatroomID string) error
}

type KVRepository struct {
	store kv.Store
	log   logging.Logger
}

// NewKVRepository binds a repository to store. Pass the transactional store
// from kv.Store.WithTx to make several calls atomic.
func NewKVRepository(store kv.Store, log logging.Logger) *KVRepository {
	return &KVRepository{store: store, log: log}
}

func (r *KVRepository) Chatrooms(ctx context.Context, userID string) ([]models.Chatroom, error) {
	return load[models.Chatroom](ctx, r, common.ChatroomsKey(userID))
}

func (r *KVRepository) SaveChatrooms(ctx context.Context, userID string, rooms []models.Chatroom) error {
	return save(ctx, r.store, common.ChatroomsKey(userID), rooms)
}

func (r *KVRepository) Messages(ctx context.Context, chatroomID string) ([]models.Message, error) {
	return load[models.Message](ctx, r, common.MessagesKey(chatroomID))
}

func (r *KVRepository) SaveMessages(ctx context.Context, chatroomID string, msgs []models.Message) error {
	return save(ctx, r.store, common.MessagesKey(chatroomID), msgs)
}

func (r *KVRepository) DeleteMessages(ctx context.Context, chatroomID string) error {
	return r.store.Delete(ctx, common.MessagesKey(chatroomID))
}

func load[T any](ctx context.Context, r *KVRepository, key string) ([]T, error) {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		r.log.Warn(ctx, "discarding corrupt record", "key", key,
			"error", fmt.Errorf("%w: %w", common.ErrStorageCorruption, err))
		if derr := r.store.Delete(ctx, key); derr != nil {
			return nil, derr
		}
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func save[T any](ctx context.Context, store kv.Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return store.Set(ctx, key, data)
}
