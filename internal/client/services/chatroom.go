package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/notify"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/chat"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/text/cases"
)

// ChatroomService manages the signed-in user's chatrooms. Every method
// fails with common.ErrUnauthorized when nobody is signed in.
//
// List returns newest first. Delete removes the chatroom's messages and
// cancels its pending replies; deleting an unknown id is not an error.
// Update replaces a record wholesale, Rename only its name.
type ChatroomService interface {
	List(ctx context.Context) ([]models.Chatroom, error)
	Get(ctx context.Context, id string) (*models.Chatroom, error)
	Create(ctx context.Context, name string) (*models.Chatroom, error)
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, room models.Chatroom) error
	Rename(ctx context.Context, id, name string) (*models.Chatroom, error)
	Search(ctx context.Context, query string) ([]models.Chatroom, error)
}

// chatCore is shared by the chatroom and message services. mu serializes
// every read-modify-write of chat documents.
type chatCore struct {
	store    kv.Store
	sessions SessionManager
	notifier notify.Notifier
	log      logging.Logger
	clock    clockwork.Clock

	mu      sync.Mutex
	pending *pendingReplies
}

func (c *chatCore) repo(s kv.Store) chat.Repository {
	return chat.NewKVRepository(s, c.log)
}

func (c *chatCore) currentUser(ctx context.Context, op string) (*models.User, error) {
	user, err := c.sessions.CurrentUser()
	if err != nil {
		c.log.Error(ctx, "chat operation without session", "op", op)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

type chatroomService struct {
	*chatCore
}

func (s *chatroomService) List(ctx context.Context) ([]models.Chatroom, error) {
	user, err := s.currentUser(ctx, "list chatrooms")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo(s.store).Chatrooms(ctx, user.ID)
}

func (s *chatroomService) Get(ctx context.Context, id string) (*models.Chatroom, error) {
	rooms, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(rooms, id); i >= 0 {
		return &rooms[i], nil
	}
	return nil, fmt.Errorf("chatroom %s: %w", id, common.ErrNotFound)
}

func (s *chatroomService) Create(ctx context.Context, name string) (*models.Chatroom, error) {
	user, err := s.currentUser(ctx, "create chatroom")
	if err != nil {
		return nil, err
	}

	name, err = cleanName(name)
	if err != nil {
		return nil, err
	}

	room := models.Chatroom{
		ID:        uuid.NewString(),
		Name:      name,
		UserID:    user.ID,
		CreatedAt: s.clock.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.store.WithTx(ctx, func(ctx context.Context, tx kv.Store) error {
		repo := s.repo(tx)
		rooms, err := repo.Chatrooms(ctx, user.ID)
		if err != nil {
			return err
		}
		return repo.SaveChatrooms(ctx, user.ID, append([]models.Chatroom{room}, rooms...))
	})
	if err != nil {
		return nil, fmt.Errorf("create chatroom: %w", err)
	}

	s.log.Info(ctx, "chatroom created", "chatroom_id", room.ID, "user_id", user.ID)
	s.notifier.Notify("Chatroom created", room.Name, notify.KindSuccess)
	return &room, nil
}

func (s *chatroomService) Delete(ctx context.Context, id string) error {
	user, err := s.currentUser(ctx, "delete chatroom")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted *models.Chatroom
	err = s.store.WithTx(ctx, func(ctx context.Context, tx kv.Store) error {
		repo := s.repo(tx)
		rooms, err := repo.Chatrooms(ctx, user.ID)
		if err != nil {
			return err
		}
		i := indexOf(rooms, id)
		if i < 0 {
			return nil
		}
		deleted = &rooms[i]
		kept := append(rooms[:i:i], rooms[i+1:]...)
		if err := repo.SaveChatrooms(ctx, user.ID, kept); err != nil {
			return err
		}
		return repo.DeleteMessages(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete chatroom: %w", err)
	}
	if deleted == nil {
		return nil
	}

	if n := s.pending.cancelChatroom(id); n > 0 {
		s.log.Debug(ctx, "cancelled pending replies", "chatroom_id", id, "count", n)
	}
	s.log.Info(ctx, "chatroom deleted", "chatroom_id", id, "user_id", user.ID)
	s.notifier.Notify("Chatroom deleted", deleted.Name, notify.KindInfo)
	return nil
}

func (s *chatroomService) Update(ctx context.Context, room models.Chatroom) error {
	user, err := s.currentUser(ctx, "update chatroom")
	if err != nil {
		return err
	}

	room.Name, err = cleanName(room.Name)
	if err != nil {
		return err
	}
	room.UserID = user.ID
	room.LastMessage = common.Truncate(room.LastMessage, models.PreviewLength)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.WithTx(ctx, func(ctx context.Context, tx kv.Store) error {
		return s.replace(ctx, tx, user.ID, room.ID, func(r *models.Chatroom) { *r = room })
	})
}

func (s *chatroomService) Rename(ctx context.Context, id, name string) (*models.Chatroom, error) {
	user, err := s.currentUser(ctx, "rename chatroom")
	if err != nil {
		return nil, err
	}

	name, err = cleanName(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out models.Chatroom
	err = s.store.WithTx(ctx, func(ctx context.Context, tx kv.Store) error {
		return s.replace(ctx, tx, user.ID, id, func(r *models.Chatroom) {
			r.Name = name
			out = *r
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *chatroomService) Search(ctx context.Context, query string) ([]models.Chatroom, error) {
	rooms, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return rooms, nil
	}

	out := make([]models.Chatroom, 0, len(rooms))
	for _, r := range rooms {
		if strings.Contains(fold.String(r.Name), q) {
			out = append(out, r)
		}
	}
	return out, nil
}

// replace applies mut to the chatroom id of userID inside tx.
func (c *chatCore) replace(ctx context.Context, tx kv.Store, userID, id string, mut func(r *models.Chatroom)) error {
	repo := c.repo(tx)
	rooms, err := repo.Chatrooms(ctx, userID)
	if err != nil {
		return err
	}
	i := indexOf(rooms, id)
	if i < 0 {
		return fmt.Errorf("chatroom %s: %w", id, common.ErrNotFound)
	}
	mut(&rooms[i])
	return repo.SaveChatrooms(ctx, userID, rooms)
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: chatroom name is empty", common.ErrValidation)
	}
	return name, nil
}

func indexOf(rooms []models.Chatroom, id string) int {
	for i := range rooms {
		if rooms[i].ID == id {
			return i
		}
	}
	return -1
}
