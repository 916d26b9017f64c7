package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/notify"
	"github.com/dmitrijs2005/gophchat/internal/client/reply"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/jonboulle/clockwork"
	"github.com/segmentio/ksuid"
)

// MessageService manages per-chatroom message logs.
//
// Append stores a message and updates the chatroom preview in one
// transaction. AppendWithGeneratedReply additionally schedules an answer
// from the other party; the returned PendingReply completes when that
// answer is stored or discarded.
type MessageService interface {
	List(ctx context.Context, chatroomID string) ([]models.Message, error)
	Append(ctx context.Context, msg models.Message) (*models.Message, error)
	AppendWithGeneratedReply(ctx context.Context, msg models.Message, producer reply.Producer) (*models.Message, *PendingReply, error)
	// Pending reports whether a reply is scheduled for chatroomID.
	Pending(chatroomID string) bool
}

// ChatOptions tunes reply scheduling.
type ChatOptions struct {
	ReplyDelayText  time.Duration
	ReplyDelayImage time.Duration
	Clock           clockwork.Clock
}

// NewChatServices builds the chatroom and message services over store.
// Pending replies are cancelled whenever sessions logs out.
func NewChatServices(store kv.Store, sessions SessionManager, notifier notify.Notifier, log logging.Logger, opts ChatOptions) (ChatroomService, MessageService) {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.ReplyDelayText <= 0 {
		opts.ReplyDelayText = time.Second
	}
	if opts.ReplyDelayImage <= 0 {
		opts.ReplyDelayImage = 1500 * time.Millisecond
	}

	core := &chatCore{
		store:    store,
		sessions: sessions,
		notifier: notifier,
		log:      log,
		clock:    opts.Clock,
		pending:  newPendingReplies(),
	}
	sessions.OnLogout(func(ctx context.Context) {
		if n := core.pending.cancelAll(); n > 0 {
			log.Debug(ctx, "cancelled pending replies on logout", "count", n)
		}
	})

	return &chatroomService{chatCore: core}, &messageService{
		chatCore:   core,
		delayText:  opts.ReplyDelayText,
		delayImage: opts.ReplyDelayImage,
	}
}

type messageService struct {
	*chatCore
	delayText  time.Duration
	delayImage time.Duration
}

func (s *messageService) List(ctx context.Context, chatroomID string) ([]models.Message, error) {
	user, err := s.currentUser(ctx, "list messages")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	repo := s.repo(s.store)
	rooms, err := repo.Chatrooms(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if indexOf(rooms, chatroomID) < 0 {
		return []models.Message{}, nil
	}
	return repo.Messages(ctx, chatroomID)
}

func (s *messageService) Append(ctx context.Context, msg models.Message) (*models.Message, error) {
	user, err := s.currentUser(ctx, "append message")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(ctx, user.ID, msg)
}

// appendLocked stores msg and the matching preview atomically. The chatroom
// must exist in userID's list.
func (s *messageService) appendLocked(ctx context.Context, userID string, msg models.Message) (*models.Message, error) {
	if strings.TrimSpace(msg.Content) == "" && !msg.HasImage() {
		return nil, fmt.Errorf("%w: message is empty", common.ErrValidation)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.clock.Now().UTC()
	}
	if msg.ID == "" {
		id, err := ksuid.NewRandomWithTime(msg.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("generate message id: %w", err)
		}
		msg.ID = id.String()
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx kv.Store) error {
		ts := msg.Timestamp
		err := s.replace(ctx, tx, userID, msg.ChatroomID, func(r *models.Chatroom) {
			r.LastMessage = common.Truncate(msg.Content, models.PreviewLength)
			r.LastMessageTime = &ts
		})
		if err != nil {
			return err
		}

		repo := s.repo(tx)
		msgs, err := repo.Messages(ctx, msg.ChatroomID)
		if err != nil {
			return err
		}
		return repo.SaveMessages(ctx, msg.ChatroomID, append(msgs, msg))
	})
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return &msg, nil
}

func (s *messageService) AppendWithGeneratedReply(ctx context.Context, msg models.Message, producer reply.Producer) (*models.Message, *PendingReply, error) {
	user, err := s.currentUser(ctx, "append message")
	if err != nil {
		return nil, nil, err
	}

	msg.IsUser = true
	s.mu.Lock()
	stored, err := s.appendLocked(ctx, user.ID, msg)
	s.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	trigger, delay := reply.TriggerText, s.delayText
	if stored.HasImage() {
		trigger, delay = reply.TriggerImage, s.delayImage
	}

	p := newPendingReply(stored.ChatroomID)
	s.pending.schedule(p, func() clockwork.Timer {
		return s.clock.AfterFunc(delay, func() {
			s.fire(p, user.ID, trigger, producer)
		})
	})

	return stored, p, nil
}

// fire runs on the timer goroutine. The target chatroom and the session
// owner are re-checked before anything is written.
func (s *messageService) fire(p *PendingReply, userID string, trigger reply.Trigger, producer reply.Producer) {
	if !s.pending.claim(p) {
		return
	}
	ctx := context.Background()

	content := s.produce(ctx, trigger, producer)

	if user, err := s.sessions.CurrentUser(); err != nil || user.ID != userID {
		s.log.Debug(ctx, "reply discarded, session changed", "chatroom_id", p.chatroomID)
		p.finish(nil, nil)
		return
	}

	s.mu.Lock()
	msg, err := s.appendLocked(ctx, userID, models.Message{
		ChatroomID: p.chatroomID,
		Content:    content,
		IsUser:     false,
	})
	s.mu.Unlock()

	if errors.Is(err, common.ErrNotFound) {
		s.log.Debug(ctx, "reply discarded, chatroom gone", "chatroom_id", p.chatroomID)
		p.finish(nil, nil)
		return
	}
	if err != nil {
		s.log.Error(ctx, "failed to store reply", "chatroom_id", p.chatroomID, "error", err)
	}
	p.finish(msg, err)
}

func (s *messageService) produce(ctx context.Context, trigger reply.Trigger, producer reply.Producer) (content string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn(ctx, "reply producer panicked", "panic", r)
			content = reply.Fallback
		}
	}()

	if producer == nil {
		producer = reply.Canned
	}
	content, err := producer(trigger)
	if err != nil || strings.TrimSpace(content) == "" {
		s.log.Warn(ctx, "reply producer failed, using fallback", "trigger", string(trigger), "error", err)
		return reply.Fallback
	}
	return content
}

func (s *messageService) Pending(chatroomID string) bool {
	return s.pending.has(chatroomID)
}
