package services

import (
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/jonboulle/clockwork"
)

// PendingReply tracks one scheduled reply.
type PendingReply struct {
	chatroomID string
	timer      clockwork.Timer

	done chan struct{}
	msg  *models.Message
	err  error
}

func newPendingReply(chatroomID string) *PendingReply {
	return &PendingReply{chatroomID: chatroomID, done: make(chan struct{})}
}

// ChatroomID is the chatroom the reply targets.
func (p *PendingReply) ChatroomID() string { return p.chatroomID }

// Done is closed once the reply was stored, discarded or cancelled.
func (p *PendingReply) Done() <-chan struct{} { return p.done }

// Result returns the stored reply. A discarded or cancelled reply yields
// (nil, nil). Result must only be called after Done is closed.
func (p *PendingReply) Result() (*models.Message, error) {
	return p.msg, p.err
}

func (p *PendingReply) finish(msg *models.Message, err error) {
	p.msg, p.err = msg, err
	close(p.done)
}

// pendingReplies is the set of replies whose timers have not fired yet.
// Whoever removes a reply from the set first (the timer via claim, or a
// cancel) owns finishing it.
type pendingReplies struct {
	mu    sync.Mutex
	items map[*PendingReply]struct{}
}

func newPendingReplies() *pendingReplies {
	return &pendingReplies{items: make(map[*PendingReply]struct{})}
}

func (r *pendingReplies) schedule(p *PendingReply, start func() clockwork.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p] = struct{}{}
	p.timer = start()
}

func (r *pendingReplies) claim(p *PendingReply) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p]; !ok {
		return false
	}
	delete(r.items, p)
	return true
}

func (r *pendingReplies) has(chatroomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for p := range r.items {
		if p.chatroomID == chatroomID {
			return true
		}
	}
	return false
}

func (r *pendingReplies) cancelChatroom(chatroomID string) int {
	return r.cancel(func(p *PendingReply) bool { return p.chatroomID == chatroomID })
}

func (r *pendingReplies) cancelAll() int {
	return r.cancel(func(*PendingReply) bool { return true })
}

func (r *pendingReplies) cancel(match func(p *PendingReply) bool) int {
	r.mu.Lock()
	var victims []*PendingReply
	for p := range r.items {
		if match(p) {
			delete(r.items, p)
			victims = append(victims, p)
		}
	}
	r.mu.Unlock()

	for _, p := range victims {
		p.timer.Stop()
		p.finish(nil, nil)
	}
	return len(victims)
}
