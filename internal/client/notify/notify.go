// Package notify delivers short user-facing notices without making the
// caller wait for them.
package notify

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/logging"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notifier accepts a notice and returns immediately.
type Notifier interface {
	Notify(title, message string, kind Kind)
}

// Func adapts a plain function to Notifier.
type Func func(title, message string, kind Kind)

func (f Func) Notify(title, message string, kind Kind) { f(title, message, kind) }

// Nop drops every notice.
type Nop struct{}

func (Nop) Notify(string, string, Kind) {}

type notice struct {
	title, message string
	kind           Kind
}

// Async hands notices to a background goroutine. When the buffer is full
// the notice is dropped and logged.
type Async struct {
	next  Notifier
	log   logging.Logger
	queue chan notice
	done  chan struct{}
	once  sync.Once
}

func NewAsync(next Notifier, buffer int, log logging.Logger) *Async {
	a := &Async{
		next:  next,
		log:   log,
		queue: make(chan notice, buffer),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for n := range a.queue {
		a.next.Notify(n.title, n.message, n.kind)
	}
}

func (a *Async) Notify(title, message string, kind Kind) {
	select {
	case a.queue <- notice{title: title, message: message, kind: kind}:
	default:
		a.log.Warn(context.Background(), "notification dropped", "title", title)
	}
}

// Close drains queued notices and stops the worker. Notify must not be
// called after Close.
func (a *Async) Close() {
	a.once.Do(func() { close(a.queue) })
	<-a.done
}

// Log records notices through a Logger. Message bodies are left out since
// they may carry one-time codes.
type Log struct {
	L logging.Logger
}

func (l Log) Notify(title, _ string, kind Kind) {
	l.L.Info(context.Background(), "notify", "title", title, "kind", string(kind))
}

// Multi fans a notice out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(title, message string, kind Kind) {
	for _, n := range m {
		n.Notify(title, message, kind)
	}
}
