package services

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/auth"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/notify"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophchat/internal/client/storage"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type recordedNotice struct {
	title, message string
	kind           notify.Kind
}

type noticeRecorder struct {
	mu  sync.Mutex
	got []recordedNotice
}

func (r *noticeRecorder) Notify(title, message string, kind notify.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, recordedNotice{title, message, kind})
}

func (r *noticeRecorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.got))
	for _, n := range r.got {
		out = append(out, n.title)
	}
	return out
}

type env struct {
	clock    *clockwork.FakeClock
	durable  kv.Store
	session  kv.Store
	issuer   *auth.TokenIssuer
	sessions SessionManager
	rooms    ChatroomService
	messages MessageService
	notices  *noticeRecorder
	logs     *syncBuffer
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := storage.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	logs := &syncBuffer{}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	e := &env{
		clock:   clock,
		durable: kv.NewSQLiteStore(db),
		session: kv.NewMemoryStore(),
		issuer:  auth.NewTokenIssuer([]byte("test-secret"), time.Hour, clock),
		notices: &noticeRecorder{},
		logs:    logs,
	}
	e.sessions = NewSessionManager(e.durable, e.session, e.issuer, log)
	e.rooms, e.messages = NewChatServices(e.durable, e.sessions, e.notices, log, ChatOptions{
		ReplyDelayText:  time.Second,
		ReplyDelayImage: 1500 * time.Millisecond,
		Clock:           clock,
	})
	return e
}

func (e *env) user(id, phone string) *models.User {
	return &models.User{ID: id, Phone: phone, CountryCode: "+1", CreatedAt: e.clock.Now()}
}

func (e *env) login(t *testing.T, u *models.User) {
	t.Helper()
	token, err := e.issuer.Issue(u)
	require.NoError(t, err)
	require.NoError(t, e.sessions.Login(context.Background(), u, token))
}

func (e *env) loginDefault(t *testing.T) *models.User {
	t.Helper()
	u := e.user("u1", "5551234")
	e.login(t, u)
	return u
}
