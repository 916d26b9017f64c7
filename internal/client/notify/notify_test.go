package notify

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu  sync.Mutex
	got []string
}

func (r *recorder) Notify(title, message string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, string(kind)+":"+title+":"+message)
}

func TestAsync_DeliversInOrder(t *testing.T) {
	rec := &recorder{}
	a := NewAsync(rec, 8, logging.Nop{})

	a.Notify("a", "1", KindInfo)
	a.Notify("b", "2", KindSuccess)
	a.Close()

	assert.Equal(t, []string{"info:a:1", "success:b:2"}, rec.got)
}

func TestAsync_DropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	blocking := Func(func(string, string, Kind) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	})

	var buf bytes.Buffer
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	a := NewAsync(blocking, 1, log)

	a.Notify("first", "", KindInfo)
	<-started
	a.Notify("queued", "", KindInfo)

	done := make(chan struct{})
	go func() {
		a.Notify("dropped", "", KindInfo)
		close(done)
	}()
	<-done

	close(release)
	a.Close()
	assert.Contains(t, buf.String(), "notification dropped")
	assert.Contains(t, buf.String(), "title=dropped")
}

func TestLog_WritesNotice(t *testing.T) {
	var buf bytes.Buffer
	l := Log{L: logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))}

	l.Notify("Code sent", "Your code is 123456", KindSuccess)

	out := buf.String()
	assert.Contains(t, out, `title="Code sent"`)
	assert.Contains(t, out, "kind=success")
	assert.NotContains(t, out, "123456")
}

func TestMulti_FansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Multi{a, b, Nop{}}.Notify("t", "m", KindError)

	require.Len(t, a.got, 1)
	require.Len(t, b.got, 1)
}
