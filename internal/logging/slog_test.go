package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		attr  string
	}{
		{"DEBUG", "dbg", "a=1"},
		{"INFO", "inf", "b=2"},
		{"WARN", "wrn", "c=3"},
		{"ERROR", "err", "d=4"},
	}

	for _, tc := range tests {
		assert.Contains(t, out, "level="+tc.level)
		assert.Contains(t, out, "msg="+tc.msg)
		assert.Contains(t, out, tc.attr)
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("chatroom_id", "123", "user", "alice").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	for _, s := range []string{"level=INFO", "msg=hello", "chatroom_id=123", "user=alice", "k=v"} {
		assert.Contains(t, out, s)
	}
}

func TestSlogLogger_ContextDoesNotPanic(t *testing.T) {
	log, _ := newTestLogger(t)

	require.NotPanics(t, func() {
		log.Info(context.TODO(), "ok")
	})
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	require.NotPanics(t, func() {
		l.With("a", 1).Error(context.Background(), "x")
	})
}

func TestNewTextLogger_FiltersByLevel(t *testing.T) {
	tests := []struct {
		lvl      zapcore.Level
		want     []string
		filtered []string
	}{
		{zapcore.DebugLevel, []string{"msg=d", "msg=i", "msg=w", "msg=e"}, nil},
		{zapcore.InfoLevel, []string{"msg=i", "msg=w", "msg=e"}, []string{"msg=d"}},
		{zapcore.WarnLevel, []string{"msg=w", "msg=e"}, []string{"msg=d", "msg=i"}},
		{zapcore.ErrorLevel, []string{"msg=e"}, []string{"msg=d", "msg=i", "msg=w"}},
	}
	for _, tc := range tests {
		t.Run(tc.lvl.String(), func(t *testing.T) {
			var buf bytes.Buffer
			l := NewTextLogger(&buf, tc.lvl)
			ctx := context.Background()
			l.Debug(ctx, "d")
			l.Info(ctx, "i")
			l.Warn(ctx, "w")
			l.Error(ctx, "e")

			for _, s := range tc.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tc.filtered {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
