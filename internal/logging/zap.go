package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/filex"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap.SugaredLogger to Logger.
type ZapLogger struct {
	l *zap.SugaredLogger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{l: l.Sugar()}
}

func (z *ZapLogger) Debug(_ context.Context, msg string, args ...any) { z.l.Debugw(msg, args...) }
func (z *ZapLogger) Info(_ context.Context, msg string, args ...any)  { z.l.Infow(msg, args...) }
func (z *ZapLogger) Warn(_ context.Context, msg string, args ...any)  { z.l.Warnw(msg, args...) }
func (z *ZapLogger) Error(_ context.Context, msg string, args ...any) { z.l.Errorw(msg, args...) }

func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{l: z.l.With(args...)}
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.l.Sync()
}

// Options selects the backend and destination of the application logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // "zap" (JSON) or "text" (slog text handler)
	Dir    string // rotating file directory; empty means stderr
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(l string) zapcore.Level {
	switch strings.ToLower(l) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds the application logger. The returned closer releases the log file.
func New(opts Options) (Logger, io.Closer, error) {
	w, closer, err := openSink(opts.Dir)
	if err != nil {
		return nil, nil, err
	}

	lvl := ParseLevel(opts.Level)

	if opts.Format == "text" {
		return NewTextLogger(w, lvl), closer, nil
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), lvl)
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))

	return NewZapLogger(l), closer, nil
}

func openSink(dir string) (io.Writer, io.Closer, error) {
	if dir == "" {
		return os.Stderr, nopCloser{}, nil
	}
	dir, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, nil, err
	}
	rl, err := rotatelogs.New(
		filepath.Join(dir, "gophchat.%Y%m%d.log"),
		rotatelogs.WithLinkName(filepath.Join(dir, "gophchat.log")),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open rotating log: %w", err)
	}
	return rl, rl, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
