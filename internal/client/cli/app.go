package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/auth"
	"github.com/dmitrijs2005/gophchat/internal/client/config"
	"github.com/dmitrijs2005/gophchat/internal/client/countries"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/notify"
	"github.com/dmitrijs2005/gophchat/internal/client/reply"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophchat/internal/client/services"
	"github.com/dmitrijs2005/gophchat/internal/client/storage"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/jonboulle/clockwork"
	"golang.org/x/term"
)

// App is the interactive chat client. Handlers print their own results and
// errors to out; the returned error is informational for callers.
type App struct {
	config    *config.Config
	log       logging.Logger
	sessions  services.SessionManager
	flow      *auth.Flow
	rooms     services.ChatroomService
	messages  services.MessageService
	countries countries.Provider
	producer  reply.Producer
	notifier  *notify.Async

	reader *bufio.Reader
	out    *lockedWriter
	masked bool

	mu        sync.Mutex
	current   *models.Chatroom
	listed    []models.Chatroom
	countryDB []models.Country

	stop    chan struct{}
	waiters sync.WaitGroup

	closers []func() error
}

// deps are the pieces NewApp takes from the process; tests substitute them.
type deps struct {
	clock     clockwork.Clock
	in        io.Reader
	out       io.Writer
	masked    bool
	genCode   func() (string, error)
	countries countries.Provider
	producer  reply.Producer
}

// NewApp opens the database at c.DatabaseDSN and wires the services.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	return newApp(ctx, c, log, deps{
		clock:  clockwork.NewRealClock(),
		in:     os.Stdin,
		out:    os.Stdout,
		masked: term.IsTerminal(int(os.Stdin.Fd())),
	})
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, d deps) (*App, error) {
	db, err := storage.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "dsn", c.DatabaseDSN, "error", err)
		return nil, err
	}

	out := &lockedWriter{w: d.out}
	durable := kv.NewSQLiteStore(db)
	session := kv.NewMemoryStore()
	issuer := auth.NewTokenIssuer([]byte(c.TokenSecret), c.TokenTTL, d.clock)
	sessions := services.NewSessionManager(durable, session, issuer, log)

	notifier := notify.NewAsync(notify.Multi{consoleNotifier{w: out}, notify.Log{L: log}}, 64, log)

	tick := c.CooldownTick
	if tick <= 0 {
		tick = time.Second
	}
	flow := auth.NewFlow(session, sessions, issuer, notifier, log, auth.Options{
		Cooldown:     int(c.ResendCooldown / tick),
		Tick:         tick,
		MaxAttempts:  c.MaxAttempts,
		Clock:        d.clock,
		GenerateCode: d.genCode,
	})

	rooms, messages := services.NewChatServices(durable, sessions, notifier, log, services.ChatOptions{
		ReplyDelayText:  c.ReplyDelayText,
		ReplyDelayImage: c.ReplyDelayImage,
		Clock:           d.clock,
	})

	provider := d.countries
	if provider == nil {
		provider = countries.StaticProvider{}
		if c.CountriesURL != "" {
			provider = countries.WithFallback(countries.NewHTTPProvider(c.CountriesURL), c.CountriesTimeout, log)
		}
	}

	producer := d.producer
	if producer == nil {
		producer = reply.Canned
	}

	a := &App{
		config:    c,
		log:       log,
		sessions:  sessions,
		flow:      flow,
		rooms:     rooms,
		messages:  messages,
		countries: provider,
		producer:  producer,
		notifier:  notifier,
		reader:    bufio.NewReader(d.in),
		out:       out,
		masked:    d.masked,
		stop:      make(chan struct{}),
		countryDB: countries.Static,
	}
	fetchCtx, cancelFetch := context.WithCancel(context.Background())
	a.prefetchCountries(fetchCtx)

	a.closers = []func() error{
		func() error { cancelFetch(); close(a.stop); a.waiters.Wait(); return nil },
		func() error { flow.Reset(context.Background()); return nil },
		func() error { notifier.Close(); return nil },
		db.Close,
	}
	return a, nil
}

// Run restores the persisted session and blocks in the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	s := a.sessions.Restore(ctx)
	if s.IsAuthenticated {
		a.println("Welcome back,", s.User.CountryCode, s.User.Phone)
	} else {
		a.println("Not logged in. Type 'login' to start or 'help' for commands.")
	}

	runREPL(ctx, a, a.status, a.reader)
}

// Close stops background work and releases the database.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// prefetchCountries loads the country list in the background. The phone
// prompt uses the built-in list until the fetch completes.
func (a *App) prefetchCountries(ctx context.Context) {
	a.waiters.Add(1)
	go func() {
		defer a.waiters.Done()
		list, err := a.countries.Fetch(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil || len(list) == 0 {
			a.log.Warn(ctx, "country list unavailable, using built-in list", "error", err)
			return
		}
		a.mu.Lock()
		a.countryDB = list
		a.mu.Unlock()
	}()
}

func (a *App) countryList() []models.Country {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.countryDB
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current().IsAuthenticated
}

func (a *App) status() string {
	s := a.sessions.Current()
	if !s.IsAuthenticated {
		return "guest"
	}
	st := fmt.Sprintf("%s %s", s.User.CountryCode, s.User.Phone)
	if room := a.currentRoom(); room != nil {
		st += " [" + room.Name + "]"
	}
	return st
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// lockedWriter serializes output from the REPL and background replies.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// consoleNotifier prints notices as a single line.
type consoleNotifier struct {
	w io.Writer
}

func (c consoleNotifier) Notify(title, message string, kind notify.Kind) {
	marker := "*"
	switch kind {
	case notify.KindError:
		marker = "!"
	case notify.KindSuccess:
		marker = "+"
	}
	if message == "" {
		fmt.Fprintf(c.w, "[%s] %s\n", marker, title)
		return
	}
	fmt.Fprintf(c.w, "[%s] %s: %s\n", marker, title, message)
}
