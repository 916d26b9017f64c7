package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/client/auth"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

// SessionManager owns the authenticated user of this process.
//
// Contract:
//   - Restore: load a persisted session once at startup; corrupt or
//     untrusted records yield an unauthenticated session, never an error.
//   - Login: persist the user and its token and mark the session
//     authenticated. Calling it again overwrites.
//   - Logout: wipe every user, chatroom and message key from durable
//     storage, clear session-scoped storage and run OnLogout hooks.
//   - CurrentUser: the signed-in user or common.ErrUnauthorized.
type SessionManager interface {
	auth.Completer
	Restore(ctx context.Context) models.AuthSession
	Logout(ctx context.Context) error
	Current() models.AuthSession
	CurrentUser() (*models.User, error)
	OnLogout(fn func(ctx context.Context))
}

type sessionManager struct {
	durable kv.Store
	session kv.Store
	issuer  *auth.TokenIssuer
	log     logging.Logger

	mu       sync.RWMutex
	state    models.AuthSession
	onLogout []func(ctx context.Context)
}

// NewSessionManager builds a manager over the durable and session-scoped
// stores. The session starts in the loading state until Restore runs.
func NewSessionManager(durable, session kv.Store, issuer *auth.TokenIssuer, log logging.Logger) SessionManager {
	return &sessionManager{
		durable: durable,
		session: session,
		issuer:  issuer,
		log:     log,
		state:   models.AuthSession{IsLoading: true},
	}
}

func (m *sessionManager) Restore(ctx context.Context) models.AuthSession {
	user := m.loadUser(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = models.AuthSession{User: user, IsAuthenticated: user != nil}
	return m.state
}

// loadUser returns the persisted user when both the record and its token
// check out, nil otherwise.
func (m *sessionManager) loadUser(ctx context.Context) *models.User {
	raw, err := m.durable.Get(ctx, common.UserSessionKey)
	if err != nil {
		m.log.Error(ctx, "failed to read session", "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}

	var user models.User
	err = json.Unmarshal(raw, &user)
	if err == nil {
		err = user.Validate()
	}
	if err != nil {
		m.log.Warn(ctx, "discarding corrupt session", "error", fmt.Errorf("%w: %w", common.ErrStorageCorruption, err))
		if derr := m.durable.Delete(ctx, common.UserSessionKey); derr != nil {
			m.log.Error(ctx, "failed to delete corrupt session", "error", derr)
		}
		return nil
	}

	token, err := m.durable.Get(ctx, common.SessionTokenKey)
	if err != nil {
		m.log.Error(ctx, "failed to read session token", "error", err)
		return nil
	}
	if token == nil {
		m.log.Warn(ctx, "session has no token", "user_id", user.ID)
		return nil
	}

	claims, err := m.issuer.Parse(string(token))
	if err != nil {
		m.log.Warn(ctx, "rejecting session token", "user_id", user.ID, "error", err)
		return nil
	}
	if claims.Subject != user.ID {
		m.log.Warn(ctx, "session token belongs to another user", "user_id", user.ID)
		return nil
	}

	return &user
}

func (m *sessionManager) Login(ctx context.Context, user *models.User, token string) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = m.durable.WithTx(ctx, func(ctx context.Context, s kv.Store) error {
		if err := s.Set(ctx, common.UserSessionKey, data); err != nil {
			return err
		}
		return s.Set(ctx, common.SessionTokenKey, []byte(token))
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	u := *user
	m.mu.Lock()
	m.state = models.AuthSession{User: &u, IsAuthenticated: true}
	m.mu.Unlock()

	m.log.Info(ctx, "user logged in", "user_id", user.ID)
	return nil
}

func (m *sessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	hooks := append([]func(context.Context){}, m.onLogout...)
	prev := m.state
	var userID string
	if prev.User != nil {
		userID = prev.User.ID
	}
	m.state = models.AuthSession{}
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(ctx)
	}

	err := m.durable.WithTx(ctx, func(ctx context.Context, s kv.Store) error {
		if err := s.Delete(ctx, common.UserSessionKey); err != nil {
			return err
		}
		if err := s.Delete(ctx, common.SessionTokenKey); err != nil {
			return err
		}
		if err := s.DeleteNamespace(ctx, common.ChatroomsKeyPrefix); err != nil {
			return err
		}
		return s.DeleteNamespace(ctx, common.MessagesKeyPrefix)
	})
	if err != nil {
		// The records are still on disk, so the session stays as it was.
		m.mu.Lock()
		m.state = prev
		m.mu.Unlock()
		m.log.Error(ctx, "logout wipe failed", "user_id", userID, "error", err)
		return fmt.Errorf("wipe durable data: %w", err)
	}

	if err := m.session.Clear(ctx); err != nil {
		return fmt.Errorf("clear session data: %w", err)
	}

	m.log.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

func (m *sessionManager) Current() models.AuthSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (m *sessionManager) CurrentUser() (*models.User, error) {
	s := m.Current()
	if !s.IsAuthenticated {
		return nil, common.ErrUnauthorized
	}
	return s.User, nil
}

// OnLogout registers fn to run at the start of every Logout.
func (m *sessionManager) OnLogout(fn func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = append(m.onLogout, fn)
}
