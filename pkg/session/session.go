// Package session holds the signed in state of the application: the bearer
// token and user (Auth), role checks (Admin) and the user facing notice
// queue (Messages). The services are constructed once per sign in and torn
// down together.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-pawhealth/pkg/client"
)

// UserKey is the state key of the cached user.
const UserKey = "session.user"

// ErrNoSession is returned by Restore when nothing is persisted.
var ErrNoSession = errors.New("session: not signed in")

// State caches structured values between runs.
type State interface {
	GetJSON(ctx context.Context, key string, out any) error
	SetJSON(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Deps are the collaborators of a session.
type Deps struct {
	Tokens TokenStore
	State  State
	Logger *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Session groups the per sign in services.
type Session struct {
	Auth     *Auth
	Admin    *Admin
	Messages *Messages

	deps Deps
	once sync.Once
}

// Start persists token and user and returns a session for them.
func Start(ctx context.Context, deps Deps, token string, user client.User) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("session: token is required")
	}
	if deps.Tokens != nil {
		if err := deps.Tokens.Save(ctx, token); err != nil {
			return nil, fmt.Errorf("session: save token: %w", err)
		}
	}
	if deps.State != nil {
		if err := deps.State.SetJSON(ctx, UserKey, user); err != nil {
			return nil, fmt.Errorf("session: cache user: %w", err)
		}
	}
	deps.logger().Info("session started", zap.String("user_id", user.ID), zap.String("role", user.Role))
	return build(deps, token, user), nil
}

// Restore rebuilds the session persisted by a previous Start.
func Restore(ctx context.Context, deps Deps) (*Session, error) {
	if deps.Tokens == nil {
		return nil, ErrNoSession
	}
	token, err := deps.Tokens.Load(ctx)
	if errors.Is(err, ErrNotFound) || (err == nil && token == "") {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("session: load token: %w", err)
	}
	var user client.User
	if deps.State != nil {
		if err := deps.State.GetJSON(ctx, UserKey, &user); err != nil {
			deps.logger().Debug("cached user unavailable", zap.Error(err))
		}
	}
	return build(deps, token, user), nil
}

func build(deps Deps, token string, user client.User) *Session {
	auth := &Auth{token: token, user: user}
	return &Session{
		Auth:     auth,
		Admin:    &Admin{auth: auth},
		Messages: &Messages{},
		deps:     deps,
	}
}

// Close signs out: the services are cleared and the persisted token and user
// removed. Calling Close more than once is harmless.
func (s *Session) Close(ctx context.Context) error {
	var errs []error
	s.once.Do(func() {
		s.Auth.clear()
		s.Messages.Clear()
		if s.deps.Tokens != nil {
			if err := s.deps.Tokens.Delete(ctx); err != nil {
				errs = append(errs, fmt.Errorf("session: delete token: %w", err))
			}
		}
		if s.deps.State != nil {
			if err := s.deps.State.Delete(ctx, UserKey); err != nil {
				errs = append(errs, fmt.Errorf("session: delete user: %w", err))
			}
		}
		s.deps.logger().Info("session closed")
	})
	return errors.Join(errs...)
}

// Refresh reloads the user from the backend and updates the cache.
func (s *Session) Refresh(ctx context.Context, api interface {
	Me(ctx context.Context) (client.User, error)
}) (client.User, error) {
	user, err := api.Me(ctx)
	if err != nil {
		return client.User{}, err
	}
	s.Auth.setUser(user)
	if s.deps.State != nil {
		if err := s.deps.State.SetJSON(ctx, UserKey, user); err != nil {
			return user, fmt.Errorf("session: cache user: %w", err)
		}
	}
	return user, nil
}

// Auth holds the bearer token and user. It implements client.TokenSource.
type Auth struct {
	mu    sync.RWMutex
	token string
	user  client.User
}

// Token implements client.TokenSource.
func (a *Auth) Token(context.Context) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.token == "" {
		return "", client.ErrUnauthenticated
	}
	return a.token, nil
}

// User returns the signed in user.
func (a *Auth) User() client.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

// SignedIn reports whether a token is held.
func (a *Auth) SignedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token != ""
}

func (a *Auth) setUser(u client.User) {
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
}

func (a *Auth) clear() {
	a.mu.Lock()
	a.token = ""
	a.user = client.User{}
	a.mu.Unlock()
}

// Admin performs role checks for back office screens.
type Admin struct {
	auth *Auth
}

// IsAdmin reports whether the signed in user is an administrator.
func (a *Admin) IsAdmin() bool {
	return a.auth.SignedIn() && a.auth.User().IsAdmin()
}

// Require returns client.ErrUnauthenticated when signed out and
// client.ErrForbidden for non administrators.
func (a *Admin) Require() error {
	if !a.auth.SignedIn() {
		return client.ErrUnauthenticated
	}
	if !a.auth.User().IsAdmin() {
		return fmt.Errorf("%w: administrator role required", client.ErrForbidden)
	}
	return nil
}
