package coordinator

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/studentdash/roster-backend/internal/model"
)

// Session tracks at most one signed-in identity.
//
// The session value is only ever written by provider notifications. Login,
// Register and Logout ask the provider to change state and rely on the
// notification that follows.
type Session struct {
	provider IdentityProvider
	log      zerolog.Logger

	mu           sync.RWMutex
	session      *model.Identity
	initializing bool
	closed       bool
	ready        chan struct{}

	unsubscribe func()
	closeOnce   sync.Once
	watchers    watchers
}

// NewSession creates a Session and subscribes it to provider.
func NewSession(provider IdentityProvider, log zerolog.Logger) *Session {
	s := &Session{
		provider:     provider,
		log:          log.With().Str("component", "session").Logger(),
		initializing: true,
		ready:        make(chan struct{}),
	}
	s.unsubscribe = provider.Subscribe(s.onChange)
	return s
}

func (s *Session) onChange(identity *model.Identity) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.session = cloneIdentity(identity)
	first := s.initializing
	s.initializing = false
	s.mu.Unlock()

	if first {
		close(s.ready)
	}
	if identity != nil {
		s.log.Debug().Int("account_id", identity.AccountID).Msg("Session present")
	} else {
		s.log.Debug().Msg("Session absent")
	}
	s.watchers.notify()
}

// Login asks the provider to sign in. Provider errors are returned unchanged.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if _, err := s.provider.SignIn(ctx, email, password); err != nil {
		s.log.Warn().Err(err).Msg("Login failed")
		return err
	}
	return nil
}

// Register asks the provider to create an account and sign in with it.
func (s *Session) Register(ctx context.Context, email, password string) error {
	if _, err := s.provider.SignUp(ctx, email, password); err != nil {
		s.log.Warn().Err(err).Msg("Registration failed")
		return err
	}
	return nil
}

// Logout asks the provider to end the current session.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		s.log.Error().Err(err).Msg("Logout failed")
		return err
	}
	return nil
}

// Snapshot returns the session read model.
func (s *Session) Snapshot() model.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.SessionSnapshot{
		Session:      cloneIdentity(s.session),
		Initializing: s.initializing,
	}
}

// Ready is closed once the provider's first notification has arrived.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until the first notification or until ctx is done.
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Watch registers fn to run after every session change.
func (s *Session) Watch(fn func()) (stop func()) {
	return s.watchers.add(fn)
}

// Close releases the provider subscription. Later notifications are ignored.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		s.watchers.clear()
	})
}

func cloneIdentity(id *model.Identity) *model.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
