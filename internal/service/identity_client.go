package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/studentdash/roster-backend/internal/model"
)

// IdentityBackend is the part of AuthService an IdentityClient talks to.
type IdentityBackend interface {
	SignIn(ctx context.Context, email, password string) (*model.Identity, error)
	SignUp(ctx context.Context, email, password string) (*model.Identity, error)
	SignOut(ctx context.Context, tokenID string) error
	Resolve(ctx context.Context, token string) (*model.Identity, error)
}

// IdentityClient is one workspace's handle on the identity provider. It
// remembers who is signed in on that workspace and notifies subscribers of
// every change.
type IdentityClient struct {
	backend IdentityBackend
	log     zerolog.Logger

	// deliverMu serialises state changes with their delivery so subscribers
	// observe notifications in order.
	deliverMu sync.Mutex

	mu       sync.Mutex
	current  *model.Identity
	resolved bool
	subs     map[int]func(*model.Identity)
	nextSub  int
}

// NewIdentityClient creates a client. When token is non-empty the client
// tries to restore that session in the background and reports the outcome as
// its first notification; otherwise it starts out anonymous.
func NewIdentityClient(ctx context.Context, backend IdentityBackend, token string, log zerolog.Logger) *IdentityClient {
	c := &IdentityClient{
		backend: backend,
		log:     log.With().Str("component", "identity_client").Logger(),
		subs:    make(map[int]func(*model.Identity)),
	}
	if token == "" {
		c.resolved = true
		return c
	}
	go c.restore(ctx, token)
	return c
}

func (c *IdentityClient) restore(ctx context.Context, token string) {
	identity, err := c.backend.Resolve(ctx, token)
	if err != nil {
		c.log.Debug().Err(err).Msg("Stored token not restored")
		identity = nil
	}

	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	if c.resolved {
		// A sign-in or sign-out already settled the state.
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.setLocked(identity)
}

// Subscribe implements coordinator.IdentityProvider.
func (c *IdentityClient) Subscribe(fn func(*model.Identity)) func() {
	c.deliverMu.Lock()
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	resolved, current := c.resolved, c.current
	c.mu.Unlock()
	if resolved {
		fn(current)
	}
	c.deliverMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// SignIn implements coordinator.IdentityProvider.
func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	identity, err := c.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.replace(ctx, identity)
	return identity, nil
}

// SignUp implements coordinator.IdentityProvider.
func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (*model.Identity, error) {
	identity, err := c.backend.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.replace(ctx, identity)
	return identity, nil
}

// SignOut implements coordinator.IdentityProvider.
func (c *IdentityClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	tokenID := ""
	if current != nil {
		if err := c.backend.SignOut(ctx, current.TokenID); err != nil {
			return err
		}
		tokenID = current.TokenID
	}
	c.clear(tokenID)
	return nil
}

// Revoke drops the session if tokenID is the one this client holds.
func (c *IdentityClient) Revoke(tokenID string) bool {
	if tokenID == "" || !c.clear(tokenID) {
		return false
	}
	c.log.Info().Str("token_id", tokenID).Msg("Session revoked by provider")
	return true
}

// Current returns the identity the client holds.
func (c *IdentityClient) Current() *model.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// replace installs identity, ending any session it supersedes.
func (c *IdentityClient) replace(ctx context.Context, identity *model.Identity) {
	c.mu.Lock()
	previous := c.current
	c.mu.Unlock()

	if previous != nil && previous.TokenID != identity.TokenID {
		if err := c.backend.SignOut(ctx, previous.TokenID); err != nil {
			c.log.Warn().Err(err).Msg("Failed to end superseded session")
		}
	}
	c.set(identity)
}

func (c *IdentityClient) set(identity *model.Identity) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	c.setLocked(identity)
}

// clear signs the client out if it still holds tokenID; an empty tokenID
// matches an anonymous client. A session installed after tokenID was read
// is left alone.
func (c *IdentityClient) clear(tokenID string) bool {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	held := ""
	if c.current != nil {
		held = c.current.TokenID
	}
	c.mu.Unlock()
	if held != tokenID {
		return false
	}
	c.setLocked(nil)
	return true
}

// setLocked must be called with deliverMu held.
func (c *IdentityClient) setLocked(identity *model.Identity) {
	c.mu.Lock()
	c.current = identity
	c.resolved = true
	fns := make([]func(*model.Identity), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(identity)
	}
}
