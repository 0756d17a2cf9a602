package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studentdash/roster-backend/internal/coordinator"
	"github.com/studentdash/roster-backend/internal/model"
)

// recorder collects notifications delivered to a subscriber.
type recorder struct {
	mu   sync.Mutex
	seen []*model.Identity
	ch   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan struct{}, 16)}
}

func (r *recorder) fn(id *model.Identity) {
	r.mu.Lock()
	r.seen = append(r.seen, id)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no notification")
	}
}

func (r *recorder) all() []*model.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.Identity(nil), r.seen...)
}

func TestIdentityClient_AnonymousNotifiesImmediately(t *testing.T) {
	auth, _, _ := newTestAuth()
	c := NewIdentityClient(context.Background(), auth, "", zerolog.Nop())

	rec := newRecorder()
	c.Subscribe(rec.fn)

	require.Len(t, rec.all(), 1)
	assert.Nil(t, rec.all()[0])
}

func TestIdentityClient_RestoresToken(t *testing.T) {
	auth, _, _ := newTestAuth()
	identity, err := auth.SignUp(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)

	c := NewIdentityClient(context.Background(), auth, identity.Token, zerolog.Nop())
	rec := newRecorder()
	c.Subscribe(rec.fn)
	rec.wait(t)

	seen := rec.all()
	require.Len(t, seen, 1)
	require.NotNil(t, seen[0])
	assert.Equal(t, identity.AccountID, seen[0].AccountID)
}

func TestIdentityClient_BadTokenRestoresAnonymous(t *testing.T) {
	auth, _, _ := newTestAuth()
	c := NewIdentityClient(context.Background(), auth, "garbage", zerolog.Nop())

	rec := newRecorder()
	c.Subscribe(rec.fn)
	rec.wait(t)

	seen := rec.all()
	require.Len(t, seen, 1)
	assert.Nil(t, seen[0])
}

func TestIdentityClient_SessionCoordinatorFlow(t *testing.T) {
	auth, _, tokens := newTestAuth()
	c := NewIdentityClient(context.Background(), auth, "", zerolog.Nop())
	s := coordinator.NewSession(c, zerolog.Nop())
	defer s.Close()

	assert.False(t, s.Snapshot().Initializing)
	assert.Nil(t, s.Snapshot().Session)

	require.NoError(t, s.Register(context.Background(), "jane@example.com", "secret1"))
	require.NotNil(t, s.Snapshot().Session)
	assert.Equal(t, "jane@example.com", s.Snapshot().Session.Email)

	require.NoError(t, s.Logout(context.Background()))
	assert.Nil(t, s.Snapshot().Session)
	assert.Zero(t, tokens.live())

	err := s.Login(context.Background(), "jane@example.com", "bad-password")
	assert.ErrorIs(t, err, coordinator.ErrInvalidCredentials)
	assert.Nil(t, s.Snapshot().Session)
}

func TestIdentityClient_SignInEndsSupersededSession(t *testing.T) {
	auth, _, tokens := newTestAuth()
	_, err := auth.SignUp(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, 1, tokens.live())

	c := NewIdentityClient(context.Background(), auth, "", zerolog.Nop())
	first, err := c.SignIn(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)
	second, err := c.SignIn(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, second.TokenID, c.Current().TokenID)
	assert.Contains(t, tokens.deleted, first.TokenID)
}

func TestIdentityClient_Revoke(t *testing.T) {
	auth, _, _ := newTestAuth()
	c := NewIdentityClient(context.Background(), auth, "", zerolog.Nop())
	identity, err := c.SignUp(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)

	rec := newRecorder()
	c.Subscribe(rec.fn)

	assert.False(t, c.Revoke("someone-else"))
	assert.True(t, c.Revoke(identity.TokenID))
	assert.Nil(t, c.Current())

	seen := rec.all()
	require.Len(t, seen, 2)
	assert.NotNil(t, seen[0])
	assert.Nil(t, seen[1])
}

// gatedBackend blocks the first SignOut until release is closed.
type gatedBackend struct {
	IdentityBackend
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedBackend(inner IdentityBackend) *gatedBackend {
	return &gatedBackend{
		IdentityBackend: inner,
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
}

func (g *gatedBackend) SignOut(ctx context.Context, tokenID string) error {
	gated := false
	g.once.Do(func() { gated = true })
	if gated {
		close(g.entered)
		<-g.release
	}
	return g.IdentityBackend.SignOut(ctx, tokenID)
}

func TestIdentityClient_SignOutKeepsLaterSignIn(t *testing.T) {
	auth, _, tokens := newTestAuth()
	_, err := auth.SignUp(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)
	_, err = auth.SignUp(context.Background(), "bob@example.com", "secret1")
	require.NoError(t, err)

	backend := newGatedBackend(auth)
	c := NewIdentityClient(context.Background(), backend, "", zerolog.Nop())
	_, err = c.SignIn(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- c.SignOut(context.Background()) }()
	<-backend.entered

	bob, err := c.SignIn(context.Background(), "bob@example.com", "secret1")
	require.NoError(t, err)

	close(backend.release)
	require.NoError(t, <-done)

	require.NotNil(t, c.Current())
	assert.Equal(t, bob.TokenID, c.Current().TokenID)
	_, err = tokens.Lookup(context.Background(), bob.TokenID)
	assert.NoError(t, err)
}

func TestIdentityClient_RevokeIgnoresReplacedToken(t *testing.T) {
	auth, _, _ := newTestAuth()
	c := NewIdentityClient(context.Background(), auth, "", zerolog.Nop())
	first, err := c.SignUp(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)
	second, err := c.SignIn(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)

	assert.False(t, c.Revoke(first.TokenID))
	assert.False(t, c.Revoke(""))
	require.NotNil(t, c.Current())
	assert.Equal(t, second.TokenID, c.Current().TokenID)
}

func TestIdentityClient_UnsubscribeStopsDelivery(t *testing.T) {
	auth, _, _ := newTestAuth()
	c := NewIdentityClient(context.Background(), auth, "", zerolog.Nop())

	rec := newRecorder()
	stop := c.Subscribe(rec.fn)
	stop()
	stop()

	_, err := c.SignUp(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.Len(t, rec.all(), 1)
}
