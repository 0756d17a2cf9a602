package coordinator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studentdash/roster-backend/internal/model"
)

func TestSession_InitializingUntilFirstNotification(t *testing.T) {
	idp := &fakeIdentity{}
	s := NewSession(idp, zerolog.Nop())

	snap := s.Snapshot()
	assert.True(t, snap.Initializing)
	assert.Nil(t, snap.Session)
	assert.Equal(t, 1, idp.subscribes)

	idp.emit(nil)

	snap = s.Snapshot()
	assert.False(t, snap.Initializing)
	assert.Nil(t, snap.Session)
}

func TestSession_NotificationsReplaceSession(t *testing.T) {
	idp := &fakeIdentity{}
	s := NewSession(idp, zerolog.Nop())

	idp.emit(nil)
	idp.emit(&model.Identity{AccountID: 7, Email: "a@b.co"})

	snap := s.Snapshot()
	require.NotNil(t, snap.Session)
	assert.Equal(t, 7, snap.Session.AccountID)
	assert.False(t, snap.Initializing)

	idp.emit(nil)
	assert.Nil(t, s.Snapshot().Session)
	assert.False(t, s.Snapshot().Initializing)
}

func TestSession_LoginDoesNotAssignSession(t *testing.T) {
	idp := &fakeIdentity{}
	s := NewSession(idp, zerolog.Nop())
	idp.emit(nil)

	require.NoError(t, s.Login(context.Background(), "a@b.co", "secret1"))

	// Only the provider's notification may change the session.
	assert.Nil(t, s.Snapshot().Session)
	assert.Equal(t, 1, idp.signIns)

	idp.emit(&model.Identity{AccountID: 1, Email: "a@b.co"})
	assert.NotNil(t, s.Snapshot().Session)
}

func TestSession_ErrorsPropagateUnchanged(t *testing.T) {
	idp := &fakeIdentity{
		signInErr:  ErrInvalidCredentials,
		signUpErr:  ErrEmailAlreadyInUse,
		signOutErr: errProvider,
	}
	s := NewSession(idp, zerolog.Nop())
	idp.emit(nil)

	assert.ErrorIs(t, s.Login(context.Background(), "a@b.co", "bad"), ErrInvalidCredentials)
	assert.ErrorIs(t, s.Register(context.Background(), "a@b.co", "secret1"), ErrEmailAlreadyInUse)
	assert.ErrorIs(t, s.Logout(context.Background()), errProvider)

	snap := s.Snapshot()
	assert.Nil(t, snap.Session)
	assert.False(t, snap.Initializing)
}

func TestSession_WaitReady(t *testing.T) {
	idp := &fakeIdentity{}
	s := NewSession(idp, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.WaitReady(ctx), context.DeadlineExceeded)

	go idp.emit(&model.Identity{AccountID: 3})
	require.NoError(t, s.WaitReady(context.Background()))
	assert.Equal(t, 3, s.Snapshot().Session.AccountID)

	// A second notification must not close ready again.
	idp.emit(nil)
	<-s.Ready()
}

func TestSession_CloseUnsubscribesAndIgnoresLateNotifications(t *testing.T) {
	idp := &fakeIdentity{}
	s := NewSession(idp, zerolog.Nop())
	idp.emit(&model.Identity{AccountID: 1})

	var calls atomic.Int32
	s.Watch(func() { calls.Add(1) })

	s.Close()
	s.Close()
	assert.Equal(t, 1, idp.unsubscribe)

	idp.emit(nil)
	assert.NotNil(t, s.Snapshot().Session)
	assert.Zero(t, calls.Load())
}

func TestSession_WatchersSeeNewValue(t *testing.T) {
	idp := &fakeIdentity{}
	s := NewSession(idp, zerolog.Nop())

	var seen []*model.Identity
	s.Watch(func() { seen = append(seen, s.Snapshot().Session) })

	idp.emit(nil)
	idp.emit(&model.Identity{AccountID: 9})

	require.Len(t, seen, 2)
	assert.Nil(t, seen[0])
	assert.Equal(t, 9, seen[1].AccountID)
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	idp := &fakeIdentity{}
	s := NewSession(idp, zerolog.Nop())
	id := &model.Identity{AccountID: 1, Email: "a@b.co"}
	idp.emit(id)

	id.Email = "changed@b.co"
	snap := s.Snapshot()
	snap.Session.Email = "also@b.co"

	assert.Equal(t, "a@b.co", s.Snapshot().Session.Email)
}
