package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studentdash/roster-backend/internal/config"
	"github.com/studentdash/roster-backend/internal/coordinator"
	"github.com/studentdash/roster-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth() (*AuthService, *memAccounts, *memTokens) {
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	accounts := newMemAccounts()
	tokens := newMemTokens()
	return NewAuthService(cfg, accounts, tokens), accounts, tokens
}

func TestAuthService_SignUpThenSignIn(t *testing.T) {
	auth, _, tokens := newTestAuth()
	ctx := context.Background()

	created, err := auth.SignUp(ctx, "  Jane@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", created.Email)
	assert.NotEmpty(t, created.Token)
	assert.NotEmpty(t, created.TokenID)

	signedIn, err := auth.SignIn(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.AccountID, signedIn.AccountID)
	assert.NotEqual(t, created.TokenID, signedIn.TokenID)
	assert.Equal(t, 2, tokens.live())
}

func TestAuthService_SignUpDuplicateEmail(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)

	_, err = auth.SignUp(ctx, "JANE@example.com", "another1")
	assert.ErrorIs(t, err, coordinator.ErrEmailAlreadyInUse)
}

func TestAuthService_SignInInvalidCredentials(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()
	_, err := auth.SignUp(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)

	_, err = auth.SignIn(ctx, "jane@example.com", "wrong-password")
	assert.ErrorIs(t, err, coordinator.ErrInvalidCredentials)

	_, err = auth.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, coordinator.ErrInvalidCredentials)
}

func TestAuthService_ResolveAndSignOut(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()

	identity, err := auth.SignUp(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)

	restored, err := auth.Resolve(ctx, identity.Token)
	require.NoError(t, err)
	assert.Equal(t, identity.AccountID, restored.AccountID)
	assert.Equal(t, identity.TokenID, restored.TokenID)
	assert.Equal(t, identity.Token, restored.Token)

	require.NoError(t, auth.SignOut(ctx, identity.TokenID))

	_, err = auth.Resolve(ctx, identity.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_ResolveRejectsForeignSignature(t *testing.T) {
	auth, _, _ := newTestAuth()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		AccountID: 1,
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = auth.Resolve(context.Background(), forged)
	assert.Error(t, err)

	_, err = auth.Resolve(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}

func TestAuthService_ResolveRejectsExpiredToken(t *testing.T) {
	auth, _, _ := newTestAuth()
	auth.cfg.JWTExpiry = -time.Minute

	identity, err := auth.SignUp(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)

	_, err = auth.Resolve(context.Background(), identity.Token)
	assert.Error(t, err)
}

func TestAuthService_RevokeAccount(t *testing.T) {
	auth, _, tokens := newTestAuth()
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)
	_, err = auth.SignIn(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)
	_, err = auth.SignUp(ctx, "joe@example.com", "secret1")
	require.NoError(t, err)

	n, err := auth.RevokeAccount(ctx, "Jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, tokens.live())

	_, err = auth.RevokeAccount(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}
