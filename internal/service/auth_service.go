package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/studentdash/roster-backend/internal/config"
	"github.com/studentdash/roster-backend/internal/coordinator"
	"github.com/studentdash/roster-backend/internal/model"
	"github.com/studentdash/roster-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// ErrTokenRevoked is returned when a well-formed token has no live session.
var ErrTokenRevoked = errors.New("token has been revoked")

// AccountStore is the persistence AuthService needs for accounts.
type AccountStore interface {
	GetByID(ctx context.Context, id int) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	Create(ctx context.Context, a *model.Account) error
}

// TokenStore is the persistence AuthService needs for token sessions.
type TokenStore interface {
	Save(ctx context.Context, tokenID string, accountID int, ttl time.Duration) error
	Lookup(ctx context.Context, tokenID string) (int, error)
	Delete(ctx context.Context, tokenID string) error
	DeleteAccount(ctx context.Context, accountID int) (int, error)
}

// Claims extends JWT standard claims with the account fields.
type Claims struct {
	jwt.RegisteredClaims
	AccountID int    `json:"account_id"`
	Email     string `json:"email"`
}

// AuthService is the identity provider back-end: accounts, passwords,
// identity tokens and their sessions.
type AuthService struct {
	cfg      *config.Config
	accounts AccountStore
	tokens   TokenStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, accounts AccountStore, tokens TokenStore) *AuthService {
	return &AuthService{cfg: cfg, accounts: accounts, tokens: tokens}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return coordinator.ErrInvalidCredentials
	}
	return nil
}

// SignIn checks email and password and issues a new identity token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, coordinator.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	if err := s.CheckPassword(account.PasswordHash, password); err != nil {
		return nil, err
	}

	return s.issue(ctx, account)
}

// SignUp creates an account and issues an identity token for it.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*model.Identity, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{Email: normalizeEmail(email), PasswordHash: hash}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, coordinator.ErrEmailAlreadyInUse
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return s.issue(ctx, account)
}

// SignOut ends the token session tokenID.
func (s *AuthService) SignOut(ctx context.Context, tokenID string) error {
	if err := s.tokens.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// RevokeAccount ends every token session of the account with email.
func (s *AuthService) RevokeAccount(ctx context.Context, email string) (int, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return 0, err
	}
	return s.tokens.DeleteAccount(ctx, account.ID)
}

// Resolve turns a previously issued token back into an identity, provided its
// session is still live.
func (s *AuthService) Resolve(ctx context.Context, tokenStr string) (*model.Identity, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}

	accountID, err := s.tokens.Lookup(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}
	if accountID != claims.AccountID {
		return nil, ErrTokenRevoked
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	return &model.Identity{
		AccountID: account.ID,
		Email:     account.Email,
		Token:     tokenStr,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// issue signs a token for account and records its session in Redis.
func (s *AuthService) issue(ctx context.Context, account *model.Account) (*model.Identity, error) {
	jti := uuid.New().String()
	now := time.Now()
	expires := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(account.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		AccountID: account.ID,
		Email:     account.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.tokens.Save(ctx, jti, account.ID, s.cfg.JWTExpiry); err != nil {
		return nil, err
	}

	return &model.Identity{
		AccountID: account.ID,
		Email:     account.Email,
		Token:     signed,
		TokenID:   jti,
		ExpiresAt: expires,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
