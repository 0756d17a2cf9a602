package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/studentdash/roster-backend/internal/config"
)

var ErrTokenNotFound = errors.New("token session not found")

// TokenStore records live identity tokens in Redis.
type TokenStore struct {
	rdb *redis.Client
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

// Save binds tokenID to accountID for ttl.
func (s *TokenStore) Save(ctx context.Context, tokenID string, accountID int, ttl time.Duration) error {
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.TokenSessionKey(tokenID), accountID, ttl)
	pipe.SAdd(ctx, config.CacheKey.AccountTokensKey(accountID), tokenID)
	pipe.Expire(ctx, config.CacheKey.AccountTokensKey(accountID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save token session: %w", err)
	}
	return nil
}

// Lookup returns the account bound to tokenID.
func (s *TokenStore) Lookup(ctx context.Context, tokenID string) (int, error) {
	v, err := s.rdb.Get(ctx, config.CacheKey.TokenSessionKey(tokenID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrTokenNotFound
		}
		return 0, fmt.Errorf("lookup token session: %w", err)
	}
	accountID, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("decode token session: %w", err)
	}
	return accountID, nil
}

// Delete removes tokenID and announces the revocation.
func (s *TokenStore) Delete(ctx context.Context, tokenID string) error {
	key := config.CacheKey.TokenSessionKey(tokenID)
	v, err := s.rdb.GetDel(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete token session: %w", err)
	}
	var untrackErr error
	if accountID, convErr := strconv.Atoi(v); convErr == nil {
		untrackErr = s.rdb.SRem(ctx, config.CacheKey.AccountTokensKey(accountID), tokenID).Err()
	}
	if err := s.publish(ctx, tokenID); err != nil {
		return err
	}
	if untrackErr != nil {
		return fmt.Errorf("untrack token session: %w", untrackErr)
	}
	return nil
}

// DeleteAccount removes every live token of accountID and returns how many
// were revoked.
func (s *TokenStore) DeleteAccount(ctx context.Context, accountID int) (int, error) {
	setKey := config.CacheKey.AccountTokensKey(accountID)
	tokenIDs, err := s.rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list account tokens: %w", err)
	}
	for _, id := range tokenIDs {
		if err := s.rdb.Del(ctx, config.CacheKey.TokenSessionKey(id)).Err(); err != nil {
			return 0, fmt.Errorf("delete token session: %w", err)
		}
		if err := s.publish(ctx, id); err != nil {
			return 0, err
		}
	}
	if err := s.rdb.Del(ctx, setKey).Err(); err != nil {
		return len(tokenIDs), fmt.Errorf("clear account tokens: %w", err)
	}
	return len(tokenIDs), nil
}

// SubscribeRevocations opens a subscription to the revocation channel.
// The caller must Close the returned PubSub.
func (s *TokenStore) SubscribeRevocations(ctx context.Context) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.RevocationChannel())
}

func (s *TokenStore) publish(ctx context.Context, tokenID string) error {
	if err := s.rdb.Publish(ctx, config.CacheKey.RevocationChannel(), tokenID).Err(); err != nil {
		return fmt.Errorf("publish revocation: %w", err)
	}
	return nil
}
