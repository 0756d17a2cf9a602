package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TokenSessionKey returns the cache key holding the account bound to an identity token.
func (r *CacheKeyStruct) TokenSessionKey(tokenID string) string {
	return fmt.Sprintf("auth:token:%s", tokenID)
}

// AccountTokensKey returns the cache key of the set of live token IDs for an account.
func (r *CacheKeyStruct) AccountTokensKey(accountID int) string {
	return fmt.Sprintf("auth:account:%d:tokens", accountID)
}

// RevocationChannel returns the Redis PubSub channel that carries revoked token IDs.
func (r *CacheKeyStruct) RevocationChannel() string {
	return "auth:revocations"
}

var CacheKey = NewCacheKeyStruct()
