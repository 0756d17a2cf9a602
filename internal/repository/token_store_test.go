package repository

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRedis answers commands in-process. Commands named in fail return
// that error; everything else succeeds with the canned values.
type scriptedRedis struct {
	fail      map[string]error
	members   []string
	published []string
	seen      []string
}

func (h *scriptedRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("dial disabled")
	}
}

func (h *scriptedRedis) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		name := cmd.Name()
		h.seen = append(h.seen, name)
		if err, ok := h.fail[name]; ok {
			cmd.SetErr(err)
			return err
		}
		switch c := cmd.(type) {
		case *redis.StringCmd:
			c.SetVal("7")
		case *redis.StringSliceCmd:
			c.SetVal(h.members)
		case *redis.IntCmd:
			if name == "publish" {
				h.published = append(h.published, cmd.Args()[2].(string))
			}
			c.SetVal(1)
		}
		return nil
	}
}

func (h *scriptedRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func newScriptedStore(h *scriptedRedis) *TokenStore {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", MaxRetries: -1})
	rdb.AddHook(h)
	return NewTokenStore(rdb)
}

func TestTokenStore_DeletePublishes(t *testing.T) {
	h := &scriptedRedis{}
	store := newScriptedStore(h)

	require.NoError(t, store.Delete(context.Background(), "tok-1"))
	assert.Equal(t, []string{"getdel", "srem", "publish"}, h.seen)
	assert.Equal(t, []string{"tok-1"}, h.published)
}

func TestTokenStore_DeleteReportsUntrackFailure(t *testing.T) {
	boom := errors.New("boom")
	h := &scriptedRedis{fail: map[string]error{"srem": boom}}
	store := newScriptedStore(h)

	err := store.Delete(context.Background(), "tok-1")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "untrack token session")
	assert.Equal(t, []string{"tok-1"}, h.published)
}

func TestTokenStore_DeleteAccountReportsClearFailure(t *testing.T) {
	boom := errors.New("boom")
	h := &scriptedRedis{
		members: []string{"tok-1", "tok-2"},
		fail:    map[string]error{},
	}
	store := newScriptedStore(h)

	n, err := store.DeleteAccount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"tok-1", "tok-2"}, h.published)

	h = &scriptedRedis{members: []string{}, fail: map[string]error{"del": boom}}
	store = newScriptedStore(h)
	_, err = store.DeleteAccount(context.Background(), 7)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "clear account tokens")
}
