package worker

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RevocationSource opens the revocation channel subscription.
type RevocationSource interface {
	SubscribeRevocations(ctx context.Context) *redis.PubSub
}

// TokenRevoker drops the session holding a token from live workspaces.
type TokenRevoker interface {
	Revoke(tokenID string) int
}

// RevocationWorker forwards revoked token IDs published on Redis to the
// workspaces of this process, so sign-outs and account revocations made
// elsewhere reach every dashboard holding the token.
type RevocationWorker struct {
	source   RevocationSource
	registry TokenRevoker
	log      zerolog.Logger
}

// NewRevocationWorker creates a new RevocationWorker.
func NewRevocationWorker(source RevocationSource, registry TokenRevoker, log zerolog.Logger) *RevocationWorker {
	return &RevocationWorker{
		source:   source,
		registry: registry,
		log:      log.With().Str("component", "revocation_worker").Logger(),
	}
}

// Start begins the subscription loop. Call in a goroutine.
func (w *RevocationWorker) Start(ctx context.Context) {
	pubsub := w.source.SubscribeRevocations(ctx)
	defer pubsub.Close()

	w.log.Info().Msg("Worker started")
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				w.log.Warn().Msg("Revocation channel closed")
				return
			}
			w.handle(msg)
		}
	}
}

func (w *RevocationWorker) handle(msg *redis.Message) int {
	if msg == nil || msg.Payload == "" {
		return 0
	}
	n := w.registry.Revoke(msg.Payload)
	if n > 0 {
		w.log.Info().Str("token_id", msg.Payload).Int("workspaces", n).Msg("Session revoked")
	}
	return n
}
