package sessionstore

import (
	"context"

	"github.com/rs/zerolog"

	"filesend-bot/internal/config"
	"filesend-bot/internal/domain/conversation"
)

// New builds the store selected by SESSION_BACKEND. The returned close
// function releases its connections.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (conversation.SessionStore, func() error, error) {
	if cfg.SessionBackend == config.SessionBackendRedis {
		store, err := NewRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL, cfg.SessionLockTTL, log)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return NewMemoryStore(cfg.SessionTTL, log), func() error { return nil }, nil
}
