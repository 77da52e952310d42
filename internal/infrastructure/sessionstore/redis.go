package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"filesend-bot/internal/domain/conversation"
)

const keyPrefix = "filesend:session:"

// RedisStore keeps sessions in redis as JSON and guards them with a redsync
// mutex so several bot replicas can share them.
type RedisStore struct {
	client  redis.UniversalClient
	rs      *redsync.Redsync
	ttl     time.Duration
	lockTTL time.Duration
	log     zerolog.Logger
}

// NewRedisStore connects to redisURL, a comma separated list of redis URLs
// or host:port pairs.
func NewRedisStore(ctx context.Context, redisURL string, ttl, lockTTL time.Duration, log zerolog.Logger) (*RedisStore, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("Redis URL must be provided")
	}

	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	logger := log.With().Str("component", "session-store").Str("backend", "redis").Logger()
	if len(opts.Addrs) > 1 && opts.DB != 0 {
		logger.Warn().Msg("Ignoring non-zero DB when using Redis Cluster configuration")
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info().Msg("Successfully connected to Redis session store")
	return NewRedisStoreFromClient(client, ttl, lockTTL, logger), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient, ttl, lockTTL time.Duration, log zerolog.Logger) *RedisStore {
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}
	return &RedisStore{
		client:  client,
		rs:      redsync.New(goredis.NewPool(client)),
		ttl:     ttl,
		lockTTL: lockTTL,
		log:     log,
	}
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
		if opts.DialTimeout == 0 {
			opts.DialTimeout = parsed.DialTimeout
		}
		if opts.ReadTimeout == 0 {
			opts.ReadTimeout = parsed.ReadTimeout
		}
		if opts.WriteTimeout == 0 {
			opts.WriteTimeout = parsed.WriteTimeout
		}
		if opts.PoolSize == 0 {
			opts.PoolSize = parsed.PoolSize
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no Redis addresses provided")
	}
	return opts, nil
}

func sessionKey(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (*conversation.Session, error) {
	val, err := r.client.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return conversation.NewSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess conversation.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (r *RedisStore) Save(ctx context.Context, userID int64, sess *conversation.Session) error {
	sess.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	return r.client.Unlink(ctx, sessionKey(userID)).Err()
}

// WithLock holds a redsync mutex named after the user for the duration of fn.
func (r *RedisStore) WithLock(ctx context.Context, userID int64, fn func(ctx context.Context) error) error {
	mutex := r.rs.NewMutex(sessionKey(userID)+":lock", redsync.WithExpiry(r.lockTTL))
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("failed to lock session %d: %w", userID, err)
	}

	defer func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			r.log.Error().Err(err).Int64("telegram_id", userID).Msg("Failed to unlock session mutex")
		}
	}()

	return fn(ctx)
}

// HealthCheck pings redis.
func (r *RedisStore) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
