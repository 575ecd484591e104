package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the two session keys.
const DefaultRedisPrefix = "skilladmin:session:"

const redisOpTimeout = 2 * time.Second

// RedisStore keeps the session in two redis keys, <prefix>token and
// <prefix>admin. Both are written and deleted in one MULTI block.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore wraps an existing client. An empty prefix uses DefaultRedisPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) tokenKey() string { return r.prefix + KeyToken }
func (r *RedisStore) adminKey() string { return r.prefix + KeyAdmin }

// Set writes token and admin atomically.
func (r *RedisStore) Set(ctx context.Context, s Session) error {
	if err := s.Validate(); err != nil {
		return storeErr("redis", "set", err)
	}
	admin, err := json.Marshal(s.Admin)
	if err != nil {
		return storeErr("redis", "set", fmt.Errorf("marshal admin: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.tokenKey(), s.Token, 0)
		p.Set(ctx, r.adminKey(), admin, 0)
		return nil
	})
	return storeErr("redis", "set", err)
}

// Get reads both keys. A missing token means no session.
func (r *RedisStore) Get(ctx context.Context) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	vals, err := r.client.MGet(ctx, r.tokenKey(), r.adminKey()).Result()
	if err != nil {
		return Session{}, storeErr("redis", "get", err)
	}

	token, _ := vals[0].(string)
	if token == "" {
		return Session{}, ErrNoSession
	}

	s := Session{Token: token}
	if raw, ok := vals[1].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.Admin); err != nil {
			return Session{}, storeErr("redis", "get", errors.Join(ErrCorrupt, err))
		}
	}
	return s, nil
}

// Clear deletes both keys.
func (r *RedisStore) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	return storeErr("redis", "clear", r.client.Del(ctx, r.tokenKey(), r.adminKey()).Err())
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ Store = (*RedisStore)(nil)
