package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// RedisConfig holds the connection settings for the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Config selects and configures a backend.
type Config struct {
	Backend    string
	Path       string
	SQLitePath string
	Redis      RedisConfig
}

// DefaultPath returns ~/.skilladmin/session.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".skilladmin", "session.json")
	}
	return filepath.Join(home, ".skilladmin", "session.json")
}

// DefaultSQLitePath returns ~/.skilladmin/session.db.
func DefaultSQLitePath() string {
	return filepath.Join(filepath.Dir(DefaultPath()), "session.db")
}

// Open builds the store named by cfg.Backend. An empty backend means file.
// Stores that hold connections implement io.Closer; callers should close them.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		path := cfg.Path
		if path == "" {
			path = DefaultPath()
		}
		return NewFileStore(path), nil

	case BackendMemory:
		return NewMemoryStore(), nil

	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, storeErr(BackendRedis, "open", fmt.Errorf("redis address is required"))
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, storeErr(BackendRedis, "open", fmt.Errorf("ping %s: %w", cfg.Redis.Addr, err))
		}
		return NewRedisStore(client, cfg.Redis.Prefix), nil

	case BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = DefaultSQLitePath()
		}
		return OpenSQLite(ctx, path)

	default:
		return nil, storeErr(cfg.Backend, "open", ErrUnknownBackend)
	}
}

// Close closes st if it holds resources.
func Close(st Store) error {
	if c, ok := st.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
