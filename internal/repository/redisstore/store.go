package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taehun/board/internal/domain/auth"
)

// Key schema. Values are opaque strings; the store needs nothing beyond
// per-key SET-with-TTL, GET and EXISTS.
const (
	refreshKeyPrefix   = "refreshToken:"
	blacklistKeyPrefix = "blacklist:"
)

type Config struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	OpTimeout   time.Duration `mapstructure:"op_timeout"`
}

// Store implements auth.RevocationStore on a redis instance.
type Store struct {
	rdb       *redis.Client
	opTimeout time.Duration
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	hctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(hctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Store{rdb: rdb, opTimeout: cfg.OpTimeout}, nil
}

// NewWithClient wraps an existing client; used by tests.
func NewWithClient(rdb *redis.Client, opTimeout time.Duration) *Store {
	return &Store{rdb: rdb, opTimeout: opTimeout}
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }

func (s *Store) SetRefresh(ctx context.Context, username, token string, ttl time.Duration) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.rdb.Set(ctx, refreshKeyPrefix+username, token, ttl).Err(); err != nil {
		return unavailable("set refresh", err)
	}
	return nil
}

func (s *Store) GetRefresh(ctx context.Context, username string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	v, err := s.rdb.Get(ctx, refreshKeyPrefix+username).Result()
	if errors.Is(err, redis.Nil) {
		return "", auth.ErrNotFound
	}
	if err != nil {
		return "", unavailable("get refresh", err)
	}
	return v, nil
}

func (s *Store) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.rdb.Set(ctx, blacklistKeyPrefix+token, "true", ttl).Err(); err != nil {
		return unavailable("set blacklist", err)
	}
	return nil
}

func (s *Store) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.rdb.Exists(ctx, blacklistKeyPrefix+token).Result()
	if err != nil {
		return false, unavailable("exists blacklist", err)
	}
	return n > 0, nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// unavailable tags a transport failure so callers can tell an outage
// apart from an absent key.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, auth.ErrStoreUnavailable, err)
}
