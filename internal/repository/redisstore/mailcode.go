package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taehun/board/internal/domain/auth"
)

const mailCodeKeyPrefix = "mailCode:"

// PutCode stores a verification code for email unless one is already
// live; the NX write doubles as the resend throttle.
func (s *Store) PutCode(ctx context.Context, email, code string, ttl time.Duration) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.rdb.SetNX(ctx, mailCodeKeyPrefix+email, code, ttl).Result()
	if err != nil {
		return false, unavailable("set mail code", err)
	}
	return ok, nil
}

func (s *Store) GetCode(ctx context.Context, email string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	v, err := s.rdb.Get(ctx, mailCodeKeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return "", auth.ErrNotFound
	}
	if err != nil {
		return "", unavailable("get mail code", err)
	}
	return v, nil
}
