package main

import (
	"context"

	"go.uber.org/zap"

	config "github.com/taehun/board/internal/config/board-api"
	"github.com/taehun/board/internal/repository/redisstore"
)

func initRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redisstore.Store, error) {
	store, err := redisstore.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return store, nil
}
