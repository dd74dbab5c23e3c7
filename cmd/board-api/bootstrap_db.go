package main

import (
	"context"

	"go.uber.org/zap"

	config "github.com/taehun/board/internal/config/board-api"
	pg "github.com/taehun/board/internal/repository/postgres"
)

type dbHandle = *pg.DB

func initDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (dbHandle, error) {
	return pg.NewDB(ctx, pg.Config{
		DSN:               cfg.DB.DSN,
		MaxConns:          cfg.DB.MaxConns,
		MinConns:          cfg.DB.MinConns,
		MaxConnLifetime:   cfg.DB.MaxConnLifetime,
		MaxConnIdleTime:   cfg.DB.MaxConnIdleTime,
		HealthCheckPeriod: cfg.DB.HealthCheckPeriod,
		QueryTimeout:      cfg.DB.QueryTimeout,
	})
}
