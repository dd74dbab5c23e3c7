package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/taehun/board/internal/config/board-api"
	"github.com/taehun/board/internal/obs"
	"github.com/taehun/board/internal/obs/retry"
	outboxpkg "github.com/taehun/board/internal/outbox"
	kafkax "github.com/taehun/board/internal/repository/kafka"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("../config/board-api.yaml")
	if err != nil {
		panic(err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting board-api", zap.String("env", cfg.App.Env), zap.String("ver", cfg.App.Version))

	otelShutdown, err := initOTel(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelShutdown(rootCtx) }()

	db, err := initDB(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	store, err := initRedis(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("redis connect", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	producer := kafkax.NewProducer(cfg.Out.Brokers, cfg.Out.Topic).WithLogger(logger)
	defer func() { _ = producer.Close() }()

	deps, err := buildDeps(rootCtx, cfg, logger, db, store, producer)
	if err != nil {
		logger.Fatal("wiring", zap.Error(err))
	}

	runner := outboxpkg.NewOutboxRunner(
		logger.With(zap.String("component", "outbox.runner")),
		deps.outboxRepo,
		outboxpkg.MakeGlobalOutboxHandler(deps.mailEvents, retry.DefaultKafkaPolicy(logger)),
		cfg.Outbox.Workers,
		cfg.Outbox.BatchSize,
		cfg.Outbox.WaitTime,
		cfg.Outbox.InProgressTTL,
	)
	runner.Start(rootCtx)

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
		if err := db.Pool.Ping(ctx); err != nil {
			return err
		}
		return store.Ping(ctx)
	}, logger)

	httpSrv := buildHTTPServer(cfg, logger, deps)

	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- serveHTTP(httpSrv, cfg, logger) }()

	var runErr error
	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal", zap.String("reason", "context canceled"))
	case runErr = <-httpErrCh:
		if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
			logger.Error("http serve", zap.Error(runErr))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	_ = httpSrv.Shutdown(shCtx)
	_ = ms.Shutdown(shCtx)
	stop()
	runner.Wait()

	time.Sleep(100 * time.Millisecond)
	logger.Info("bye")
}
