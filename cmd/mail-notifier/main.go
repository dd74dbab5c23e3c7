package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/taehun/board/internal/config/mail-notifier"
	"github.com/taehun/board/internal/obs"
	"github.com/taehun/board/internal/repository/kafka"
	pg "github.com/taehun/board/internal/repository/postgres"
	notifier "github.com/taehun/board/internal/services/mail-notifier"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := config.Load("../config/mail-notifier.yaml")
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(obs.LogConfig{Level: cfg.LogLevel, App: "board/mail-notifier"})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	l.Info("starting mail-notifier",
		zap.Any("kafka_in", cfg.In),
		zap.String("metrics_addr", cfg.Server.MetricsAddr),
		zap.String("smtp_addr", cfg.SMTP.Addr),
	)

	db, err := pg.NewDB(rootCtx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	l.Info("db connected")

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	cons := kafka.BootstrapConsumer(rootCtx, cfg.In.AsConsumerConfig(), l).WithLogger(l)
	defer func() { _ = cons.Close() }()
	l.Info("kafka consumer initialized",
		zap.Strings("brokers", cfg.In.Brokers),
		zap.String("group_id", cfg.In.GroupID),
		zap.String("topic", cfg.In.Topic),
	)

	mailer := notifier.New(cfg.SMTP).WithLogger(l)
	runner := notifier.NewRunner(l, cons, mailer, pg.NewMailLogRepo(db))

	errCh := make(chan error, 1)
	go func() {
		l.Info("runner starting")
		errCh <- runner.Run(rootCtx)
	}()

	var runErr error
	select {
	case <-rootCtx.Done():
		l.Info("shutdown signal")
	case runErr = <-errCh:
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			l.Error("runner error", zap.Error(runErr))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
