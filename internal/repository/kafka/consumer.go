package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Handler processes one fetched message. The context carries the trace
// the producer published the message under.
type Handler func(ctx context.Context, key, value []byte) error

type ConsumerConfig struct {
	Brokers       []string
	GroupID       string
	Topic         string
	FromBeginning bool
	Logger        *zap.Logger
}

type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
	cfg    *ConsumerConfig
}

const (
	fetchBackoffMin = 200 * time.Millisecond
	fetchBackoffMax = 5 * time.Second
)

func NewConsumer(cfg *ConsumerConfig) *Consumer {
	if cfg.Logger == nil {
		cfg.Logger = zap.L()
	}

	start := kafka.LastOffset
	if cfg.FromBeginning {
		start = kafka.FirstOffset
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:               cfg.Brokers,
		GroupID:               cfg.GroupID,
		Topic:                 cfg.Topic,
		StartOffset:           start,
		WatchPartitionChanges: true,

		MinBytes:          1e3,
		MaxBytes:          10e6,
		SessionTimeout:    10 * time.Second,
		RebalanceTimeout:  15 * time.Second,
		HeartbeatInterval: 3 * time.Second,
	})

	return &Consumer{reader: r, log: consumerLogger(cfg.Logger, cfg), cfg: cfg}
}

func consumerLogger(l *zap.Logger, cfg *ConsumerConfig) *zap.Logger {
	return l.With(
		zap.String("component", "kafka.consumer"),
		zap.String("topic", cfg.Topic),
		zap.String("group", cfg.GroupID),
	)
}

func (c *Consumer) WithLogger(l *zap.Logger) *Consumer {
	if l == nil {
		return c
	}
	cp := *c
	cp.log = consumerLogger(l, c.cfg)
	return &cp
}

// Consume fetches messages until ctx is canceled. A handler error skips
// the commit so the message is redelivered after a rebalance; fetch
// errors back off exponentially.
func (c *Consumer) Consume(ctx context.Context, h Handler) error {
	c.log.Info("consumer started")

	tr := otel.Tracer("kafka.consumer")
	prop := otel.GetTextMapPropagator()
	backoff := fetchBackoffMin

	for {
		if ctx.Err() != nil {
			c.log.Info("consumer stopped (ctx canceled)")
			return ctx.Err()
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("consumer stopped (ctx canceled)")
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				c.log.Debug("fetch EOF; retry", zap.Duration("backoff", backoff))
			} else {
				c.log.Warn("fetch failed; retry", zap.Error(err), zap.Duration("backoff", backoff))
			}
			time.Sleep(backoff)
			if backoff *= 2; backoff > fetchBackoffMax {
				backoff = fetchBackoffMax
			}
			continue
		}
		backoff = fetchBackoffMin

		msgCtx := prop.Extract(ctx, inboundCarrier(msg.Headers))
		msgCtx, span := tr.Start(msgCtx, "kafka.consume "+c.cfg.Topic,
			trace.WithSpanKind(trace.SpanKindConsumer))

		if err := h(msgCtx, msg.Key, msg.Value); err != nil {
			span.RecordError(err)
			span.End()
			c.log.Error("handler error",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			continue
		}
		span.End()

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				c.log.Info("commit interrupted by context cancel")
				return ctx.Err()
			}
			c.log.Warn("commit failed; will retry later", zap.Error(err))
		}
	}
}

func (c *Consumer) Close() error { return c.reader.Close() }
