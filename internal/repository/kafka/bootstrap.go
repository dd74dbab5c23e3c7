package kafka

import (
	"context"

	"go.uber.org/zap"
)

// BootstrapConsumer makes sure the topic exists before the reader joins
// the group. Convenient for local stacks where kafka-init may not have
// run; the error is ignored on purpose, Consume retries on its own.
func BootstrapConsumer(ctx context.Context, cfg *ConsumerConfig, logger *zap.Logger) *Consumer {
	_ = EnsureTopic(ctx, cfg.Brokers, TopicSpec{Name: cfg.Topic}, logger)
	return NewConsumer(cfg)
}
