package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultKafkaPolicy covers transient broker trouble during outbox
// publishes. Six attempts spread over roughly half a minute.
func DefaultKafkaPolicy(log *zap.Logger) Policy {
	if log == nil {
		log = zap.NewNop()
	}
	return Policy{
		Name:     "kafka.publish",
		Attempts: 6,
		Backoff:  ExpoJitter{Base: 200 * time.Millisecond, Max: 30 * time.Second, Jitter: 0.2},
		OnAttempt: func(i int, err error) {
			log.Warn("publish retry", zap.Int("attempt", i+1), zap.Error(err))
		},
		OnExhaust: func(err error) {
			if !errors.Is(err, context.Canceled) {
				log.Error("publish retries exhausted", zap.Error(err))
			}
		},
	}
}
