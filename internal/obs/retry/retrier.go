package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Backoff interface {
	Next(attempt int) time.Duration
}

// ExpoJitter doubles the base delay per attempt, capped at Max, with a
// symmetric jitter fraction to spread out competing retriers.
type ExpoJitter struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

func (b ExpoJitter) Next(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(b.Base) * math.Pow(2, float64(attempt))
	if b.Max > 0 && time.Duration(d) > b.Max {
		d = float64(b.Max)
	}
	if b.Jitter > 0 {
		d *= 1 + (rand.Float64()*2-1)*b.Jitter
	}
	return time.Duration(d)
}

// Policy drives Do. Zero values fall back to a single attempt that
// retries any non-nil error.
type Policy struct {
	Name      string
	Attempts  int
	Backoff   Backoff
	Retryable func(error) bool
	OnAttempt func(attempt int, err error)
	OnExhaust func(lastErr error)
}

func (p Policy) name() string {
	if p.Name == "" {
		return "default"
	}
	return p.Name
}

func (p Policy) attempts() int {
	if p.Attempts <= 0 {
		return 1
	}
	return p.Attempts
}

func (p Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return err != nil
	}
	return p.Retryable(err)
}

var (
	retryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retry_attempts_total",
		Help: "Total retry attempts (including final).",
	}, []string{"name"})
	retryExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retry_exhausted_total",
		Help: "Operations that exhausted all retries.",
	}, []string{"name"})
	retryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retry_duration_seconds",
		Help:    "Total time spent inside retry.Do (success or fail).",
		Buckets: prometheus.DefBuckets,
	}, []string{"name"})
)

// Do runs fn under the policy. It returns nil on the first success, the
// last error once attempts are exhausted or the error is not retryable,
// and ctx.Err() if the context dies while backing off.
func Do(ctx context.Context, fn func() error, p Policy) error {
	name := p.name()
	start := time.Now()
	defer func() {
		retryLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	span := trace.SpanFromContext(ctx)
	attempts := p.attempts()

	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		retryAttempts.WithLabelValues(name).Inc()
		if err == nil {
			return nil
		}

		if p.OnAttempt != nil {
			p.OnAttempt(i, err)
		}
		if span.IsRecording() {
			span.AddEvent("retry.attempt", trace.WithAttributes(attribute.Int("attempt", i)))
		}

		if !p.retryable(err) || i == attempts-1 {
			retryExhausted.WithLabelValues(name).Inc()
			if p.OnExhaust != nil {
				p.OnExhaust(err)
			}
			return err
		}

		t := time.NewTimer(p.Backoff.Next(i))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}
