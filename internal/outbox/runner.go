package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/taehun/board/internal/domain/outbox"
	"github.com/taehun/board/internal/obs"
)

// Runner drains the outbox table and hands each message to the handler
// registered for its kind. Messages that fail stay in the table and are
// re-picked after the in-progress TTL passes.
type Runner struct {
	log      *zap.Logger
	repo     outbox.Repository
	dispatch outbox.GlobalHandler

	workers       int
	batchSize     int
	waitTime      time.Duration
	inProgressTTL time.Duration

	wg sync.WaitGroup

	mPicked    prometheus.Counter
	mOk        prometheus.Counter
	mErr       prometheus.Counter
	mTickDur   prometheus.Histogram
	mBatchSize prometheus.Gauge
}

func NewOutboxRunner(
	log *zap.Logger,
	repo outbox.Repository,
	dispatch outbox.GlobalHandler,
	workers int,
	batchSize int,
	waitTime time.Duration,
	inProgressTTL time.Duration,
) *Runner {
	return &Runner{
		log: log, repo: repo, dispatch: dispatch,
		workers: workers, batchSize: batchSize, waitTime: waitTime, inProgressTTL: inProgressTTL,
		mPicked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "outbox_picked_total", Help: "Messages picked into processing.",
		}),
		mOk: promauto.NewCounter(prometheus.CounterOpts{
			Name: "outbox_processed_ok_total", Help: "Messages processed successfully.",
		}),
		mErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "outbox_processed_err_total", Help: "Handler errors.",
		}),
		mTickDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "outbox_tick_duration_seconds", Help: "Tick duration.",
			Buckets: prometheus.DefBuckets,
		}),
		mBatchSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_last_batch_size", Help: "Size of last picked batch.",
		}),
	}
}

func (r *Runner) Start(ctx context.Context) {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(ctx)
	}
}

// Wait blocks until every worker has observed context cancellation.
func (r *Runner) Wait() { r.wg.Wait() }

func (r *Runner) worker(ctx context.Context) {
	defer r.wg.Done()
	r.log.Info("outbox worker started", zap.Duration("wait", r.waitTime))

	ticker := time.NewTicker(r.waitTime)
	defer ticker.Stop()

	tr := otel.Tracer("outbox.runner")
	prop := otel.GetTextMapPropagator()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox worker stop")
			return
		case <-ticker.C:
			r.tick(ctx, tr, prop)
		}
	}
}

func (r *Runner) tick(ctx context.Context, tr trace.Tracer, prop propagation.TextMapPropagator) {
	t0 := time.Now()
	defer func() { r.mTickDur.Observe(time.Since(t0).Seconds()) }()

	ctx, span := tr.Start(ctx, "outbox.tick")
	defer span.End()
	span.SetAttributes(
		attribute.Int("batch.limit", r.batchSize),
		attribute.String("in_progress_ttl", r.inProgressTTL.String()),
	)

	messages, err := r.repo.PickBatch(ctx, r.batchSize, r.inProgressTTL)
	if err != nil {
		span.RecordError(err)
		r.mErr.Inc()
		obs.WithTrace(ctx, r.log).Error("outbox pick error", zap.Error(err))
		return
	}
	r.mPicked.Add(float64(len(messages)))
	r.mBatchSize.Set(float64(len(messages)))

	okKeys := make([]string, 0, len(messages))
	for _, m := range messages {
		if r.process(m, tr, prop) {
			okKeys = append(okKeys, m.IdempotencyKey)
			r.mOk.Inc()
		}
	}

	if err := r.repo.MarkSuccess(ctx, okKeys); err != nil {
		span.RecordError(err)
		r.mErr.Inc()
		obs.WithTrace(ctx, r.log).Error("mark success error", zap.Error(err))
	}
}

// process dispatches one message under the trace context it was enqueued
// with, so the producing request and the kafka publish share a trace.
func (r *Runner) process(m outbox.Message, tr trace.Tracer, prop propagation.TextMapPropagator) bool {
	parent := prop.Extract(context.Background(), propagation.MapCarrier{
		"traceparent": m.Traceparent,
		"tracestate":  m.Tracestate,
		"baggage":     m.Baggage,
	})

	ctx, span := tr.Start(parent, "outbox.dispatch",
		trace.WithAttributes(
			attribute.String("outbox.key", m.IdempotencyKey),
			attribute.Int("outbox.kind", int(m.Kind)),
		),
	)
	defer span.End()

	handler, err := r.dispatch(m.Kind)
	if err != nil {
		span.RecordError(err)
		r.mErr.Inc()
		obs.WithTrace(ctx, r.log).Error("no handler for kind",
			zap.Int("kind", int(m.Kind)), zap.Error(err))
		return false
	}

	if err := handler(ctx, m.Data); err != nil {
		span.RecordError(err)
		r.mErr.Inc()
		obs.WithTrace(ctx, r.log).Error("handler error",
			zap.Int("kind", int(m.Kind)), zap.Error(err))
		return false
	}
	return true
}
