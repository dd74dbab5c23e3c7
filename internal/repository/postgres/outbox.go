package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/taehun/board/internal/domain/outbox"
)

type OutboxRepo struct{ db *DB }

func NewOutboxRepo(db *DB) *OutboxRepo { return &OutboxRepo{db: db} }

const (
	qOutboxEnqueue = `
INSERT INTO outbox (idempotency_key, kind, data, status, traceparent, tracestate, baggage)
VALUES ($1, $2, $3, 'CREATED', $4, $5, $6)
ON CONFLICT (idempotency_key) DO NOTHING;`

	qOutboxPick = `
WITH cand AS (
   SELECT idempotency_key
   FROM outbox
   WHERE status = 'CREATED'
      OR (status = 'IN_PROGRESS' AND updated_at < now() - $2::interval)
   ORDER BY created_at
   LIMIT $1
), upd AS (
   UPDATE outbox o
   SET status = 'IN_PROGRESS', updated_at = now()
   FROM cand
   WHERE o.idempotency_key = cand.idempotency_key
   RETURNING o.idempotency_key, o.kind, o.data, o.status,
             o.traceparent, o.tracestate, o.baggage,
             o.created_at, o.updated_at
)
SELECT idempotency_key, kind, data, status, traceparent, tracestate, baggage, created_at, updated_at
FROM upd;`

	qOutboxMarkSuccess = `
UPDATE outbox
SET status = 'SUCCESS', updated_at = now()
WHERE idempotency_key = ANY($1);`
)

// Enqueue writes through the transactor's ambient transaction when one
// is present, so the outbox row commits atomically with the business
// write that caused it. The caller's trace context is stored on the row
// and restored by the runner at dispatch time.
func (r *OutboxRepo) Enqueue(ctx context.Context, key string, kind outbox.Kind, data []byte) error {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	_, err := eq.Exec(ctx, qOutboxEnqueue, key, kind, data,
		carrier.Get("traceparent"), carrier.Get("tracestate"), carrier.Get("baggage"))
	if err != nil {
		return fmt.Errorf("outbox enqueue: %w", err)
	}
	return nil
}

func (r *OutboxRepo) PickBatch(ctx context.Context, batch int, inProgressTTL time.Duration) ([]outbox.Message, error) {
	if batch <= 0 {
		return nil, errors.New("batch must be > 0")
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	ttl := fmt.Sprintf("%f seconds", inProgressTTL.Seconds())
	rows, err := r.db.Pool.Query(ctx, qOutboxPick, batch, ttl)
	if err != nil {
		return nil, fmt.Errorf("outbox pick: %w", err)
	}
	defer rows.Close()

	var out []outbox.Message
	for rows.Next() {
		var m outbox.Message
		var status string
		err := rows.Scan(&m.IdempotencyKey, &m.Kind, &m.Data, &status,
			&m.Traceparent, &m.Tracestate, &m.Baggage,
			&m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("outbox scan: %w", err)
		}
		m.Status = outbox.Status(status)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *OutboxRepo) MarkSuccess(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.Pool.Exec(ctx, qOutboxMarkSuccess, keys); err != nil {
		return fmt.Errorf("outbox mark success: %w", err)
	}
	return nil
}
