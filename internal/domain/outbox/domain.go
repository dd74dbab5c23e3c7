package outbox

import (
	"context"
	"time"
)

type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSuccess    Status = "SUCCESS"
)

type Kind int

const (
	KindVerificationMail Kind = 1
)

// Message is one pending publish. The trace fields carry the W3C
// context of the request that enqueued it.
type Message struct {
	IdempotencyKey string
	Kind           Kind
	Data           []byte
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Traceparent    string
	Tracestate     string
	Baggage        string
}

type Repository interface {
	// Enqueue is idempotent on key; a duplicate enqueue is a no-op.
	Enqueue(ctx context.Context, key string, kind Kind, data []byte) error

	// PickBatch claims up to batch messages, reclaiming ones stuck
	// IN_PROGRESS longer than inProgressTTL.
	PickBatch(ctx context.Context, batch int, inProgressTTL time.Duration) ([]Message, error)

	MarkSuccess(ctx context.Context, keys []string) error
}

type KindHandler func(ctx context.Context, data []byte) error

type GlobalHandler func(kind Kind) (KindHandler, error)
