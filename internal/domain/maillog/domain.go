package maillog

import (
	"context"
	"time"
)

// Entry records an outbound mail after delivery.
type Entry struct {
	ID      int64
	Email   string
	Kind    string
	SentAt  time.Time
	Payload string
}

type Repo interface {
	Create(ctx context.Context, e *Entry) error
}
