package postgres

import (
	"context"
	"fmt"

	"github.com/taehun/board/internal/domain/maillog"
)

var _ maillog.Repo = (*MailLogRepo)(nil)

type MailLogRepo struct{ db *DB }

func NewMailLogRepo(db *DB) *MailLogRepo { return &MailLogRepo{db: db} }

const qMailLogInsert = `
INSERT INTO mail_log (email, kind, sent_at, payload)
VALUES ($1, $2, $3, $4)
RETURNING id;`

func (r *MailLogRepo) Create(ctx context.Context, e *maillog.Entry) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qMailLogInsert, e.Email, e.Kind, e.SentAt, e.Payload).
		Scan(&e.ID); err != nil {
		return fmt.Errorf("insert mail log: %w", err)
	}
	return nil
}
