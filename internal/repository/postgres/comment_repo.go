package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taehun/board/internal/domain/board"
)

var _ board.CommentRepo = (*CommentRepo)(nil)

type CommentRepo struct{ db *DB }

func NewCommentRepo(db *DB) *CommentRepo { return &CommentRepo{db: db} }

const (
	qCommentInsert = `
INSERT INTO comments (post_id, writer, content)
VALUES ($1, $2, $3)
RETURNING id, created_at;`

	qCommentByID = `
SELECT id, post_id, writer, content, created_at
FROM comments
WHERE id = $1;`

	qCommentsByPost = `
SELECT id, post_id, writer, content, created_at
FROM comments
WHERE post_id = $1
ORDER BY created_at, id;`

	qCommentDelete = `DELETE FROM comments WHERE id = $1;`
)

func (r *CommentRepo) Create(ctx context.Context, c *board.Comment) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qCommentInsert, c.PostID, c.Writer, c.Content).
		Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("comment insert: %w", err)
	}
	return nil
}

func (r *CommentRepo) GetByID(ctx context.Context, id int64) (*board.Comment, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c board.Comment
	err := r.db.Pool.QueryRow(ctx, qCommentByID, id).
		Scan(&c.ID, &c.PostID, &c.Writer, &c.Content, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("comment select: %w", err)
	}
	return &c, nil
}

func (r *CommentRepo) ListByPost(ctx context.Context, postID int64) ([]board.Comment, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qCommentsByPost, postID)
	if err != nil {
		return nil, fmt.Errorf("comment list: %w", err)
	}
	defer rows.Close()

	var out []board.Comment
	for rows.Next() {
		var c board.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Writer, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("comment scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CommentRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qCommentDelete, id)
	if err != nil {
		return fmt.Errorf("comment delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
