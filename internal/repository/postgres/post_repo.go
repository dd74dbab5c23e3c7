package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taehun/board/internal/domain/board"
)

var _ board.PostRepo = (*PostRepo)(nil)

type PostRepo struct{ db *DB }

func NewPostRepo(db *DB) *PostRepo { return &PostRepo{db: db} }

const (
	qPostInsert = `
INSERT INTO posts (writer, title, content)
VALUES ($1, $2, $3)
RETURNING id, views, created_at, updated_at;`

	qPostByID = `
SELECT id, writer, title, content, views, created_at, updated_at
FROM posts
WHERE id = $1;`

	qPostList = `
SELECT id, writer, title, content, views, created_at, updated_at
FROM posts
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2;`

	qPostCount = `SELECT count(*) FROM posts;`

	qPostUpdate = `
UPDATE posts
SET title = $2, content = $3, updated_at = NOW()
WHERE id = $1;`

	qPostDelete = `DELETE FROM posts WHERE id = $1;`

	qPostBumpViews = `UPDATE posts SET views = views + 1 WHERE id = $1;`

	qPostCountByWriter = `SELECT count(*) FROM posts WHERE writer = $1;`

	qPostViewsByWriter = `SELECT COALESCE(sum(views), 0) FROM posts WHERE writer = $1;`

	qTagsReplace = `DELETE FROM post_tags WHERE post_id = $1;`
	qTagInsert   = `INSERT INTO post_tags (post_id, tag) VALUES ($1, $2);`
	qTagsByPost  = `SELECT tag FROM post_tags WHERE post_id = $1 ORDER BY tag;`
)

// Create inserts the post and its tags. Run it under the transactor so
// a failed tag write does not leave a tagless post behind.
func (r *PostRepo) Create(ctx context.Context, p *board.Post) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	if err := eq.QueryRow(ctx, qPostInsert, p.Writer, p.Title, p.Content).
		Scan(&p.ID, &p.Views, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("post insert: %w", err)
	}
	for _, t := range p.Tags {
		if _, err := eq.Exec(ctx, qTagInsert, p.ID, t); err != nil {
			return fmt.Errorf("tag insert: %w", err)
		}
	}
	return nil
}

func (r *PostRepo) GetByID(ctx context.Context, id int64) (*board.Post, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p board.Post
	err := r.db.Pool.QueryRow(ctx, qPostByID, id).
		Scan(&p.ID, &p.Writer, &p.Title, &p.Content, &p.Views, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("post select: %w", err)
	}
	if p.Tags, err = r.tags(ctx, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepo) List(ctx context.Context, page board.Page) ([]board.Post, int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var total int64
	if err := r.db.Pool.QueryRow(ctx, qPostCount).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("post count: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, qPostList, page.Size, page.Number*page.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("post list: %w", err)
	}
	defer rows.Close()

	var out []board.Post
	for rows.Next() {
		var p board.Post
		if err := rows.Scan(&p.ID, &p.Writer, &p.Title, &p.Content, &p.Views, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("post scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range out {
		if out[i].Tags, err = r.tags(ctx, out[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

// Update rewrites title, content and the full tag set; run it under
// the transactor.
func (r *PostRepo) Update(ctx context.Context, p *board.Post) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	tag, err := eq.Exec(ctx, qPostUpdate, p.ID, p.Title, p.Content)
	if err != nil {
		return fmt.Errorf("post update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := eq.Exec(ctx, qTagsReplace, p.ID); err != nil {
		return fmt.Errorf("tags clear: %w", err)
	}
	for _, t := range p.Tags {
		if _, err := eq.Exec(ctx, qTagInsert, p.ID, t); err != nil {
			return fmt.Errorf("tag insert: %w", err)
		}
	}
	return nil
}

func (r *PostRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qPostDelete, id)
	if err != nil {
		return fmt.Errorf("post delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostRepo) IncrementViews(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qPostBumpViews, id); err != nil {
		return fmt.Errorf("post bump views: %w", err)
	}
	return nil
}

func (r *PostRepo) CountByWriter(ctx context.Context, writer string) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := r.db.Pool.QueryRow(ctx, qPostCountByWriter, writer).Scan(&n); err != nil {
		return 0, fmt.Errorf("post count by writer: %w", err)
	}
	return n, nil
}

func (r *PostRepo) SumViewsByWriter(ctx context.Context, writer string) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := r.db.Pool.QueryRow(ctx, qPostViewsByWriter, writer).Scan(&n); err != nil {
		return 0, fmt.Errorf("post views by writer: %w", err)
	}
	return n, nil
}

func (r *PostRepo) tags(ctx context.Context, postID int64) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, qTagsByPost, postID)
	if err != nil {
		return nil, fmt.Errorf("tags select: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("tag scan: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
