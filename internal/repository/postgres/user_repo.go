package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taehun/board/internal/domain/user"
)

var _ user.Repo = (*UserRepo)(nil)

type UserRepo struct{ db *DB }

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const (
	qUserInsert = `
INSERT INTO users (username, email, password_hash, profile_image_url)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at;`

	qUserByUsername = `
SELECT id, username, email, password_hash, COALESCE(profile_image_url, ''), created_at, updated_at
FROM users
WHERE username = $1;`

	qUserByEmail = `
SELECT id, username, email, password_hash, COALESCE(profile_image_url, ''), created_at, updated_at
FROM users
WHERE email = $1;`

	qUserList = `
SELECT id, username, email, password_hash, COALESCE(profile_image_url, ''), created_at, updated_at
FROM users
ORDER BY id;`

	qUserUpdate = `
UPDATE users
SET username          = $2,
    email             = $3,
    password_hash     = $4,
    profile_image_url = NULLIF($5, ''),
    updated_at        = NOW()
WHERE id = $1
RETURNING updated_at;`

	qUserDelete = `
DELETE FROM users WHERE username = $1;`
)

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := r.db.Pool.QueryRow(ctx, qUserInsert, u.Username, u.Email, u.Password, nullIfEmpty(u.ProfileImageURL)).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getBy(ctx, qUserByUsername, username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getBy(ctx, qUserByEmail, email)
}

func (r *UserRepo) getBy(ctx context.Context, query, arg string) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	err := r.db.Pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.ProfileImageURL, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user select: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qUserList)
	if err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.ProfileImageURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("user scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) Update(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := r.db.Pool.QueryRow(ctx, qUserUpdate, u.ID, u.Username, u.Email, u.Password, u.ProfileImageURL).
		Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("user update: %w", err)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, username string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qUserDelete, username)
	if err != nil {
		return fmt.Errorf("user delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
