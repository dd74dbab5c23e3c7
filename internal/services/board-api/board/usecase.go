package board

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/taehun/board/internal/domain/board"
	"github.com/taehun/board/internal/repository/postgres"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotOwner        = errors.New("only the writer may modify this")
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type PostInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type CommentInput struct {
	Content string `json:"content"`
}

// PostPage is one page of the board listing.
type PostPage struct {
	Posts      []board.Post `json:"posts"`
	Page       int          `json:"page"`
	Size       int          `json:"size"`
	TotalPosts int64        `json:"totalPosts"`
	TotalPages int64        `json:"totalPages"`
}

type Usecase struct {
	posts    board.PostRepo
	comments board.CommentRepo
	tx       postgres.Transactor
	log      *zap.Logger
}

func NewUsecase(posts board.PostRepo, comments board.CommentRepo, tx postgres.Transactor, log *zap.Logger) *Usecase {
	return &Usecase{
		posts:    posts,
		comments: comments,
		tx:       tx,
		log:      log.With(zap.String("component", "board.usecase")),
	}
}

func (u *Usecase) CreatePost(ctx context.Context, writer string, in PostInput) (*board.Post, error) {
	p := &board.Post{
		Writer:  writer,
		Title:   in.Title,
		Content: in.Content,
		Tags:    dedupe(in.Tags),
	}
	// Post and tag rows commit together.
	if err := u.tx.WithTx(ctx, func(ctx context.Context) error {
		return u.posts.Create(ctx, p)
	}); err != nil {
		return nil, err
	}
	u.log.Info("post created", zap.Int64("id", p.ID), zap.String("writer", writer))
	return p, nil
}

// GetPost fetches a post and bumps its view counter.
func (u *Usecase) GetPost(ctx context.Context, id int64) (*board.Post, error) {
	p, err := u.posts.GetByID(ctx, id)
	if errors.Is(err, postgres.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := u.posts.IncrementViews(ctx, id); err != nil {
		// A lost view bump is not worth failing the read.
		u.log.Warn("view bump failed", zap.Int64("id", id), zap.Error(err))
	} else {
		p.Views++
	}
	return p, nil
}

func (u *Usecase) ListPosts(ctx context.Context, page board.Page) (*PostPage, error) {
	if page.Number < 0 {
		page.Number = 0
	}
	if page.Size <= 0 {
		page.Size = defaultPageSize
	}
	if page.Size > maxPageSize {
		page.Size = maxPageSize
	}

	posts, total, err := u.posts.List(ctx, page)
	if err != nil {
		return nil, err
	}
	pages := total / int64(page.Size)
	if total%int64(page.Size) != 0 {
		pages++
	}
	return &PostPage{
		Posts:      posts,
		Page:       page.Number,
		Size:       page.Size,
		TotalPosts: total,
		TotalPages: pages,
	}, nil
}

func (u *Usecase) UpdatePost(ctx context.Context, writer string, id int64, in PostInput) (*board.Post, error) {
	p, err := u.posts.GetByID(ctx, id)
	if errors.Is(err, postgres.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Writer != writer {
		return nil, ErrNotOwner
	}

	p.Title = in.Title
	p.Content = in.Content
	p.Tags = dedupe(in.Tags)
	if err := u.tx.WithTx(ctx, func(ctx context.Context) error {
		return u.posts.Update(ctx, p)
	}); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

func (u *Usecase) DeletePost(ctx context.Context, writer string, id int64) error {
	p, err := u.posts.GetByID(ctx, id)
	if errors.Is(err, postgres.ErrNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return err
	}
	if p.Writer != writer {
		return ErrNotOwner
	}
	return u.posts.Delete(ctx, id)
}

func (u *Usecase) AddComment(ctx context.Context, writer string, postID int64, in CommentInput) (*board.Comment, error) {
	if _, err := u.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	c := &board.Comment{PostID: postID, Writer: writer, Content: in.Content}
	if err := u.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *Usecase) ListComments(ctx context.Context, postID int64) ([]board.Comment, error) {
	if _, err := u.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return u.comments.ListByPost(ctx, postID)
}

func (u *Usecase) DeleteComment(ctx context.Context, writer string, id int64) error {
	c, err := u.comments.GetByID(ctx, id)
	if errors.Is(err, postgres.ErrNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return err
	}
	if c.Writer != writer {
		return ErrNotOwner
	}
	return u.comments.Delete(ctx, id)
}

func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
