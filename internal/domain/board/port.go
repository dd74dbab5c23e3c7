package board

import "context"

type PostRepo interface {
	Create(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	List(ctx context.Context, page Page) ([]Post, int64, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
	CountByWriter(ctx context.Context, writer string) (int64, error)
	SumViewsByWriter(ctx context.Context, writer string) (int64, error)
}

type CommentRepo interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]Comment, error)
	Delete(ctx context.Context, id int64) error
}
