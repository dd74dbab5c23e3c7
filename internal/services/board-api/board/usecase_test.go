package board

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taehun/board/internal/domain/board"
	"github.com/taehun/board/internal/repository/postgres"
)

type memPosts struct {
	nextID int64
	posts  map[int64]*board.Post
}

func newMemPosts() *memPosts { return &memPosts{nextID: 1, posts: map[int64]*board.Post{}} }

func (m *memPosts) Create(_ context.Context, p *board.Post) error {
	p.ID = m.nextID
	m.nextID++
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memPosts) GetByID(_ context.Context, id int64) (*board.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPosts) List(_ context.Context, page board.Page) ([]board.Post, int64, error) {
	var out []board.Post
	for _, p := range m.posts {
		out = append(out, *p)
	}
	total := int64(len(out))
	start := page.Number * page.Size
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + page.Size
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (m *memPosts) Update(_ context.Context, p *board.Post) error {
	if _, ok := m.posts[p.ID]; !ok {
		return postgres.ErrNotFound
	}
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memPosts) Delete(_ context.Context, id int64) error {
	if _, ok := m.posts[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memPosts) IncrementViews(_ context.Context, id int64) error {
	if p, ok := m.posts[id]; ok {
		p.Views++
	}
	return nil
}

func (m *memPosts) CountByWriter(_ context.Context, writer string) (int64, error) {
	var n int64
	for _, p := range m.posts {
		if p.Writer == writer {
			n++
		}
	}
	return n, nil
}

func (m *memPosts) SumViewsByWriter(_ context.Context, writer string) (int64, error) {
	var n int64
	for _, p := range m.posts {
		if p.Writer == writer {
			n += p.Views
		}
	}
	return n, nil
}

type memComments struct {
	nextID   int64
	comments map[int64]*board.Comment
}

func newMemComments() *memComments {
	return &memComments{nextID: 1, comments: map[int64]*board.Comment{}}
}

func (m *memComments) Create(_ context.Context, c *board.Comment) error {
	c.ID = m.nextID
	m.nextID++
	cp := *c
	m.comments[c.ID] = &cp
	return nil
}

func (m *memComments) GetByID(_ context.Context, id int64) (*board.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memComments) ListByPost(_ context.Context, postID int64) ([]board.Comment, error) {
	var out []board.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memComments) Delete(_ context.Context, id int64) error {
	delete(m.comments, id)
	return nil
}

// passTx runs the function directly; repo fakes have no transactions.
type passTx struct{}

func (passTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newBoardUC(t *testing.T) (*Usecase, *memPosts, *memComments) {
	t.Helper()
	posts := newMemPosts()
	comments := newMemComments()
	return NewUsecase(posts, comments, passTx{}, zap.NewNop()), posts, comments
}

func TestCreatePostDedupesTags(t *testing.T) {
	uc, _, _ := newBoardUC(t)

	p, err := uc.CreatePost(context.Background(), "alice", PostInput{
		Title:   "hello",
		Content: "world",
		Tags:    []string{"go", "go", "", "web"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, p.Tags)
	assert.Equal(t, "alice", p.Writer)
}

func TestGetPostBumpsViews(t *testing.T) {
	uc, posts, _ := newBoardUC(t)
	ctx := context.Background()

	created, err := uc.CreatePost(ctx, "alice", PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	got, err := uc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)
	assert.Equal(t, int64(1), posts.posts[created.ID].Views)

	_, err = uc.GetPost(ctx, 999)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestListPostsPagingDefaults(t *testing.T) {
	uc, _, _ := newBoardUC(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := uc.CreatePost(ctx, "alice", PostInput{Title: "t", Content: "c"})
		require.NoError(t, err)
	}

	page, err := uc.ListPosts(ctx, board.Page{Number: -1, Size: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, defaultPageSize, page.Size)
	assert.Equal(t, int64(15), page.TotalPosts)
	assert.Equal(t, int64(2), page.TotalPages)
	assert.Len(t, page.Posts, defaultPageSize)
}

func TestUpdatePostOwnership(t *testing.T) {
	uc, _, _ := newBoardUC(t)
	ctx := context.Background()

	p, err := uc.CreatePost(ctx, "alice", PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = uc.UpdatePost(ctx, "bob", p.ID, PostInput{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, ErrNotOwner)

	upd, err := uc.UpdatePost(ctx, "alice", p.ID, PostInput{Title: "x", Content: "y", Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, "x", upd.Title)
	assert.Equal(t, []string{"go"}, upd.Tags)
}

func TestDeletePostOwnership(t *testing.T) {
	uc, posts, _ := newBoardUC(t)
	ctx := context.Background()

	p, err := uc.CreatePost(ctx, "alice", PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	assert.ErrorIs(t, uc.DeletePost(ctx, "bob", p.ID), ErrNotOwner)
	require.NoError(t, uc.DeletePost(ctx, "alice", p.ID))
	assert.Empty(t, posts.posts)
}

func TestCommentsLifecycle(t *testing.T) {
	uc, _, _ := newBoardUC(t)
	ctx := context.Background()

	p, err := uc.CreatePost(ctx, "alice", PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = uc.AddComment(ctx, "bob", 999, CommentInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrPostNotFound)

	c, err := uc.AddComment(ctx, "bob", p.ID, CommentInput{Content: "hi"})
	require.NoError(t, err)

	list, err := uc.ListComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, uc.DeleteComment(ctx, "alice", c.ID), ErrNotOwner)
	require.NoError(t, uc.DeleteComment(ctx, "bob", c.ID))
}
