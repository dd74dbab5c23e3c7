package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taehun/board/internal/domain/auth"
	"github.com/taehun/board/internal/domain/user"
	"github.com/taehun/board/internal/repository/postgres"
)

type memUsers struct {
	byName map[string]*user.User
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.byName[u.Username] = u
	return nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*user.User, error) {
	u, ok := m.byName[username]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.byName {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, postgres.ErrNotFound
}

func (m *memUsers) List(_ context.Context) ([]user.User, error) { return nil, nil }
func (m *memUsers) Update(_ context.Context, u *user.User) error {
	m.byName[u.Username] = u
	return nil
}
func (m *memUsers) Delete(_ context.Context, username string) error {
	delete(m.byName, username)
	return nil
}

func seedUser(t *testing.T, users *memUsers, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	users.byName[username] = &user.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
	}
}

func newAuthFixture(t *testing.T) (*Usecase, *fixture) {
	t.Helper()
	f := newFixture(t)
	users := &memUsers{byName: map[string]*user.User{}}
	seedUser(t, users, "alice", "hunter2")
	return NewUsecase(users, f.prov, zap.NewNop()), f
}

func TestLoginSuccess(t *testing.T) {
	uc, f := newAuthFixture(t)

	pair, rec, err := uc.Login(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Username)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// The issued refresh token became the live one.
	assert.Equal(t, pair.RefreshToken, f.store.refresh["alice"])
}

func TestLoginWrongPassword(t *testing.T) {
	uc, _ := newAuthFixture(t)

	_, _, err := uc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = uc.Login(context.Background(), "nobody", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// A second login rotates the stored refresh token; the first session's
// token still verifies structurally but no longer matches the store.
func TestRefreshRotation(t *testing.T) {
	uc, f := newAuthFixture(t)
	ctx := context.Background()

	first, _, err := uc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)

	// Advance the clock so the second pair differs from the first.
	*f.now = f.now.Add(time.Second)

	second, _, err := uc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = uc.Refresh(ctx, "Bearer "+first.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrRefreshMismatch)

	access, err := uc.Refresh(ctx, "Bearer "+second.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
}

func TestRefreshExpiredToken(t *testing.T) {
	uc, f := newAuthFixture(t)
	ctx := context.Background()

	pair, _, err := uc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)

	*f.now = f.now.Add(24 * time.Hour)

	_, err = uc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestRefreshStoreOutage(t *testing.T) {
	uc, f := newAuthFixture(t)
	ctx := context.Background()

	pair, _, err := uc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)

	f.store.failWith = auth.ErrStoreUnavailable
	_, err = uc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, auth.ErrRefreshMismatch)
}

func TestLogoutBlacklistsRemainingLifetime(t *testing.T) {
	uc, f := newAuthFixture(t)
	ctx := context.Background()

	pair, _, err := uc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)

	require.NoError(t, uc.Logout(ctx, pair.AccessToken))
	assert.True(t, f.store.blacklist[pair.AccessToken])

	_, err = f.prov.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
}

func TestLogoutExpiredTokenIsNoop(t *testing.T) {
	uc, f := newAuthFixture(t)
	ctx := context.Background()

	pair, _, err := uc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)

	*f.now = f.now.Add(time.Hour)
	require.NoError(t, uc.Logout(ctx, pair.AccessToken))
	assert.Empty(t, f.store.blacklist)
}
