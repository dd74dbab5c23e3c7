package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taehun/board/internal/domain/auth"
	"github.com/taehun/board/internal/token"
)

type memStore struct {
	mu        sync.Mutex
	refresh   map[string]string
	blacklist map[string]bool
	failWith  error
}

func newMemStore() *memStore {
	return &memStore{refresh: map[string]string{}, blacklist: map[string]bool{}}
}

func (s *memStore) SetRefresh(_ context.Context, username, tok string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.refresh[username] = tok
	return nil
}

func (s *memStore) GetRefresh(_ context.Context, username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return "", s.failWith
	}
	v, ok := s.refresh[username]
	if !ok {
		return "", auth.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Blacklist(_ context.Context, tok string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.blacklist[tok] = true
	return nil
}

func (s *memStore) IsBlacklisted(_ context.Context, tok string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	return s.blacklist[tok], nil
}

const expiredBody = `{"error":"Token expired. Please re-login."}`

type fixture struct {
	store *memStore
	prov  *token.Provider
	now   *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{store: newMemStore(), now: &now}
	f.prov = token.NewProvider(token.Config{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Now:        func() time.Time { return *f.now },
	}, f.store, zap.NewNop())
	return f
}

// handler echoes the identity the middleware attached, if any.
func echoHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sub, ok := SubjectFromCtx(r.Context()); ok {
			w.Header().Set("X-Subject", sub)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func serve(t *testing.T, f *fixture, exclude []string, protected bool, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	var h http.Handler = echoHandler(t)
	if protected {
		h = RequireAuth(h)
	}
	h = Middleware(f.prov, exclude, zap.NewNop())(h)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareExcludedPathSkipsEverything(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/logins", nil)
	req.Header.Set("Authorization", "Bearer not-even-a-token")

	rec := serve(t, f, []string{"/logins"}, false, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Subject"))
}

func TestMiddlewareOptionsBypass(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/posts", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	rec := serve(t, f, nil, false, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareNoTokenOnProtectedRoute(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)

	rec := serve(t, f, nil, true, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestMiddlewareValidTokenAttachesIdentity(t *testing.T) {
	f := newFixture(t)
	tok, err := f.prov.Issue("alice", auth.KindAccess)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	rec := serve(t, f, nil, true, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Header().Get("X-Subject"))
}

func TestMiddlewareExpiredTokenRejectsImmediately(t *testing.T) {
	f := newFixture(t)
	tok, err := f.prov.Issue("alice", auth.KindAccess)
	require.NoError(t, err)

	*f.now = f.now.Add(30 * time.Minute)

	// Even on an otherwise public route the expired credential is
	// rejected with the distinguishable body.
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	rec := serve(t, f, nil, false, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, expiredBody, rec.Body.String())
}

func TestMiddlewareBadSignatureFallsThrough(t *testing.T) {
	f := newFixture(t)
	foreign := token.NewProvider(token.Config{
		Secret:    []byte("a-completely-different-secret-00"),
		AccessTTL: time.Hour,
	}, newMemStore(), zap.NewNop())
	tok, err := foreign.Issue("mallory", auth.KindAccess)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	// Public route: dispatched without identity.
	rec := serve(t, f, nil, false, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Subject"))

	// Protected route: the boundary rejects with the generic body.
	req2 := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req2.Header.Set("Authorization", "Bearer "+tok)
	rec2 := serve(t, f, nil, true, req2)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec2.Body.String())
}

func TestMiddlewareBlacklistedTokenRejected(t *testing.T) {
	f := newFixture(t)
	tok, err := f.prov.Issue("alice", auth.KindAccess)
	require.NoError(t, err)
	require.NoError(t, f.prov.BlacklistAccess(context.Background(), tok, time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	rec := serve(t, f, nil, true, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareStoreOutageIsServerError(t *testing.T) {
	f := newFixture(t)
	tok, err := f.prov.Issue("alice", auth.KindAccess)
	require.NoError(t, err)

	f.store.failWith = auth.ErrStoreUnavailable

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	rec := serve(t, f, nil, true, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMiddlewareNonBearerSchemeIgnored(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	rec := serve(t, f, nil, false, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Subject"))
}
