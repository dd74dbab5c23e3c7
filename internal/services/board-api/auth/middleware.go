package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/taehun/board/internal/domain/auth"
	"github.com/taehun/board/internal/services/board-api/respond"
	"github.com/taehun/board/internal/token"
)

const bearerPrefix = "Bearer "

// Middleware is the per-request admission gate. It decides whether the
// path needs authentication at all, extracts the bearer credential, and
// either attaches the authenticated subject to the request context or
// rejects the request.
//
// Only two conditions reject here: an expired token (with a body the
// client can distinguish from a generic failure) and a blacklisted one.
// A structurally invalid token falls through unauthenticated; routes
// that need an identity enforce that with RequireAuth.
func Middleware(p *token.Provider, excludePrefixes []string, log *zap.Logger) func(http.Handler) http.Handler {
	log = log.With(zap.String("component", "auth.middleware"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || excluded(r.URL.Path, excludePrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := p.Authenticate(r.Context(), raw)
			switch {
			case err == nil:
				r = r.WithContext(withIdentity(r.Context(), claims.Subject, raw))

			case errors.Is(err, auth.ErrTokenExpired):
				respond.TokenExpired(w)
				return

			case errors.Is(err, auth.ErrTokenRevoked):
				respond.Unauthorized(w)
				return

			case errors.Is(err, auth.ErrStoreUnavailable):
				log.Error("blacklist check failed", zap.Error(err))
				respond.Unavailable(w)
				return

			default:
				// Bad signature or garbage: proceed without identity,
				// the route boundary decides.
				log.Debug("invalid bearer token", zap.String("path", r.URL.Path), zap.Error(err))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests that reached a protected route without
// an identity attached by Middleware.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SubjectFromCtx(r.Context()); !ok {
			respond.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func excluded(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// bearerToken pulls the credential out of the Authorization header.
// Anything without the exact scheme prefix counts as "no credential".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(h, bearerPrefix)
}
