package auth

import (
	"context"
	"time"
)

// RevocationStore is the TTL key-value store backing the two revocation
// mechanisms: the per-user live refresh token and the access-token
// blacklist. Implementations must provide per-key atomicity; no other
// coordination is assumed.
type RevocationStore interface {
	// SetRefresh unconditionally overwrites the live refresh token for
	// username (last write wins).
	SetRefresh(ctx context.Context, username, token string, ttl time.Duration) error

	// GetRefresh returns ErrNotFound when no token is stored. Transport
	// failures are reported as ErrStoreUnavailable, never as absence.
	GetRefresh(ctx context.Context, username string) (string, error)

	Blacklist(ctx context.Context, token string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}
