package auth

import (
	"errors"
	"time"
)

// TokenKind selects the validity window a token is issued with.
type TokenKind int

const (
	KindAccess TokenKind = iota
	KindRefresh
)

func (k TokenKind) String() string {
	if k == KindRefresh {
		return "refresh"
	}
	return "access"
}

// Claims is what a verified token proves: who, and until when.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

var (
	// ErrTokenExpired means the token's time window has elapsed. Callers
	// react differently to this than to any other verification failure,
	// so it is never folded into ErrTokenMalformed.
	ErrTokenExpired = errors.New("token expired")

	// ErrBadSignature means the signature does not verify under the
	// process key.
	ErrBadSignature = errors.New("bad token signature")

	// ErrTokenMalformed covers every other structural parse failure.
	ErrTokenMalformed = errors.New("malformed token")

	// ErrTokenRevoked means the access token was blacklisted via logout.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrRefreshMismatch means the presented refresh token is not the
	// one currently stored for the subject: it was rotated away, never
	// stored, or its store entry expired.
	ErrRefreshMismatch = errors.New("refresh token mismatch")

	// ErrNotFound is returned by the revocation store for an absent key.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable wraps transport failures of the revocation
	// store. It must never be collapsed into an authentication failure.
	ErrStoreUnavailable = errors.New("revocation store unavailable")
)
