package token

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/taehun/board/internal/domain/auth"
)

// Provider issues and verifies the signed tokens the API runs on, and
// drives the two revocation mechanisms kept in the external store:
// the single live refresh token per user and the access-token blacklist.
//
// Verification is pure computation; the store is consulted only by the
// explicitly store-backed operations.
type Provider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      auth.RevocationStore
	now        func() time.Time
	log        *zap.Logger
}

type Config struct {
	// Secret is the symmetric signing key, raw bytes. See SecretBytes
	// for decoding the configured string form.
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Now is injectable for expiry boundary tests.
	Now func() time.Time
}

func NewProvider(cfg Config, store auth.RevocationStore, log *zap.Logger) *Provider {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		secret:     cfg.Secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		store:      store,
		now:        cfg.Now,
		log:        log.With(zap.String("component", "token.provider")),
	}
}

// SecretBytes decodes the configured signing secret. A valid base64
// string is decoded; anything else is taken as raw key bytes.
func SecretBytes(s string) []byte {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b
	}
	return []byte(s)
}

// Now exposes the provider clock so callers compute remaining
// lifetimes against the same time source verification uses.
func (p *Provider) Now() time.Time {
	return p.now()
}

// TTL returns the configured validity window for a token kind.
func (p *Provider) TTL(kind auth.TokenKind) time.Duration {
	if kind == auth.KindRefresh {
		return p.refreshTTL
	}
	return p.accessTTL
}

// Issue builds and signs a token for subject. It has no side effects:
// persisting a refresh token is a separate, explicit StoreRefresh call.
func (p *Provider) Issue(subject string, kind auth.TokenKind) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.TTL(kind))),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify checks signature and expiry. Expiry is reported as
// auth.ErrTokenExpired the instant now reaches the expiration time;
// signature and structural failures map to auth.ErrBadSignature and
// auth.ErrTokenMalformed. No store I/O happens here.
func (p *Provider) Verify(tokenStr string) (*auth.Claims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, p.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classify(err)
	}
	return fromRegistered(claims), nil
}

// Authenticate is the composite check the admission filter relies on:
// structural verification followed by the blacklist lookup, so no
// caller can forget the second half.
func (p *Provider) Authenticate(ctx context.Context, tokenStr string) (*auth.Claims, error) {
	claims, err := p.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	revoked, err := p.store.IsBlacklisted(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, auth.ErrTokenRevoked
	}
	return claims, nil
}

// Subject extracts the subject without verifying signature or expiry.
// Only for tokens that already passed Verify, or where identity is
// advisory (logging).
func (p *Provider) Subject(tokenStr string) (string, error) {
	claims, err := p.parseUnverified(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExpiresAt extracts the expiration time without verification.
func (p *Provider) ExpiresAt(tokenStr string) (time.Time, error) {
	claims, err := p.parseUnverified(tokenStr)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, auth.ErrTokenMalformed
	}
	return claims.ExpiresAt.Time, nil
}

// StoreRefresh records token as the one live refresh token for subject.
// The write is unconditional: a concurrent login's token is silently
// superseded, last write wins.
func (p *Provider) StoreRefresh(ctx context.Context, subject, tokenStr string, ttl time.Duration) error {
	if err := p.store.SetRefresh(ctx, subject, tokenStr, ttl); err != nil {
		return fmt.Errorf("store refresh for %q: %w", subject, err)
	}
	return nil
}

// ValidateRefresh confirms tokenStr is still the live refresh token for
// subject. Callers must have verified the token's own signature and
// expiry first. Absence and supersession both come back as
// auth.ErrRefreshMismatch; a store outage is reported as itself, never
// as a mismatch.
func (p *Provider) ValidateRefresh(ctx context.Context, subject, tokenStr string) error {
	stored, err := p.store.GetRefresh(ctx, subject)
	if errors.Is(err, auth.ErrNotFound) {
		return auth.ErrRefreshMismatch
	}
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(tokenStr)) != 1 {
		return auth.ErrRefreshMismatch
	}
	return nil
}

// BlacklistAccess marks an access token revoked for ttl, normally its
// remaining lifetime. Writing an already-blacklisted token again is
// harmless.
func (p *Provider) BlacklistAccess(ctx context.Context, tokenStr string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already past expiry; verification rejects it on its own.
		return nil
	}
	if err := p.store.Blacklist(ctx, tokenStr, ttl); err != nil {
		return fmt.Errorf("blacklist access token: %w", err)
	}
	return nil
}

func (p *Provider) IsBlacklisted(ctx context.Context, tokenStr string) (bool, error) {
	return p.store.IsBlacklisted(ctx, tokenStr)
}

func (p *Provider) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Header["alg"] != jwt.SigningMethodHS512.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return p.secret, nil
}

func (p *Provider) parseUnverified(tokenStr string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, auth.ErrTokenMalformed
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return auth.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return auth.ErrBadSignature
	default:
		return auth.ErrTokenMalformed
	}
}

func fromRegistered(rc *jwt.RegisteredClaims) *auth.Claims {
	c := &auth.Claims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c
}
