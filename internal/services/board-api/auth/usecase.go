package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taehun/board/internal/domain/auth"
	"github.com/taehun/board/internal/domain/user"
	"github.com/taehun/board/internal/repository/postgres"
	"github.com/taehun/board/internal/token"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// TokenPair is what a successful login hands the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Usecase struct {
	users  user.Repo
	tokens *token.Provider
	log    *zap.Logger
}

func NewUsecase(users user.Repo, tokens *token.Provider, log *zap.Logger) *Usecase {
	return &Usecase{users: users, tokens: tokens, log: log.With(zap.String("component", "auth.usecase"))}
}

// Login checks the password and issues a fresh access+refresh pair. The
// refresh token is stored as the single live one for the user; a prior
// session's refresh token stops working from this point on.
func (u *Usecase) Login(ctx context.Context, username, password string) (*TokenPair, *user.User, error) {
	rec, err := u.users.GetByUsername(ctx, username)
	if errors.Is(err, postgres.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.Password), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	access, err := u.tokens.Issue(rec.Username, auth.KindAccess)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := u.tokens.Issue(rec.Username, auth.KindRefresh)
	if err != nil {
		return nil, nil, err
	}
	if err := u.tokens.StoreRefresh(ctx, rec.Username, refresh, u.tokens.TTL(auth.KindRefresh)); err != nil {
		return nil, nil, err
	}

	u.log.Info("login", zap.String("username", rec.Username))
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, rec, nil
}

// Refresh exchanges a live refresh token for a new access token. The
// token's own signature and expiry are checked first; only then is it
// compared against the stored one, so a rotated-away token fails with
// auth.ErrRefreshMismatch even while structurally valid.
func (u *Usecase) Refresh(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimPrefix(raw, bearerPrefix)
	if raw == "" {
		return "", ErrInvalidCredentials
	}

	claims, err := u.tokens.Verify(raw)
	if err != nil {
		return "", err
	}
	if err := u.tokens.ValidateRefresh(ctx, claims.Subject, raw); err != nil {
		return "", err
	}

	access, err := u.tokens.Issue(claims.Subject, auth.KindAccess)
	if err != nil {
		return "", err
	}
	u.log.Info("access token refreshed", zap.String("username", claims.Subject))
	return access, nil
}

// Logout blacklists the presented access token for its remaining
// lifetime. The token stays structurally valid; the blacklist entry is
// what makes the admission gate reject it from now on.
func (u *Usecase) Logout(ctx context.Context, rawAccess string) error {
	exp, err := u.tokens.ExpiresAt(rawAccess)
	if err != nil {
		return err
	}
	if err := u.tokens.BlacklistAccess(ctx, rawAccess, exp.Sub(u.tokens.Now())); err != nil {
		return err
	}
	u.log.Info("logout, token blacklisted")
	return nil
}
