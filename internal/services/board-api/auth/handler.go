package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/taehun/board/internal/domain/auth"
	"github.com/taehun/board/internal/services/board-api/respond"
)

type Handler struct {
	uc  *Usecase
	log *zap.Logger
}

func NewHandler(uc *Usecase, log *zap.Logger) *Handler {
	return &Handler{uc: uc, log: log.With(zap.String("component", "auth.handler"))}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
}

// Login handles POST /logins.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, u, err := h.uc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.OK(w, "login successful", tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Username:     u.Username,
		Email:        u.Email,
	})
}

// Refresh handles POST /refresh. The refresh token travels in the
// Authorization header, with or without the bearer scheme prefix.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	access, err := h.uc.Refresh(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "access token reissued", tokenResponse{AccessToken: access})
}

// Logout handles GET /logout. It runs behind RequireAuth, so the raw
// token is always in the context here.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	raw, ok := TokenFromCtx(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	if err := h.uc.Logout(r.Context(), raw); err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "logout successful", nil)
}

// writeError maps usecase failures onto the response contract: an
// infrastructure outage is a server error, everything credential-shaped
// is a uniform 401 that does not leak which check failed.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrStoreUnavailable):
		h.log.Error("revocation store failure", zap.Error(err))
		respond.Unavailable(w)
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenMalformed),
		errors.Is(err, auth.ErrBadSignature),
		errors.Is(err, auth.ErrRefreshMismatch),
		errors.Is(err, auth.ErrTokenRevoked):
		respond.Unauthorized(w)
	default:
		h.log.Error("auth handler failure", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "internal error")
	}
}
