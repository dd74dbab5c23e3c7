package mail

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"go.uber.org/zap"

	"github.com/taehun/board/internal/domain/auth"
	"github.com/taehun/board/internal/services/board-api/respond"
)

type Handler struct {
	uc  *Usecase
	log *zap.Logger
}

func NewHandler(uc *Usecase, log *zap.Logger) *Handler {
	return &Handler{uc: uc, log: log.With(zap.String("component", "mail.handler"))}
}

type sendRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// SendCode handles POST /mail/codes.
func (h *Handler) SendCode(w http.ResponseWriter, r *http.Request) {
	var in sendRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid email address")
		return
	}

	if err := h.uc.SendCode(r.Context(), in.Email); err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "verification code sent", nil)
}

// VerifyCode handles POST /mail/verify.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var in verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.uc.VerifyCode(r.Context(), in.Email, in.Code); err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "email verified", nil)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrThrottled):
		respond.Fail(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ErrCodeExpired), errors.Is(err, ErrCodeMismatch):
		respond.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrStoreUnavailable):
		respond.Unavailable(w)
	default:
		h.log.Error("mail handler failure", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "internal error")
	}
}
