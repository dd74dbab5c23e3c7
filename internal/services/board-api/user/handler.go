package user

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domain "github.com/taehun/board/internal/domain/user"
	"github.com/taehun/board/internal/services/board-api/auth"
	"github.com/taehun/board/internal/services/board-api/files"
	"github.com/taehun/board/internal/services/board-api/respond"
)

type Handler struct {
	uc  *Usecase
	log *zap.Logger
}

func NewHandler(uc *Usecase, log *zap.Logger) *Handler {
	return &Handler{uc: uc, log: log.With(zap.String("component", "user.handler"))}
}

type profileResponse struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// Register handles POST /registers: multipart form with a "data" JSON
// part and an optional "image" part.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(files.MaxUploadSize); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var in RegisterInput
	if err := json.Unmarshal([]byte(r.FormValue("data")), &in); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request data")
		return
	}

	img, closeImg, err := formImage(r, "image")
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closeImg()

	if err := h.uc.Register(r.Context(), in, img); err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "registration successful", nil)
}

// Profile handles GET /users/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.SubjectFromCtx(r.Context())
	rec, err := h.uc.Profile(r.Context(), username)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "profile fetched", toProfile(rec))
}

// UpdateProfile handles PATCH /users/profile (multipart) and
// PUT /profiles (plain JSON).
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.SubjectFromCtx(r.Context())

	var upd ProfileUpdate
	var img *Image

	if isMultipart(r) {
		if err := r.ParseMultipartForm(files.MaxUploadSize); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		if data := r.FormValue("data"); data != "" {
			if err := json.Unmarshal([]byte(data), &upd); err != nil {
				respond.Fail(w, http.StatusBadRequest, "invalid request data")
				return
			}
		}
		var closeImg func()
		var err error
		img, closeImg, err = formImage(r, "image")
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, err.Error())
			return
		}
		defer closeImg()
	} else if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.uc.UpdateProfile(r.Context(), username, upd, img); err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "profile updated", nil)
}

// ResetPassword handles PATCH /password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.SubjectFromCtx(r.Context())

	var in PasswordReset
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.uc.ResetPassword(r.Context(), username, in); err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "password changed", nil)
}

// List handles GET /users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.uc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]profileResponse, 0, len(users))
	for i := range users {
		out = append(out, toProfile(&users[i]))
	}
	respond.OK(w, "users fetched", out)
}

// Delete handles DELETE /users.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.SubjectFromCtx(r.Context())
	if err := h.uc.Delete(r.Context(), username); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Exists handles GET /users/{email}/{id}, the pre-registration
// duplicate probe.
func (h *Handler) Exists(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	username := chi.URLParam(r, "id")

	emailTaken, usernameTaken, err := h.uc.Exists(r.Context(), email, username)
	if err != nil {
		h.writeError(w, err)
		return
	}
	switch {
	case emailTaken && usernameTaken:
		respond.Fail(w, http.StatusBadRequest, "email and username are both taken")
	case emailTaken:
		respond.Fail(w, http.StatusBadRequest, "email already in use")
	case usernameTaken:
		respond.Fail(w, http.StatusBadRequest, "username already in use")
	default:
		respond.OK(w, "no duplicates", nil)
	}
}

// Statistics handles GET /profiles/statistics.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.SubjectFromCtx(r.Context())
	stats, err := h.uc.Statistics(r.Context(), username)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "statistics fetched", stats)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrWrongPassword),
		errors.Is(err, ErrSamePassword),
		errors.Is(err, files.ErrUnsupportedType):
		respond.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNoSuchUser):
		respond.Fail(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error("user handler failure", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "internal error")
	}
}

func toProfile(u *domain.User) profileResponse {
	return profileResponse{Username: u.Username, Email: u.Email, ProfileImageURL: u.ProfileImageURL}
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}

// formImage pulls an optional image part out of a parsed multipart
// form. The returned closer is a no-op when no file was sent.
func formImage(r *http.Request, field string) (*Image, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, errors.New("invalid image upload")
	}
	if header.Size > files.MaxUploadSize {
		_ = file.Close()
		return nil, func() {}, errors.New("file exceeds the 10MB limit")
	}
	img := &Image{
		Body:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}
	return img, func() { _ = file.Close() }, nil
}
