package board

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/taehun/board/internal/domain/board"
	"github.com/taehun/board/internal/services/board-api/auth"
	"github.com/taehun/board/internal/services/board-api/respond"
)

type Handler struct {
	uc  *Usecase
	log *zap.Logger
}

func NewHandler(uc *Usecase, log *zap.Logger) *Handler {
	return &Handler{uc: uc, log: log.With(zap.String("component", "board.handler"))}
}

// CreatePost handles POST /boards.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	writer, _ := auth.SubjectFromCtx(r.Context())

	var in PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Title == "" || in.Content == "" {
		respond.Fail(w, http.StatusBadRequest, "title and content are required")
		return
	}

	p, err := h.uc.CreatePost(r.Context(), writer, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, respond.Message{
		Code: http.StatusCreated, Message: "post created", Data: p,
	})
}

// GetPost handles GET /boards/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.uc.GetPost(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "post fetched", p)
}

// ListPosts handles GET /boards?page=N&size=M.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := board.Page{
		Number: queryInt(r, "page", 0),
		Size:   queryInt(r, "size", defaultPageSize),
	}
	out, err := h.uc.ListPosts(r.Context(), page)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "posts fetched", out)
}

// UpdatePost handles PUT /boards/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	writer, _ := auth.SubjectFromCtx(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.uc.UpdatePost(r.Context(), writer, id, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "post updated", p)
}

// DeletePost handles DELETE /boards/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	writer, _ := auth.SubjectFromCtx(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.uc.DeletePost(r.Context(), writer, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddComment handles POST /boards/{id}/comments.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	writer, _ := auth.SubjectFromCtx(r.Context())
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in CommentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Content == "" {
		respond.Fail(w, http.StatusBadRequest, "content is required")
		return
	}

	c, err := h.uc.AddComment(r.Context(), writer, postID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, respond.Message{
		Code: http.StatusCreated, Message: "comment created", Data: c,
	})
}

// ListComments handles GET /boards/{id}/comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	comments, err := h.uc.ListComments(r.Context(), postID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.OK(w, "comments fetched", comments)
}

// DeleteComment handles DELETE /comments/{id}.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	writer, _ := auth.SubjectFromCtx(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.uc.DeleteComment(r.Context(), writer, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrCommentNotFound):
		respond.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		respond.Fail(w, http.StatusForbidden, err.Error())
	default:
		h.log.Error("board handler failure", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respond.Fail(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
