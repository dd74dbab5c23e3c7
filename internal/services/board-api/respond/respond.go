package respond

import (
	"encoding/json"
	"net/http"
)

// Message is the response envelope every endpoint answers with.
type Message struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error is the flat body used for filter-level rejections, where
// clients key off the error string.
type Error struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, msg string, data any) {
	JSON(w, http.StatusOK, Message{Code: http.StatusOK, Message: msg, Data: data})
}

func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Message{Code: status, Message: msg})
}

func Unauthorized(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, Error{Error: "unauthorized"})
}

// TokenExpired is the one rejection clients must be able to tell apart
// from a generic authentication failure.
func TokenExpired(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, Error{Error: "Token expired. Please re-login."})
}

func Unavailable(w http.ResponseWriter) {
	JSON(w, http.StatusServiceUnavailable, Error{Error: "service temporarily unavailable"})
}
