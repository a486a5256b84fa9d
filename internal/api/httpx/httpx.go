package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/blog-backend/internal/api/validate"
	"github.com/baharkarakas/blog-backend/internal/apperr"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// StatusOf maps an error kind to its HTTP status. Conflicts answer 400 like
// the other client input errors.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

var publicMessage = map[int]string{
	http.StatusServiceUnavailable:  "service temporarily unavailable",
	http.StatusInternalServerError: "internal error",
}

// WriteErr renders err with the status and code of its kind. Messages of
// server-side failures are not exposed.
func WriteErr(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	msg := err.Error()
	if m, ok := publicMessage[status]; ok {
		slog.Error("request failed", "status", status, "err", err)
		msg = m
	}
	var details interface{}
	var errs validate.Errs
	if errors.As(err, &errs) {
		details = errs
	}
	WriteError(w, status, apperr.Kind(err), msg, details)
}
