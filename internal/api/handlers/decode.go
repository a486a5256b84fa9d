package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/baharkarakas/blog-backend/internal/api/httpx"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into v and answers 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", msg, nil)
		return false
	}
	return true
}
