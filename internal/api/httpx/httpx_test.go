package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baharkarakas/blog-backend/internal/api/validate"
	"github.com/baharkarakas/blog-backend/internal/apperr"
)

func TestWriteErrMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("x: %w", apperr.ErrValidation), 400, "validation_failed"},
		{fmt.Errorf("x: %w", apperr.ErrConflict), 400, "conflict"},
		{fmt.Errorf("x: %w", apperr.ErrUnauthorized), 401, "unauthorized"},
		{fmt.Errorf("x: %w", apperr.ErrForbidden), 403, "forbidden"},
		{fmt.Errorf("x: %w", apperr.ErrNotFound), 404, "not_found"},
		{fmt.Errorf("x: %w", apperr.ErrUnavailable), 503, "upstream_unavailable"},
		{errors.New("boom"), 500, "internal_error"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		WriteErr(rr, tc.err)
		if rr.Code != tc.status {
			t.Fatalf("%v: status %d, want %d", tc.err, rr.Code, tc.status)
		}
		var body APIError
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Code != tc.code {
			t.Fatalf("%v: code %q, want %q", tc.err, body.Code, tc.code)
		}
	}
}

func TestWriteErrHidesInternalMessages(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteErr(rr, fmt.Errorf("list posts: %w: dial tcp 10.0.0.1:5432", apperr.ErrUnavailable))
	var body APIError
	_ = json.NewDecoder(rr.Body).Decode(&body)
	if body.Error != "service temporarily unavailable" {
		t.Fatalf("internal detail leaked: %q", body.Error)
	}
}

func TestWriteErrIncludesFieldDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	err := fmt.Errorf("%w: %w", apperr.ErrValidation, validate.Errs{{Field: "title", Msg: "required"}})
	WriteErr(rr, err)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rr.Code)
	}
	var body struct {
		Details []validate.ErrField `json:"details"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Details) != 1 || body.Details[0].Field != "title" {
		t.Fatalf("unexpected details: %+v", body.Details)
	}
}
