package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
)

type conflictErr struct{}

func (conflictErr) Error() string                { return "overlaps membership m1" }
func (conflictErr) ErrorCode() dErrors.Code      { return dErrors.CodeActiveMembershipConflict }
func (conflictErr) ErrorDetails() map[string]any { return map[string]any{"membership_id": "m1"} }

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})

	t.Run("uncoded errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})

	t.Run("typed errors carry details", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, conflictErr{})
		assert.Equal(t, http.StatusConflict, w.Code)

		var body errorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "active_membership_conflict", body.Error)
		assert.Equal(t, "overlaps membership m1", body.Description)
		assert.Equal(t, "m1", body.Details["membership_id"])
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeNotFound:                 http.StatusNotFound,
		dErrors.CodeInvalidInterval:          http.StatusBadRequest,
		dErrors.CodeValidation:               http.StatusBadRequest,
		dErrors.CodeActiveMembershipConflict: http.StatusConflict,
		dErrors.CodeIdentityConflict:         http.StatusConflict,
		dErrors.CodeRateLimited:              http.StatusTooManyRequests,
		dErrors.CodeTimeout:                  http.StatusGatewayTimeout,
		dErrors.CodeInternal:                 http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusFor(code), code)
	}
}

type pingRequest struct {
	Name string `json:"name"`
}

func (r *pingRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	decode := func(body string) (*pingRequest, *httptest.ResponseRecorder, bool) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req, ok := DecodeAndPrepare[pingRequest](w, r, logger, r.Context(), "req-1")
		return req, w, ok
	}

	req, _, ok := decode(`{"name":"  ciad "}`)
	require.True(t, ok)
	assert.Equal(t, "ciad", req.Name)

	_, w, ok := decode(`{"name":""}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, w, ok = decode(`{"name":"x","extra":1}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, w, ok = decode(``)
	assert.False(t, ok)
	assert.Contains(t, w.Body.String(), "request body is required")
}
