package respond_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"decks/internal/handler/http/respond"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.JSON(rec, http.StatusOK, map[string]int{"inserted": 2})

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"inserted":2`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.JSON(rec, http.StatusNoContent, nil)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name        string
		code        int
		err         error
		expectedMsg string
	}{
		{
			name:        "validation error passes through",
			code:        http.StatusBadRequest,
			err:         errors.New("target_id is required"),
			expectedMsg: "target_id is required",
		},
		{
			name:        "not found passes through",
			code:        http.StatusNotFound,
			err:         errors.New("company not found"),
			expectedMsg: "company not found",
		},
		{
			name:        "internal detail is masked",
			code:        http.StatusBadRequest,
			err:         errors.New("dial tcp 10.0.0.5:5432: connection refused"),
			expectedMsg: "internal server error",
		},
		{
			name:        "500 always masked",
			code:        http.StatusInternalServerError,
			err:         errors.New("feed url is invalid"),
			expectedMsg: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respond.SafeError(rec, tt.code, tt.err)

			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedMsg) {
				t.Errorf("expected %q in body, got %q", tt.expectedMsg, rec.Body.String())
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "masks DSN password",
			input:    "connect postgres://decks:s3cret@db:5432/decks failed",
			expected: "connect postgres://decks:****@db:5432/decks failed",
		},
		{
			name:     "masks bearer token",
			input:    "upstream rejected Bearer abc123.def456",
			expected: "upstream rejected Bearer ****",
		},
		{
			name:     "plain message untouched",
			input:    "feed 12 unreachable",
			expected: "feed 12 unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := respond.SanitizeError(errors.New(tt.input)); got != tt.expected {
				t.Errorf("SanitizeError() = %q, want %q", got, tt.expected)
			}
		})
	}
}
