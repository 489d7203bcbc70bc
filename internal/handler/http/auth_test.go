package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServiceAuth(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name         string
		token        string
		header       string
		expectedCode int
	}{
		{
			name:         "valid token",
			token:        "service-secret",
			header:       "Bearer service-secret",
			expectedCode: http.StatusOK,
		},
		{
			name:         "wrong token",
			token:        "service-secret",
			header:       "Bearer guess",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "missing header",
			token:        "service-secret",
			header:       "",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "wrong scheme",
			token:        "service-secret",
			header:       "Basic c2VydmljZQ==",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "unconfigured token disables endpoint",
			token:        "",
			header:       "Bearer anything",
			expectedCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewServiceAuth(tt.token).Middleware(okHandler)

			req := httptest.NewRequest(http.MethodPost, "/fetch-rss", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected %d, got %d", tt.expectedCode, rec.Code)
			}
		})
	}
}
