package worker

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestHealthServer() *HealthServer {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewHealthServer(":0", logger)
}

func TestHealthServer_Liveness(t *testing.T) {
	server := newTestHealthServer()

	rec := httptest.NewRecorder()
	server.handleLiveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("unexpected status %q", resp.Status)
	}
}

func TestHealthServer_ReadinessBeforeReady(t *testing.T) {
	server := newTestHealthServer()

	rec := httptest.NewRecorder()
	server.handleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before SetReady, got %d", rec.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "not ready" {
		t.Errorf("unexpected status %q", resp.Status)
	}
}

func TestHealthServer_ReadinessAfterReady(t *testing.T) {
	server := newTestHealthServer()
	server.SetReady(true)

	rec := httptest.NewRecorder()
	server.handleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 after SetReady, got %d", rec.Code)
	}
}

func TestHealthServer_ReadinessCanBeRevoked(t *testing.T) {
	server := newTestHealthServer()
	server.SetReady(true)
	server.SetReady(false)

	rec := httptest.NewRecorder()
	server.handleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 after revoking readiness, got %d", rec.Code)
	}
}
