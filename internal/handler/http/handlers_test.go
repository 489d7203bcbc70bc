package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"decks/internal/domain/entity"
	cardsUC "decks/internal/usecase/cards"
	feedgenUC "decks/internal/usecase/feedgen"
	ingestUC "decks/internal/usecase/ingest"
)

/* ───────── モック実装 ───────── */

type stubIngestRunner struct {
	report *ingestUC.Report
	err    error
}

func (s *stubIngestRunner) Run(_ context.Context) (*ingestUC.Report, error) {
	return s.report, s.err
}

type stubCardRefresher struct {
	result *cardsUC.Result
	err    error
}

func (s *stubCardRefresher) RefreshAll(_ context.Context) (*cardsUC.Result, error) {
	return s.result, s.err
}

type stubFeedGenerator struct {
	feed *entity.Feed
	err  error
}

func (s *stubFeedGenerator) Generate(_ context.Context, _ int64, _ entity.TargetType, _ int64) (*entity.Feed, error) {
	return s.feed, s.err
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

/* ───────── テスト ───────── */

func TestFetchRSSHandler(t *testing.T) {
	handler := FetchRSSHandler{Svc: &stubIngestRunner{report: &ingestUC.Report{
		Inserted: 3,
		Skipped:  2,
		Errors:   []string{"feed 9 (https://dead.example.com/rss): unreachable"},
	}}}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fetch-rss", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "RSS fetch completed" {
		t.Errorf("unexpected message %v", body["message"])
	}
	if body["inserted"] != float64(3) || body["skipped"] != float64(2) {
		t.Errorf("unexpected counts: %v", body)
	}
	if errs := body["errors"].([]any); len(errs) != 1 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestFetchRSSHandler_EmptyErrorsIsArray(t *testing.T) {
	handler := FetchRSSHandler{Svc: &stubIngestRunner{report: &ingestUC.Report{}}}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fetch-rss", nil))

	if !strings.Contains(rec.Body.String(), `"errors":[]`) {
		t.Errorf("expected empty array for errors, got %q", rec.Body.String())
	}
}

func TestFetchRSSHandler_EnumerationFailure(t *testing.T) {
	handler := FetchRSSHandler{Svc: &stubIngestRunner{err: errors.New("list active feeds: db down")}}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fetch-rss", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "db down") {
		t.Errorf("internal detail leaked: %q", rec.Body.String())
	}
}

func TestFetchRSSEnhancedHandler(t *testing.T) {
	handler := FetchRSSEnhancedHandler{Svc: &stubIngestRunner{report: &ingestUC.Report{
		Inserted:        5,
		Skipped:         1,
		FeedsProcessed:  4,
		SuccessfulFeeds: 3,
		Duration:        1500 * time.Millisecond,
	}}}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fetch-rss-enhanced", nil))

	body := decodeBody(t, rec)
	if body["success_rate"] != "75.0" {
		t.Errorf("expected success_rate \"75.0\", got %v", body["success_rate"])
	}
	if body["processing_time_ms"] != float64(1500) {
		t.Errorf("expected processing_time_ms 1500, got %v", body["processing_time_ms"])
	}
	if body["feeds_processed"] != float64(4) || body["successful_feeds"] != float64(3) {
		t.Errorf("unexpected feed counts: %v", body)
	}
}

func TestRefreshCardsHandler(t *testing.T) {
	handler := RefreshCardsHandler{Svc: &stubCardRefresher{result: &cardsUC.Result{
		CardsUpdated: 4,
		Errors:       []string{`company "Stripe": write refused`},
	}}}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh-cards", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Card refresh completed" || body["cards_updated"] != float64(4) {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestRefreshCardsHandler_EnumerationFailure(t *testing.T) {
	handler := RefreshCardsHandler{Svc: &stubCardRefresher{err: errors.New("list organizations: db down")}}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh-cards", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestAutogenerateFeedHandler(t *testing.T) {
	companyID := int64(100)
	handler := AutogenerateFeedHandler{Svc: &stubFeedGenerator{feed: &entity.Feed{
		ID:        1,
		OrgID:     10,
		Kind:      "news",
		URL:       "https://news.google.com/rss/search?q=%22Stripe%22&hl=en-US&gl=US&ceid=US:en",
		CompanyID: &companyID,
		Active:    true,
	}}}

	req := httptest.NewRequest(http.MethodPost, "/feeds/autogenerate",
		strings.NewReader(`{"org_id": 10, "target_type": "company", "target_id": 100}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	feeds := body["feeds"].([]any)
	if len(feeds) != 1 {
		t.Fatalf("expected 1 feed, got %d", len(feeds))
	}
	feed := feeds[0].(map[string]any)
	if feed["kind"] != "news" || feed["company_id"] != float64(100) {
		t.Errorf("unexpected feed: %v", feed)
	}
}

func TestAutogenerateFeedHandler_Validation(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		svcErr       error
		expectedCode int
	}{
		{
			name:         "malformed JSON",
			body:         `{`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "missing fields",
			body:         `{"target_type": "company"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "invalid target type",
			body:         `{"org_id": 10, "target_type": "dashboard", "target_id": 1}`,
			svcErr:       entity.ErrInvalidInput,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "unknown target",
			body:         `{"org_id": 10, "target_type": "company", "target_id": 999}`,
			svcErr:       entity.ErrNotFound,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "feed already exists",
			body:         `{"org_id": 10, "target_type": "company", "target_id": 100}`,
			svcErr:       feedgenUC.ErrFeedExists,
			expectedCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AutogenerateFeedHandler{Svc: &stubFeedGenerator{err: tt.svcErr}}

			req := httptest.NewRequest(http.MethodPost, "/feeds/autogenerate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected %d, got %d: %s", tt.expectedCode, rec.Code, rec.Body.String())
			}
		})
	}
}
