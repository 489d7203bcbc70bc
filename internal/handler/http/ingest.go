package http

import (
	"context"
	"fmt"
	"net/http"

	"decks/internal/handler/http/respond"
	ingestUC "decks/internal/usecase/ingest"
)

// IngestRunner triggers one ingestion run.
type IngestRunner interface {
	Run(ctx context.Context) (*ingestUC.Report, error)
}

// FetchRSSHandler triggers an ingestion run and reports basic counts.
type FetchRSSHandler struct{ Svc IngestRunner }

func (h FetchRSSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report, err := h.Svc.Run(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"message":  "RSS fetch completed",
		"inserted": report.Inserted,
		"skipped":  report.Skipped,
		"errors":   errorList(report.Errors),
	})
}

// FetchRSSEnhancedHandler triggers an ingestion run and adds run statistics
// to the response.
type FetchRSSEnhancedHandler struct{ Svc IngestRunner }

func (h FetchRSSEnhancedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report, err := h.Svc.Run(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"message":            "RSS fetch completed",
		"inserted":           report.Inserted,
		"skipped":            report.Skipped,
		"errors":             errorList(report.Errors),
		"success_rate":       fmt.Sprintf("%.1f", report.SuccessRate()),
		"processing_time_ms": report.Duration.Milliseconds(),
		"feeds_processed":    report.FeedsProcessed,
		"successful_feeds":   report.SuccessfulFeeds,
	})
}

// errorList keeps the errors field an empty array instead of null.
func errorList(errs []string) []string {
	if errs == nil {
		return []string{}
	}
	return errs
}
