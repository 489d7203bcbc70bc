package http

import (
	"database/sql"
	"log/slog"
	"net/http"

	"decks/internal/handler/http/requestid"
)

// Deps carries everything the router needs.
type Deps struct {
	DB      *sql.DB
	Ingest  IngestRunner
	Cards   CardRefresher
	FeedGen FeedGenerator
	Auth    *ServiceAuth
	Logger  *slog.Logger
	Version string
}

// maxRequestBody caps JSON request bodies. The API only takes tiny trigger
// payloads.
const maxRequestBody = 64 * 1024

// NewRouter assembles the full handler chain:
// requestid -> recover -> CORS -> logging -> metrics -> body limit -> mux.
// The run-trigger endpoints sit behind the service credential; health and
// metrics are open.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /fetch-rss", d.Auth.Middleware(FetchRSSHandler{d.Ingest}))
	mux.Handle("POST /fetch-rss-enhanced", d.Auth.Middleware(FetchRSSEnhancedHandler{d.Ingest}))
	mux.Handle("POST /refresh-cards", d.Auth.Middleware(RefreshCardsHandler{d.Cards}))
	mux.Handle("POST /feeds/autogenerate", d.Auth.Middleware(AutogenerateFeedHandler{d.FeedGen}))

	mux.Handle("GET /health", &HealthHandler{DB: d.DB, Version: d.Version})
	mux.Handle("GET /health/ready", &ReadyHandler{DB: d.DB})
	mux.Handle("GET /health/live", &LiveHandler{})
	mux.Handle("GET /metrics", MetricsHandler())

	var handler http.Handler = mux
	handler = LimitRequestBody(maxRequestBody)(handler)
	handler = Metrics(handler)
	handler = Logging(d.Logger)(handler)
	handler = CORS(handler)
	handler = Recover(d.Logger)(handler)
	handler = requestid.Middleware(handler)

	return handler
}
