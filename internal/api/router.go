// Package api assembles the HTTP facade: routing plus the middleware
// chain shared by the server binary and the handler tests.
package api

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/scoutlabs/retail-pulse/internal/api/handlers"
	"github.com/scoutlabs/retail-pulse/internal/api/middleware"
	"github.com/scoutlabs/retail-pulse/internal/filters"
	"github.com/scoutlabs/retail-pulse/internal/source"
)

// NewRouter wires every endpoint to its handler.
func NewRouter(resolver handlers.Resolver, store *filters.Store, log zerolog.Logger) http.Handler {
	dashboard := handlers.NewDashboardHandler(resolver, store, log)
	filterSel := handlers.NewFiltersHandler(store, log)

	mux := http.NewServeMux()

	get := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			fn(w, r)
		})
	}

	get("/api/v1/health", dashboard.GetResource(source.ResourceHealth))
	get("/api/v1/analytics/overview", dashboard.GetResource(source.ResourceOverview))
	get("/api/v1/analytics/products", dashboard.GetResource(source.ResourceProducts))
	get("/api/v1/analytics/trends", dashboard.GetResource(source.ResourceTrends))
	get("/api/v1/analytics/consumer-behavior", dashboard.GetResource(source.ResourceConsumerBehavior))
	get("/api/v1/filters/counts", dashboard.GetResource(source.ResourceFilterCounts))
	get("/api/v1/ai/insights", dashboard.GetResource(source.ResourceInsights))
	get("/api/v1/status", dashboard.GetStatus)

	mux.HandleFunc("/api/v1/filters/options/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		filterType := strings.TrimPrefix(r.URL.Path, "/api/v1/filters/options/")
		if filterType == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Filter type is required")
			return
		}
		q := r.URL.Query()
		q.Set("type", filterType)
		r.URL.RawQuery = q.Encode()
		dashboard.GetResource(source.ResourceFilterOptions)(w, r)
	})

	mux.HandleFunc("/api/v1/filters/selection", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			filterSel.GetSelection(w, r)
		case http.MethodPost:
			filterSel.SetSelection(w, r)
		case http.MethodDelete:
			filterSel.ClearSelection(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/reconnect", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		dashboard.Reconnect(w, r)
	})

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)
}
