// Package handlers exposes the data-resolution chain over HTTP. Every
// analytics endpoint resolves through the source selector, so the
// fallback cascade applies uniformly no matter which view asks.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/scoutlabs/retail-pulse/internal/api/middleware"
	"github.com/scoutlabs/retail-pulse/internal/filters"
	"github.com/scoutlabs/retail-pulse/internal/source"
)

// Resolver is the part of the source selector the handlers consume.
type Resolver interface {
	Resolve(ctx context.Context, resource source.Resource, params source.Params) (json.RawMessage, error)
	Reconnect(ctx context.Context) bool
	Status() source.Status
}

// DashboardHandler answers the analytics endpoints.
type DashboardHandler struct {
	resolver Resolver
	filters  *filters.Store
	log      zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(resolver Resolver, store *filters.Store, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		resolver: resolver,
		filters:  store,
		log:      log,
	}
}

// GetResource handles the GET analytics endpoints. The active filter
// selection is merged under any explicit query parameters, and the
// response is dropped if the selection changed while the fetch was in
// flight, so a slow response for stale filters never reaches a client
// that has since moved on.
func (h *DashboardHandler) GetResource(resource source.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, generation := h.filters.Active()
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		payload, err := h.resolver.Resolve(ctx, resource, params)
		if err != nil {
			if source.IsClientError(err) {
				h.log.Warn().Err(err).Str("resource", string(resource)).Msg("Rejected upstream as a bad request")
				middleware.WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			h.log.Error().Err(err).Str("resource", string(resource)).Msg("Every data source failed")
			middleware.WriteError(w, http.StatusServiceUnavailable, "No data source available")
			return
		}

		if h.filters.Generation() != generation {
			h.log.Debug().
				Str("resource", string(resource)).
				Uint64("generation", generation).
				Msg("Discarding response for a stale filter selection")
			middleware.WriteError(w, http.StatusConflict, "Filter selection changed, retry the query")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(payload)
	}
}

// GetStatus handles GET /api/v1/status
func (h *DashboardHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.resolver.Status())
}

// Reconnect handles POST /api/v1/reconnect
func (h *DashboardHandler) Reconnect(w http.ResponseWriter, r *http.Request) {
	reachable := h.resolver.Reconnect(r.Context())
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reachable": reachable,
		"status":    h.resolver.Status(),
	})
}

// FiltersHandler mutates and reads the server-side filter selection.
type FiltersHandler struct {
	filters *filters.Store
	log     zerolog.Logger
}

// NewFiltersHandler creates a new filter-selection handler.
func NewFiltersHandler(store *filters.Store, log zerolog.Logger) *FiltersHandler {
	return &FiltersHandler{filters: store, log: log}
}

// GetSelection handles GET /api/v1/filters/selection
func (h *FiltersHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	active, generation := h.filters.Active()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"selection":  active,
		"generation": generation,
	})
}

// SetSelection handles POST /api/v1/filters/selection
func (h *FiltersHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Key == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Filter key is required")
		return
	}

	generation := h.filters.Set(req.Key, req.Value)
	active, _ := h.filters.Active()

	h.log.Info().
		Str("key", req.Key).
		Str("value", req.Value).
		Uint64("generation", generation).
		Msg("Filter selection updated")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"selection":  active,
		"generation": generation,
	})
}

// ClearSelection handles DELETE /api/v1/filters/selection
func (h *FiltersHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	generation := h.filters.Clear()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"selection":  source.Params{},
		"generation": generation,
	})
}

// Health handles GET /health for the facade process itself.
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
