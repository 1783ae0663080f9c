package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultFailureThreshold is how many consecutive primary failures flip the
// selector into fallback mode when none of them was fatal on its own.
const DefaultFailureThreshold = 3

// Status is the read-only snapshot exposed to the status display. It is the
// sole contract between the selector and the outside world.
type Status struct {
	Platform            string          `json:"platform"`
	APIURL              string          `json:"apiUrl"`
	UseMockFallback     bool            `json:"useMockFallback"`
	UseDataLake         bool            `json:"useDataLake"`
	CurrentDataSource   string          `json:"currentDataSource"`
	ConsecutiveFailures int             `json:"consecutiveFailures"`
	AzureConnected      bool            `json:"azureConnected"`
	DataLakeConnected   bool            `json:"dataLakeConnected"`
	Features            map[string]bool `json:"features"`
}

// Selector walks the provider cascade per query and keeps the cross-query
// health state: consecutive primary failures and the sticky fallback flag.
// Once the flag is set the primary tier is skipped until a Reconnect probe
// succeeds, so an unreachable backend is not hammered on every call.
type Selector struct {
	mu        sync.Mutex
	primary   Provider
	fallbacks []Provider

	threshold    int
	failures     int
	fallbackMode bool
	current      string
	dataLakeOK   bool

	platform string
	apiURL   string
	features map[string]bool

	metrics *Metrics
	log     zerolog.Logger
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithFailureThreshold overrides the consecutive-failure threshold.
func WithFailureThreshold(n int) SelectorOption {
	return func(s *Selector) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// WithPlatformInfo sets the deployment metadata reported in Status.
func WithPlatformInfo(platform, apiURL string) SelectorOption {
	return func(s *Selector) {
		s.platform = platform
		s.apiURL = apiURL
	}
}

// WithFeatures sets the feature flags reported in Status.
func WithFeatures(features map[string]bool) SelectorOption {
	return func(s *Selector) { s.features = features }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *Metrics) SelectorOption {
	return func(s *Selector) { s.metrics = m }
}

// WithLogger sets the selector's logger.
func WithLogger(log zerolog.Logger) SelectorOption {
	return func(s *Selector) { s.log = log }
}

// NewSelector builds a selector over the primary provider and an ordered list
// of fallback providers. The last fallback is expected to be the static tier,
// which cannot fail.
func NewSelector(primary Provider, fallbacks []Provider, opts ...SelectorOption) *Selector {
	s := &Selector{
		primary:    primary,
		fallbacks:  fallbacks,
		threshold:  DefaultFailureThreshold,
		current:    primary.Name(),
		dataLakeOK: hasProvider(fallbacks, NameDataLake),
		features:   map[string]bool{},
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func hasProvider(providers []Provider, name string) bool {
	for _, p := range providers {
		if p.Name() == name {
			return true
		}
	}
	return false
}

// Resolve answers one logical resource by trying sources in priority order.
// A ClientError from the primary is returned as-is: it means the request was
// malformed, not that the source is down.
func (s *Selector) Resolve(ctx context.Context, resource Resource, params Params) (json.RawMessage, error) {
	if s.primaryAllowed() {
		payload, err := s.primary.Fetch(ctx, resource, params)
		if err == nil {
			s.recordPrimarySuccess()
			s.observe(s.primary.Name(), "success")
			return payload, nil
		}
		if IsClientError(err) {
			s.observe(s.primary.Name(), "client_error")
			return nil, err
		}
		s.recordPrimaryFailure(err)
		s.observe(s.primary.Name(), "failure")
		s.log.Warn().
			Err(err).
			Str("resource", string(resource)).
			Msg("Primary source failed, walking fallback cascade")
	}

	var lastErr error
	for _, p := range s.fallbacks {
		payload, err := p.Fetch(ctx, resource, params)
		if err == nil {
			s.recordFallbackSuccess(p.Name())
			s.observe(p.Name(), "success")
			return payload, nil
		}
		lastErr = err
		s.recordFallbackFailure(p.Name())
		s.observe(p.Name(), "failure")
		s.log.Warn().
			Err(err).
			Str("provider", p.Name()).
			Str("resource", string(resource)).
			Msg("Fallback source failed")
	}

	if lastErr == nil {
		lastErr = &EmptyResultError{Resource: string(resource)}
	}
	return nil, fmt.Errorf("source: every tier failed for %s: %w", resource, lastErr)
}

// Reconnect resets the failure counter, clears the fallback flag, and probes
// the primary source with a health request. If the probe fails the flag is
// re-set. Returns whether the primary source is reachable.
func (s *Selector) Reconnect(ctx context.Context) bool {
	s.mu.Lock()
	s.failures = 0
	s.fallbackMode = false
	s.mu.Unlock()
	s.setFailureGauge(0)

	_, err := s.primary.Fetch(ctx, ResourceHealth, nil)
	if err != nil {
		s.mu.Lock()
		s.failures++
		s.fallbackMode = true
		failures := s.failures
		s.mu.Unlock()
		s.setFailureGauge(failures)
		s.observe(s.primary.Name(), "failure")
		s.log.Warn().Err(err).Msg("Reconnect probe failed, staying in fallback mode")
		return false
	}

	s.recordPrimarySuccess()
	s.observe(s.primary.Name(), "success")
	s.log.Info().Msg("Reconnect probe succeeded, primary source restored")
	return true
}

// Status returns the current health snapshot.
func (s *Selector) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	features := make(map[string]bool, len(s.features))
	for k, v := range s.features {
		features[k] = v
	}

	return Status{
		Platform:            s.platform,
		APIURL:              s.apiURL,
		UseMockFallback:     s.fallbackMode,
		UseDataLake:         hasProvider(s.fallbacks, NameDataLake),
		CurrentDataSource:   s.current,
		ConsecutiveFailures: s.failures,
		AzureConnected:      !s.fallbackMode,
		DataLakeConnected:   s.dataLakeOK,
		Features:            features,
	}
}

func (s *Selector) primaryAllowed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.fallbackMode
}

func (s *Selector) recordPrimarySuccess() {
	s.mu.Lock()
	s.failures = 0
	s.fallbackMode = false
	s.current = s.primary.Name()
	s.mu.Unlock()
	s.setFailureGauge(0)
}

func (s *Selector) recordPrimaryFailure(err error) {
	s.mu.Lock()
	s.failures++
	tripped := false
	if !s.fallbackMode && (IsFatal(err) || s.failures >= s.threshold) {
		s.fallbackMode = true
		tripped = true
	}
	failures := s.failures
	s.mu.Unlock()

	s.setFailureGauge(failures)
	if tripped {
		if s.metrics != nil {
			s.metrics.FallbackTransitions.Inc()
		}
		s.log.Error().
			Int("consecutive_failures", failures).
			Bool("fatal", IsFatal(err)).
			Msg("Primary source marked unavailable")
	}
}

func (s *Selector) recordFallbackSuccess(name string) {
	s.mu.Lock()
	s.current = name
	if name == NameDataLake {
		s.dataLakeOK = true
	}
	s.mu.Unlock()
}

func (s *Selector) recordFallbackFailure(name string) {
	s.mu.Lock()
	if name == NameDataLake {
		s.dataLakeOK = false
	}
	s.mu.Unlock()
}

func (s *Selector) observe(provider, outcome string) {
	if s.metrics != nil {
		s.metrics.Attempts.WithLabelValues(provider, outcome).Inc()
	}
}

func (s *Selector) setFailureGauge(n int) {
	if s.metrics != nil {
		s.metrics.ConsecutiveFailures.Set(float64(n))
	}
}
