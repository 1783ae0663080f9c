// Package source decides, for every analytics query, which data source
// answers it. Providers form an ordered cascade {remote API, data-lake CSVs,
// static fixtures}; the Selector walks the cascade per call and tracks source
// health across calls so an outage is not silently retried on every query.
package source

import (
	"context"
	"encoding/json"
)

// Resource is a logical query the dashboard can ask for.
type Resource string

const (
	ResourceHealth           Resource = "health"
	ResourceOverview         Resource = "overview"
	ResourceFilterOptions    Resource = "filter-options"
	ResourceFilterCounts     Resource = "filter-counts"
	ResourceProducts         Resource = "products"
	ResourceTrends           Resource = "trends"
	ResourceConsumerBehavior Resource = "consumer-behavior"
	ResourceInsights         Resource = "insights"
)

// Params is the flattened filter map attached to a query, produced by the
// filter store and passed verbatim to each provider.
type Params map[string]string

// Provider is one tier of the cascade. Fetch either answers the resource or
// returns one of the typed errors from this package so the Selector can
// classify the failure.
type Provider interface {
	// Name identifies the tier in status reports ("azure-api", "data-lake", "mock").
	Name() string

	// Fetch resolves one logical resource with the given filter parameters.
	Fetch(ctx context.Context, resource Resource, params Params) (json.RawMessage, error)
}

// Well-known provider names, also the values of currentDataSource in the
// exposed status object.
const (
	NameAzureAPI = "azure-api"
	NameDataLake = "data-lake"
	NameMock     = "mock"
)
