// Package static serves embedded fixture payloads for every dashboard
// resource. It is the last resolution tier and never fails, so the
// dashboard always has something to render.
package static

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/scoutlabs/retail-pulse/internal/source"
)

//go:embed data/*.json
var fixtures embed.FS

var resourceFiles = map[source.Resource]string{
	source.ResourceHealth:           "data/health.json",
	source.ResourceOverview:         "data/overview.json",
	source.ResourceProducts:         "data/products.json",
	source.ResourceTrends:           "data/trends.json",
	source.ResourceConsumerBehavior: "data/consumer-behavior.json",
	source.ResourceFilterOptions:    "data/filter-options.json",
	source.ResourceFilterCounts:     "data/filter-counts.json",
	source.ResourceInsights:         "data/insights.json",
}

// Provider serves fixture data from the binary itself.
type Provider struct{}

var _ source.Provider = (*Provider)(nil)

func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string {
	return source.NameMock
}

// Fetch returns the embedded fixture for the resource. Filter options
// are stored as one object keyed by filter type; the requested type's
// list is extracted, with an empty list for unknown types.
func (p *Provider) Fetch(ctx context.Context, resource source.Resource, params source.Params) (json.RawMessage, error) {
	file, ok := resourceFiles[resource]
	if !ok {
		return nil, fmt.Errorf("static fetch: unknown resource %q", resource)
	}

	raw, err := fixtures.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("static fetch: read fixture %s: %w", file, err)
	}

	if resource == source.ResourceFilterOptions {
		return filterOptions(raw, params["type"])
	}
	return json.RawMessage(raw), nil
}

func filterOptions(raw []byte, filterType string) (json.RawMessage, error) {
	var byType map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byType); err != nil {
		return nil, fmt.Errorf("static fetch: decode filter options: %w", err)
	}
	if list, ok := byType[filterType]; ok {
		return list, nil
	}
	return json.RawMessage(`[]`), nil
}
