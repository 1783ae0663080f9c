package remote

import (
	"fmt"
	"net/url"

	"github.com/scoutlabs/retail-pulse/internal/source"
)

// endpointPaths maps logical resources to backend routes. Every route is an
// idempotent GET accepting the flattened filter query string.
var endpointPaths = map[source.Resource]string{
	source.ResourceHealth:           "/health",
	source.ResourceOverview:         "/api/v1/analytics/overview",
	source.ResourceFilterCounts:     "/api/v1/filters/counts",
	source.ResourceProducts:         "/api/v1/analytics/products",
	source.ResourceTrends:           "/api/v1/analytics/trends",
	source.ResourceConsumerBehavior: "/api/v1/analytics/consumer-behavior",
	source.ResourceInsights:         "/api/v1/ai/insights",
}

// endpointURL builds the full request URL for a resource. The filter-options
// route embeds the "type" parameter in the path; everything else carries all
// parameters in the query string.
func endpointURL(baseURL string, resource source.Resource, params source.Params) (string, error) {
	path := ""
	query := url.Values{}

	switch resource {
	case source.ResourceFilterOptions:
		filterType := params["type"]
		if filterType == "" {
			return "", fmt.Errorf("endpointURL: filter-options requires a type parameter")
		}
		path = "/api/v1/filters/options/" + url.PathEscape(filterType)
		for k, v := range params {
			if k != "type" {
				query.Set(k, v)
			}
		}
	default:
		p, ok := endpointPaths[resource]
		if !ok {
			return "", fmt.Errorf("endpointURL: unknown resource %q", resource)
		}
		path = p
		for k, v := range params {
			query.Set(k, v)
		}
	}

	u := baseURL + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u, nil
}
