// Package datalake implements the second tier of the source cascade: it
// pulls the lake's normalized CSV tables from object storage, joins them
// in memory, and computes the same aggregates the remote backend serves.
package datalake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/scoutlabs/retail-pulse/internal/cache"
	"github.com/scoutlabs/retail-pulse/internal/source"
	"golang.org/x/sync/errgroup"
)

// DefaultTableTTL is how long a fetched table stays cached.
const DefaultTableTTL = 15 * time.Minute

// InsightsGenerator produces the ai/insights payload from lake aggregates.
// The content is opaque to this package.
type InsightsGenerator interface {
	Generate(ctx context.Context, kpi KPIMetrics, products []ProductPerformance) (json.RawMessage, error)
}

// Accessor answers analytics resources from the data lake.
type Accessor struct {
	fetcher  BlobFetcher
	cache    *cache.Cache
	ttl      time.Duration
	insights InsightsGenerator
	log      zerolog.Logger
}

// AccessorOption configures an Accessor.
type AccessorOption func(*Accessor)

// WithTableTTL overrides the per-table cache TTL.
func WithTableTTL(ttl time.Duration) AccessorOption {
	return func(a *Accessor) { a.ttl = ttl }
}

// WithInsights attaches an insights generator for the ai/insights resource.
func WithInsights(g InsightsGenerator) AccessorOption {
	return func(a *Accessor) { a.insights = g }
}

// WithAccessorLogger sets the accessor's logger.
func WithAccessorLogger(log zerolog.Logger) AccessorOption {
	return func(a *Accessor) { a.log = log }
}

// NewAccessor creates an accessor over the given blob fetcher and cache.
func NewAccessor(fetcher BlobFetcher, c *cache.Cache, opts ...AccessorOption) *Accessor {
	a := &Accessor{
		fetcher: fetcher,
		cache:   c,
		ttl:     DefaultTableTTL,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Name implements source.Provider.
func (a *Accessor) Name() string { return source.NameDataLake }

// FetchTable returns the parsed, schema-validated rows of one lake table.
// Results are cached per filename; concurrent cold fetches for the same file
// share one download.
func (a *Accessor) FetchTable(ctx context.Context, filename string) ([]Record, error) {
	schema, ok := schemas[filename]
	if !ok {
		return nil, fmt.Errorf("FetchTable: unknown table %q", filename)
	}

	payload, err := a.cache.GetOrFetch(ctx, filename, a.ttl, func(ctx context.Context) (interface{}, error) {
		start := time.Now()
		data, err := a.fetcher.FetchBlob(ctx, filename)
		if err != nil {
			return nil, err
		}
		records, err := parseTable(data, schema)
		if err != nil {
			return nil, err
		}
		a.log.Debug().
			Str("table", filename).
			Int("rows", len(records)).
			Dur("duration", time.Since(start)).
			Msg("Table fetched and parsed")
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return payload.([]Record), nil
}

// Fetch implements source.Provider.
func (a *Accessor) Fetch(ctx context.Context, resource source.Resource, params source.Params) (json.RawMessage, error) {
	if resource == source.ResourceHealth {
		// The lake is healthy when the fact table is reachable.
		if _, err := a.FetchTable(ctx, FileTransactions); err != nil {
			return nil, err
		}
		return marshal(map[string]string{"status": "healthy", "source": source.NameDataLake})
	}

	ds, err := a.loadDataset(ctx)
	if err != nil {
		return nil, err
	}

	switch resource {
	case source.ResourceFilterOptions:
		return marshal(filterOptions(ds, params["type"]))
	case source.ResourceFilterCounts:
		return marshal(filterCounts(ds))
	}

	enriched := applyFilters(buildEnriched(ds), params)
	if len(enriched) == 0 {
		return nil, &source.EmptyResultError{Resource: string(resource)}
	}

	switch resource {
	case source.ResourceOverview:
		return marshal(computeKPIs(enriched))
	case source.ResourceProducts:
		return marshal(computeProductPerformance(enriched))
	case source.ResourceTrends:
		return marshal(computeTrends(enriched))
	case source.ResourceConsumerBehavior:
		return marshal(computeConsumerBehavior(enriched))
	case source.ResourceInsights:
		if a.insights == nil {
			return nil, &source.EmptyResultError{Resource: string(resource)}
		}
		return a.insights.Generate(ctx, computeKPIs(enriched), computeProductPerformance(enriched))
	default:
		return nil, fmt.Errorf("Fetch: unknown resource %q", resource)
	}
}

// loadDataset fetches all six tables concurrently and maps them to typed
// rows. Any table failure fails the whole cycle; no partial results.
func (a *Accessor) loadDataset(ctx context.Context) (dataset, error) {
	var (
		ds      dataset
		records = make(map[string][]Record, len(schemas))
	)

	g, gctx := errgroup.WithContext(ctx)
	results := make([]struct {
		file string
		recs []Record
	}, len(tableFiles))
	for i, file := range tableFiles {
		g.Go(func() error {
			recs, err := a.FetchTable(gctx, file)
			if err != nil {
				return err
			}
			results[i].file = file
			results[i].recs = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ds, err
	}
	for _, r := range results {
		records[r.file] = r.recs
	}

	txs, err := mapTransactions(records[FileTransactions])
	if err != nil {
		return ds, err
	}
	ds.transactions = txs
	ds.items = mapTransactionItems(records[FileTransactionItems])
	ds.customers = mapCustomers(records[FileCustomers])
	ds.stores = mapStores(records[FileStores])
	ds.products = mapProducts(records[FileProducts])
	ds.brands = mapBrands(records[FileBrands])
	return ds, nil
}

// tableFiles is the fetch order for a full dataset cycle.
var tableFiles = []string{
	FileTransactions,
	FileTransactionItems,
	FileCustomers,
	FileStores,
	FileProducts,
	FileBrands,
}

func marshal(v interface{}) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return b, nil
}

var _ source.Provider = (*Accessor)(nil)
