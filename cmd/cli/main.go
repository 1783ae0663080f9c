package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/scoutlabs/retail-pulse/internal/cache"
	"github.com/scoutlabs/retail-pulse/internal/config"
	"github.com/scoutlabs/retail-pulse/internal/datalake"
	"github.com/scoutlabs/retail-pulse/internal/insights"
	"github.com/scoutlabs/retail-pulse/internal/logger"
	"github.com/scoutlabs/retail-pulse/internal/remote"
	"github.com/scoutlabs/retail-pulse/internal/source"
	"github.com/scoutlabs/retail-pulse/internal/static"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "query":
		runQuery(log)
	case "status":
		runStatus(log)
	case "reconnect":
		runReconnect(log)
	case "table":
		runTable(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Retail Pulse CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  query      Resolve a dashboard resource through the source cascade")
	fmt.Println("  status     Print the source selector state after a health probe")
	fmt.Println("  reconnect  Probe the primary source and report reachability")
	fmt.Println("  table      Fetch and summarize one data lake table")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runQuery(log zerolog.Logger) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	resource := fs.String("resource", "overview", "Logical resource to resolve (health, overview, products, trends, consumer-behavior, filter-options, filter-counts, insights)")
	filterArgs := fs.String("filters", "", "Comma-separated key=value filter pairs (e.g. region=NCR,year=2025)")
	fs.Parse(os.Args[2:])

	selector := buildSelector(log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	payload, err := selector.Resolve(ctx, source.Resource(*resource), parseFilters(*filterArgs))
	if err != nil {
		log.Fatal().Err(err).Str("resource", *resource).Msg("Query failed")
	}

	printJSON(payload)
	fmt.Fprintf(os.Stderr, "served by: %s\n", selector.Status().CurrentDataSource)
}

func runStatus(log zerolog.Logger) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	selector := buildSelector(log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// One health resolution so the snapshot reflects live reachability
	// instead of construction-time defaults.
	if _, err := selector.Resolve(ctx, source.ResourceHealth, nil); err != nil {
		log.Warn().Err(err).Msg("Health resolution failed on every tier")
	}

	out, err := json.MarshalIndent(selector.Status(), "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal status")
	}
	fmt.Println(string(out))
}

func runReconnect(log zerolog.Logger) {
	fs := flag.NewFlagSet("reconnect", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	selector := buildSelector(log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if selector.Reconnect(ctx) {
		fmt.Println("Primary source reachable.")
		return
	}
	fmt.Println("Primary source unreachable, fallback mode stays on.")
	os.Exit(1)
}

func runTable(log zerolog.Logger) {
	fs := flag.NewFlagSet("table", flag.ExitOnError)
	file := fs.String("file", "transactions.csv", "Table file to fetch from the data lake")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	accessor, err := buildAccessor(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build data lake accessor")
	}

	records, err := accessor.FetchTable(ctx, *file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Table fetch failed")
	}

	fmt.Printf("%s: %d records\n", *file, len(records))
	if len(records) > 0 {
		sample, _ := json.MarshalIndent(records[0], "", "  ")
		fmt.Printf("first record:\n%s\n", sample)
	}
}

func buildSelector(log zerolog.Logger) *source.Selector {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	primary := remote.NewClient(cfg.APIBaseURL,
		remote.WithMetadata(cfg.Platform, cfg.Version),
		remote.WithClientLogger(logger.Component(log, "remote")),
	)

	var fallbacks []source.Provider
	if cfg.UseDataLake {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		accessor, err := buildAccessor(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build data lake accessor")
		}
		fallbacks = append(fallbacks, accessor)
	}
	if cfg.UseMockFallback {
		fallbacks = append(fallbacks, static.NewProvider())
	}

	return source.NewSelector(primary, fallbacks,
		source.WithFailureThreshold(cfg.FailureThreshold),
		source.WithPlatformInfo(cfg.Platform, cfg.APIBaseURL),
		source.WithLogger(logger.Component(log, "selector")),
	)
}

func buildAccessor(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*datalake.Accessor, error) {
	var fetcher datalake.BlobFetcher
	if cfg.GCSBucket != "" {
		gcs, err := datalake.NewGCSFetcher(ctx, cfg.GCSBucket, true)
		if err != nil {
			return nil, err
		}
		fetcher = gcs
	} else {
		fetcher = datalake.NewAzureFetcher(cfg.StorageAccount, cfg.Container, cfg.SASToken)
	}

	var gen datalake.InsightsGenerator
	if cfg.UseGemini {
		gen = insights.NewGenerator(cfg.GeminiModel)
	} else {
		gen = insights.NewRuleBased()
	}

	return datalake.NewAccessor(fetcher, cache.New(),
		datalake.WithTableTTL(cfg.TableTTL),
		datalake.WithInsights(gen),
		datalake.WithAccessorLogger(logger.Component(log, "datalake")),
	), nil
}

func printJSON(payload json.RawMessage) {
	var indented bytes.Buffer
	if err := json.Indent(&indented, payload, "", "  "); err != nil {
		fmt.Println(string(payload))
		return
	}
	fmt.Println(indented.String())
}

func parseFilters(raw string) source.Params {
	params := source.Params{}
	if raw == "" {
		return params
	}
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		params[key] = value
	}
	return params
}
