// Command lokal administers the translation store: bulk import/export,
// cache warming, stats, and ad-hoc resolution.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/mahmut0ff/lokal"
	"github.com/mahmut0ff/lokal/cache"
	"github.com/mahmut0ff/lokal/store"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lokal", flag.ContinueOnError)
	fs.SetOutput(stderr)

	table := fs.String("table", "", "DynamoDB table name (default: LOKAL_TABLE env)")
	region := fs.String("region", "", "AWS region (default: SDK resolution)")
	redisURL := fs.String("redis", "", "Redis URL for the snapshot tier (default: snapshots in the table)")
	locale := fs.String("locale", "", "Locale code (e.g. ky, ru, en)")
	category := fs.String("category", "", "Category filter")
	file := fs.String("file", "", "JSON file with a flat key/value map (import)")
	key := fs.String("key", "", "Translation key (resolve)")
	overwrite := fs.Bool("overwrite", false, "Overwrite existing translations on import")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", lokal.Name, lokal.FullVersion())
		return nil
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("a command is required: import, export, stats, coverage, warm, resolve")
	}
	command := fs.Arg(0)

	if *table == "" {
		*table = os.Getenv("LOKAL_TABLE")
	}
	if *table == "" {
		return fmt.Errorf("--table (or LOKAL_TABLE env) is required")
	}

	switch command {
	case "import", "export", "warm", "resolve":
		if *locale == "" {
			return fmt.Errorf("--locale is required for %s", command)
		}
	case "stats", "coverage":
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if command == "import" && *file == "" {
		return fmt.Errorf("--file is required for import")
	}
	if command == "resolve" && *key == "" {
		return fmt.Errorf("--key is required for resolve")
	}

	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	resolver, err := buildResolver(ctx, *table, *region, *redisURL, logger)
	if err != nil {
		return err
	}

	switch command {
	case "import":
		return runImport(ctx, resolver, *locale, *category, *file, *overwrite, stdout)
	case "export":
		return runExport(ctx, resolver, *locale, *category, stdout)
	case "stats":
		return runStats(ctx, resolver, stdout)
	case "coverage":
		return runCoverage(ctx, resolver, stdout)
	case "warm":
		return runWarm(ctx, resolver, *locale, *category, stdout)
	case "resolve":
		res := resolver.Resolve(ctx, lokal.ResolveRequest{Key: *key, Locale: *locale})
		fmt.Fprintln(stdout, res.Value)
		return nil
	}
	return nil
}

// buildResolver wires the store, the two-tier cache, and the engine.
func buildResolver(ctx context.Context, table, region, redisURL string, logger *zap.Logger) (*lokal.Resolver, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	db, err := store.NewDynamoStore(store.DynamoConfig{
		Client: dynamodb.NewFromConfig(awsCfg),
		Table:  table,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	var snapshots cache.SnapshotStore = db
	if redisURL != "" {
		rs, err := cache.NewRedisSnapshotStore(cache.RedisConfig{URL: redisURL})
		if err != nil {
			return nil, fmt.Errorf("connecting redis: %w", err)
		}
		snapshots = rs
	}

	tiered := cache.NewTieredCache(
		cache.NewMemoryCache(cache.MemoryConfig{}),
		snapshots,
		cache.WithLogger(logger),
	)

	retrying := lokal.NewRetryingStore(db, lokal.DefaultRetryConfig())

	return lokal.NewResolver(retrying,
		lokal.WithCache(tiered),
		lokal.WithLogger(logger),
	), nil
}

func runImport(ctx context.Context, resolver *lokal.Resolver, locale, category, path string, overwrite bool, stdout io.Writer) error {
	flat, err := readFlatMap(path)
	if err != nil {
		return err
	}

	report, err := resolver.Import(ctx, locale, flat, category, overwrite)
	if report != nil {
		fmt.Fprintf(stdout, "imported: %d\nskipped:  %d\n", report.Imported, report.Skipped)
		for _, msg := range report.Errors {
			fmt.Fprintf(stdout, "error: %s\n", msg)
		}
	}
	return err
}

func runExport(ctx context.Context, resolver *lokal.Resolver, locale, category string, stdout io.Writer) error {
	flat := resolver.ExportAll(ctx, locale, category)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(flat)
}

func runStats(ctx context.Context, resolver *lokal.Resolver, stdout io.Writer) error {
	stats, err := resolver.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "total: %d\n", stats.Total)

	locales := sortedKeys(stats.PerLocale)
	for _, loc := range locales {
		fmt.Fprintf(stdout, "  %s: %d (%.1f%% complete)\n", loc, stats.PerLocale[loc], stats.Completeness[loc])
	}
	for _, cat := range sortedKeys(stats.PerCategory) {
		fmt.Fprintf(stdout, "  category %s: %d\n", cat, stats.PerCategory[cat])
	}
	return nil
}

func runCoverage(ctx context.Context, resolver *lokal.Resolver, stdout io.Writer) error {
	report, err := resolver.Coverage(ctx)
	if err != nil {
		return err
	}

	locales := make([]string, 0, len(report.MissingByLocale))
	for loc := range report.MissingByLocale {
		locales = append(locales, loc)
	}
	sort.Strings(locales)

	for _, loc := range locales {
		missing := report.MissingByLocale[loc]
		if len(missing) == 0 {
			fmt.Fprintf(stdout, "%s: complete\n", loc)
			continue
		}
		fmt.Fprintf(stdout, "%s: missing %d: %s\n", loc, len(missing), strings.Join(missing, ", "))
	}
	return nil
}

func runWarm(ctx context.Context, resolver *lokal.Resolver, locale, category string, stdout io.Writer) error {
	loaded, err := resolver.Preload(ctx, locale, category)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "warmed %s: %d translations\n", locale, loaded)
	return nil
}

// readFlatMap parses a JSON file holding a flat key→value object.
// The path is provided by the caller and is intentionally user-controlled.
func readFlatMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return flat, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
