package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/cache"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/cpl/parser"
)

var benchFlags struct {
	iterations int
	file       string
	cache      string
	cachePath  string
	format     string
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure parse throughput",
	Long: `Measure parse throughput over a set of patterns.

The bench command parses patterns in a loop and reports throughput and
latency percentiles. The default pattern set covers every tree shape;
use --file to benchmark your own patterns.

With --cache the loop goes through a parse cache, so repeated patterns
measure the cache hit path instead of the parser.

Examples:
  # Basic benchmark
  callisto bench

  # More iterations over your own patterns
  callisto bench --iterations 100000 --file patterns.txt

  # Measure the memory cache hit path
  callisto bench --cache memory

  # JSON output
  callisto bench --format json`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVar(&benchFlags.iterations, "iterations", 10000, "number of parses")
	benchCmd.Flags().StringVarP(&benchFlags.file, "file", "f", "", "file of patterns, one per line")
	benchCmd.Flags().StringVar(&benchFlags.cache, "cache", "", "parse through a cache: memory, sqlite")
	benchCmd.Flags().StringVar(&benchFlags.cachePath, "cache-path", "", "cache database path (required for sqlite)")
	benchCmd.Flags().StringVar(&benchFlags.format, "format", "text", "output format: text, json")
}

// benchPatterns covers the tree shapes the parser produces: literals,
// wildcard, alternation, grouping, and each repetition form.
var benchPatterns = []string{
	"abc",
	"a.c",
	"(a|b)",
	"(a|b)*",
	"(a|b)+c",
	"a{3}",
	"a{2,}",
	"xy{2,5}",
	"((a|b)*c)+",
	"(0|1){8}",
}

// benchResults holds the outcome of one benchmark run.
type benchResults struct {
	Iterations  int           `json:"iterations"`
	Patterns    int           `json:"patterns"`
	OK          int           `json:"ok"`
	Failed      int           `json:"failed"`
	Duration    float64       `json:"duration_seconds"`
	Throughput  float64       `json:"patterns_per_second"`
	Latency     *benchLatency `json:"latency,omitempty"`
	CacheHits   int           `json:"cache_hits,omitempty"`
	CacheMisses int           `json:"cache_misses,omitempty"`

	latencies []time.Duration
}

// benchLatency holds latency percentiles in microseconds.
type benchLatency struct {
	Min    float64 `json:"min_us"`
	Mean   float64 `json:"mean_us"`
	Median float64 `json:"median_us"`
	P95    float64 `json:"p95_us"`
	P99    float64 `json:"p99_us"`
	Max    float64 `json:"max_us"`
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchFlags.iterations <= 0 {
		return fmt.Errorf("iterations must be positive")
	}

	patterns := benchPatterns
	if benchFlags.file != "" {
		filePatterns, err := readPatternFile(benchFlags.file)
		if err != nil {
			return err
		}
		if len(filePatterns) == 0 {
			return fmt.Errorf("no patterns in %s", benchFlags.file)
		}
		patterns = filePatterns
	}

	parseCache, err := openBenchCache()
	if err != nil {
		return cli.NewCommandError("bench", err)
	}
	if parseCache != nil {
		defer parseCache.Close()
	}

	if benchFlags.format != "json" {
		fmt.Println("Callisto Parse Benchmark")
		fmt.Println("========================")
		fmt.Printf("Iterations: %d\n", benchFlags.iterations)
		fmt.Printf("Patterns:   %d unique\n", len(patterns))
		if benchFlags.cache != "" {
			fmt.Printf("Cache:      %s\n", benchFlags.cache)
		}
		fmt.Println()
		fmt.Println("Running...")
		fmt.Println()
	}

	results := runParseLoop(patterns, benchFlags.iterations, parseCache)

	if benchFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}

	displayBenchResults(results)
	return nil
}

// openBenchCache builds the parse cache selected by the --cache flag,
// or nil when the benchmark should hit the parser directly.
func openBenchCache() (cache.Cache, error) {
	switch benchFlags.cache {
	case "", "none":
		return nil, nil
	case "sqlite":
		if benchFlags.cachePath == "" {
			return nil, fmt.Errorf("sqlite cache requires --cache-path")
		}
	case "memory":
		// No extra configuration
	default:
		return nil, fmt.Errorf("unknown cache backend %q (supported: memory, sqlite)", benchFlags.cache)
	}

	cacheCfg := &config.CacheConfig{
		Enabled:    true,
		Backend:    benchFlags.cache,
		SQLitePath: benchFlags.cachePath,
	}
	return cache.New(cacheCfg, quietLogger(), nil)
}

// runParseLoop parses iterations patterns round-robin and collects
// per-parse latencies.
func runParseLoop(patterns []string, iterations int, parseCache cache.Cache) *benchResults {
	results := &benchResults{
		Iterations: iterations,
		Patterns:   len(patterns),
		latencies:  make([]time.Duration, 0, iterations),
	}

	p := parser.NewParser()
	ctx := context.Background()

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(iterations))

	start := time.Now()
	for i := 0; i < iterations; i++ {
		pattern := patterns[i%len(patterns)]

		parseStart := time.Now()
		err := parseOnce(ctx, p, parseCache, pattern, results)
		results.latencies = append(results.latencies, time.Since(parseStart))

		if err != nil {
			results.Failed++
		} else {
			results.OK++
		}

		if (i+1)%1000 == 0 {
			progress.Update(int64(i + 1))
		}
	}
	progress.Finish()

	results.Duration = time.Since(start).Seconds()
	if results.Duration > 0 {
		results.Throughput = float64(results.OK) / results.Duration
	}

	if len(results.latencies) > 0 {
		min, mean, median, p95, p99, max := calculatePercentiles(results.latencies)
		results.Latency = &benchLatency{
			Min:    microseconds(min),
			Mean:   microseconds(mean),
			Median: microseconds(median),
			P95:    microseconds(p95),
			P99:    microseconds(p99),
			Max:    microseconds(max),
		}
	}

	return results
}

// parseOnce performs one benchmark iteration, going through the cache
// when one is configured.
func parseOnce(ctx context.Context, p *parser.Parser, parseCache cache.Cache, pattern string, results *benchResults) error {
	if parseCache != nil {
		if tree, err := parseCache.Get(ctx, pattern); err == nil && tree != nil {
			results.CacheHits++
			return nil
		}
		results.CacheMisses++

		node, err := p.Parse(pattern)
		if err != nil {
			return err
		}
		return parseCache.Put(ctx, pattern, node)
	}

	_, err := p.Parse(pattern)
	return err
}

func displayBenchResults(results *benchResults) {
	fmt.Println()
	fmt.Println("Results:")
	fmt.Println("--------")
	fmt.Printf("Parses:      %d total, %d ok, %d failed\n",
		results.Iterations, results.OK, results.Failed)
	fmt.Printf("Duration:    %.2fs\n", results.Duration)

	if results.Throughput > 0 {
		fmt.Printf("Throughput:  %.0f patterns/s\n", results.Throughput)
	}

	if results.Latency != nil {
		fmt.Println()
		fmt.Println("Latency:")
		fmt.Printf("  Min:     %.1fµs\n", results.Latency.Min)
		fmt.Printf("  Mean:    %.1fµs\n", results.Latency.Mean)
		fmt.Printf("  Median:  %.1fµs\n", results.Latency.Median)
		fmt.Printf("  p95:     %.1fµs\n", results.Latency.P95)
		fmt.Printf("  p99:     %.1fµs\n", results.Latency.P99)
		fmt.Printf("  Max:     %.1fµs\n", results.Latency.Max)
	}

	if results.CacheHits > 0 || results.CacheMisses > 0 {
		total := results.CacheHits + results.CacheMisses
		hitRate := float64(results.CacheHits) / float64(total) * 100
		fmt.Println()
		fmt.Println("Cache:")
		fmt.Printf("  Hits:    %d (%.0f%%)\n", results.CacheHits, hitRate)
		fmt.Printf("  Misses:  %d\n", results.CacheMisses)
	}
}

// calculatePercentiles computes latency percentiles over the collected
// samples.
func calculatePercentiles(latencies []time.Duration) (min, mean, median, p95, p99, max time.Duration) {
	if len(latencies) == 0 {
		return
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	min = sorted[0]
	max = sorted[len(sorted)-1]

	var sum time.Duration
	for _, lat := range sorted {
		sum += lat
	}
	mean = sum / time.Duration(len(sorted))

	median = sorted[len(sorted)/2]
	p95 = sorted[int(float64(len(sorted))*0.95)]
	p99 = sorted[int(float64(len(sorted))*0.99)]

	return
}

func microseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1000
}
