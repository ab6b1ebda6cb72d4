package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/library"
	"mercator-hq/callisto/pkg/report"
	"mercator-hq/callisto/pkg/telemetry/health"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

var watchFlags struct {
	metricsAddress string
	noMetrics      bool
	logLevel       string
	dryRun         bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the catalog library and serve metrics",
	Long: `Watch the catalog library and keep it loaded.

The watch command loads the configured catalog library, then keeps it
current: local directories are re-parsed when files change, and git
sources are polled for new commits. Parse and reload metrics are served
on a Prometheus endpoint along with health and readiness probes.

Examples:
  # Watch with default config
  callisto watch

  # Watch with custom config
  callisto watch --config /etc/callisto/config.yaml

  # Override the metrics listen address
  callisto watch --metrics-address 0.0.0.0:9090

  # Validate config without starting
  callisto watch --dry-run`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.metricsAddress, "metrics-address", "", "override metrics listen address")
	watchCmd.Flags().BoolVar(&watchFlags.noMetrics, "no-metrics", false, "disable the metrics and health endpoints")
	watchCmd.Flags().StringVar(&watchFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	watchCmd.Flags().BoolVar(&watchFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if watchFlags.logLevel != "" {
		cfg.Logging.Level = watchFlags.logLevel
	}
	if watchFlags.metricsAddress != "" {
		cfg.Watch.MetricsAddress = watchFlags.metricsAddress
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	if watchFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printWatchBanner(cfg)

	collector := metrics.NewCollector(nil)

	// Load the catalog library
	logger.Info("initializing catalog library")
	manager, err := library.NewManager(&cfg.Library, newPatternParser(cfg), logger, collector)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer manager.Close()

	if err := manager.Load(); err != nil {
		return cli.NewCommandError("watch", fmt.Errorf("initial catalog load failed: %w", err))
	}
	stats := manager.Stats()
	fmt.Printf("✓ Catalogs loaded (%d catalogs, %d patterns)\n", stats.CatalogCount, stats.PatternCount)

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	// Initialize report pruning (if enabled)
	if cfg.Reports.Enabled {
		logger.Info("initializing report store", "backend", cfg.Reports.Backend)

		store, err := openReportStore(cfg, "")
		if err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer store.Close()

		// Start retention pruner if schedule is configured
		if cfg.Reports.PruneSchedule != "" {
			retentionCfg := &report.RetentionConfig{
				RetentionDays: cfg.Reports.RetentionDays,
				PruneSchedule: cfg.Reports.PruneSchedule,
			}
			pruner := report.NewPruner(store, retentionCfg, logger, collector)
			if err := pruner.Start(ctx); err != nil {
				logger.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					logger.Debug("report retention scheduler started", "next_pruning", next)
				}
			}
		}

		fmt.Println("✓ Report store initialized")
	}

	// Health checks
	checker := health.New(5 * time.Second)
	checker.RegisterCheck("catalogs", func(ctx context.Context) error {
		return manager.LastLoadError()
	})

	errChan := make(chan error, 2)

	// Serve metrics and health endpoints
	var srv *http.Server
	if !watchFlags.noMetrics {
		mux := http.NewServeMux()
		mux.Handle(cfg.Watch.MetricsPath, collector.Handler())
		health.HTTPMiddleware(mux, checker, Version, GitCommit, BuildDate)

		srv = &http.Server{
			Addr:    cfg.Watch.MetricsAddress,
			Handler: mux,
		}
		go func() {
			logger.Info("starting metrics server", "address", cfg.Watch.MetricsAddress)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("metrics server error: %w", err)
			}
		}()

		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Watch.MetricsAddress, cfg.Watch.MetricsPath)
		fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Watch.MetricsAddress)
	}

	// Watch for catalog changes in the background
	go func() {
		if err := manager.Watch(ctx); err != nil {
			errChan <- fmt.Errorf("watch error: %w", err)
		}
	}()

	fmt.Println()
	if cfg.Library.Git.URL != "" {
		fmt.Printf("✓ Watching git %s (branch %s)\n", cfg.Library.Git.URL, cfg.Library.Git.Branch)
	} else {
		fmt.Printf("✓ Watching %s\n", cfg.Library.Dir)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or background error
	select {
	case err := <-errChan:
		return cli.NewCommandError("watch", err)
	case <-ctx.Done():
		fmt.Println("\nShutting down gracefully...")

		if srv != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", "error", err)
			}
		}

		fmt.Println("✓ Watch stopped")
		return nil
	}
}

func printWatchBanner(cfg *config.Config) {
	fmt.Printf("Callisto v%s\n", Version)
	if _, err := os.Stat(cfgFile); err == nil {
		fmt.Printf("Loading configuration from: %s\n", cfgFile)
		fmt.Println("✓ Configuration loaded")
	} else {
		fmt.Println("✓ Using default configuration")
	}

	if cfg.Library.Git.URL != "" {
		slog.Debug("library source", "mode", "git", "url", cfg.Library.Git.URL)
	} else {
		slog.Debug("library source", "mode", "dir", "path", cfg.Library.Dir)
	}

	if cfg.Reports.Enabled {
		slog.Debug("reports enabled", "backend", cfg.Reports.Backend)
	}
}
