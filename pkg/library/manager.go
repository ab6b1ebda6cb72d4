package library

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/cpl/parser"
	"mercator-hq/callisto/pkg/library/git"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

// gitCloneTimeout bounds the initial clone performed by NewManager.
const gitCloneTimeout = 60 * time.Second

// Manager coordinates catalog loading, registration, and hot-reload.
// It is the single entry point the commands use: Load() populates the
// registry, Watch() keeps it current, and the read methods serve
// lookups from the atomically swapped catalog set.
type Manager struct {
	config   *config.LibraryConfig
	loader   *Loader
	registry *Registry
	logger   *slog.Logger
	metrics  *metrics.Collector

	// Git source management
	gitSource *git.Source
	gitPoller *git.Poller

	// State management
	mu               sync.Mutex
	lastLoadTime     time.Time
	lastLoadError    error
	lastGoodCatalogs []*Catalog

	// Watch management
	watchMu     sync.Mutex
	watchCancel context.CancelFunc
}

// NewManager creates a new catalog manager. The parser verifies every
// catalog entry on load; the collector may be nil when metrics are not
// being served.
func NewManager(cfg *config.LibraryConfig, p *parser.Parser, logger *slog.Logger, collector *metrics.Collector) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		config:           cfg,
		loader:           NewLoader(DefaultLoaderConfig(), p),
		registry:         NewRegistry(),
		logger:           logger,
		metrics:          collector,
		lastGoodCatalogs: []*Catalog{},
	}

	// Initialize the git source if a repository is configured
	if cfg.Git.URL != "" {
		logger.Info("initializing git catalog source",
			"repository", cfg.Git.URL,
			"branch", cfg.Git.Branch,
		)

		gitSource, err := git.NewSource(&cfg.Git)
		if err != nil {
			return nil, fmt.Errorf("failed to create git source: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), gitCloneTimeout)
		defer cancel()

		if err := gitSource.Clone(ctx); err != nil {
			return nil, fmt.Errorf("failed to clone catalog repository: %w", err)
		}

		m.gitSource = gitSource

		if cfg.Git.PollInterval > 0 {
			m.gitPoller = git.NewPoller(gitSource, cfg.Git.PollInterval, m.reloadFromGit)
			m.gitPoller.SetLogger(logger)
		}
	}

	return m, nil
}

// Load loads all catalogs from the configured source into the
// registry. The whole set is validated before any of it is applied.
func (m *Manager) Load() error {
	return m.load("initial")
}

// Reload reloads all catalogs from the configured source. This is an
// atomic operation: if loading or validation fails, the previous
// catalogs remain active.
func (m *Manager) Reload() error {
	return m.load("manual")
}

// load performs one load cycle. The trigger names what requested it
// ("initial", "manual", "watch", "rescan", "git") and labels the
// reload metric.
func (m *Manager) load(trigger string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	startTime := time.Now()
	m.logger.Info("loading catalogs",
		"path", m.catalogPath(),
		"trigger", trigger,
	)

	catalogs, err := m.loadFromSource()
	if err != nil {
		m.lastLoadError = err
		m.metrics.RecordReload(trigger, "error", time.Since(startTime))
		m.logger.Error("failed to load catalogs, keeping previous catalogs",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		return err
	}

	m.warnDuplicateNames(catalogs)

	if err := m.registry.Replace(catalogs); err != nil {
		m.lastLoadError = err
		m.metrics.RecordReload(trigger, "error", time.Since(startTime))
		m.logger.Error("failed to register catalogs, keeping previous catalogs",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		// Attempt to restore last good catalogs
		if len(m.lastGoodCatalogs) > 0 {
			_ = m.registry.Replace(m.lastGoodCatalogs)
		}
		return err
	}

	m.lastLoadTime = time.Now()
	m.lastLoadError = nil
	m.lastGoodCatalogs = catalogs

	m.metrics.RecordReload(trigger, "success", time.Since(startTime))
	m.metrics.UpdateCatalogCount(m.registry.Count())
	m.metrics.ResetPatternCounts()
	for _, catalog := range catalogs {
		m.metrics.UpdatePatternCount(catalog.Name, len(catalog.Patterns))
	}

	m.logger.Info("catalogs loaded",
		"catalogs", len(catalogs),
		"patterns", m.registry.PatternCount(),
		"version", m.registry.Version(),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return nil
}

// loadFromSource loads catalogs from the configured directory or the
// git checkout.
func (m *Manager) loadFromSource() ([]*Catalog, error) {
	path := m.catalogPath()

	isDir, err := m.loader.IsDirectory(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access catalog path: %w", err)
	}

	if isDir {
		catalogs, err := m.loader.LoadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalogs from directory: %w", err)
		}
		return catalogs, nil
	}

	catalog, err := m.loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog file: %w", err)
	}
	return []*Catalog{catalog}, nil
}

// catalogPath returns the directory catalogs are loaded from: the git
// checkout when a git source is configured, the configured directory
// otherwise.
func (m *Manager) catalogPath() string {
	if m.gitSource != nil {
		return m.gitSource.CatalogPath()
	}
	return m.config.Dir
}

// warnDuplicateNames logs catalogs that share a name. The registry
// keeps the last one registered.
func (m *Manager) warnDuplicateNames(catalogs []*Catalog) {
	seen := make(map[string]string, len(catalogs))
	for _, catalog := range catalogs {
		if prev, ok := seen[catalog.Name]; ok {
			m.logger.Warn("duplicate catalog name, last one wins",
				"catalog", catalog.Name,
				"file", catalog.SourceFile,
				"previous_file", prev,
			)
		}
		seen[catalog.Name] = catalog.SourceFile
	}
}

// Get retrieves a catalog by name.
func (m *Manager) Get(name string) (*Catalog, bool) {
	return m.registry.Get(name)
}

// GetAll retrieves all loaded catalogs sorted by name.
func (m *Manager) GetAll() []*Catalog {
	return m.registry.GetAllSorted()
}

// Lookup finds a pattern by name across all catalogs.
func (m *Manager) Lookup(patternName string) (*Pattern, *Catalog, bool) {
	return m.registry.Lookup(patternName)
}

// Version returns the version hash of the loaded catalog set.
func (m *Manager) Version() string {
	return m.registry.Version()
}

// Stats returns statistics about the loaded catalogs.
func (m *Manager) Stats() RegistryStats {
	return m.registry.Stats()
}

// Registry returns the underlying catalog registry.
// This is useful for testing and introspection.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// LastLoadTime returns the timestamp of the last successful load.
func (m *Manager) LastLoadTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLoadTime
}

// LastLoadError returns the error from the last load attempt.
func (m *Manager) LastLoadError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLoadError
}

// CurrentCommit returns the current commit of the git source, or an
// error when no git source is configured.
func (m *Manager) CurrentCommit() (*git.CommitInfo, error) {
	if m.gitSource == nil {
		return nil, fmt.Errorf("no git source configured")
	}
	return m.gitSource.CurrentCommit()
}

// Watch keeps the registry current until the context is cancelled.
// With a git source it polls the remote; otherwise it watches the
// catalog directory with fsnotify. A configured rescan schedule runs
// in either mode as a safety net for missed events.
func (m *Manager) Watch(ctx context.Context) error {
	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchMu.Unlock()
		return fmt.Errorf("watch already started")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	m.watchCancel = cancel
	m.watchMu.Unlock()

	defer func() {
		m.watchMu.Lock()
		m.watchCancel = nil
		m.watchMu.Unlock()
	}()

	// Scheduled rescan runs alongside either watch mode
	if m.config.RescanSchedule != "" {
		scheduler := NewRescanScheduler(m.config.RescanSchedule, func() error {
			return m.load("rescan")
		}, m.logger)

		if err := scheduler.Start(watchCtx); err != nil {
			return fmt.Errorf("failed to start rescan scheduler: %w", err)
		}
	}

	// Git mode polls the remote
	if m.gitPoller != nil {
		m.logger.Info("starting git catalog poller",
			"repository", m.config.Git.URL,
			"branch", m.config.Git.Branch,
			"poll_interval", m.config.Git.PollInterval,
		)

		if err := m.gitPoller.Start(watchCtx); err != nil {
			return fmt.Errorf("failed to start git poller: %w", err)
		}

		<-watchCtx.Done()

		if err := m.gitPoller.Stop(); err != nil {
			m.logger.Debug("git poller stop", "error", err)
		}
		return nil
	}

	// File mode watches the catalog directory
	watchConfig := DefaultFileWatcherConfig()
	watchConfig.Path = m.config.Dir
	if m.config.DebounceDelay > 0 {
		watchConfig.DebounceInterval = m.config.DebounceDelay
	}

	watcher, err := NewFileWatcher(watchConfig, m.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	go func() {
		if err := watcher.Watch(watchCtx, func() error {
			return m.load("watch")
		}); err != nil {
			m.logger.Error("catalog watcher error", "error", err)
		}
	}()

	<-watchCtx.Done()

	if err := watcher.Stop(); err != nil {
		m.logger.Error("failed to stop catalog watcher", "error", err)
		return err
	}

	return nil
}

// Close performs cleanup and releases resources.
func (m *Manager) Close() error {
	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchMu.Unlock()

	if m.gitPoller != nil && m.gitPoller.IsRunning() {
		if err := m.gitPoller.Stop(); err != nil {
			m.logger.Debug("git poller stop", "error", err)
		}
	}

	m.logger.Info("catalog manager closed")
	return nil
}

// reloadFromGit is the callback for the git poller. The catalogPath
// parameter is provided by the poller but the load path is derived
// from the source directly.
func (m *Manager) reloadFromGit(catalogPath string) error {
	m.logger.Info("git poller triggered catalog reload",
		"path", catalogPath,
	)

	return m.load("git")
}
