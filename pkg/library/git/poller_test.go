package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/config"
)

// clonedSource builds a source over a fresh local repo and clones it.
func clonedSource(t *testing.T) (*Source, string) {
	t.Helper()

	sourceDir := t.TempDir()
	createTestRepo(t, sourceDir)

	source, err := NewSource(testSourceConfig(sourceDir, t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	if err := source.Clone(context.Background()); err != nil {
		t.Fatal(err)
	}

	return source, sourceDir
}

func TestNewPoller(t *testing.T) {
	source, _ := clonedSource(t)

	poller := NewPoller(source, time.Minute, func(string) error { return nil })

	if poller == nil {
		t.Fatal("NewPoller() returned nil")
	}

	if poller.IsRunning() {
		t.Error("IsRunning() = true before Start()")
	}

	if poller.pollInterval != time.Minute {
		t.Errorf("pollInterval = %v, want 1m", poller.pollInterval)
	}
}

func TestPoller_StartWithoutClone(t *testing.T) {
	source, err := NewSource(&config.GitConfig{
		URL:    "https://github.com/test/repo.git",
		Branch: "main",
		Dir:    t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}

	poller := NewPoller(source, time.Minute, func(string) error { return nil })

	err = poller.Start(context.Background())

	if err == nil {
		t.Error("Start() without clone error = nil, want error")
	}

	if poller.IsRunning() {
		t.Error("IsRunning() = true after failed Start()")
	}
}

func TestPoller_StartStop(t *testing.T) {
	source, _ := clonedSource(t)

	poller := NewPoller(source, time.Hour, func(string) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v, want nil", err)
	}

	if !poller.IsRunning() {
		t.Error("IsRunning() = false after Start()")
	}

	// Second start fails
	if err := poller.Start(ctx); err == nil {
		t.Error("second Start() error = nil, want error")
	}

	if err := poller.Stop(); err != nil {
		t.Errorf("Stop() error = %v, want nil", err)
	}

	if poller.IsRunning() {
		t.Error("IsRunning() = true after Stop()")
	}

	// Second stop fails
	if err := poller.Stop(); err == nil {
		t.Error("second Stop() error = nil, want error")
	}
}

func TestPoller_LastCommitSHA(t *testing.T) {
	source, _ := clonedSource(t)

	commit, err := source.CurrentCommit()
	if err != nil {
		t.Fatal(err)
	}

	poller := NewPoller(source, time.Hour, func(string) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = poller.Stop() }()

	if poller.LastCommitSHA() != commit.SHA {
		t.Errorf("LastCommitSHA() = %q, want %q", poller.LastCommitSHA(), commit.SHA)
	}
}

func TestPoller_HasCatalogFileChanges(t *testing.T) {
	poller := &Poller{}

	tests := []struct {
		name  string
		files []string
		want  bool
	}{
		{
			name:  "yaml file",
			files: []string{"catalogs/base.yaml"},
			want:  true,
		},
		{
			name:  "yml file",
			files: []string{"base.yml"},
			want:  true,
		},
		{
			name:  "mixed files",
			files: []string{"README.md", "catalogs/base.yaml"},
			want:  true,
		},
		{
			name:  "no catalog files",
			files: []string{"README.md", "scripts/deploy.sh"},
			want:  false,
		},
		{
			name:  "empty list",
			files: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := poller.hasCatalogFileChanges(tt.files)
			if got != tt.want {
				t.Errorf("hasCatalogFileChanges(%v) = %v, want %v", tt.files, got, tt.want)
			}
		})
	}
}

func TestPoller_ForceCheck_NotRunning(t *testing.T) {
	source, _ := clonedSource(t)

	poller := NewPoller(source, time.Hour, func(string) error { return nil })

	err := poller.ForceCheck(context.Background())

	if err == nil {
		t.Error("ForceCheck() on stopped poller error = nil, want error")
	}
}

func TestPoller_ForceCheck_ReloadOnCatalogChange(t *testing.T) {
	sourceDir := t.TempDir()
	sourceRepo := createTestRepo(t, sourceDir)

	source, err := NewSource(testSourceConfig(sourceDir, t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	if err := source.Clone(context.Background()); err != nil {
		t.Fatal(err)
	}

	var reloadCount atomic.Int32
	var gotPath atomic.Value

	poller := NewPoller(source, time.Hour, func(catalogPath string) error {
		reloadCount.Add(1)
		gotPath.Store(catalogPath)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = poller.Stop() }()

	// Commit a catalog change upstream
	updated := initialCatalog + `  - name: "extra"
    pattern: "cd"
`
	newSHA := commitFile(t, sourceRepo, sourceDir, "catalog.yaml", updated, "add extra pattern")

	if err := poller.ForceCheck(ctx); err != nil {
		t.Fatalf("ForceCheck() error = %v, want nil", err)
	}

	if reloadCount.Load() != 1 {
		t.Errorf("reload called %d times, want 1", reloadCount.Load())
	}

	if gotPath.Load() != source.CatalogPath() {
		t.Errorf("reload path = %v, want %v", gotPath.Load(), source.CatalogPath())
	}

	if poller.LastCommitSHA() != newSHA {
		t.Errorf("LastCommitSHA() = %q, want %q", poller.LastCommitSHA(), newSHA)
	}

	if poller.Metrics().SuccessfulReloads != 1 {
		t.Errorf("SuccessfulReloads = %d, want 1", poller.Metrics().SuccessfulReloads)
	}
}

func TestPoller_ForceCheck_SkipsNonCatalogChanges(t *testing.T) {
	sourceDir := t.TempDir()
	sourceRepo := createTestRepo(t, sourceDir)

	source, err := NewSource(testSourceConfig(sourceDir, t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	if err := source.Clone(context.Background()); err != nil {
		t.Fatal(err)
	}

	var reloadCount atomic.Int32

	poller := NewPoller(source, time.Hour, func(string) error {
		reloadCount.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = poller.Stop() }()

	// A commit that touches no catalog files
	newSHA := commitFile(t, sourceRepo, sourceDir, "README.md", "docs only", "add readme")

	if err := poller.ForceCheck(ctx); err != nil {
		t.Fatalf("ForceCheck() error = %v, want nil", err)
	}

	if reloadCount.Load() != 0 {
		t.Errorf("reload called %d times, want 0", reloadCount.Load())
	}

	// The tracked SHA still advances so the commit is not re-checked
	if poller.LastCommitSHA() != newSHA {
		t.Errorf("LastCommitSHA() = %q, want %q", poller.LastCommitSHA(), newSHA)
	}

	if poller.Metrics().SkippedPolls != 1 {
		t.Errorf("SkippedPolls = %d, want 1", poller.Metrics().SkippedPolls)
	}
}

func TestPoller_ReloadFailureRollsBack(t *testing.T) {
	sourceDir := t.TempDir()
	sourceRepo := createTestRepo(t, sourceDir)

	checkoutDir := t.TempDir()
	source, err := NewSource(testSourceConfig(sourceDir, checkoutDir))
	if err != nil {
		t.Fatal(err)
	}
	if err := source.Clone(context.Background()); err != nil {
		t.Fatal(err)
	}

	firstCommit, err := source.CurrentCommit()
	if err != nil {
		t.Fatal(err)
	}

	poller := NewPoller(source, time.Hour, func(string) error {
		return errors.New("catalog does not parse")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = poller.Stop() }()

	// Upstream commit that will fail validation
	broken := `
version: "1"
name: "remote"
patterns:
  - name: "word"
    pattern: "(a|b"
`
	commitFile(t, sourceRepo, sourceDir, "catalog.yaml", broken, "break the catalog")

	err = poller.ForceCheck(ctx)

	if err == nil {
		t.Fatal("ForceCheck() with failing reload error = nil, want error")
	}

	// The tracked SHA stays at the last good commit
	if poller.LastCommitSHA() != firstCommit.SHA {
		t.Errorf("LastCommitSHA() = %q, want %q (last good commit)", poller.LastCommitSHA(), firstCommit.SHA)
	}

	if poller.Metrics().FailedReloads != 1 {
		t.Errorf("FailedReloads = %d, want 1", poller.Metrics().FailedReloads)
	}

	// The checkout rolled back so the on-disk catalog matches what is
	// still being served
	data, err := os.ReadFile(filepath.Join(checkoutDir, "catalog.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != initialCatalog {
		t.Errorf("catalog.yaml after rollback = %q, want original content", string(data))
	}
}

func TestShortSHA(t *testing.T) {
	tests := []struct {
		name string
		sha  string
		want string
	}{
		{
			name: "full sha",
			sha:  "0123456789abcdef0123456789abcdef01234567",
			want: "01234567",
		},
		{
			name: "short string",
			sha:  "abc",
			want: "abc",
		},
		{
			name: "empty",
			sha:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shortSHA(tt.sha); got != tt.want {
				t.Errorf("shortSHA(%q) = %q, want %q", tt.sha, got, tt.want)
			}
		})
	}
}
