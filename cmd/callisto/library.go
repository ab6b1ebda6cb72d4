package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
	cplErrors "mercator-hq/callisto/pkg/cpl/errors"
	"mercator-hq/callisto/pkg/cpl/parser"
	"mercator-hq/callisto/pkg/library"
)

var libraryFlags struct {
	dir    string
	format string
}

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Inspect pattern catalogs",
	Long: `Inspect the pattern catalogs of the configured library.

The library command loads catalogs from the configured directory, or
from a git repository when one is configured, and answers questions
about them.

Subcommands:
  list   - List loaded catalogs
  show   - Show the entries of one catalog
  verify - Load every catalog file and report per-file errors

Examples:
  # List catalogs from the configured directory
  callisto library list

  # Show the entries of one catalog
  callisto library show network

  # Verify a specific directory
  callisto library verify --dir ./catalogs`,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded catalogs",
	Long: `List the catalogs of the configured library.

Examples:
  # List catalogs
  callisto library list

  # Output as JSON
  callisto library list --format json`,
	RunE: listCatalogs,
}

var libraryShowCmd = &cobra.Command{
	Use:   "show <catalog>",
	Short: "Show the entries of one catalog",
	Long: `Show every pattern entry of one catalog.

Examples:
  # Show a catalog by name
  callisto library show network

  # Output as JSON
  callisto library show network --format json`,
	Args: cobra.ExactArgs(1),
	RunE: showCatalog,
}

var libraryVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify every catalog file",
	Long: `Load every catalog file in the library directory and report
per-file errors: unreadable files, bad YAML, duplicate or unnamed
entries, and patterns that do not parse.

Examples:
  # Verify the configured directory
  callisto library verify

  # Verify a specific directory
  callisto library verify --dir ./catalogs`,
	RunE: verifyCatalogs,
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryListCmd, libraryShowCmd, libraryVerifyCmd)

	libraryCmd.PersistentFlags().StringVar(&libraryFlags.dir, "dir", "", "catalog directory (overrides config, disables the git source)")
	libraryCmd.PersistentFlags().StringVar(&libraryFlags.format, "format", "text", "output format: text, json")
}

// catalogSummary is the JSON-facing listing of one catalog.
type catalogSummary struct {
	Name     string `json:"name"`
	File     string `json:"file"`
	Version  string `json:"version,omitempty"`
	Patterns int    `json:"patterns"`
}

// patternEntry is the JSON-facing rendering of one catalog entry.
type patternEntry struct {
	Name        string   `json:"name"`
	Pattern     string   `json:"pattern"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// catalogDetail is the JSON-facing rendering of one full catalog.
type catalogDetail struct {
	Name     string         `json:"name"`
	File     string         `json:"file"`
	Version  string         `json:"version,omitempty"`
	Patterns []patternEntry `json:"patterns"`
}

func listCatalogs(cmd *cobra.Command, args []string) error {
	mgr, err := newCatalogManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	catalogs := mgr.Registry().GetAllSorted()

	if libraryFlags.format == "json" {
		summaries := make([]catalogSummary, 0, len(catalogs))
		for _, catalog := range catalogs {
			summaries = append(summaries, catalogSummary{
				Name:     catalog.Name,
				File:     catalog.SourceFile,
				Version:  catalog.Version,
				Patterns: len(catalog.Patterns),
			})
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summaries)
	}

	stats := mgr.Stats()
	fmt.Printf("Catalogs (%d, %d patterns):\n\n", stats.CatalogCount, stats.PatternCount)

	for i, catalog := range catalogs {
		fmt.Printf("%d. %s\n", i+1, catalog.Name)
		fmt.Printf("   File:     %s\n", catalog.SourceFile)
		if catalog.Version != "" {
			fmt.Printf("   Version:  %s\n", catalog.Version)
		}
		fmt.Printf("   Patterns: %d\n", len(catalog.Patterns))
		fmt.Println()
	}

	if commit, err := mgr.CurrentCommit(); err == nil {
		fmt.Printf("Source: git %s@%s (%s)\n",
			commit.Branch, shortSHA(commit.SHA), commit.Timestamp.Format(time.RFC3339))
	}

	return nil
}

func showCatalog(cmd *cobra.Command, args []string) error {
	mgr, err := newCatalogManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	catalog, ok := mgr.Get(args[0])
	if !ok {
		message := fmt.Sprintf("catalog %q not found", args[0])
		if suggestion := cplErrors.SuggestPatternName(args[0], mgr.Registry().Names()); suggestion != "" {
			message += ". " + suggestion
		}
		return cli.NewCommandError("library", fmt.Errorf("%s", message))
	}

	if libraryFlags.format == "json" {
		detail := catalogDetail{
			Name:     catalog.Name,
			File:     catalog.SourceFile,
			Version:  catalog.Version,
			Patterns: make([]patternEntry, 0, len(catalog.Patterns)),
		}
		for _, p := range catalog.Patterns {
			detail.Patterns = append(detail.Patterns, patternEntry{
				Name:        p.Name,
				Pattern:     p.Pattern,
				Description: p.Description,
				Tags:        p.Tags,
			})
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(detail)
	}

	fmt.Printf("Catalog: %s\n", catalog.Name)
	fmt.Printf("File:    %s\n", catalog.SourceFile)
	if catalog.Version != "" {
		fmt.Printf("Version: %s\n", catalog.Version)
	}
	fmt.Printf("Entries: %d\n\n", len(catalog.Patterns))

	for i, p := range catalog.Patterns {
		fmt.Printf("%d. %s\n", i+1, p.Name)
		fmt.Printf("   Pattern: %q\n", p.Pattern)
		if p.Description != "" {
			fmt.Printf("   %s\n", p.Description)
		}
		if len(p.Tags) > 0 {
			fmt.Printf("   Tags: %v\n", p.Tags)
		}
		fmt.Println()
	}

	return nil
}

func verifyCatalogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return err
	}

	dir := libraryFlags.dir
	if dir == "" {
		dir = cfg.Library.Dir
	}

	fmt.Printf("Verifying catalogs in %s...\n\n", dir)

	p := newPatternParser(cfg)
	loader := library.NewLoader(library.DefaultLoaderConfig(), p)

	catalogs, loadErr := loader.LoadDir(dir)

	failures := flattenLoadErrors(loadErr)
	if len(catalogs) == 0 && len(failures) == 1 {
		// Directory-level failure (missing, empty, not a directory)
		return cli.NewCommandError("library", failures[0])
	}

	for _, catalog := range catalogs {
		fmt.Printf("✓ %s (%d patterns)\n", catalog.SourceFile, len(catalog.Patterns))
	}
	for _, failure := range failures {
		fmt.Printf("✗ %v\n", failure)
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d catalog(s) ok, %d error(s)\n", len(catalogs), len(failures))

	if len(failures) > 0 {
		return cli.NewCommandError("library", fmt.Errorf("catalog verification failed"))
	}

	return nil
}

// Helper functions

// newCatalogManager builds a loaded catalog manager from the runtime
// configuration. The --dir override loads from a plain directory even
// when a git source is configured.
func newCatalogManager() (*library.Manager, error) {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return nil, err
	}

	libraryCfg := cfg.Library
	if libraryFlags.dir != "" {
		libraryCfg.Dir = libraryFlags.dir
		libraryCfg.Git = config.GitConfig{}
	}

	mgr, err := library.NewManager(&libraryCfg, newPatternParser(cfg), quietLogger(), nil)
	if err != nil {
		return nil, cli.NewCommandError("library", err)
	}

	if err := mgr.Load(); err != nil {
		mgr.Close()
		return nil, cli.NewCommandError("library", err)
	}

	return mgr, nil
}

// newPatternParser builds a parser with the configured limits.
func newPatternParser(cfg *config.Config) *parser.Parser {
	return parser.NewParser().
		WithMaxPatternSize(cfg.Parser.MaxPatternSize).
		WithMaxDepth(cfg.Parser.MaxDepth)
}

// flattenLoadErrors expands nested loader error lists into a flat
// slice, one renderable failure per entry.
func flattenLoadErrors(err error) []error {
	if err == nil {
		return nil
	}
	if list, ok := err.(*library.ErrorList); ok {
		var out []error
		for _, e := range list.Errors {
			out = append(out, flattenLoadErrors(e)...)
		}
		return out
	}
	return []error{err}
}

// shortSHA truncates a commit SHA for display.
func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
