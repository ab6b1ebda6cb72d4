package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
	cplErrors "mercator-hq/callisto/pkg/cpl/errors"
	"mercator-hq/callisto/pkg/cpl/validator"
	"mercator-hq/callisto/pkg/library"
	"mercator-hq/callisto/pkg/report"
)

var lintFlags struct {
	file    string
	catalog string
	strict  bool
	format  string
}

var lintCmd = &cobra.Command{
	Use:   "lint [patterns...]",
	Short: "Validate CPL patterns",
	Long: `Validate CPL patterns for syntax and structural problems.

The lint command parses each pattern and runs the tree lints:
  - Syntax validation with exact error offsets
  - Repetition ceilings (bounded maximums above the configured limit)
  - Tree depth ceilings
  - Structural advisories (repetition of empty-matching subpatterns)

Patterns come from arguments, one per line from a file, or from the
entries of a catalog file. When report recording is enabled in the
configuration, each lint run is stored with its per-pattern verdicts.

Examples:
  # Lint patterns given as arguments
  callisto lint "(a|b)*" "xy{2,5}"

  # Lint a file of patterns, one per line
  callisto lint --file patterns.txt

  # Lint every entry of a catalog file
  callisto lint --catalog catalogs/network.yaml

  # Strict mode (warnings as errors)
  callisto lint --file patterns.txt --strict

  # JSON output for CI/CD
  callisto lint --file patterns.txt --format json`,
	RunE: lintPatterns,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "file of patterns, one per line")
	lintCmd.Flags().StringVar(&lintFlags.catalog, "catalog", "", "catalog file whose entries are linted")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// lintInput is one pattern queued for linting. The name is the catalog
// entry name and stays empty for ad-hoc patterns.
type lintInput struct {
	name    string
	pattern string
}

func lintPatterns(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return err
	}

	inputs, source, err := collectLintInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no patterns to lint")
	}

	results := make([]ValidationResult, 0, len(inputs))
	for _, input := range inputs {
		results = append(results, validatePattern(input.name, input.pattern, cfg))
	}

	if cfg.Reports.Enabled {
		recordLintRun(context.Background(), cfg, source, results)
	}

	// Output results
	if lintFlags.format == "json" {
		if err := outputJSON(results); err != nil {
			return err
		}
		return resultsError(results, lintFlags.strict)
	}
	return outputText(results, lintFlags.strict)
}

// collectLintInputs gathers patterns from exactly one source: the
// command arguments, a pattern file, or a catalog file. It returns the
// inputs and the source label stored with a recorded run.
func collectLintInputs(args []string) ([]lintInput, string, error) {
	sources := 0
	if len(args) > 0 {
		sources++
	}
	if lintFlags.file != "" {
		sources++
	}
	if lintFlags.catalog != "" {
		sources++
	}
	if sources == 0 {
		return nil, "", fmt.Errorf("specify patterns as arguments, or use --file or --catalog")
	}
	if sources > 1 {
		return nil, "", fmt.Errorf("specify only one of: pattern arguments, --file, --catalog")
	}

	if len(args) > 0 {
		inputs := make([]lintInput, 0, len(args))
		for _, pattern := range args {
			inputs = append(inputs, lintInput{pattern: pattern})
		}
		return inputs, "args", nil
	}

	if lintFlags.file != "" {
		patterns, err := readPatternFile(lintFlags.file)
		if err != nil {
			return nil, "", err
		}
		inputs := make([]lintInput, 0, len(patterns))
		for _, pattern := range patterns {
			inputs = append(inputs, lintInput{pattern: pattern})
		}
		return inputs, "file:" + lintFlags.file, nil
	}

	catalog, err := readCatalogEntries(lintFlags.catalog)
	if err != nil {
		return nil, "", err
	}
	inputs := make([]lintInput, 0, len(catalog.Patterns))
	for _, entry := range catalog.Patterns {
		inputs = append(inputs, lintInput{name: entry.Name, pattern: entry.Pattern})
	}
	return inputs, "catalog:" + catalog.Name, nil
}

// readPatternFile reads patterns one per line. Blank lines and lines
// starting with "#" are skipped; everything else is pattern text,
// taken verbatim.
func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cli.NewInputError(path, err.Error())
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, cli.NewInputError(path, err.Error())
	}

	return patterns, nil
}

// readCatalogEntries reads the raw entries of a catalog file without
// the loader's pattern checks, so lint can report broken entries
// instead of refusing the file.
func readCatalogEntries(path string) (*library.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cli.NewInputError(path, err.Error())
	}

	var catalog library.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, cli.NewInputError(path, fmt.Sprintf("YAML parsing failed: %v", err))
	}

	catalog.SourceFile = path
	if catalog.Name == "" {
		base := filepath.Base(path)
		catalog.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return &catalog, nil
}

// ValidationResult represents the validation result for a single pattern.
type ValidationResult struct {
	Name     string            `json:"name,omitempty"`
	Pattern  string            `json:"pattern"`
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Warnings []ValidationError `json:"warnings,omitempty"`
}

// ValidationError represents a single validation error or warning.
// The offset is a rune offset into the pattern, -1 when the finding
// has no position.
type ValidationError struct {
	Offset     int    `json:"offset"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	Type       string `json:"type,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// validatePattern parses one pattern and runs the tree lints over it.
// A pattern is valid when it produces no error findings; warnings are
// advisory and reported separately.
func validatePattern(name, pattern string, cfg *config.Config) ValidationResult {
	result := ValidationResult{
		Name:    name,
		Pattern: pattern,
		Valid:   true,
	}

	// Parse pattern
	node, err := newPatternParser(cfg).Parse(pattern)
	if err != nil {
		result.Valid = false
		result.Errors = toValidationErrors(err)
		return result
	}

	// Lint the tree
	v := validator.NewValidator().
		WithMaxRepeat(cfg.Validator.MaxRepeat).
		WithMaxDepth(cfg.Validator.MaxDepth)

	findings := v.Check(node)
	for _, e := range findings.Errors {
		validationErr := ValidationError{
			Offset:     e.Pos,
			Message:    e.Message,
			Severity:   string(cplErrors.SeverityError),
			Type:       string(e.Type),
			Suggestion: e.Suggestion,
		}
		if e.IsWarning() {
			validationErr.Severity = string(cplErrors.SeverityWarning)
			result.Warnings = append(result.Warnings, validationErr)
			continue
		}
		result.Errors = append(result.Errors, validationErr)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// toValidationErrors converts a parse or validation error into the
// JSON-facing error list.
func toValidationErrors(err error) []ValidationError {
	if errList, ok := err.(*cplErrors.ErrorList); ok {
		out := make([]ValidationError, 0, len(errList.Errors))
		for _, e := range errList.Errors {
			out = append(out, toValidationError(e))
		}
		return out
	}
	if patternErr, ok := err.(*cplErrors.Error); ok {
		return []ValidationError{toValidationError(patternErr)}
	}
	// Generic error
	return []ValidationError{{
		Offset:   cplErrors.NoPos,
		Message:  err.Error(),
		Severity: string(cplErrors.SeverityError),
	}}
}

func toValidationError(e *cplErrors.Error) ValidationError {
	severity := e.Severity
	if severity == "" {
		severity = cplErrors.SeverityError
	}
	return ValidationError{
		Offset:     e.Pos,
		Message:    e.Message,
		Severity:   string(severity),
		Type:       string(e.Type),
		Suggestion: e.Suggestion,
	}
}

// recordLintRun stores the run and its verdicts through the report
// store. Recording failures never fail the lint: the verdicts were
// already computed and printed.
func recordLintRun(ctx context.Context, cfg *config.Config, source string, results []ValidationResult) {
	logger := quietLogger()

	store, err := openReportStore(cfg, "")
	if err != nil {
		logger.Warn("report recording unavailable", "error", err)
		return
	}
	defer store.Close()

	recorder := report.NewRecorder(store, report.DefaultConfig(), logger, nil)
	builder := recorder.Begin(source)
	for _, result := range results {
		builder.AddResult(result.Name, result.Pattern,
			findingMessages(result.Errors),
			findingMessages(result.Warnings),
		)
	}

	if _, err := builder.Complete(ctx); err != nil {
		logger.Warn("failed to record lint run", "error", err)
	}
}

func findingMessages(findings []ValidationError) []string {
	if len(findings) == 0 {
		return nil
	}
	messages := make([]string, 0, len(findings))
	for _, f := range findings {
		messages = append(messages, f.Message)
	}
	return messages
}

// resultsError returns the exit error for a result set: lint fails
// when any pattern has errors, or in strict mode when any has
// warnings.
func resultsError(results []ValidationResult, strict bool) error {
	for _, result := range results {
		if len(result.Errors) > 0 {
			return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
		}
		if strict && len(result.Warnings) > 0 {
			return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
		}
	}
	return nil
}

func outputText(results []ValidationResult, strict bool) error {
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		if result.Name != "" {
			fmt.Printf("Validating %s %q...\n", result.Name, result.Pattern)
		} else {
			fmt.Printf("Validating %q...\n", result.Pattern)
		}

		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Println("✓ Pattern valid")
		}

		for _, err := range result.Errors {
			fmt.Printf("✗ Error: %s", err.Message)
			if err.Offset >= 0 {
				fmt.Printf(" (offset %d)", err.Offset)
			}
			if err.Type != "" {
				fmt.Printf(" [%s]", err.Type)
			}
			fmt.Println()
			totalErrors++
		}

		for _, warn := range result.Warnings {
			fmt.Printf("⚠  Warning: %s", warn.Message)
			if warn.Offset >= 0 {
				fmt.Printf(" (offset %d)", warn.Offset)
			}
			if warn.Type != "" {
				fmt.Printf(" [%s]", warn.Type)
			}
			fmt.Println()
			totalWarnings++
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d pattern(s), %d error(s), %d warning(s)\n", len(results), totalErrors, totalWarnings)

	if strict && totalWarnings > 0 {
		fmt.Println("  Strict mode enabled: treating warnings as errors")
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}

	if totalErrors > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}

	return nil
}

func outputJSON(results []ValidationResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
