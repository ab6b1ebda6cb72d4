package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/cpl/ast"
	"mercator-hq/callisto/pkg/cpl/parser"
)

var parseFlags struct {
	file   string
	format string
}

var parseCmd = &cobra.Command{
	Use:   "parse [pattern]",
	Short: "Parse a pattern and print its tree",
	Long: `Parse a single CPL pattern and print the resulting parse tree.

The pattern is taken from the first argument, or from a file with
--file. Parsing stops at the first error; the error is printed with
the offending offset marked in the pattern text.

Examples:
  # Parse a pattern from an argument
  callisto parse "(a|b)*"

  # Parse a pattern stored in a file
  callisto parse --file pattern.txt

  # JSON output for tooling
  callisto parse "(a|b)*" --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseFlags.file, "file", "f", "", "file containing the pattern")
	parseCmd.Flags().StringVar(&parseFlags.format, "format", "text", "output format: text, json")
}

// ParseOutput is the JSON rendering of a parse attempt.
type ParseOutput struct {
	Pattern string            `json:"pattern"`
	Valid   bool              `json:"valid"`
	Tree    *ast.Node         `json:"tree,omitempty"`
	Compact string            `json:"compact,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	pattern, err := resolveParseInput(args)
	if err != nil {
		return err
	}

	p := parser.NewParser()
	node, parseErr := p.Parse(pattern)

	if parseFlags.format == "json" {
		output := ParseOutput{
			Pattern: pattern,
			Valid:   parseErr == nil,
		}
		if parseErr == nil {
			output.Tree = node
			output.Compact = node.String()
		} else {
			output.Errors = toValidationErrors(parseErr)
		}

		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, output); err != nil {
			return err
		}
		if parseErr != nil {
			return cli.NewCommandError("parse", fmt.Errorf("pattern does not parse"))
		}
		return nil
	}

	if parseErr != nil {
		fmt.Println(cli.FormatError(parseErr))
		return cli.NewCommandError("parse", fmt.Errorf("pattern does not parse"))
	}

	fmt.Printf("Pattern: %q\n", pattern)
	fmt.Println()
	fmt.Print(node.Dump())

	return nil
}

// resolveParseInput picks the pattern from the argument or the --file
// flag. An empty file is a valid empty pattern.
func resolveParseInput(args []string) (string, error) {
	if len(args) == 1 && parseFlags.file != "" {
		return "", fmt.Errorf("specify a pattern argument or --file, not both")
	}

	if len(args) == 1 {
		return args[0], nil
	}

	if parseFlags.file != "" {
		data, err := os.ReadFile(parseFlags.file)
		if err != nil {
			return "", cli.NewInputError(parseFlags.file, err.Error())
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	return "", fmt.Errorf("specify a pattern argument or --file")
}
