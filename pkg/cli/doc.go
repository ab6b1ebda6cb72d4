/*
Package cli provides command-line interface utilities for Callisto.

The cli package includes output formatters, progress reporters, and common CLI
helpers used by the callisto command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	data := MyCommandResult{...}
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}

CSV formatting works on [][]string rows or any type implementing the
Tabular interface; the reports export command uses it for run history.

Error Rendering:

Pattern errors carry position context and a suggested fix. FormatError
renders them with the caret display; other errors fall back to their
plain message:

	if err := doParse(pattern); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
	}

Progress Reporting:

For long-running operations such as benchmark runs, use the progress
reporter:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(totalItems)
	for i := 0; i < totalItems; i++ {
		// Do work
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
