package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// JSONExporter exports runs to JSON format.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// Export writes a run and its records to the provided writer in JSON
// format. If Pretty is true, the JSON will be indented for
// readability.
func (e *JSONExporter) Export(ctx context.Context, export *RunExport, w io.Writer) error {
	if export == nil || export.Run == nil {
		return NewExportError("json", 0, fmt.Errorf("nothing to export"))
	}

	data, err := e.marshal(export)
	if err != nil {
		return NewExportError("json", len(export.Records), err)
	}

	if _, err := w.Write(data); err != nil {
		return NewExportError("json", len(export.Records), err)
	}

	return nil
}

// ExportMany writes multiple runs to the provided writer as a JSON
// array. Used by the retention pruner when archiving runs before
// deletion.
func (e *JSONExporter) ExportMany(ctx context.Context, exports []*RunExport, w io.Writer) error {
	if len(exports) == 0 {
		// Write empty array
		_, err := w.Write([]byte("[]"))
		return err
	}

	recordCount := 0
	for _, export := range exports {
		recordCount += len(export.Records)
	}

	data, err := e.marshal(exports)
	if err != nil {
		return NewExportError("json", recordCount, err)
	}

	if _, err := w.Write(data); err != nil {
		return NewExportError("json", recordCount, err)
	}

	return nil
}

// marshal serializes a value honoring the Pretty setting.
func (e *JSONExporter) marshal(v interface{}) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// CSVExporter exports runs to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes a run and its records to the provided writer in CSV
// format, one row per record. Run fields are repeated on every row so
// the output stays flat (finding lists become JSON strings).
func (e *CSVExporter) Export(ctx context.Context, export *RunExport, w io.Writer) error {
	if export == nil || export.Run == nil {
		return NewExportError("csv", 0, fmt.Errorf("nothing to export"))
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header row if configured
	if e.IncludeHeader {
		if err := writer.Write(e.getHeaderRow()); err != nil {
			return NewExportError("csv", len(export.Records), err)
		}
	}

	// Write data rows
	for _, record := range export.Records {
		row, err := e.recordToRow(export.Run, record)
		if err != nil {
			return NewExportError("csv", len(export.Records), err)
		}
		if err := writer.Write(row); err != nil {
			return NewExportError("csv", len(export.Records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return NewExportError("csv", len(export.Records), err)
	}

	return nil
}

// getHeaderRow returns the CSV header row.
func (e *CSVExporter) getHeaderRow() []string {
	return []string{
		"run_id", "source", "started_at", "completed_at", "run_status",
		"pattern_name", "pattern", "valid", "errors", "warnings", "created_at",
	}
}

// recordToRow converts one verdict to a CSV row.
func (e *CSVExporter) recordToRow(run *Run, record *Record) ([]string, error) {
	// Helper function to format timestamps
	formatTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	}

	// Helper function to format list fields
	formatJSON := func(v interface{}) string {
		data, _ := json.Marshal(v)
		return string(data)
	}

	row := []string{
		run.ID,
		run.Source,
		formatTime(run.StartedAt),
		formatTime(run.CompletedAt),
		run.Status(),
		record.PatternName,
		record.Pattern,
		fmt.Sprintf("%t", record.Valid),
		formatJSON(record.Errors),
		formatJSON(record.Warnings),
		formatTime(record.CreatedAt),
	}

	return row, nil
}
