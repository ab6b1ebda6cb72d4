package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// createTestExport builds a run bundle with one clean and one broken
// verdict.
func createTestExport() *RunExport {
	now := time.Now().UTC().Truncate(time.Second)

	run := createTestRun("run-1", now)
	run.Stats = RunStats{Patterns: 2, Valid: 1, Invalid: 1, Errors: 1}

	clean := createTestRecord("rec-1", "run-1", now)
	clean.PatternName = "word"

	broken := createTestRecord("rec-2", "run-1", now)
	broken.Pattern = "(a|b"
	broken.Valid = false
	broken.Errors = []string{"unclosed group"}

	return &RunExport{Run: run, Records: []*Record{clean, broken}}
}

// TestJSONExporter_Export tests single-run JSON export.
func TestJSONExporter_Export(t *testing.T) {
	export := createTestExport()
	exporter := NewJSONExporter(false)
	var buf bytes.Buffer

	if err := exporter.Export(context.Background(), export, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	// Verify it's valid JSON with the run and both records
	var decoded RunExport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}

	if decoded.Run.ID != "run-1" {
		t.Errorf("Decoded run ID = %q, want %q", decoded.Run.ID, "run-1")
	}
	if decoded.Run.Stats.Invalid != 1 {
		t.Errorf("Decoded Stats.Invalid = %d, want 1", decoded.Run.Stats.Invalid)
	}
	if len(decoded.Records) != 2 {
		t.Fatalf("Expected 2 decoded records, got %d", len(decoded.Records))
	}
	if decoded.Records[1].Errors[0] != "unclosed group" {
		t.Errorf("Decoded error = %q, want %q", decoded.Records[1].Errors[0], "unclosed group")
	}
}

// TestJSONExporter_ExportPretty tests indented output.
func TestJSONExporter_ExportPretty(t *testing.T) {
	export := createTestExport()
	exporter := NewJSONExporter(true)
	var buf bytes.Buffer

	if err := exporter.Export(context.Background(), export, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("Pretty output is not indented")
	}

	var decoded RunExport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode pretty JSON: %v", err)
	}
}

// TestJSONExporter_ExportNil tests the nothing-to-export error.
func TestJSONExporter_ExportNil(t *testing.T) {
	exporter := NewJSONExporter(false)
	var buf bytes.Buffer

	err := exporter.Export(context.Background(), nil, &buf)
	if err == nil {
		t.Fatal("Export(nil) expected error")
	}

	var exportErr *ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("Export() error = %T, want *ExportError", err)
	}
	if exportErr.Format != "json" {
		t.Errorf("ExportError.Format = %q, want %q", exportErr.Format, "json")
	}
}

// TestJSONExporter_ExportMany tests the multi-run archive shape.
func TestJSONExporter_ExportMany(t *testing.T) {
	first := createTestExport()
	second := createTestExport()
	second.Run.ID = "run-2"

	exporter := NewJSONExporter(false)
	var buf bytes.Buffer

	err := exporter.ExportMany(context.Background(), []*RunExport{first, second}, &buf)
	if err != nil {
		t.Fatalf("ExportMany() error = %v", err)
	}

	var decoded []*RunExport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("Expected 2 decoded runs, got %d", len(decoded))
	}
	if decoded[1].Run.ID != "run-2" {
		t.Errorf("Decoded run ID = %q, want %q", decoded[1].Run.ID, "run-2")
	}
}

// TestJSONExporter_ExportManyEmpty tests the empty archive shape.
func TestJSONExporter_ExportManyEmpty(t *testing.T) {
	exporter := NewJSONExporter(false)
	var buf bytes.Buffer

	if err := exporter.ExportMany(context.Background(), nil, &buf); err != nil {
		t.Fatalf("ExportMany() error = %v", err)
	}

	if buf.String() != "[]" {
		t.Errorf("ExportMany() = %q, want %q", buf.String(), "[]")
	}
}

// TestCSVExporter_Export tests CSV export with a header row.
func TestCSVExporter_Export(t *testing.T) {
	export := createTestExport()
	exporter := NewCSVExporter(true)
	var buf bytes.Buffer

	if err := exporter.Export(context.Background(), export, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	// Header plus one row per record
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	header := rows[0]
	if header[0] != "run_id" || header[5] != "pattern_name" || header[7] != "valid" {
		t.Errorf("Unexpected header row: %v", header)
	}

	// Every data row repeats the run fields
	for _, row := range rows[1:] {
		if row[0] != "run-1" {
			t.Errorf("Data row run_id = %q, want %q", row[0], "run-1")
		}
		if row[4] != "failed" {
			t.Errorf("Data row run_status = %q, want %q", row[4], "failed")
		}
	}

	// The broken verdict keeps its findings as a JSON list
	broken := rows[2]
	if broken[6] != "(a|b" {
		t.Errorf("Data row pattern = %q, want %q", broken[6], "(a|b")
	}
	if broken[7] != "false" {
		t.Errorf("Data row valid = %q, want %q", broken[7], "false")
	}
	if broken[8] != `["unclosed group"]` {
		t.Errorf("Data row errors = %q, want %q", broken[8], `["unclosed group"]`)
	}
}

// TestCSVExporter_NoHeader tests CSV export without a header row.
func TestCSVExporter_NoHeader(t *testing.T) {
	export := createTestExport()
	exporter := NewCSVExporter(false)
	var buf bytes.Buffer

	if err := exporter.Export(context.Background(), export, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "run-1" {
		t.Errorf("First row run_id = %q, want %q", rows[0][0], "run-1")
	}
}

// TestCSVExporter_EmptyRun tests exporting a run with no records.
func TestCSVExporter_EmptyRun(t *testing.T) {
	export := &RunExport{
		Run: createTestRun("run-empty", time.Now()),
	}
	exporter := NewCSVExporter(true)
	var buf bytes.Buffer

	if err := exporter.Export(context.Background(), export, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected header row only, got %d rows", len(rows))
	}
}
