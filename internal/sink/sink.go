// Package sink writes benchmark batches as tables, documents and charts.
package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloo-solutions/searchbench/internal/bench"
	"github.com/cloo-solutions/searchbench/internal/domain"
	"gopkg.in/yaml.v3"
)

// Writer serializes a batch to w.
type Writer interface {
	Write(w io.Writer, b *bench.Batch) error
	ContentType() string
	Extension() string
}

// Format names accepted by NewWriter.
const (
	FormatCSV     = "csv"
	FormatCSVLong = "csv-long"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatSVG     = "svg"
)

// Formats lists every supported format.
func Formats() []string {
	return []string{FormatCSV, FormatCSVLong, FormatJSON, FormatYAML, FormatSVG}
}

// NewWriter returns the Writer for format.
func NewWriter(format string) (Writer, error) {
	switch strings.ToLower(format) {
	case FormatCSV, "csv-wide":
		return &CSVWriter{Layout: LayoutWide}, nil
	case FormatCSVLong:
		return &CSVWriter{Layout: LayoutLong}, nil
	case FormatJSON:
		return JSONWriter{Indent: "  "}, nil
	case FormatYAML, "yml":
		return YAMLWriter{}, nil
	case FormatSVG:
		return NewChartWriter(DefaultChartConfig()), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFormat, format)
}

// WriteFile renders b with w into path, creating parent directories.
func WriteFile(path string, w Writer, b *bench.Batch) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return w.Write(f, b)
}

// document is the serialized form of a batch with its summaries attached.
type document struct {
	bench.Batch `yaml:",inline"`
	Summary     []bench.Summary `json:"summary" yaml:"summary"`
}

// JSONWriter writes the batch and its summary as a JSON document.
type JSONWriter struct {
	Indent string
}

func (w JSONWriter) Write(out io.Writer, b *bench.Batch) error {
	enc := json.NewEncoder(out)
	if w.Indent != "" {
		enc.SetIndent("", w.Indent)
	}
	if err := enc.Encode(document{Batch: *b, Summary: bench.Summarize(b)}); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func (JSONWriter) ContentType() string { return "application/json" }
func (JSONWriter) Extension() string   { return ".json" }

// YAMLWriter writes the same document as JSONWriter in YAML.
type YAMLWriter struct{}

func (YAMLWriter) Write(out io.Writer, b *bench.Batch) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(document{Batch: *b, Summary: bench.Summarize(b)}); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush yaml: %w", err)
	}
	return nil
}

func (YAMLWriter) ContentType() string { return "application/yaml" }
func (YAMLWriter) Extension() string   { return ".yaml" }
