package sink

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloo-solutions/searchbench/internal/bench"
	"github.com/cloo-solutions/searchbench/internal/domain"
	"github.com/cloo-solutions/searchbench/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleBatch() *bench.Batch {
	seqs := [][]uint64{{1, 3, 5, 7, 9, 11}, {2, 2, 2}}
	targets := []uint64{7, 9}

	b := &bench.Batch{ID: "batch-1", Config: bench.Config{Count: 2, MinLength: 2, MaxLength: 10, Workers: 1}}
	for i, seq := range seqs {
		b.Units = append(b.Units, bench.Unit{
			Length:   len(seq),
			Target:   targets[i],
			Outcomes: search.Run(seq, targets[i]),
		})
	}
	return b
}

func TestCSVWriter_Wide(t *testing.T) {
	var buf bytes.Buffer

	err := (&CSVWriter{Layout: LayoutWide}).Write(&buf, sampleBatch())
	require.NoError(t, err)

	want := strings.Join([]string{
		"Binary,,Interpolated,,Interpolated binary,",
		"Array length,Comparison count,Array length,Comparison count,Array length,Comparison count",
		"6,9,6,5,6,3",
		"3,8,3,5,3,3",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestCSVWriter_Long(t *testing.T) {
	var buf bytes.Buffer

	err := (&CSVWriter{Layout: LayoutLong}).Write(&buf, sampleBatch())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "algorithm,array_length,comparison_count,found,index", lines[0])
	assert.Equal(t, "binary,6,9,true,3", lines[1])
	assert.Equal(t, "interpolated-binary,3,3,false,", lines[6])
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, JSONWriter{}.Write(&buf, sampleBatch()))

	var doc struct {
		ID      string          `json:"id"`
		Units   []bench.Unit    `json:"units"`
		Summary []bench.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "batch-1", doc.ID)
	require.Len(t, doc.Units, 2)
	idx, found := doc.Units[0].Outcomes[0].Index.Get()
	assert.True(t, found)
	assert.Equal(t, 3, idx)
	assert.False(t, doc.Units[1].Outcomes[0].Index.IsFound())
	assert.Len(t, doc.Summary, 3)
}

func TestYAMLWriter(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, YAMLWriter{}.Write(&buf, sampleBatch()))

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "batch-1", doc["id"])
	assert.Len(t, doc["units"], 2)
	assert.Len(t, doc["summary"], 3)
	assert.Contains(t, buf.String(), "index: null")
}

func TestChartWriter(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewChartWriter(DefaultChartConfig()).Write(&buf, sampleBatch()))

	svg := buf.String()
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Contains(t, svg, `width="1920" height="1000"`)
	assert.Contains(t, svg, "Search algorithm complexity")
	assert.Contains(t, svg, "Array length")
	assert.Contains(t, svg, "Comparison count")
	for _, alg := range search.Algorithms() {
		assert.Contains(t, svg, alg.Label())
	}
	assert.Equal(t, 3, strings.Count(svg, `fill="none" stroke=`))
}

func TestChartWriter_EmptyBatch(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewChartWriter(DefaultChartConfig()).Write(&buf, &bench.Batch{}))
	assert.Contains(t, buf.String(), "</svg>")
	assert.NotContains(t, buf.String(), `fill="none" stroke=`)
}

func TestChartWriter_NoDrawingArea(t *testing.T) {
	cfg := DefaultChartConfig()
	cfg.Width = 10

	err := NewChartWriter(cfg).Write(&bytes.Buffer{}, sampleBatch())
	assert.Error(t, err)
}

func TestLogScale(t *testing.T) {
	s := logScale{min: 1, max: 100, size: 200}

	assert.Equal(t, 0, s.pos(1))
	assert.Equal(t, 100, s.pos(10))
	assert.Equal(t, 200, s.pos(100))
	assert.Equal(t, 0, s.pos(0), "values below the domain clamp to its start")

	inv := logScale{min: 1, max: 100, size: 200, invert: true}
	assert.Equal(t, 200, inv.pos(1))

	labels := make([]string, 0)
	for _, tick := range s.ticks() {
		labels = append(labels, tick.Label)
	}
	assert.Equal(t, []string{"1", "2", "5", "10", "20", "50", "100"}, labels)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriters_PropagateIOErrors(t *testing.T) {
	for _, format := range Formats() {
		t.Run(format, func(t *testing.T) {
			w, err := NewWriter(format)
			require.NoError(t, err)
			assert.Error(t, w.Write(failingWriter{}, sampleBatch()))
		})
	}
}

func TestNewWriter(t *testing.T) {
	tests := []struct {
		format string
		ext    string
		ctype  string
	}{
		{FormatCSV, ".csv", "text/csv"},
		{FormatCSVLong, ".csv", "text/csv"},
		{FormatJSON, ".json", "application/json"},
		{FormatYAML, ".yaml", "application/yaml"},
		{FormatSVG, ".svg", "image/svg+xml"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w, err := NewWriter(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, w.Extension())
			assert.Equal(t, tt.ctype, w.ContentType())
		})
	}

	_, err := NewWriter("xlsx")
	assert.ErrorIs(t, err, domain.ErrUnknownFormat)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "search_results.csv")

	require.NoError(t, WriteFile(path, &CSVWriter{}, sampleBatch()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Binary,,Interpolated,,Interpolated binary,"))
}

func TestWriteFile_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := WriteFile(filepath.Join(blocker, "out.csv"), &CSVWriter{}, sampleBatch())
	assert.Error(t, err)
}
