package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cloo-solutions/searchbench/internal/bench"
)

// Layout selects the CSV shape.
type Layout int

const (
	// LayoutWide writes one row per unit with an (array length, comparison
	// count) column pair per algorithm under a banner row of algorithm names.
	LayoutWide Layout = iota
	// LayoutLong writes one row per (unit, algorithm).
	LayoutLong
)

// CSVWriter writes a batch as comma separated values.
type CSVWriter struct {
	Layout Layout
}

func (w *CSVWriter) ContentType() string { return "text/csv" }
func (w *CSVWriter) Extension() string   { return ".csv" }

func (w *CSVWriter) Write(out io.Writer, b *bench.Batch) error {
	cw := csv.NewWriter(out)

	var err error
	if w.Layout == LayoutLong {
		err = writeLong(cw, b)
	} else {
		err = writeWide(cw, b)
	}
	if err != nil {
		return err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func writeWide(cw *csv.Writer, b *bench.Batch) error {
	algs := b.Algorithms()

	banner := make([]string, 0, 2*len(algs))
	header := make([]string, 0, 2*len(algs))
	for _, alg := range algs {
		banner = append(banner, alg.ShortLabel(), "")
		header = append(header, "Array length", "Comparison count")
	}
	if err := cw.Write(banner); err != nil {
		return fmt.Errorf("failed to write csv banner: %w", err)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	row := make([]string, 0, 2*len(algs))
	for _, u := range b.Units {
		row = row[:0]
		for _, alg := range algs {
			o, _ := u.Outcome(alg)
			row = append(row, strconv.Itoa(o.Length), strconv.FormatUint(o.Comparisons, 10))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	return nil
}

func writeLong(cw *csv.Writer, b *bench.Batch) error {
	if err := cw.Write([]string{"algorithm", "array_length", "comparison_count", "found", "index"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, u := range b.Units {
		for _, o := range u.Outcomes {
			idx, found := o.Index.Get()
			index := ""
			if found {
				index = strconv.Itoa(idx)
			}
			rec := []string{
				string(o.Algorithm),
				strconv.Itoa(o.Length),
				strconv.FormatUint(o.Comparisons, 10),
				strconv.FormatBool(found),
				index,
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}
	return nil
}
