package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cloo-solutions/searchbench/internal/bench"
	"github.com/cloo-solutions/searchbench/internal/search"
	"github.com/fatih/color"
)

// printer writes human output, coloured unless disabled.
type printer struct {
	out     io.Writer
	ok      *color.Color
	fail    *color.Color
	heading *color.Color
	dim     *color.Color
}

func newPrinter(out io.Writer, noColor bool) *printer {
	p := &printer{
		out:     out,
		ok:      color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		heading: color.New(color.Bold),
		dim:     color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.ok, p.fail, p.heading, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) success(format string, args ...interface{}) {
	p.ok.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) failure(format string, args ...interface{}) {
	p.fail.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) info(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) summary(b *bench.Batch, summaries []bench.Summary) {
	p.heading.Fprintf(p.out, "\nBatch %s: %d arrays of length [%d, %d), seed %d\n",
		b.ID, len(b.Units), b.Config.MinLength, b.Config.MaxLength, b.Config.Seed)

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tFOUND\tMIN\tMEAN\tMAX")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d/%d\t%d\t%.2f\t%d\n",
			s.Algorithm.Label(), s.Found, s.Runs, s.MinComparisons, s.MeanComparisons, s.MaxComparisons)
	}
	tw.Flush()
}

func (p *printer) outcomes(target uint64, outcomes []search.Outcome) {
	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tINDEX\tCOMPARISONS")
	for _, o := range outcomes {
		index := p.fail.Sprint(o.Index.String())
		if o.Index.IsFound() {
			index = p.ok.Sprint(o.Index.String())
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", o.Algorithm.Label(), index, o.Comparisons)
	}
	tw.Flush()
	p.dim.Fprintf(p.out, "target %d\n", target)
}

func printJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
