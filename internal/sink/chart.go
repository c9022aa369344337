package sink

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/cloo-solutions/searchbench/internal/bench"
)

// ChartConfig holds chart labels, dimensions and styling.
type ChartConfig struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	Title        string
	XLabel       string
	YLabel       string
	GridColor    string
	TextColor    string
	StrokeWidth  int
	Colors       []string
}

// DefaultChartConfig returns a 1920x1000 chart with labelled log/log axes.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        1920,
		Height:       1000,
		MarginTop:    60,
		MarginRight:  40,
		MarginBottom: 70,
		MarginLeft:   110,
		Title:        "Search algorithm complexity",
		XLabel:       "Array length",
		YLabel:       "Comparison count",
		GridColor:    "#e5e7eb",
		TextColor:    "#000000",
		StrokeWidth:  3,
		Colors:       []string{"#3b82f6", "#ef4444", "#10b981", "#f97316", "#8b5cf6"},
	}
}

type chartTick struct {
	Pos   int
	Label string
}

type chartSeries struct {
	Name  string
	Color string
	Path  string
}

type chartLegend struct {
	Name  string
	Color string
	Y     int
}

type chartData struct {
	Config      ChartConfig
	InnerWidth  int
	InnerHeight int
	XTicks      []chartTick
	YTicks      []chartTick
	Series      []chartSeries
	Legend      []chartLegend
}

const chartTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<svg width="{{.Config.Width}}" height="{{.Config.Height}}" xmlns="http://www.w3.org/2000/svg">
  <style>
    .axis { font: 16px sans-serif; fill: {{.Config.TextColor}}; }
    .axis line, .axis path { fill: none; stroke: {{.Config.TextColor}}; }
    .grid { stroke: {{.Config.GridColor}}; stroke-width: 1px; }
    .title { font: bold 32px sans-serif; text-anchor: middle; fill: {{.Config.TextColor}}; }
    .label { font: 18px sans-serif; text-anchor: middle; fill: {{.Config.TextColor}}; }
    .legend { font: 16px sans-serif; fill: {{.Config.TextColor}}; }
  </style>
  <rect width="100%" height="100%" fill="#ffffff"/>
  <text class="title" x="{{half .Config.Width}}" y="{{half .Config.MarginTop}}">{{html .Config.Title}}</text>
  <g transform="translate({{.Config.MarginLeft}},{{.Config.MarginTop}})">
    {{- range .XTicks}}
    <line class="grid" x1="{{.Pos}}" x2="{{.Pos}}" y1="0" y2="{{$.InnerHeight}}"/>
    {{- end}}
    {{- range .YTicks}}
    <line class="grid" x1="0" x2="{{$.InnerWidth}}" y1="{{.Pos}}" y2="{{.Pos}}"/>
    {{- end}}
    <g class="axis" transform="translate(0,{{.InnerHeight}})">
      <path d="M0,0H{{.InnerWidth}}"/>
      {{- range .XTicks}}
      <line x1="{{.Pos}}" x2="{{.Pos}}" y1="0" y2="6"/><text x="{{.Pos}}" y="24" text-anchor="middle">{{.Label}}</text>
      {{- end}}
      <text class="label" x="{{half .InnerWidth}}" y="55">{{html .Config.XLabel}}</text>
    </g>
    <g class="axis">
      <path d="M0,0V{{.InnerHeight}}"/>
      {{- range .YTicks}}
      <line x1="0" x2="-6" y1="{{.Pos}}" y2="{{.Pos}}"/><text x="-10" y="{{add .Pos 5}}" text-anchor="end">{{.Label}}</text>
      {{- end}}
      <text class="label" transform="rotate(-90)" x="-{{half .InnerHeight}}" y="-70">{{html .Config.YLabel}}</text>
    </g>
    {{- range .Series}}
    <path fill="none" stroke="{{.Color}}" stroke-opacity="0.9" stroke-width="{{$.Config.StrokeWidth}}" d="{{.Path}}"/>
    {{- end}}
    <g class="legend" transform="translate({{add .InnerWidth -280}},20)">
      <rect x="-10" y="-10" width="270" height="{{add (mul (len .Legend) 24) 12}}" fill="#ffffff" stroke="#000000"/>
      {{- range .Legend}}
      <rect x="0" y="{{.Y}}" width="10" height="10" fill="{{.Color}}"/><text x="20" y="{{add .Y 10}}">{{html .Name}}</text>
      {{- end}}
    </g>
  </g>
</svg>
`

var chartTmpl = template.Must(template.New("chart").Funcs(template.FuncMap{
	"half": func(a int) int { return a / 2 },
	"add":  func(a, b int) int { return a + b },
	"mul":  func(a, b int) int { return a * b },
}).Parse(chartTemplate))

// ChartWriter renders array length against comparison count on log/log
// axes, one line per algorithm.
type ChartWriter struct {
	config ChartConfig
}

func NewChartWriter(config ChartConfig) *ChartWriter {
	return &ChartWriter{config: config}
}

func (c *ChartWriter) ContentType() string { return "image/svg+xml" }
func (c *ChartWriter) Extension() string   { return ".svg" }

func (c *ChartWriter) Write(out io.Writer, b *bench.Batch) error {
	cfg := c.config
	innerWidth := cfg.Width - cfg.MarginLeft - cfg.MarginRight
	innerHeight := cfg.Height - cfg.MarginTop - cfg.MarginBottom
	if innerWidth <= 0 || innerHeight <= 0 {
		return fmt.Errorf("chart margins leave no drawing area (%dx%d)", cfg.Width, cfg.Height)
	}

	xDomain, yDomain := extents(b)
	xs := logScale{min: xDomain[0], max: xDomain[1], size: innerWidth}
	ys := logScale{min: yDomain[0], max: yDomain[1], size: innerHeight, invert: true}

	data := chartData{
		Config:      cfg,
		InnerWidth:  innerWidth,
		InnerHeight: innerHeight,
		XTicks:      xs.ticks(),
		YTicks:      ys.ticks(),
	}

	for i, alg := range b.Algorithms() {
		color := "#000000"
		if len(cfg.Colors) > 0 {
			color = cfg.Colors[i%len(cfg.Colors)]
		}

		var path strings.Builder
		for j, o := range b.Series(alg) {
			cmd := "L"
			if j == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&path, "%s%d,%d", cmd, xs.pos(float64(o.Length)), ys.pos(float64(o.Comparisons)))
		}

		data.Series = append(data.Series, chartSeries{Name: alg.Label(), Color: color, Path: path.String()})
		data.Legend = append(data.Legend, chartLegend{Name: alg.Label(), Color: color, Y: i * 24})
	}

	if err := chartTmpl.Execute(out, data); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// extents returns the x (length) and y (comparisons) domains of the batch.
// Both start at 1 or more since they are drawn on log axes.
func extents(b *bench.Batch) (x, y [2]float64) {
	x = [2]float64{math.Inf(1), 1}
	y = [2]float64{1, 1}
	for _, u := range b.Units {
		x[0] = math.Min(x[0], float64(u.Length))
		x[1] = math.Max(x[1], float64(u.Length))
		for _, o := range u.Outcomes {
			y[1] = math.Max(y[1], float64(o.Comparisons))
		}
	}
	if math.IsInf(x[0], 1) || x[0] < 1 {
		x[0] = 1
	}
	if x[1] <= x[0] {
		x[1] = x[0] * 10
	}
	if y[1] <= y[0] {
		y[1] = y[0] * 10
	}
	return x, y
}

type logScale struct {
	min, max float64
	size     int
	invert   bool
}

func (s logScale) pos(v float64) int {
	v = math.Max(v, s.min)
	frac := (math.Log10(v) - math.Log10(s.min)) / (math.Log10(s.max) - math.Log10(s.min))
	if s.invert {
		frac = 1 - frac
	}
	return int(math.Round(frac * float64(s.size)))
}

// ticks places a tick at every 1, 2 and 5 multiple of a power of ten inside
// the domain.
func (s logScale) ticks() []chartTick {
	var out []chartTick
	for exp := math.Floor(math.Log10(s.min)); exp <= math.Ceil(math.Log10(s.max)); exp++ {
		base := math.Pow(10, exp)
		for _, m := range []float64{1, 2, 5} {
			v := m * base
			if v < s.min || v > s.max {
				continue
			}
			out = append(out, chartTick{Pos: s.pos(v), Label: strconv.FormatFloat(v, 'f', -1, 64)})
		}
	}
	return out
}
