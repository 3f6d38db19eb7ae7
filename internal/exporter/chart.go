package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"blpcli/internal/analytics"
)

// ChartRenderer renders date-aligned panels as PNG line charts.
type ChartRenderer struct {
	logger *slog.Logger

	width  int
	height int
}

// NewChartRenderer creates a chart renderer with default dimensions.
func NewChartRenderer(logger *slog.Logger) *ChartRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartRenderer{logger: logger, width: 1280, height: 720}
}

// ChartOptions configures a single rendered chart.
type ChartOptions struct {
	Title string
	// ReferenceLine draws a horizontal dashed line at the given level,
	// e.g. 100 for rebased panels or 0 for return panels.
	ReferenceLine *float64
	// PercentAxis formats the value axis as percentages.
	PercentAxis bool
}

var seriesPalette = []drawing.Color{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
}

// RenderPanel draws one line per panel column and writes the chart to
// fullPath as a PNG.
func (r *ChartRenderer) RenderPanel(fullPath string, p *analytics.Panel, opts ChartOptions) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	series := make([]chart.Series, 0, len(p.Columns())+1)
	for i, col := range p.Columns() {
		ts := timeSeries(col, p.Dates, p.Column(col), seriesPalette[i%len(seriesPalette)])
		if ts == nil {
			r.logger.Warn("skipping empty series", slog.String("series", col))
			continue
		}
		series = append(series, ts)
	}
	if len(series) == 0 {
		return fmt.Errorf("no plottable series for %s", fullPath)
	}

	if opts.ReferenceLine != nil {
		series = append(series, referenceSeries(*opts.ReferenceLine, p.Dates))
	}

	valueFormatter := chart.FloatValueFormatter
	if opts.PercentAxis {
		valueFormatter = percentFormatter
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  r.width,
		Height: r.height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: chart.YAxis{
			ValueFormatter: valueFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	r.logger.Info("wrote chart",
		slog.String("path", fullPath),
		slog.String("title", opts.Title),
		slog.Int("series", len(p.Columns())))
	return nil
}

// timeSeries builds a plottable series, dropping NaN points since the
// chart backend cannot draw them. Returns nil when nothing remains.
func timeSeries(name string, dates []time.Time, values []float64, color drawing.Color) chart.Series {
	xs := make([]time.Time, 0, len(dates))
	ys := make([]float64, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, dates[i])
		ys = append(ys, v)
	}
	if len(xs) < 2 {
		return nil
	}
	return chart.TimeSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: color,
			StrokeWidth: 1.5,
		},
	}
}

func referenceSeries(level float64, dates []time.Time) chart.Series {
	xs := []time.Time{dates[0], dates[len(dates)-1]}
	return chart.TimeSeries{
		XValues: xs,
		YValues: []float64{level, level},
		Style: chart.Style{
			StrokeColor:     drawing.Color{R: 110, G: 110, B: 110, A: 255},
			StrokeWidth:     1.0,
			StrokeDashArray: []float64{4.0, 4.0},
		},
	}
}

func percentFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.1f%%", f*100)
	}
	return chart.FloatValueFormatter(v)
}
