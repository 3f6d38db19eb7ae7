package exporter

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blpcli/internal/analytics"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func chartPanel(t *testing.T) *analytics.Panel {
	t.Helper()
	dates := make([]time.Time, 30)
	sox := make([]float64, 30)
	spx := make([]float64, 30)
	for i := range dates {
		dates[i] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		sox[i] = 100 + float64(i)*0.8
		spx[i] = 100 + float64(i)*0.3
	}
	p := analytics.NewPanel(dates)
	require.NoError(t, p.AddSeries("SOX", sox))
	require.NoError(t, p.AddSeries("SPX", spx))
	return p
}

func TestRenderPanelWritesPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "01_rebased_performance.png")

	ref := 100.0
	r := NewChartRenderer(nil)
	err := r.RenderPanel(path, chartPanel(t), ChartOptions{
		Title:         "Performance rebased to 100",
		ReferenceLine: &ref,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 4)
	assert.Equal(t, pngMagic, data[:4])
}

func TestRenderPanelSkipsNaNOnlySeries(t *testing.T) {
	p := chartPanel(t)
	nan := make([]float64, p.Len())
	for i := range nan {
		nan[i] = math.NaN()
	}
	require.NoError(t, p.AddSeries("EMPTY", nan))

	dir := t.TempDir()
	path := filepath.Join(dir, "chart.png")

	r := NewChartRenderer(nil)
	require.NoError(t, r.RenderPanel(path, p, ChartOptions{Title: "mixed"}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestRenderPanelFailsWithNoPlottableSeries(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	p := analytics.NewPanel(dates)
	require.NoError(t, p.AddSeries("EMPTY", []float64{math.NaN(), math.NaN()}))

	dir := t.TempDir()
	r := NewChartRenderer(nil)
	err := r.RenderPanel(filepath.Join(dir, "chart.png"), p, ChartOptions{})
	assert.Error(t, err)
}

func TestPercentFormatter(t *testing.T) {
	assert.Equal(t, "12.5%", percentFormatter(0.125))
	assert.Equal(t, "-3.0%", percentFormatter(-0.03))
}
