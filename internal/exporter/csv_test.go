package exporter

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blpcli/internal/analytics"
	"blpcli/internal/supplychain"
)

func TestWriteSimpleCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	w := NewCSVWriter()
	err := w.WriteSimpleCSV(path,
		[]string{"a", "b"},
		[][]string{{"1", "2"}, {"3", "4"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF"), "expected UTF-8 BOM")
	assert.Contains(t, content, "a,b\n")
	assert.Contains(t, content, "1,2\n")
	assert.Contains(t, content, "3,4\n")
}

func TestWriteCSVCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports", "nested", "out.csv")

	w := NewCSVWriter()
	err := w.WriteCSV(path, WriteOptions{
		Headers: []string{"x"},
		Records: [][]string{{"1"}},
	})
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestAppendToCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	w := NewCSVWriter()
	require.NoError(t, w.WriteSimpleCSV(path, []string{"a"}, [][]string{{"1"}}))
	require.NoError(t, w.AppendToCSV(path, [][]string{{"2"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(data), "\xEF\xBB\xBF")), "\n")
	assert.Equal(t, []string{"a", "1", "2"}, lines)
}

func TestStreamWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stream.csv")

	w := NewCSVWriter()
	sw, err := w.CreateStreamWriter(path, []string{"date", "value"})
	require.NoError(t, err)

	require.NoError(t, sw.WriteRecord([]string{"2024-01-02", "1.5"}))
	require.NoError(t, sw.WriteRecord([]string{"2024-01-03", "2.5"}))
	require.NoError(t, sw.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "date,value\n2024-01-02,1.5\n2024-01-03,2.5\n")
}

func TestWritePanelCSV(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	p := analytics.NewPanel(dates)
	require.NoError(t, p.AddSeries("SOX", []float64{100, 101.5}))
	require.NoError(t, p.AddSeries("SPX", []float64{100, math.NaN()}))

	dir := t.TempDir()
	path := filepath.Join(dir, "combined.csv")

	w := NewCSVWriter()
	require.NoError(t, w.WritePanelCSV(path, p))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := strings.TrimPrefix(string(data), "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,SOX,SPX", lines[0])
	assert.Equal(t, "2024-01-02,100,100", lines[1])
	// NaN renders as an empty cell.
	assert.Equal(t, "2024-01-03,101.5,", lines[2])
}

func TestWriteParityCSV(t *testing.T) {
	amount := decimal.NewFromFloat(1234.56)
	pct := 12.5
	rels := []supplychain.Relationship{
		{
			Ticker:           "AAPL US Equity",
			Role:             supplychain.RoleSupplier,
			CounterpartyName: "Foxconn",
			SizePercent:      &pct,
			Amount:           &amount,
			AsOf:             "2024-06-30",
		},
		{
			Ticker:           "AAPL US Equity",
			Role:             supplychain.RoleSupplier,
			CounterpartyName: "TSMC",
		},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "suppliers.csv")

	w := NewCSVWriter()
	require.NoError(t, w.WriteParityCSV(path, supplychain.RoleSupplier, rels))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := strings.TrimPrefix(string(data), "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ticker,supplier_name,relationship_size_pct,relationship_amount,asof", lines[0])
	assert.Equal(t, "AAPL US Equity,Foxconn,12.5,1234.56,2024-06-30", lines[1])
	assert.Equal(t, "AAPL US Equity,TSMC,,,", lines[2])
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "", formatFloat(math.NaN()))
	assert.Equal(t, "1.5", formatFloat(1.5))
	assert.Equal(t, "-0.25", formatFloat(-0.25))
	assert.Equal(t, "", formatFloatPtr(nil))
}
