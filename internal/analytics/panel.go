// Package analytics provides the date-aligned panel and the rolling
// time-series metrics used by the benchmark comparison tool.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"blpcli/internal/refdata"
)

// Panel is a wide table of float series sharing one ascending date
// index. Missing observations are NaN.
type Panel struct {
	Dates   []time.Time
	columns []string
	data    map[string][]float64
}

// NewPanel creates an empty panel over the given dates.
func NewPanel(dates []time.Time) *Panel {
	return &Panel{
		Dates: dates,
		data:  make(map[string][]float64),
	}
}

// FromHistories builds a panel from per-security histories. Each
// security contributes one column named by names[security] (the raw
// security string when unmapped), valued by the first field in fields
// present on each row. Securities with no usable rows are skipped; the
// second return lists them. The date index is the sorted union of all
// observation dates, duplicates dropped (first occurrence wins).
func FromHistories(histories []refdata.SecurityHistory, names map[string]string, fields ...string) (*Panel, []string, error) {
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("no value fields given")
	}

	type series struct {
		name   string
		values map[time.Time]float64
	}

	var (
		kept    []series
		skipped []string
		dateSet = make(map[time.Time]struct{})
	)

	for _, h := range histories {
		if h.Empty() {
			skipped = append(skipped, h.Security)
			continue
		}

		name := h.Security
		if mapped, ok := names[h.Security]; ok {
			name = mapped
		}

		s := series{name: name, values: make(map[time.Time]float64, len(h.Rows))}
		for _, row := range h.Rows {
			v, ok := firstField(row, fields)
			if !ok {
				continue
			}
			if _, dup := s.values[row.Date]; dup {
				continue // keep first on duplicate dates
			}
			s.values[row.Date] = v
			dateSet[row.Date] = struct{}{}
		}
		if len(s.values) == 0 {
			skipped = append(skipped, h.Security)
			continue
		}
		kept = append(kept, s)
	}

	if len(kept) == 0 {
		return nil, skipped, fmt.Errorf("no data available for any security")
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	p := NewPanel(dates)
	for _, s := range kept {
		col := make([]float64, len(dates))
		for i, d := range dates {
			if v, ok := s.values[d]; ok {
				col[i] = v
			} else {
				col[i] = math.NaN()
			}
		}
		p.addColumn(s.name, col)
	}

	return p, skipped, nil
}

func firstField(row refdata.HistoryRow, fields []string) (float64, bool) {
	for _, f := range fields {
		if v, ok := row.Value(f); ok {
			return v, true
		}
	}
	return 0, false
}

// AddSeries appends a column; the values slice must match the date
// index length.
func (p *Panel) AddSeries(name string, values []float64) error {
	if len(values) != len(p.Dates) {
		return fmt.Errorf("series %s has %d values for %d dates", name, len(values), len(p.Dates))
	}
	p.addColumn(name, values)
	return nil
}

func (p *Panel) addColumn(name string, values []float64) {
	if _, exists := p.data[name]; !exists {
		p.columns = append(p.columns, name)
	}
	p.data[name] = values
}

// Columns returns column names in insertion order.
func (p *Panel) Columns() []string {
	return p.columns
}

// Column returns the values for a column, or nil when absent.
func (p *Panel) Column(name string) []float64 {
	return p.data[name]
}

// Len returns the number of rows.
func (p *Panel) Len() int {
	return len(p.Dates)
}

// Align forward-fills then back-fills gaps in every column (holiday
// mismatches across exchanges), then drops any row still incomplete.
func (p *Panel) Align() *Panel {
	filled := make(map[string][]float64, len(p.columns))
	for _, name := range p.columns {
		filled[name] = fillGaps(p.data[name])
	}

	keep := make([]int, 0, len(p.Dates))
	for i := range p.Dates {
		complete := true
		for _, name := range p.columns {
			if math.IsNaN(filled[name][i]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}

	out := NewPanel(selectDates(p.Dates, keep))
	for _, name := range p.columns {
		out.addColumn(name, selectValues(filled[name], keep))
	}
	return out
}

// Rebase scales each column so its first value equals base.
func (p *Panel) Rebase(base float64) *Panel {
	out := NewPanel(p.Dates)
	for _, name := range p.columns {
		src := p.data[name]
		col := make([]float64, len(src))
		first := firstValid(src)
		for i, v := range src {
			if math.IsNaN(v) || math.IsNaN(first) || first == 0 {
				col[i] = math.NaN()
			} else {
				col[i] = v / first * base
			}
		}
		out.addColumn(name, col)
	}
	return out
}

// Returns computes simple percentage changes; the resulting panel has
// one fewer row.
func (p *Panel) Returns() *Panel {
	if len(p.Dates) < 2 {
		return NewPanel(nil)
	}
	out := NewPanel(p.Dates[1:])
	for _, name := range p.columns {
		src := p.data[name]
		col := make([]float64, len(src)-1)
		for i := 1; i < len(src); i++ {
			prev, cur := src[i-1], src[i]
			if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
				col[i-1] = math.NaN()
			} else {
				col[i-1] = cur/prev - 1
			}
		}
		out.addColumn(name, col)
	}
	return out
}

func fillGaps(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)

	// Forward fill.
	last := math.NaN()
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = last
		} else {
			last = v
		}
	}
	// Back fill the leading gap.
	next := math.NaN()
	for i := len(out) - 1; i >= 0; i-- {
		if math.IsNaN(out[i]) {
			out[i] = next
		} else {
			next = out[i]
		}
	}
	return out
}

func firstValid(values []float64) float64 {
	for _, v := range values {
		if !math.IsNaN(v) {
			return v
		}
	}
	return math.NaN()
}

func selectDates(dates []time.Time, idx []int) []time.Time {
	out := make([]time.Time, len(idx))
	for i, j := range idx {
		out[i] = dates[j]
	}
	return out
}

func selectValues(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
