package exporter

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// formatFloat renders a value for CSV output; NaN becomes an empty
// cell, everything else keeps full precision.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatFloatPtr renders an optional value; nil is an empty cell.
func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

// formatDecimal renders an optional amount; nil is an empty cell.
func formatDecimal(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
