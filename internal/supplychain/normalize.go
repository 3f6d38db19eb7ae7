package supplychain

import (
	"math"
	"strconv"
	"strings"
)

// Bulk supply-chain rows are loosely keyed; the exact column set varies
// by terminal version and entitlement. These candidate keys are tried
// in order before falling back to substring matching.
var (
	nameKeys = []string{
		"counterparty_name", "name", "rel_name", "rel_name_long",
		"company_name", "supplier_name", "customer_name",
	}
	pctKeys = []string{
		"rel_pct_rev", "rel_pct_cost", "pct_of_revenue", "pct_of_cost",
		"relationship_percent", "pct", "pct_rev", "pct_cost", "percent",
	}
	asofKeys = []string{
		"asof", "as_of_date", "effective_date", "period_end_date", "date",
	}
	tickerKeys = []string{
		"equity_ticker", "related_ticker", "counterparty_ticker",
	}
)

// Normalize maps loosely-keyed bulk rows for one issuer onto
// Relationship values. Rows yielding neither a name nor an equity
// ticker are dropped; unparsable percents become nil, not zero.
func Normalize(role Role, ticker string, rows []map[string]any) []Relationship {
	out := make([]Relationship, 0, len(rows))
	for _, row := range rows {
		lower := make(map[string]any, len(row))
		for k, v := range row {
			lower[normalizeKey(k)] = v
		}

		rel := Relationship{
			Ticker:           ticker,
			Role:             role,
			CounterpartyName: firstString(lower, nameKeys, "name"),
			EquityTicker:     firstString(lower, tickerKeys, "ticker"),
			SizePercent:      firstPercent(lower),
			AsOf:             firstString(lower, asofKeys, "date"),
		}
		if rel.CounterpartyName == "" && rel.EquityTicker == "" {
			continue
		}
		out = append(out, rel)
	}
	return out
}

// Dedupe drops repeated (ticker, counterparty, role) rows, keeping the
// first occurrence. Repeats show up when the vendor reports the same
// relationship under multiple disclosure periods.
func Dedupe(rels []Relationship) []Relationship {
	seen := make(map[string]struct{}, len(rels))
	out := make([]Relationship, 0, len(rels))
	for _, rel := range rels {
		key := rel.Ticker + "|" + rel.CounterpartyName + "|" + string(rel.Role)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rel)
	}
	return out
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.ReplaceAll(k, " ", "_")
}

// firstString tries the candidate keys in order, then any key
// containing the fallback substring.
func firstString(row map[string]any, candidates []string, fallback string) string {
	for _, k := range candidates {
		if s, ok := stringValue(row[k]); ok {
			return s
		}
	}
	for k, v := range row {
		if strings.Contains(k, fallback) {
			if s, ok := stringValue(v); ok {
				return s
			}
		}
	}
	return ""
}

func firstPercent(row map[string]any) *float64 {
	for _, k := range pctKeys {
		if v, ok := row[k]; ok {
			if f, ok := toFloat(v); ok {
				return &f
			}
		}
	}
	for k, v := range row {
		if strings.Contains(k, "pct") || strings.Contains(k, "percent") || strings.Contains(k, "%") {
			if f, ok := toFloat(v); ok {
				return &f
			}
		}
	}
	return nil
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case int:
		return float64(x), true
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(x), "%"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
