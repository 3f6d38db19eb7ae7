package supplychain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	rows := []map[string]any{
		{
			"Counterparty Name": "Taiwan Semiconductor",
			"Equity Ticker":     "2330 TT Equity",
			"% of Costs":        31.2,
			"As Of Date":        "2024-03-31",
		},
		{
			// Different key vocabulary, percent as string.
			"supplier_name": "SK Hynix",
			"pct_of_cost":   "11.0%",
			"period_end_date": "2023-12-31",
		},
		{
			// No name and no ticker: dropped.
			"relationship_percent": 4.2,
		},
	}

	rels := Normalize(RoleSupplier, "NVDA UW Equity", rows)
	require.Len(t, rels, 2)

	first := rels[0]
	assert.Equal(t, "NVDA UW Equity", first.Ticker)
	assert.Equal(t, RoleSupplier, first.Role)
	assert.Equal(t, "Taiwan Semiconductor", first.CounterpartyName)
	assert.Equal(t, "2330 TT Equity", first.EquityTicker)
	require.NotNil(t, first.SizePercent)
	assert.InDelta(t, 31.2, *first.SizePercent, 1e-9)
	assert.Equal(t, "2024-03-31", first.AsOf)

	second := rels[1]
	assert.Equal(t, "SK Hynix", second.CounterpartyName)
	assert.Empty(t, second.EquityTicker)
	require.NotNil(t, second.SizePercent)
	assert.InDelta(t, 11.0, *second.SizePercent, 1e-9)
	assert.Equal(t, "2023-12-31", second.AsOf)
}

func TestNormalize_UnparsablePercentIsNil(t *testing.T) {
	rels := Normalize(RoleCustomer, "AAPL UW Equity", []map[string]any{
		{"customer_name": "Foxconn", "pct": "n/a"},
	})
	require.Len(t, rels, 1)
	assert.Nil(t, rels[0].SizePercent, "unparsable percent dropped, not zeroed")
}

func TestNormalize_DegenerateValueRow(t *testing.T) {
	// One-column bulk responses come back wrapped under "value".
	rels := Normalize(RoleCustomer, "AAPL UW Equity", []map[string]any{
		{"value": "Foxconn"},
	})
	assert.Empty(t, rels, "a bare value is neither a name nor a ticker")
}

func TestRelatedKey(t *testing.T) {
	withTicker := Relationship{CounterpartyName: "TSMC", EquityTicker: "2330 TT Equity"}
	assert.Equal(t, "2330 TT Equity", withTicker.RelatedKey())

	nameOnly := Relationship{CounterpartyName: "TSMC"}
	assert.Equal(t, "TSMC", nameOnly.RelatedKey())

	assert.Empty(t, Relationship{}.RelatedKey())
}

func TestDedupe(t *testing.T) {
	rels := []Relationship{
		{Ticker: "NVDA UW Equity", CounterpartyName: "TSMC", Role: RoleSupplier},
		{Ticker: "NVDA UW Equity", CounterpartyName: "TSMC", Role: RoleSupplier},
		{Ticker: "NVDA UW Equity", CounterpartyName: "TSMC", Role: RoleCustomer},
		{Ticker: "AMD UW Equity", CounterpartyName: "TSMC", Role: RoleSupplier},
	}
	deduped := Dedupe(rels)
	assert.Len(t, deduped, 3)
}

func TestRoleMappings(t *testing.T) {
	assert.Equal(t, "SUPPLY_CHAIN_SUPPLIERS", RoleSupplier.BulkField())
	assert.Equal(t, "SUPPLY_CHAIN_CUSTOMERS", RoleCustomer.BulkField())
	assert.Equal(t, "S", RoleSupplier.RelationshipOverride())
	assert.Equal(t, "C", RoleCustomer.RelationshipOverride())
	assert.Equal(t, "Suppliers", RoleSupplier.SheetName())
	assert.Equal(t, "Customers", RoleCustomer.SheetName())
}
