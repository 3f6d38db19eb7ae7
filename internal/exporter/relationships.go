package exporter

import (
	"fmt"

	"blpcli/internal/supplychain"
)

// RelationshipHeaders returns the full column set written by the
// per-role Excel workbooks.
func RelationshipHeaders(role supplychain.Role) []string {
	return []string{
		"Ticker",
		roleNameHeader(role),
		"EquityTicker",
		"SizePercent",
		"AsOf",
		"RelationshipAmount",
		"Currency",
		"AccountType",
		"RevenuePercent",
		"CostPercent",
		"AmountAsOf",
	}
}

// RelationshipRow converts a relationship to a full CSV/Excel row.
func RelationshipRow(rel supplychain.Relationship) []string {
	return []string{
		rel.Ticker,
		rel.CounterpartyName,
		rel.EquityTicker,
		formatFloatPtr(rel.SizePercent),
		rel.AsOf,
		formatDecimal(rel.Amount),
		rel.Currency,
		rel.AccountType,
		formatFloatPtr(rel.RevenuePercent),
		formatFloatPtr(rel.CostPercent),
		rel.AmountAsOf,
	}
}

// ParityHeaders returns the short column set of the Excel-parity CSVs.
func ParityHeaders(role supplychain.Role) []string {
	return []string{
		"ticker",
		fmt.Sprintf("%s_name", role),
		"relationship_size_pct",
		"relationship_amount",
		"asof",
	}
}

// ParityRow converts a relationship to an Excel-parity CSV row.
func ParityRow(rel supplychain.Relationship) []string {
	return []string{
		rel.Ticker,
		rel.CounterpartyName,
		formatFloatPtr(rel.SizePercent),
		formatDecimal(rel.Amount),
		rel.AsOf,
	}
}

// WriteParityCSV writes the short-form relationship CSV for one role.
func (w *CSVWriter) WriteParityCSV(fullPath string, role supplychain.Role, rels []supplychain.Relationship) error {
	records := make([][]string, 0, len(rels))
	for _, rel := range rels {
		records = append(records, ParityRow(rel))
	}
	return w.WriteSimpleCSV(fullPath, ParityHeaders(role), records)
}

func roleNameHeader(role supplychain.Role) string {
	if role == supplychain.RoleSupplier {
		return "SupplierName"
	}
	return "CustomerName"
}
