// Package supplychain models issuer/counterparty relationships pulled
// from the vendor's supply-chain dataset and enriches them with
// per-relationship reference fields.
package supplychain

import (
	"github.com/shopspring/decimal"
)

// Role is the side of the relationship relative to the queried issuer.
type Role string

const (
	RoleSupplier Role = "supplier"
	RoleCustomer Role = "customer"
)

// BulkField returns the bulk field holding the relationship table.
func (r Role) BulkField() string {
	if r == RoleSupplier {
		return "SUPPLY_CHAIN_SUPPLIERS"
	}
	return "SUPPLY_CHAIN_CUSTOMERS"
}

// RelationshipOverride returns the override value selecting the
// relationship context for scalar pulls.
func (r Role) RelationshipOverride() string {
	if r == RoleSupplier {
		return "S"
	}
	return "C"
}

// SheetName returns the Excel sheet name used for the role.
func (r Role) SheetName() string {
	if r == RoleSupplier {
		return "Suppliers"
	}
	return "Customers"
}

// Relationship is one modeled link between an issuer and a counterparty
// with its exposure. Pointer fields distinguish "vendor returned
// nothing" from a true zero.
type Relationship struct {
	Ticker           string // issuer queried
	Role             Role
	CounterpartyName string
	EquityTicker     string // counterparty's own ticker when disclosed
	SizePercent      *float64
	AsOf             string

	// Enrichment fields from per-relationship scalar pulls.
	Amount         *decimal.Decimal
	Currency       string
	AccountType    string
	RevenuePercent *float64
	CostPercent    *float64
	AmountAsOf     string
}

// RelatedKey returns the value used for RELATED_COMPANY_OVERRIDE:
// the counterparty's equity ticker when present, else its name.
// Empty when the row carries neither.
func (r Relationship) RelatedKey() string {
	if r.EquityTicker != "" {
		return r.EquityTicker
	}
	return r.CounterpartyName
}

// FetchOptions configures a supply-chain pull. Zero-valued fields are
// defaulted by the service before validation.
type FetchOptions struct {
	// SumCount caps the number of counterparties per issuer
	// (SUPPLY_CHAIN_SUM_COUNT_OVERRIDE).
	SumCount int `validate:"gt=0"`
	// Quantified restricts results to quantified relationships
	// (QUANTIFIED_OVERRIDE).
	Quantified string `validate:"oneof=Y N"`
	// SupplierSort orders the supplier table
	// (SUP_CHAIN_RELATIONSHIP_SORT_OVR); suppliers only.
	SupplierSort string `validate:"omitempty,len=1"`
	// Currency converts relationship amounts (EQY_FUND_CRNCY).
	Currency string `validate:"iso4217"`
	// AmountOnly limits enrichment to RELATIONSHIP_AMOUNT, matching
	// the Excel-parity output.
	AmountOnly bool
}

// DefaultFetchOptions mirrors the standard terminal pull.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		SumCount:     20,
		Quantified:   "Y",
		SupplierSort: "C",
		Currency:     "USD",
	}
}
