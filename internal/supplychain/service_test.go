package supplychain

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "blpcli/internal/errors"
	"blpcli/internal/refdata"
)

// fakeRefData answers bulk pulls from a canned table and enrichment
// pulls from a canned scalar set, recording every request.
type fakeRefData struct {
	bulkRows map[string][]map[string]any // ticker -> rows
	scalars  map[string]any              // field -> value for every enrichment
	requests []refdata.ReferenceRequest
	err      error
}

func (f *fakeRefData) ReferenceData(_ context.Context, req refdata.ReferenceRequest) ([]refdata.SecurityData, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}

	security := req.Securities[0]
	fieldData := make(map[string]json.RawMessage)

	for _, field := range req.Fields {
		switch field {
		case "SUPPLY_CHAIN_SUPPLIERS", "SUPPLY_CHAIN_CUSTOMERS":
			rows, ok := f.bulkRows[security]
			if !ok {
				continue
			}
			raw, _ := json.Marshal(rows)
			fieldData[field] = raw
		default:
			if v, ok := f.scalars[field]; ok {
				raw, _ := json.Marshal(v)
				fieldData[field] = raw
			}
		}
	}

	return []refdata.SecurityData{{Security: security, FieldData: fieldData}}, nil
}

func overrideValue(req refdata.ReferenceRequest, fieldID string) (string, bool) {
	for _, o := range req.Overrides {
		if o.FieldID == fieldID {
			return o.Value, true
		}
	}
	return "", false
}

func TestFetch_BulkThenEnrich(t *testing.T) {
	fake := &fakeRefData{
		bulkRows: map[string][]map[string]any{
			"NVDA UW Equity": {
				{"Counterparty Name": "TSMC", "Equity Ticker": "2330 TT Equity", "% of Costs": 31.2},
			},
		},
		scalars: map[string]any{
			"RELATIONSHIP_AMOUNT":             5310.5,
			"RELATIONSHIP_AS_OF_DATE":         "2024-03-31",
			"SUPPLY_CHAIN_REVENUE_PERCENTAGE": 9.8,
			"SUPPLY_CHAIN_COST_PERCENTAGE":    31.2,
			"SUPPLY_CHAIN_COST_ACCOUNT_TYPE":  "COGS",
		},
	}
	svc := NewService(fake, nil)

	rels, err := svc.Fetch(context.Background(), []string{"NVDA UW Equity"}, RoleSupplier, DefaultFetchOptions())
	require.NoError(t, err)
	require.Len(t, rels, 1)

	rel := rels[0]
	require.NotNil(t, rel.Amount)
	assert.Equal(t, "5310.5", rel.Amount.String())
	assert.Equal(t, "USD", rel.Currency)
	assert.Equal(t, "2024-03-31", rel.AmountAsOf)
	assert.Equal(t, "COGS", rel.AccountType)
	require.NotNil(t, rel.CostPercent)
	assert.InDelta(t, 31.2, *rel.CostPercent, 1e-9)

	// One bulk call plus one enrichment call.
	require.Len(t, fake.requests, 2)

	bulk := fake.requests[0]
	assert.Equal(t, []string{"SUPPLY_CHAIN_SUPPLIERS"}, bulk.Fields)
	sumCount, _ := overrideValue(bulk, "SUPPLY_CHAIN_SUM_COUNT_OVERRIDE")
	assert.Equal(t, "20", sumCount)
	sortOvr, _ := overrideValue(bulk, "SUP_CHAIN_RELATIONSHIP_SORT_OVR")
	assert.Equal(t, "C", sortOvr)

	enrich := fake.requests[1]
	relOvr, _ := overrideValue(enrich, "RELATIONSHIP_OVERRIDE")
	assert.Equal(t, "S", relOvr)
	related, _ := overrideValue(enrich, "RELATED_COMPANY_OVERRIDE")
	assert.Equal(t, "2330 TT Equity", related, "equity ticker preferred over name")
	crncy, _ := overrideValue(enrich, "EQY_FUND_CRNCY")
	assert.Equal(t, "USD", crncy)
}

func TestFetch_CustomerContext(t *testing.T) {
	fake := &fakeRefData{
		bulkRows: map[string][]map[string]any{
			"AAPL UW Equity": {
				{"customer_name": "Foxconn"},
			},
		},
		scalars: map[string]any{"RELATIONSHIP_AMOUNT": 100.0},
	}
	svc := NewService(fake, nil)

	rels, err := svc.Fetch(context.Background(), []string{"AAPL UW Equity"}, RoleCustomer, DefaultFetchOptions())
	require.NoError(t, err)
	require.Len(t, rels, 1)

	enrich := fake.requests[1]
	relOvr, _ := overrideValue(enrich, "RELATIONSHIP_OVERRIDE")
	assert.Equal(t, "C", relOvr)
	_, hasSort := overrideValue(fake.requests[0], "SUP_CHAIN_RELATIONSHIP_SORT_OVR")
	assert.False(t, hasSort, "sort override is supplier-only")
	assert.Contains(t, enrich.Fields, "SUPPLY_CHAIN_REVENUE_ACCOUNT_TYPE")
}

func TestFetch_AmountOnly(t *testing.T) {
	fake := &fakeRefData{
		bulkRows: map[string][]map[string]any{
			"NVDA UW Equity": {{"Counterparty Name": "TSMC"}},
		},
		scalars: map[string]any{"RELATIONSHIP_AMOUNT": 42.0},
	}
	svc := NewService(fake, nil)

	opts := DefaultFetchOptions()
	opts.AmountOnly = true
	rels, err := svc.Fetch(context.Background(), []string{"NVDA UW Equity"}, RoleSupplier, opts)
	require.NoError(t, err)
	require.Len(t, rels, 1)

	assert.Equal(t, []string{"RELATIONSHIP_AMOUNT"}, fake.requests[1].Fields)
	require.NotNil(t, rels[0].Amount)
	assert.Empty(t, rels[0].AccountType)
}

func TestFetch_SkipsEmptyTickers(t *testing.T) {
	fake := &fakeRefData{
		bulkRows: map[string][]map[string]any{
			"NVDA UW Equity": {{"Counterparty Name": "TSMC"}},
			// INTC has no bulk table at all.
		},
		scalars: map[string]any{"RELATIONSHIP_AMOUNT": 1.0},
	}
	svc := NewService(fake, nil)

	rels, err := svc.Fetch(context.Background(), []string{"INTC UW Equity", "NVDA UW Equity"}, RoleSupplier, DefaultFetchOptions())
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "NVDA UW Equity", rels[0].Ticker)
}

func TestFetch_ConnectionErrorAborts(t *testing.T) {
	fake := &fakeRefData{err: apperrors.Connection(assert.AnError)}
	svc := NewService(fake, nil)

	_, err := svc.Fetch(context.Background(), []string{"NVDA UW Equity"}, RoleSupplier, DefaultFetchOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConnection))
}

func TestFetch_ValidatesOptions(t *testing.T) {
	svc := NewService(&fakeRefData{}, nil)

	opts := DefaultFetchOptions()
	opts.Currency = "DOLLARS"
	_, err := svc.Fetch(context.Background(), []string{"NVDA UW Equity"}, RoleSupplier, opts)
	assert.Error(t, err)

	opts = DefaultFetchOptions()
	opts.Quantified = "MAYBE"
	_, err = svc.Fetch(context.Background(), []string{"NVDA UW Equity"}, RoleSupplier, opts)
	assert.Error(t, err)

	_, err = svc.Fetch(context.Background(), nil, RoleSupplier, DefaultFetchOptions())
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
}

func TestFetch_Deduplicates(t *testing.T) {
	fake := &fakeRefData{
		bulkRows: map[string][]map[string]any{
			"NVDA UW Equity": {
				{"Counterparty Name": "TSMC"},
				{"Counterparty Name": "TSMC"},
			},
		},
		scalars: map[string]any{"RELATIONSHIP_AMOUNT": 1.0},
	}
	svc := NewService(fake, nil)

	rels, err := svc.Fetch(context.Background(), []string{"NVDA UW Equity"}, RoleSupplier, DefaultFetchOptions())
	require.NoError(t, err)
	assert.Len(t, rels, 1)
}
