package supplychain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "blpcli/internal/errors"
	"blpcli/internal/refdata"
)

// RefDataAPI is the slice of the gateway client this package needs.
type RefDataAPI interface {
	ReferenceData(ctx context.Context, req refdata.ReferenceRequest) ([]refdata.SecurityData, error)
}

// Service pulls and enriches supply-chain relationship tables.
type Service struct {
	client   RefDataAPI
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService creates a supply-chain service.
func NewService(client RefDataAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:   client,
		logger:   logger,
		validate: validator.New(),
	}
}

// Fetch pulls the relationship table for each ticker, normalizes the
// bulk rows, and enriches every row with per-relationship scalars.
// Tickers with vendor-side errors or empty tables are skipped with a
// warning; only transport and request failures abort the pull.
func (s *Service) Fetch(ctx context.Context, tickers []string, role Role, opts FetchOptions) ([]Relationship, error) {
	if len(tickers) == 0 {
		return nil, apperrors.BadRequest("no tickers given")
	}
	opts = applyDefaults(opts)
	if err := s.validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid fetch options: %w", err)
	}

	var all []Relationship
	for _, ticker := range tickers {
		rels, err := s.fetchTicker(ctx, ticker, role, opts)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindConnection || ctx.Err() != nil {
				return nil, fmt.Errorf("fetch %s: %w", ticker, err)
			}
			s.logger.WarnContext(ctx, "skipping ticker",
				"ticker", ticker,
				"role", role,
				"error", err,
			)
			continue
		}
		all = append(all, rels...)
	}

	return Dedupe(all), nil
}

// fetchTicker runs the bulk pull and per-row enrichment for one issuer.
func (s *Service) fetchTicker(ctx context.Context, ticker string, role Role, opts FetchOptions) ([]Relationship, error) {
	overrides := []refdata.Override{
		{FieldID: "SUPPLY_CHAIN_SUM_COUNT_OVERRIDE", Value: fmt.Sprintf("%d", opts.SumCount)},
		{FieldID: "QUANTIFIED_OVERRIDE", Value: opts.Quantified},
	}
	if role == RoleSupplier && opts.SupplierSort != "" {
		overrides = append(overrides, refdata.Override{
			FieldID: "SUP_CHAIN_RELATIONSHIP_SORT_OVR", Value: opts.SupplierSort,
		})
	}

	data, err := s.client.ReferenceData(ctx, refdata.ReferenceRequest{
		Securities: []string{ticker},
		Fields:     []string{role.BulkField()},
		Overrides:  overrides,
	})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	sd := data[0]
	if err := sd.Err(); err != nil {
		return nil, err
	}

	rows, err := sd.BulkRows(role.BulkField())
	if err != nil {
		return nil, err
	}

	rels := Normalize(role, ticker, rows)
	s.logger.InfoContext(ctx, "normalized relationship table",
		"ticker", ticker,
		"role", role,
		"raw_rows", len(rows),
		"relationships", len(rels),
	)

	for i := range rels {
		if rels[i].RelatedKey() == "" {
			continue
		}
		if err := s.enrich(ctx, &rels[i], opts); err != nil {
			if apperrors.KindOf(err) == apperrors.KindConnection || ctx.Err() != nil {
				return nil, err
			}
			s.logger.WarnContext(ctx, "enrichment failed for relationship",
				"ticker", ticker,
				"counterparty", rels[i].CounterpartyName,
				"error", err,
			)
		}
	}

	return rels, nil
}

// enrich pulls the per-relationship scalar fields. Call pacing is
// handled by the client's rate limiter.
func (s *Service) enrich(ctx context.Context, rel *Relationship, opts FetchOptions) error {
	fields := enrichmentFields(rel.Role, opts.AmountOnly)

	data, err := s.client.ReferenceData(ctx, refdata.ReferenceRequest{
		Securities: []string{rel.Ticker},
		Fields:     fields,
		Overrides: []refdata.Override{
			{FieldID: "RELATIONSHIP_OVERRIDE", Value: rel.Role.RelationshipOverride()},
			{FieldID: "QUANTIFIED_OVERRIDE", Value: opts.Quantified},
			{FieldID: "EQY_FUND_CRNCY", Value: opts.Currency},
			{FieldID: "RELATED_COMPANY_OVERRIDE", Value: rel.RelatedKey()},
		},
	})
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	sd := data[0]
	if err := sd.Err(); err != nil {
		return err
	}

	if v, ok := sd.Float("RELATIONSHIP_AMOUNT"); ok {
		amount := decimal.NewFromFloat(v)
		rel.Amount = &amount
		rel.Currency = opts.Currency
	}
	if opts.AmountOnly {
		return nil
	}

	if v, ok := sd.String("RELATIONSHIP_AS_OF_DATE"); ok {
		rel.AmountAsOf = v
	}
	if v, ok := sd.Float("SUPPLY_CHAIN_REVENUE_PERCENTAGE"); ok {
		rel.RevenuePercent = &v
	}
	if v, ok := sd.Float("SUPPLY_CHAIN_COST_PERCENTAGE"); ok {
		rel.CostPercent = &v
	}
	if v, ok := sd.String(accountTypeField(rel.Role)); ok {
		rel.AccountType = v
	}

	return nil
}

// enrichmentFields returns the scalar fields pulled per relationship.
// The revenue account type is best-effort; not every entitlement
// exposes it, and its absence is tolerated.
func enrichmentFields(role Role, amountOnly bool) []string {
	if amountOnly {
		return []string{"RELATIONSHIP_AMOUNT"}
	}
	return []string{
		"RELATIONSHIP_AMOUNT",
		"RELATIONSHIP_AS_OF_DATE",
		"SUPPLY_CHAIN_REVENUE_PERCENTAGE",
		"SUPPLY_CHAIN_COST_PERCENTAGE",
		accountTypeField(role),
	}
}

func accountTypeField(role Role) string {
	if role == RoleSupplier {
		return "SUPPLY_CHAIN_COST_ACCOUNT_TYPE"
	}
	return "SUPPLY_CHAIN_REVENUE_ACCOUNT_TYPE"
}

func applyDefaults(opts FetchOptions) FetchOptions {
	def := DefaultFetchOptions()
	if opts.SumCount == 0 {
		opts.SumCount = def.SumCount
	}
	if opts.Quantified == "" {
		opts.Quantified = def.Quantified
	}
	if opts.Currency == "" {
		opts.Currency = def.Currency
	}
	return opts
}
