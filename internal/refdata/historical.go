package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	apperrors "blpcli/internal/errors"
)

const wireDateFormat = "20060102"

// HistoricalData pulls end-of-day history for the requested securities.
// Securities with a response-level error are returned with an empty row
// set and a warning; the pull fails only when the request itself is bad
// or the gateway is unreachable.
func (c *Client) HistoricalData(ctx context.Context, req HistoricalRequest) ([]SecurityHistory, error) {
	if len(req.Securities) == 0 {
		return nil, apperrors.BadRequest("no securities given")
	}
	if len(req.Fields) == 0 {
		return nil, apperrors.BadRequest("no fields given")
	}
	if !req.End.IsZero() && req.End.Before(req.Start) {
		return nil, apperrors.BadRequest("end date precedes start date")
	}

	wire := historicalWireRequest{
		Securities:            make([]string, 0, len(req.Securities)),
		Fields:                req.Fields,
		StartDate:             req.Start.Format(wireDateFormat),
		EndDate:               req.End.Format(wireDateFormat),
		PeriodicitySelection:  string(req.Periodicity),
		PeriodicityAdjustment: "CALENDAR",
		AdjustmentSplit:       req.AdjustSplits,
		AdjustmentAbnormal:    req.AdjustAbnormal,
		AdjustmentNormal:      req.AdjustNormal,
		MaxDataPoints:         req.MaxDataPoints,
	}
	for _, s := range req.Securities {
		wire.Securities = append(wire.Securities, normalizeTicker(s))
	}
	if wire.PeriodicitySelection == "" {
		wire.PeriodicitySelection = string(PeriodicityDaily)
	}
	if wire.MaxDataPoints == 0 {
		wire.MaxDataPoints = 1_000_000
	}

	c.logger.Info("historical data request",
		"securities", len(wire.Securities),
		"fields", req.Fields,
		"start", wire.StartDate,
		"end", wire.EndDate,
		"periodicity", wire.PeriodicitySelection,
	)

	var resp historicalResponse
	if err := c.post(ctx, "/refdata/historical", wire, &resp); err != nil {
		return nil, fmt.Errorf("historical data request: %w", err)
	}

	histories := make([]SecurityHistory, 0, len(resp.SecurityData))
	for _, sd := range resp.SecurityData {
		hist := SecurityHistory{Security: sd.Security}

		if sd.SecurityError != nil {
			c.logger.Warn("security error in historical response",
				"security", sd.Security,
				"category", sd.SecurityError.Category,
				"message", sd.SecurityError.Message,
			)
			histories = append(histories, hist)
			continue
		}

		for _, rawRow := range sd.FieldData {
			row, err := parseHistoryRow(rawRow, req.Fields)
			if err != nil {
				c.logger.Warn("skipping malformed history row",
					"security", sd.Security,
					"error", err,
				)
				continue
			}
			hist.Rows = append(hist.Rows, row)
		}

		sort.Slice(hist.Rows, func(i, j int) bool {
			return hist.Rows[i].Date.Before(hist.Rows[j].Date)
		})
		histories = append(histories, hist)
	}

	return histories, nil
}

// parseHistoryRow decodes one dated observation. The date key is
// required; every requested field is optional per row.
func parseHistoryRow(raw map[string]json.RawMessage, fields []string) (HistoryRow, error) {
	dateRaw, ok := raw["date"]
	if !ok {
		return HistoryRow{}, fmt.Errorf("row has no date")
	}

	var dateStr string
	if err := json.Unmarshal(dateRaw, &dateStr); err != nil {
		return HistoryRow{}, fmt.Errorf("bad date value: %w", err)
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return HistoryRow{}, fmt.Errorf("bad date %q: %w", dateStr, err)
	}

	row := HistoryRow{Date: date, Values: make(map[string]float64, len(fields))}
	for _, f := range fields {
		v, ok := raw[f]
		if !ok || string(v) == "null" {
			continue
		}
		var fv float64
		if err := json.Unmarshal(v, &fv); err != nil {
			continue
		}
		row.Values[f] = fv
	}
	return row, nil
}
