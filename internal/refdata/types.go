package refdata

import (
	"encoding/json"
	"strings"
	"time"

	apperrors "blpcli/internal/errors"
)

// Override is a fieldId/value pair applied to a reference-data request.
// Order is preserved on the wire; the vendor applies overrides in order.
type Override struct {
	FieldID string `json:"fieldId"`
	Value   string `json:"value"`
}

// ReferenceRequest describes a reference-data pull: BDS-style bulk
// fields and BDP-style scalar fields share the same request shape.
type ReferenceRequest struct {
	Securities []string   `json:"securities"`
	Fields     []string   `json:"fields"`
	Overrides  []Override `json:"overrides,omitempty"`
}

// errorInfo mirrors the gateway's security/field error element.
type errorInfo struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type fieldException struct {
	FieldID   string    `json:"fieldId"`
	ErrorInfo errorInfo `json:"errorInfo"`
}

// SecurityData holds one security's slice of a reference response.
// Field values stay raw until asked for, because bulk fields carry
// loosely-keyed objects whose shape varies by entitlement.
type SecurityData struct {
	Security        string                     `json:"security"`
	FieldData       map[string]json.RawMessage `json:"fieldData"`
	SecurityError   *errorInfo                 `json:"securityError,omitempty"`
	FieldExceptions []fieldException           `json:"fieldExceptions,omitempty"`
}

type referenceResponse struct {
	SecurityData []SecurityData `json:"securityData"`
}

// Err returns the classified security-level error, or nil.
func (s *SecurityData) Err() error {
	if s.SecurityError == nil {
		return nil
	}
	kind := apperrors.ClassifyCategory(s.SecurityError.Category)
	return &apperrors.VendorError{
		Kind:     kind,
		Security: s.Security,
		Message:  s.SecurityError.Message,
	}
}

// FieldErr returns the classified exception for a field, or nil.
func (s *SecurityData) FieldErr(field string) error {
	for _, fe := range s.FieldExceptions {
		if fe.FieldID == field {
			return &apperrors.VendorError{
				Kind:     apperrors.ClassifyCategory(fe.ErrorInfo.Category),
				Security: s.Security,
				Field:    field,
				Message:  fe.ErrorInfo.Message,
			}
		}
	}
	return nil
}

// Float extracts a scalar numeric field. The second return is false
// when the field is absent or null; a null is not a zero.
func (s *SecurityData) Float(field string) (float64, bool) {
	raw, ok := s.rawValue(field)
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// String extracts a scalar string field.
func (s *SecurityData) String(field string) (string, bool) {
	raw, ok := s.rawValue(field)
	if !ok {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	return v, true
}

// BulkRows extracts a bulk field as loosely-keyed rows. Scalar entries
// inside the array are wrapped under a "value" key, matching how the
// vendor returns degenerate bulk data.
func (s *SecurityData) BulkRows(field string) ([]map[string]any, error) {
	raw, ok := s.rawValue(field)
	if !ok {
		return nil, apperrors.FieldNotFound(s.Security, field)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		// A single object comes back without array wrapping on
		// one-row bulk responses.
		var single map[string]any
		if err2 := json.Unmarshal(raw, &single); err2 == nil {
			return []map[string]any{single}, nil
		}
		return nil, err
	}

	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		var m map[string]any
		if err := json.Unmarshal(r, &m); err == nil {
			out = append(out, m)
			continue
		}
		var v any
		if err := json.Unmarshal(r, &v); err == nil && v != nil {
			out = append(out, map[string]any{"value": v})
		}
	}
	return out, nil
}

func (s *SecurityData) rawValue(field string) (json.RawMessage, bool) {
	raw, ok := s.FieldData[field]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

// Periodicity selects the bar interval of a historical pull.
type Periodicity string

const (
	PeriodicityDaily   Periodicity = "DAILY"
	PeriodicityWeekly  Periodicity = "WEEKLY"
	PeriodicityMonthly Periodicity = "MONTHLY"
)

// HistoricalRequest describes an end-of-day history pull.
type HistoricalRequest struct {
	Securities    []string
	Fields        []string
	Start         time.Time
	End           time.Time
	Periodicity   Periodicity
	MaxDataPoints int

	// Corporate-action adjustments; the tools always request fully
	// adjusted series.
	AdjustSplits   bool
	AdjustAbnormal bool
	AdjustNormal   bool
}

type historicalWireRequest struct {
	Securities            []string `json:"securities"`
	Fields                []string `json:"fields"`
	StartDate             string   `json:"startDate"`
	EndDate               string   `json:"endDate"`
	PeriodicitySelection  string   `json:"periodicitySelection"`
	PeriodicityAdjustment string   `json:"periodicityAdjustment"`
	AdjustmentSplit       bool     `json:"adjustmentSplit"`
	AdjustmentAbnormal    bool     `json:"adjustmentAbnormal"`
	AdjustmentNormal      bool     `json:"adjustmentNormal"`
	MaxDataPoints         int      `json:"maxDataPoints"`
}

type historicalSecurityData struct {
	Security      string                       `json:"security"`
	FieldData     []map[string]json.RawMessage `json:"fieldData"`
	SecurityError *errorInfo                   `json:"securityError,omitempty"`
}

type historicalResponse struct {
	SecurityData []historicalSecurityData `json:"securityData"`
}

// HistoryRow is one dated observation. Fields that came back null or
// missing are simply absent from Values.
type HistoryRow struct {
	Date   time.Time
	Values map[string]float64
}

// Value returns the row's value for a field.
func (r HistoryRow) Value(field string) (float64, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// SecurityHistory is the full dated series for one security.
type SecurityHistory struct {
	Security string
	Rows     []HistoryRow
}

// Empty reports whether the history carries no usable observations.
func (h SecurityHistory) Empty() bool {
	for _, row := range h.Rows {
		if len(row.Values) > 0 {
			return false
		}
	}
	return true
}

// normalizeTicker trims whitespace that sneaks in from ticker files.
func normalizeTicker(s string) string {
	return strings.TrimSpace(s)
}
