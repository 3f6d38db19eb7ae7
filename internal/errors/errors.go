// Package errors classifies failures coming back from the refdata
// gateway. The tools do not retry or recover beyond what the client's
// backoff already does; classification exists so the operator rerunning
// a failed pull can tell a dead session from a missing entitlement.
package errors

import (
	"errors"
	"fmt"
)

// Kind partitions vendor failures into the handful of cases that matter
// operationally.
type Kind string

const (
	// KindConnection covers session startup and transport failures.
	KindConnection Kind = "CONNECTION"
	// KindEntitlement covers permission and subscription denials.
	KindEntitlement Kind = "ENTITLEMENT"
	// KindInvalidSecurity covers unknown or malformed tickers.
	KindInvalidSecurity Kind = "INVALID_SECURITY"
	// KindFieldNotFound covers fields absent from the response or not
	// applicable to the requested security.
	KindFieldNotFound Kind = "FIELD_NOT_FOUND"
	// KindBadRequest covers requests rejected before reaching the vendor.
	KindBadRequest Kind = "BAD_REQUEST"
	// KindInternal covers everything else.
	KindInternal Kind = "INTERNAL"
)

// VendorError is a classified error from a vendor data call.
type VendorError struct {
	Kind     Kind
	Security string
	Field    string
	Message  string
	Err      error
}

func (e *VendorError) Error() string {
	switch {
	case e.Security != "" && e.Field != "":
		return fmt.Sprintf("%s: %s %s: %s", e.Kind, e.Security, e.Field, e.Message)
	case e.Security != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Security, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *VendorError) Unwrap() error {
	return e.Err
}

// New creates a VendorError of the given kind.
func New(kind Kind, message string) *VendorError {
	return &VendorError{Kind: kind, Message: message}
}

// Connection wraps a transport-level failure.
func Connection(err error) *VendorError {
	return &VendorError{Kind: KindConnection, Message: "gateway unreachable", Err: err}
}

// Entitlement reports a denied security or field.
func Entitlement(security, message string) *VendorError {
	return &VendorError{Kind: KindEntitlement, Security: security, Message: message}
}

// InvalidSecurity reports an unknown ticker.
func InvalidSecurity(security, message string) *VendorError {
	return &VendorError{Kind: KindInvalidSecurity, Security: security, Message: message}
}

// FieldNotFound reports a field missing from a security's response.
func FieldNotFound(security, field string) *VendorError {
	return &VendorError{
		Kind:     KindFieldNotFound,
		Security: security,
		Field:    field,
		Message:  "field not present in response",
	}
}

// BadRequest reports a request rejected before any vendor call.
func BadRequest(message string) *VendorError {
	return &VendorError{Kind: KindBadRequest, Message: message}
}

// KindOf returns the classification of err, or KindInternal when err is
// not a VendorError.
func KindOf(err error) Kind {
	var ve *VendorError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a VendorError of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ClassifyCategory maps a vendor response error category string onto a
// Kind. Category strings follow the vendor's security/field error
// vocabulary (BAD_SEC, NOT_ENTITLED, FLD_NOT_APPLICABLE, ...).
func ClassifyCategory(category string) Kind {
	switch category {
	case "BAD_SEC", "INVALID_SECURITY", "UNKNOWN_SECURITY":
		return KindInvalidSecurity
	case "NOT_ENTITLED", "NO_AUTH", "PERMISSION_DENIED":
		return KindEntitlement
	case "BAD_FLD", "FLD_NOT_APPLICABLE", "NOT_APPLICABLE_TO_REF_DATA", "NOT_APPLICABLE_TO_HIST_DATA":
		return KindFieldNotFound
	case "TIMEOUT", "CONNECTION_FAILED":
		return KindConnection
	default:
		return KindInternal
	}
}
