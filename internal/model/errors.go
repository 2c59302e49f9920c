package model

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes harness errors.
type ErrorCode string

const (
	// ErrCodeSchemaViolation covers invalid declarations: pinout together
	// with pincount, a cable without wirecount or colors, an unknown colour
	// code, a malformed gauge, a duplicate designator.
	ErrCodeSchemaViolation ErrorCode = "SCHEMA_VIOLATION"

	// ErrCodeMalformedRecord covers connection records of the wrong shape
	// or with mismatched pin list lengths.
	ErrCodeMalformedRecord ErrorCode = "MALFORMED_RECORD"

	// ErrCodeUnresolvedDesignator indicates a name that matches no
	// declaration in the role its position requires.
	ErrCodeUnresolvedDesignator ErrorCode = "UNRESOLVED_DESIGNATOR"

	// ErrCodeUnknownPin indicates a pin or conductor outside its owner.
	ErrCodeUnknownPin ErrorCode = "UNKNOWN_PIN"

	// ErrCodeAmbiguousRendering indicates a connector with loops but no
	// connected side to draw them on.
	ErrCodeAmbiguousRendering ErrorCode = "AMBIGUOUS_RENDERING"
)

// Error is a fatal problem with a harness document.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Designator names the offending connector, cable or ferrule, if any.
	Designator string

	// Record is the 1-based index of the offending connection record, or 0.
	Record int
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Designator != "" {
		msg = fmt.Sprintf("%s: %s", e.Designator, msg)
	}
	if e.Record > 0 {
		return fmt.Sprintf("%s: connection #%d: %s", e.Code, e.Record, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func newError(code ErrorCode, designator, format string, args ...any) *Error {
	return &Error{Code: code, Designator: designator, Message: fmt.Sprintf(format, args...)}
}

// NewSchemaError creates an Error for an invalid declaration.
func NewSchemaError(designator, format string, args ...any) *Error {
	return newError(ErrCodeSchemaViolation, designator, format, args...)
}

// NewMalformedRecordError creates an Error for a badly shaped connection record.
func NewMalformedRecordError(record int, format string, args ...any) *Error {
	e := newError(ErrCodeMalformedRecord, "", format, args...)
	e.Record = record
	return e
}

// NewUnresolvedError creates an Error for a designator that cannot be resolved.
func NewUnresolvedError(designator, format string, args ...any) *Error {
	return newError(ErrCodeUnresolvedDesignator, designator, format, args...)
}

// NewUnknownPinError creates an Error for a pin outside its connector or cable.
func NewUnknownPinError(designator, format string, args ...any) *Error {
	return newError(ErrCodeUnknownPin, designator, format, args...)
}

// NewAmbiguousRenderingError creates an Error for an undrawable connector state.
func NewAmbiguousRenderingError(designator, format string, args ...any) *Error {
	return newError(ErrCodeAmbiguousRendering, designator, format, args...)
}

// AtRecord attaches a connection record index to err. Errors that are not
// *Error become malformed-record errors.
func AtRecord(err error, record int) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		cp.Record = record
		return &cp
	}
	return NewMalformedRecordError(record, "%v", err)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsSchemaError reports whether err is a schema violation.
func IsSchemaError(err error) bool { return hasCode(err, ErrCodeSchemaViolation) }

// IsMalformedRecord reports whether err is a malformed connection record.
func IsMalformedRecord(err error) bool { return hasCode(err, ErrCodeMalformedRecord) }

// IsUnresolvedDesignator reports whether err is an unresolvable designator.
func IsUnresolvedDesignator(err error) bool { return hasCode(err, ErrCodeUnresolvedDesignator) }

// IsUnknownPin reports whether err references a pin that does not exist.
func IsUnknownPin(err error) bool { return hasCode(err, ErrCodeUnknownPin) }

// IsAmbiguousRendering reports whether err is an ambiguous rendering state.
func IsAmbiguousRendering(err error) bool { return hasCode(err, ErrCodeAmbiguousRendering) }
