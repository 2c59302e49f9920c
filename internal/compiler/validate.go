package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/loom/internal/model"
)

// Validation error codes (E100-E199)
const (
	ErrUnexpected          = "E100" // error outside the harness taxonomy
	ErrSchemaViolation     = "E101" // invalid declaration
	ErrMalformedRecord     = "E102" // badly shaped connection record
	ErrUnresolvedName      = "E103" // designator not declared in the required role
	ErrUnknownPin          = "E104" // pin or wire outside its owner
	ErrAmbiguousRendering  = "E105" // loops with no connected side
	ErrDuplicateDesignator = "E106" // name declared in more than one place
)

// ValidationError represents one problem found by Validate.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// CodeFor maps a harness error to its validation code.
func CodeFor(err error) string {
	var e *model.Error
	if !errors.As(err, &e) {
		return ErrUnexpected
	}
	switch e.Code {
	case model.ErrCodeSchemaViolation:
		return ErrSchemaViolation
	case model.ErrCodeMalformedRecord:
		return ErrMalformedRecord
	case model.ErrCodeUnresolvedDesignator:
		return ErrUnresolvedName
	case model.ErrCodeUnknownPin:
		return ErrUnknownPin
	case model.ErrCodeAmbiguousRendering:
		return ErrAmbiguousRendering
	default:
		return ErrUnexpected
	}
}

// Validate checks doc and returns every problem it can find (does not
// fail-fast). Declarations and record shapes are all checked; connection
// resolution stops at its first error, since later records depend on
// earlier ones.
func Validate(doc *Document) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]string)
	claim := func(name, section string, line int) bool {
		if prev, ok := seen[name]; ok {
			errs = append(errs, ValidationError{
				Field:   section + "." + name,
				Message: fmt.Sprintf("designator already declared in %s", prev),
				Code:    ErrDuplicateDesignator,
				Line:    line,
			})
			return false
		}
		seen[name] = section
		return true
	}

	h := model.New()
	declOK := true
	for _, d := range doc.Connectors {
		if !claim(d.Name, "connectors", d.Pos.Line()) {
			declOK = false
			continue
		}
		if _, err := h.DeclareConnector(d.Name, d.Config); err != nil {
			errs = append(errs, fromError("connectors."+d.Name, d.Pos.Line(), err))
			declOK = false
		}
	}
	for _, d := range doc.Cables {
		if !claim(d.Name, "cables", d.Pos.Line()) {
			declOK = false
			continue
		}
		if _, err := h.DeclareCable(d.Name, d.Config); err != nil {
			errs = append(errs, fromError("cables."+d.Name, d.Pos.Line(), err))
			declOK = false
		}
	}
	for _, d := range doc.Ferrules {
		if !claim(d.Name, "ferrules", d.Pos.Line()) {
			declOK = false
			continue
		}
		if _, err := model.NewConnector(d.Name, d.Config); err != nil {
			errs = append(errs, fromError("ferrules."+d.Name, d.Pos.Line(), err))
			declOK = false
		}
	}

	records := make([]Record, 0, len(doc.Connections))
	shapesOK := true
	for i, raw := range doc.Connections {
		rec, err := ParseRecord(i+1, raw)
		if err != nil {
			errs = append(errs, fromError(fmt.Sprintf("connections[%d]", i), 0, err))
			shapesOK = false
			continue
		}
		records = append(records, rec)
	}

	if !declOK || !shapesOK {
		return errs
	}

	r := NewResolver(h, doc.FerruleTemplates())
	if err := r.Resolve(records); err != nil {
		var e *model.Error
		field := "connections"
		if errors.As(err, &e) && e.Record > 0 {
			field = fmt.Sprintf("connections[%d]", e.Record-1)
		}
		return append(errs, fromError(field, 0, err))
	}

	for _, c := range h.Connectors() {
		if len(c.Loops()) > 0 && !c.PortsLeft && !c.PortsRight {
			errs = append(errs, ValidationError{
				Field:   "connectors." + c.Name,
				Message: "connector has loops but no connected side to draw them on",
				Code:    ErrAmbiguousRendering,
			})
		}
	}

	return errs
}

func fromError(field string, line int, err error) ValidationError {
	return ValidationError{
		Field:   field,
		Message: err.Error(),
		Code:    CodeFor(err),
		Line:    line,
	}
}
