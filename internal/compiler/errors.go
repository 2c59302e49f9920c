package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError represents a document error with source position. Field is
// the dotted path of the offending value, e.g. "cables.W1.gauge".
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Report the most specific error: the first with the deepest path.
	firstErr := errs[0]
	for _, e := range errs[1:] {
		if len(e.Path()) > len(firstErr.Path()) {
			firstErr = e
		}
	}
	field := strings.Join(firstErr.Path(), ".")
	if field == "" {
		field = "document"
	}
	format, args := firstErr.Msg()
	ce := &CompileError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
	if positions := errors.Positions(firstErr); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
