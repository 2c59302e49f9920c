package store

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/loom/internal/ir"
)

// marshalDesignators converts a designator list to canonical JSON TEXT.
func marshalDesignators(designators []string) (string, error) {
	if designators == nil {
		designators = []string{}
	}
	data, err := ir.MarshalCanonical(designators)
	if err != nil {
		return "", fmt.Errorf("marshal designators: %w", err)
	}
	return string(data), nil
}

// unmarshalDesignators parses a JSON array of designators. Always returns a
// non-nil slice.
func unmarshalDesignators(data string) ([]string, error) {
	out := []string{}
	if data == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal designators: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// unmarshalQty parses a stored quantity. Quantities are stored as decimal
// text so no precision is lost in SQLite's REAL type.
func unmarshalQty(data string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(data)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unmarshal qty %q: %w", data, err)
	}
	return d, nil
}
