package ir

import (
	"github.com/shopspring/decimal"
)

// BOM column headers.
const (
	ColumnItem        = "Item"
	ColumnQty         = "Qty"
	ColumnUnit        = "Unit"
	ColumnDesignators = "Designators"
	ColumnPartNumber  = "Part number"
)

// BOMItem is one bill-of-materials line.
type BOMItem struct {
	Description string          `json:"item" yaml:"item"`
	Qty         decimal.Decimal `json:"qty" yaml:"qty"`
	Unit        string          `json:"unit" yaml:"unit"`
	Designators []string        `json:"designators" yaml:"designators"`
	PartNumber  string          `json:"part_number,omitempty" yaml:"part_number,omitempty"`
}

// Table is a BOM in row form: the column names, then one row per line item
// with one cell per column.
type Table struct {
	Header []string   `json:"header" yaml:"header"`
	Rows   [][]string `json:"rows" yaml:"rows"`
}

func bomCanonical(items []BOMItem) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = map[string]any{
			"item":        it.Description,
			"qty":         it.Qty.String(),
			"unit":        it.Unit,
			"designators": strings2any(it.Designators),
			"part_number": it.PartNumber,
		}
	}
	return out
}
