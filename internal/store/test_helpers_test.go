package store

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/roach88/loom/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bom.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleItems returns a small BOM: one connector line and one cable line.
func sampleItems() []ir.BOMItem {
	return []ir.BOMItem{
		{
			Description: "Connector, Molex KK 254, female, 4 pins",
			Qty:         decimal.NewFromInt(2),
			Designators: []string{"X1", "X2"},
			PartNumber:  "22-01-3047",
		},
		{
			Description: "Cable, 4 x 0.25 mm² shielded",
			Qty:         decimal.RequireFromString("0.2"),
			Unit:        "m",
			Designators: []string{"W1"},
		},
	}
}
