package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/loom/internal/ir"
)

// Run is one exported BOM.
type Run struct {
	ID        string
	Document  string
	GraphHash string
	BOMHash   string
	Seq       int64
}

// Export writes items as a new run with an id from gen. The BOM hash is
// computed from items.
func (s *Store) Export(ctx context.Context, gen RunIDGenerator, document, graphHash string, items []ir.BOMItem) (Run, error) {
	bomHash, err := ir.BOMHash(items)
	if err != nil {
		return Run{}, fmt.Errorf("export: %w", err)
	}
	run, _, err := s.WriteRun(ctx, Run{
		ID:        gen.Generate(),
		Document:  document,
		GraphHash: graphHash,
		BOMHash:   bomHash,
	}, items)
	return run, err
}

// WriteRun inserts a run and its items in one transaction and returns the
// stored run with its seq assigned.
//
// If a run with the same id exists, nothing is written and the existing run
// is returned with inserted=false.
func (s *Store) WriteRun(ctx context.Context, run Run, items []ir.BOMItem) (stored Run, inserted bool, err error) {
	if run.ID == "" {
		return Run{}, false, fmt.Errorf("write run: empty id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, false, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	existing, err := scanRun(tx.QueryRowContext(ctx, `
		SELECT id, document, graph_hash, bom_hash, seq
		FROM runs
		WHERE id = ?
	`, run.ID))
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return Run{}, false, fmt.Errorf("write run: lookup: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, false, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, document, graph_hash, bom_hash, seq)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Document, run.GraphHash, run.BOMHash, run.Seq)
	if err != nil {
		return Run{}, false, fmt.Errorf("write run: %w", err)
	}

	for i, item := range items {
		designators, err := marshalDesignators(item.Designators)
		if err != nil {
			return Run{}, false, fmt.Errorf("write run: item %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO bom_items (run_id, position, description, qty, unit, designators, part_number)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, i, item.Description, item.Qty.String(), item.Unit, designators, item.PartNumber)
		if err != nil {
			return Run{}, false, fmt.Errorf("write run: item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, false, fmt.Errorf("write run: commit: %w", err)
	}
	return run, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.Document, &r.GraphHash, &r.BOMHash, &r.Seq)
	return r, err
}
