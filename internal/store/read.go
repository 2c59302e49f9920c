package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/loom/internal/ir"
)

// ErrRunNotFound is returned when a run id is not in the store.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run with the given id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `
		SELECT id, document, graph_hash, bom_hash, seq
		FROM runs
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs for document, or every run when document is empty,
// ordered by seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context, document string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document, graph_hash, bom_hash, seq
		FROM runs
		WHERE ? = '' OR document = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, document, document)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadItems returns the BOM items of a run in their original order.
func (s *Store) ReadItems(ctx context.Context, runID string) ([]ir.BOMItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT description, qty, unit, designators, part_number
		FROM bom_items
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query bom items: %w", err)
	}
	defer rows.Close()

	items := []ir.BOMItem{}
	for rows.Next() {
		var it ir.BOMItem
		var qty, designators string
		if err := rows.Scan(&it.Description, &qty, &it.Unit, &designators, &it.PartNumber); err != nil {
			return nil, fmt.Errorf("scan bom item: %w", err)
		}
		if it.Qty, err = unmarshalQty(qty); err != nil {
			return nil, err
		}
		if it.Designators, err = unmarshalDesignators(designators); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bom items: %w", err)
	}
	return items, nil
}

// HistoryEntry is the quantity of one BOM line in one run.
type HistoryEntry struct {
	RunID    string
	Document string
	Seq      int64
	Qty      decimal.Decimal
	Unit     string
}

// History returns every run's quantity of the line with the given
// description, oldest run first.
func (s *Store) History(ctx context.Context, description string) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.document, r.seq, i.qty, i.unit
		FROM bom_items i
		JOIN runs r ON i.run_id = r.id
		WHERE i.description = ?
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`, description)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var qty string
		if err := rows.Scan(&e.RunID, &e.Document, &e.Seq, &qty, &e.Unit); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if e.Qty, err = unmarshalQty(qty); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}
