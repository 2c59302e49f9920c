package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/loom/internal/bom"
	"github.com/roach88/loom/internal/compiler"
	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/render"
	"github.com/roach88/loom/internal/store"
)

// BOMOptions holds flags for the bom command and its subcommands.
type BOMOptions struct {
	*RootOptions
	Database string
}

// NewBOMCommand creates the bom command: print a document's BOM, or query
// BOMs recorded with build --bom-db.
func NewBOMCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BOMOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bom <document>",
		Short: "Print the bill of materials of a document",
		Long: `Print the bill of materials of a harness document as TSV, or as JSON
line items with --format json.

The runs, show and history subcommands query a BOM database written by
build --bom-db.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBOM(opts, args[0], cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the BOM database")

	cmd.AddCommand(newBOMRunsCommand(opts))
	cmd.AddCommand(newBOMShowCommand(opts))
	cmd.AddCommand(newBOMHistoryCommand(opts))

	return cmd
}

func runBOM(opts *BOMOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	doc, err := LoadDocument(path)
	if err != nil {
		return reportError(formatter, err)
	}
	h, err := compiler.Compile(doc, compiler.WithLogger(formatter.Logger()))
	if err != nil {
		return reportError(formatter, err)
	}

	items := bom.Build(h)
	return outputItems(formatter, items)
}

func outputItems(formatter *OutputFormatter, items []ir.BOMItem) error {
	if formatter.Format == "json" {
		return formatter.Success(items)
	}
	if err := render.WriteTSV(formatter.Writer, bom.Table(items)); err != nil {
		return WrapExitError(ExitCommandError, "writing bom", err)
	}
	return nil
}

// openStore opens --db, which must name an existing database.
func (o *BOMOptions) openStore(formatter *OutputFormatter) (*store.Store, error) {
	if o.Database == "" {
		return nil, formatter.Fail(ExitCommandError, ErrCodeNotFound, "--db is required")
	}
	if _, err := os.Stat(o.Database); err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", o.Database))
	}
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeLoadFailed, fmt.Sprintf("opening database: %v", err))
	}
	return st, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// RunSummary is one recorded BOM in JSON output.
type RunSummary struct {
	ID        string `json:"id"`
	Document  string `json:"document"`
	Seq       int64  `json:"seq"`
	GraphHash string `json:"graph_hash"`
	BOMHash   string `json:"bom_hash"`
}

func newBOMRunsCommand(opts *BOMOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "runs [document]",
		Short:         "List recorded BOMs, oldest first",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			document := ""
			if len(args) == 1 {
				document = args[0]
			}
			return runBOMRuns(opts, document, cmd)
		},
	}
}

func runBOMRuns(opts *BOMOptions, document string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(commandContext(cmd), document)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}

	if formatter.Format == "json" {
		out := make([]RunSummary, 0, len(runs))
		for _, r := range runs {
			out = append(out, RunSummary{ID: r.ID, Document: r.Document, Seq: r.Seq, GraphHash: r.GraphHash, BOMHash: r.BOMHash})
		}
		return formatter.Success(out)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No recorded BOMs")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "Recorded BOMs: %d\n", len(runs))
	for _, r := range runs {
		fmt.Fprintf(formatter.Writer, "  [%d] %s %s (bom %s)\n", r.Seq, r.ID, r.Document, shortHash(r.BOMHash))
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func newBOMShowCommand(opts *BOMOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <run-id>",
		Short:         "Print a recorded BOM",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBOMShow(opts, args[0], cmd)
		},
	}
}

func runBOMShow(opts *BOMOptions, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)
	if _, err := st.ReadRun(ctx, runID); err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID))
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}

	items, err := st.ReadItems(ctx, runID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}
	return outputItems(formatter, items)
}

// HistoryPoint is one run's quantity of a BOM line in JSON output.
type HistoryPoint struct {
	RunID    string `json:"run_id"`
	Document string `json:"document"`
	Seq      int64  `json:"seq"`
	Qty      string `json:"qty"`
	Unit     string `json:"unit,omitempty"`
}

func newBOMHistoryCommand(opts *BOMOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <description>",
		Short: "Show how a BOM line's quantity changed across runs",
		Long: `Show the quantity of one BOM line in every recorded run, oldest first.
The line is matched by its exact description, e.g.

  loom bom history --db bom.db "Cable, 4 x 0.25 mm² shielded"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBOMHistory(opts, args[0], cmd)
		},
	}
}

func runBOMHistory(opts *BOMOptions, description string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.History(commandContext(cmd), description)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}

	points := make([]HistoryPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, HistoryPoint{RunID: e.RunID, Document: e.Document, Seq: e.Seq, Qty: e.Qty.String(), Unit: e.Unit})
	}
	if formatter.Format == "json" {
		return formatter.Success(points)
	}

	if len(points) == 0 {
		fmt.Fprintf(formatter.Writer, "No runs contain %q\n", description)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "History: %s\n", description)
	for _, p := range points {
		qty := p.Qty
		if p.Unit != "" {
			qty += " " + p.Unit
		}
		fmt.Fprintf(formatter.Writer, "  [%d] %s %s: %s\n", p.Seq, p.RunID, p.Document, qty)
	}
	return nil
}
