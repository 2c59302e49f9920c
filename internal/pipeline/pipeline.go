// Package pipeline runs a harness document through every stage: load,
// compile, then the graph builder and BOM aggregator side by side, then the
// output files and the optional BOM database.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/loom/internal/bom"
	"github.com/roach88/loom/internal/compiler"
	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/model"
	"github.com/roach88/loom/internal/render"
	"github.com/roach88/loom/internal/store"
)

// Options configure a run.
type Options struct {
	Graph graph.Options

	// OutputDir receives the output files. Empty means the document's
	// directory.
	OutputDir    string
	GraphFormats []render.GraphFormat
	BOMFormats   []render.BOMFormat

	// BOMDB, when set, is a SQLite database the BOM is exported to.
	BOMDB  string
	RunIDs store.RunIDGenerator

	// Workers bounds concurrent file writes. Zero means one per file.
	Workers int

	Logger *slog.Logger
}

// DefaultOptions writes DOT and TSV next to the document.
func DefaultOptions() Options {
	return Options{
		Graph:        graph.DefaultOptions(),
		GraphFormats: []render.GraphFormat{render.GraphDOT},
		BOMFormats:   []render.BOMFormat{render.BOMTSV},
		RunIDs:       store.UUIDv7Generator{},
	}
}

// Result is everything a run produced.
type Result struct {
	Document  *compiler.Document
	Harness   *model.Harness
	Graph     *ir.Graph
	BOM       []ir.BOMItem
	Table     ir.Table
	GraphHash string
	BOMHash   string

	// Files lists written paths in a stable order.
	Files []string

	// Run is the database export, when one was made.
	Run *store.Run
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Run loads the document at path and carries it through every stage.
func Run(ctx context.Context, path string, opts Options) (*Result, error) {
	doc, err := compiler.LoadFile(path)
	if err != nil {
		return nil, err
	}

	res, err := Process(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Dir(path)
	}
	if err := Write(ctx, res, opts); err != nil {
		return nil, err
	}
	if opts.BOMDB != "" {
		if err := Export(ctx, res, opts); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Process compiles doc, then builds the graph and the BOM concurrently.
// Both stages only read the compiled harness.
func Process(ctx context.Context, doc *compiler.Document, opts Options) (*Result, error) {
	logger := opts.logger()

	h, err := compiler.Compile(doc, compiler.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	res := &Result{Document: doc, Harness: h}
	graphOpts := opts.Graph
	if graphOpts.Name == "" {
		graphOpts.Name = doc.Name
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		g, err := graph.Build(h, graphOpts)
		if err != nil {
			return err
		}
		hash, err := ir.GraphHash(g)
		if err != nil {
			return err
		}
		res.Graph, res.GraphHash = g, hash
		return nil
	})
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		items := bom.Build(h)
		hash, err := ir.BOMHash(items)
		if err != nil {
			return err
		}
		res.BOM, res.Table, res.BOMHash = items, bom.Table(items), hash
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("processed document",
		"document", doc.Name,
		"nodes", len(res.Graph.Nodes),
		"edges", len(res.Graph.Edges),
		"bom_items", len(res.BOM),
		"graph_hash", res.GraphHash,
		"bom_hash", res.BOMHash)
	return res, nil
}

// fileTask is one output file.
type fileTask struct {
	path   string
	encode func(w io.Writer) error
}

// Write renders res into opts.OutputDir in every configured format. Files
// are written concurrently; res.Files lists them in format order.
func Write(ctx context.Context, res *Result, opts Options) error {
	logger := opts.logger()
	base := filepath.Join(opts.OutputDir, res.Document.Name)

	var tasks []fileTask
	for _, f := range opts.GraphFormats {
		tasks = append(tasks, fileTask{
			path:   base + f.Extension(),
			encode: func(w io.Writer) error { return render.WriteGraph(w, res.Graph, f) },
		})
	}
	dotName := res.Document.Name + render.GraphDOT.Extension()
	if !slices.Contains(opts.GraphFormats, render.GraphDOT) {
		dotName = ""
	}
	for _, f := range opts.BOMFormats {
		var encode func(w io.Writer) error
		switch f {
		case render.BOMTSV:
			encode = func(w io.Writer) error { return render.WriteTSV(w, res.Table) }
		case render.BOMHTML:
			page := render.Page{Title: res.Document.Name, Diagram: dotName, Table: res.Table}
			encode = func(w io.Writer) error { return render.WriteHTML(w, page) }
		default:
			return fmt.Errorf("unknown bom format %q", f)
		}
		tasks = append(tasks, fileTask{path: base + f.Extension(), encode: encode})
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var mu sync.Mutex
	var written []string

	eg, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		eg.SetLimit(opts.Workers)
	}
	for _, task := range tasks {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := writeFile(task); err != nil {
				return err
			}
			mu.Lock()
			written = append(written, task.path)
			mu.Unlock()
			logger.Debug("wrote output", "path", task.path)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	// Report in task order, not completion order.
	res.Files = res.Files[:0]
	for _, task := range tasks {
		if slices.Contains(written, task.path) {
			res.Files = append(res.Files, task.path)
		}
	}
	return nil
}

func writeFile(task fileTask) error {
	var buf bytes.Buffer
	if err := task.encode(&buf); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(task.path), err)
	}
	if err := os.WriteFile(task.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", task.path, err)
	}
	return nil
}

// Export stores the BOM of res in the database at opts.BOMDB.
func Export(ctx context.Context, res *Result, opts Options) error {
	s, err := store.Open(opts.BOMDB)
	if err != nil {
		return fmt.Errorf("open bom database: %w", err)
	}
	defer s.Close()

	ids := opts.RunIDs
	if ids == nil {
		ids = store.UUIDv7Generator{}
	}
	run, err := s.Export(ctx, ids, res.Document.Name, res.GraphHash, res.BOM)
	if err != nil {
		return fmt.Errorf("export bom: %w", err)
	}
	res.Run = &run

	opts.logger().Info("exported bom",
		"db", opts.BOMDB,
		"run", run.ID,
		"seq", run.Seq,
		"items", len(res.BOM))
	return nil
}
