package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/loom/internal/pipeline"
	"github.com/roach88/loom/internal/store"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	graphFlags

	OutputDir    string
	GraphFormats []string
	BOMFormats   []string
	BOMDB        string
	Workers      int

	// RunIDs overrides the run id generator for --bom-db (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs store.RunIDGenerator
}

// BuildResult lists what build produced per document.
type BuildResult struct {
	Documents []BuiltDocument `json:"documents"`
}

// BuiltDocument is the outcome for one document.
type BuiltDocument struct {
	Name      string   `json:"name"`
	Source    string   `json:"source"`
	Files     []string `json:"files"`
	BOMItems  int      `json:"bom_items"`
	GraphHash string   `json:"graph_hash"`
	BOMHash   string   `json:"bom_hash"`
	RunID     string   `json:"run_id,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	return newBuildCommand(&BuildOptions{RootOptions: rootOpts})
}

func newBuildCommand(opts *BuildOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <document|dir>...",
		Short: "Render diagrams and BOMs for harness documents",
		Long: `Compile harness documents and write their outputs.

For each document NAME the build writes NAME.gv (Graphviz source) and
NAME.bom.tsv next to the document, or into --output-dir. Further formats are
selected with --graph-format and --bom-format; --bom-db also records the BOM
in a SQLite database.

Example:
  loom build demo.yml
  loom build -o out --graph-format dot,json --bom-format tsv,html harnesses/`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args, cmd)
		},
	}

	opts.graphFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "output directory (default: next to each document)")
	cmd.Flags().StringSliceVar(&opts.GraphFormats, "graph-format", []string{"dot"}, "graph outputs (dot|json|yaml)")
	cmd.Flags().StringSliceVar(&opts.BOMFormats, "bom-format", []string{"tsv"}, "BOM outputs (tsv|html)")
	cmd.Flags().StringVar(&opts.BOMDB, "bom-db", "", "SQLite database to record the BOM in")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent file writes (0 = one per file)")

	return cmd
}

// pipelineOptions merges defaults, the config file and the flags the user set.
func (o *BuildOptions) pipelineOptions(cmd *cobra.Command, f *OutputFormatter) (pipeline.Options, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return opts, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("config: %v", err)}
	}

	if err := o.graphFlags.apply(cmd, &opts.Graph); err != nil {
		return opts, NewExitError(ExitCommandError, err.Error())
	}
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		opts.OutputDir = o.OutputDir
	}
	if flags.Changed("graph-format") {
		if opts.GraphFormats, err = parseGraphFormats(o.GraphFormats); err != nil {
			return opts, NewExitError(ExitCommandError, err.Error())
		}
	}
	if flags.Changed("bom-format") {
		if opts.BOMFormats, err = parseBOMFormats(o.BOMFormats); err != nil {
			return opts, NewExitError(ExitCommandError, err.Error())
		}
	}
	if flags.Changed("bom-db") {
		opts.BOMDB = o.BOMDB
	}
	if flags.Changed("workers") {
		opts.Workers = o.Workers
	}
	if o.RunIDs != nil {
		opts.RunIDs = o.RunIDs
	}
	opts.Logger = f.Logger()
	return opts, nil
}

func runBuild(opts *BuildOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	popts, err := opts.pipelineOptions(cmd, formatter)
	if err != nil {
		return reportError(formatter, err)
	}

	paths, err := ResolveInputs(args)
	if err != nil {
		return reportError(formatter, err)
	}

	ctx := commandContext(cmd)

	result := BuildResult{Documents: make([]BuiltDocument, 0, len(paths))}
	for _, path := range paths {
		formatter.VerboseLog("Building %s", path)
		built, err := buildDocument(ctx, path, popts)
		if err != nil {
			return reportError(formatter, err)
		}
		result.Documents = append(result.Documents, built)
	}

	return outputBuildSuccess(formatter, result)
}

// buildDocument runs one document through the pipeline, tagging each stage's
// failure with its error code.
func buildDocument(ctx context.Context, path string, opts pipeline.Options) (BuiltDocument, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return BuiltDocument{}, err
	}

	res, err := pipeline.Process(ctx, doc, opts)
	if err != nil {
		return BuiltDocument{}, err
	}

	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Dir(path)
	}
	if err := pipeline.Write(ctx, res, opts); err != nil {
		return BuiltDocument{}, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error()}
	}

	built := BuiltDocument{
		Name:      doc.Name,
		Source:    path,
		Files:     res.Files,
		BOMItems:  len(res.BOM),
		GraphHash: res.GraphHash,
		BOMHash:   res.BOMHash,
	}
	if opts.BOMDB != "" {
		if err := pipeline.Export(ctx, res, opts); err != nil {
			return BuiltDocument{}, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error()}
		}
		built.RunID = res.Run.ID
	}
	return built, nil
}

func outputBuildSuccess(formatter *OutputFormatter, result BuildResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, d := range result.Documents {
		fmt.Fprintf(formatter.Writer, "✓ Built %s (%d BOM item(s))\n", d.Name, d.BOMItems)
		for _, f := range d.Files {
			fmt.Fprintf(formatter.Writer, "  %s\n", f)
		}
		if d.RunID != "" {
			fmt.Fprintf(formatter.Writer, "  BOM recorded as run %s\n", d.RunID)
		}
	}
	return nil
}
