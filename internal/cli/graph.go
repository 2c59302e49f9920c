package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/loom/internal/compiler"
	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/render"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	graphFlags

	GraphFormat string
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph <document>",
		Short: "Print the graph description of a document",
		Long: `Print the graph description of a harness document to stdout.

The default output is Graphviz source, ready for dot:

  loom graph demo.yml | dot -Tsvg > demo.svg

--graph-format json or yaml prints the same graph as data. The global
--format flag only affects how errors are reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, args[0], cmd)
		},
	}

	opts.graphFlags.register(cmd)
	cmd.Flags().StringVar(&opts.GraphFormat, "graph-format", string(render.GraphDOT), "output (dot|json|yaml)")

	return cmd
}

func runGraph(opts *GraphOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return reportError(formatter, err)
	}
	gopts := graph.DefaultOptions()
	if err := cfg.applyGraph(&gopts); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, fmt.Sprintf("config: %v", err))
	}
	if err := opts.graphFlags.apply(cmd, &gopts); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}
	format, err := render.ParseGraphFormat(opts.GraphFormat)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}

	doc, err := LoadDocument(path)
	if err != nil {
		return reportError(formatter, err)
	}
	h, err := compiler.Compile(doc, compiler.WithLogger(formatter.Logger()))
	if err != nil {
		return reportError(formatter, err)
	}

	gopts.Name = doc.Name
	g, err := graph.Build(h, gopts)
	if err != nil {
		return reportError(formatter, err)
	}
	formatter.VerboseLog("Graph %s: %d node(s), %d edge(s)", g.Name, len(g.Nodes), len(g.Edges))

	if err := render.WriteGraph(formatter.Writer, g, format); err != nil {
		return WrapExitError(ExitCommandError, "writing graph", err)
	}
	return nil
}
