package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is stamped at link time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// ValidFormats are the values accepted by --format.
var ValidFormats = []string{"text", "json"}

// RootOptions carries the persistent flags every subcommand sees.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // project config path; empty means ./loom.yaml if present
}

func (o *RootOptions) register(fs *pflag.FlagSet) {
	fs.BoolVarP(&o.Verbose, "verbose", "v", false, "log compilation steps to stderr")
	fs.StringVar(&o.Format, "format", "text", "output format (json|text)")
	fs.StringVar(&o.Config, "config", "", "project config file (default ./"+DefaultConfigFile+")")
}

func (o *RootOptions) validate() error {
	if !slices.Contains(ValidFormats, o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}
	return nil
}

// NewRootCommand assembles the loom command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "loom",
		Short:   "Wiring harness compiler",
		Version: Version,
		Long: `loom compiles wiring harness documents into a Graphviz diagram and a
bill of materials.

A document declares connectors, cables and ferrules and lists the connections
between them. Documents are YAML (.yml, .yaml) or CUE (.cue).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.validate()
		},
	}
	opts.register(cmd.PersistentFlags())

	for _, sub := range []func(*RootOptions) *cobra.Command{
		NewBuildCommand,
		NewValidateCommand,
		NewBOMCommand,
		NewGraphCommand,
		NewConvertCommand,
	} {
		cmd.AddCommand(sub(opts))
	}
	return cmd
}
