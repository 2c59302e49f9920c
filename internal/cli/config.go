package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/pipeline"
	"github.com/roach88/loom/internal/render"
	"github.com/roach88/loom/internal/wirecolor"
)

// DefaultConfigFile is looked up in the working directory when --config is
// not given.
const DefaultConfigFile = "loom.yaml"

// Config is the project configuration file. Every field is optional.
type Config struct {
	ColorMode    string   `yaml:"color_mode"`
	AWGStrict    *bool    `yaml:"awg_strict"`
	OutputDir    string   `yaml:"output_dir"`
	GraphFormats []string `yaml:"graph_formats"`
	BOMFormats   []string `yaml:"bom_formats"`
	BOMDB        string   `yaml:"bom_db"`
	Workers      int      `yaml:"workers"`
}

// LoadConfig reads the config at path. A missing file is an empty config
// unless required is set. Unknown keys are rejected.
func LoadConfig(path string, required bool) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return &Config{}, nil
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading config: %v", err)}
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing config %s: %v", path, err)}
	}
	return &cfg, nil
}

// loadConfig loads --config, or loom.yaml from the working directory.
func (o *RootOptions) loadConfig() (*Config, error) {
	if o.Config != "" {
		return LoadConfig(o.Config, true)
	}
	return LoadConfig(DefaultConfigFile, false)
}

// PipelineOptions turns the config into pipeline options on top of the
// defaults.
func (c *Config) PipelineOptions() (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if err := c.applyGraph(&opts.Graph); err != nil {
		return opts, err
	}

	opts.OutputDir = c.OutputDir
	opts.BOMDB = c.BOMDB
	opts.Workers = c.Workers

	if c.GraphFormats != nil {
		formats, err := parseGraphFormats(c.GraphFormats)
		if err != nil {
			return opts, err
		}
		opts.GraphFormats = formats
	}
	if c.BOMFormats != nil {
		formats, err := parseBOMFormats(c.BOMFormats)
		if err != nil {
			return opts, err
		}
		opts.BOMFormats = formats
	}
	return opts, nil
}

func (c *Config) applyGraph(opts *graph.Options) error {
	if c.ColorMode != "" {
		mode, err := wirecolor.ParseMode(c.ColorMode)
		if err != nil {
			return err
		}
		opts.ColorMode = mode
	}
	if c.AWGStrict != nil {
		opts.AWGStrict = *c.AWGStrict
	}
	return nil
}

func parseGraphFormats(names []string) ([]render.GraphFormat, error) {
	formats := make([]render.GraphFormat, 0, len(names))
	for _, n := range names {
		f, err := render.ParseGraphFormat(n)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func parseBOMFormats(names []string) ([]render.BOMFormat, error) {
	formats := make([]render.BOMFormat, 0, len(names))
	for _, n := range names {
		f, err := render.ParseBOMFormat(n)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// graphFlags are the rendering flags shared by build and graph.
type graphFlags struct {
	ColorMode string
	AWGStrict bool
}

func (g *graphFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.ColorMode, "color-mode", string(wirecolor.ModeShort), "colour names in labels (SHORT|FULL|HEX|GER, lower case for lower-case output)")
	cmd.Flags().BoolVar(&g.AWGStrict, "awg-strict", true, "snap gauge equivalents to standard sizes")
}

// apply overrides opts with the flags the user actually set.
func (g *graphFlags) apply(cmd *cobra.Command, opts *graph.Options) error {
	if cmd.Flags().Changed("color-mode") {
		mode, err := wirecolor.ParseMode(g.ColorMode)
		if err != nil {
			return err
		}
		opts.ColorMode = mode
	}
	if cmd.Flags().Changed("awg-strict") {
		opts.AWGStrict = g.AWGStrict
	}
	return nil
}
