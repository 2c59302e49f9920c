package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/loom/internal/units"
	"github.com/roach88/loom/internal/wirecolor"
)

// NewConvertCommand creates the convert command and its gauge and color
// subcommands.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert wire gauges and colour codes",
		Long: `Convert between metric and AWG wire gauges, or translate colour codes
the way labels in the diagram show them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newConvertGaugeCommand(rootOpts))
	cmd.AddCommand(newConvertColorCommand(rootOpts))

	return cmd
}

// GaugeConversion is the result of converting one gauge.
type GaugeConversion struct {
	Input          string `json:"input"`
	Value          string `json:"value"`
	Unit           string `json:"unit"`
	Equivalent     string `json:"equivalent"`
	EquivalentUnit string `json:"equivalent_unit"`
}

func (g GaugeConversion) String() string {
	return fmt.Sprintf("%s %s = %s %s", g.Value, g.Unit, g.Equivalent, g.EquivalentUnit)
}

func newConvertGaugeCommand(rootOpts *RootOptions) *cobra.Command {
	strict := true

	cmd := &cobra.Command{
		Use:   "gauge <gauge>...",
		Short: "Convert gauges between mm² and AWG",
		Long: `Convert each gauge to the other unit. A gauge is a number with an
optional unit: "0.25", "0.25 mm2", "20 AWG", "4/0 AWG". Plain numbers are mm².`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			out := make([]GaugeConversion, 0, len(args))
			for _, arg := range args {
				conv, err := ConvertGauge(arg, strict)
				if err != nil {
					return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error())
				}
				out = append(out, conv)
			}

			if formatter.Format == "json" {
				return formatter.Success(out)
			}
			for _, conv := range out {
				fmt.Fprintln(formatter.Writer, conv)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "awg-strict", true, "snap results to standard sizes")

	return cmd
}

// gaugeUnits maps accepted unit spellings to their display form.
var gaugeUnits = []struct{ suffix, unit string }{
	{"awg", "AWG"},
	{"mm²", "mm²"},
	{"mm2", "mm²"},
}

// ConvertGauge converts a gauge with an optional unit suffix to the other
// unit.
func ConvertGauge(input string, strict bool) (GaugeConversion, error) {
	text := strings.ToLower(strings.TrimSpace(input))
	unit := "mm²"
	for _, u := range gaugeUnits {
		if strings.HasSuffix(text, u.suffix) {
			text = strings.TrimSpace(strings.TrimSuffix(text, u.suffix))
			unit = u.unit
			break
		}
	}
	if text == "" {
		return GaugeConversion{}, fmt.Errorf("gauge %q has no value", input)
	}

	conv := GaugeConversion{Input: input, Value: text, Unit: unit}
	var eq units.Equivalent
	if unit == "AWG" {
		eq = units.MM2FromAWG(text, strict)
		conv.EquivalentUnit = "mm²"
	} else {
		eq = units.AWGFromMM2(text, strict)
		conv.EquivalentUnit = "AWG"
	}
	value, ok := eq.Value()
	if !ok {
		return GaugeConversion{}, fmt.Errorf("cannot convert gauge %q", input)
	}
	conv.Equivalent = value
	return conv, nil
}

// ColorTranslation is one colour rendered in a display mode.
type ColorTranslation struct {
	Input      string   `json:"input"`
	Known      bool     `json:"known"`
	Translated string   `json:"translated"`
	Hex        []string `json:"hex,omitempty"`
}

func newConvertColorCommand(rootOpts *RootOptions) *cobra.Command {
	mode := string(wirecolor.ModeFull)

	cmd := &cobra.Command{
		Use:   "color <color>...",
		Short: "Translate colour codes",
		Long: `Translate colour codes ("RD", "GYPK") or names ("light blue") into the
given display mode, with their hex bands.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			m, err := wirecolor.ParseMode(mode)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
			}

			out := make([]ColorTranslation, 0, len(args))
			for _, arg := range args {
				out = append(out, ColorTranslation{
					Input:      arg,
					Known:      wirecolor.Known(arg),
					Translated: wirecolor.Translate(arg, m),
					Hex:        wirecolor.HexBands(arg),
				})
			}

			if formatter.Format == "json" {
				return formatter.Success(out)
			}
			for _, c := range out {
				if !c.Known {
					fmt.Fprintf(formatter.Writer, "%s: unknown colour\n", c.Input)
					continue
				}
				fmt.Fprintf(formatter.Writer, "%s: %s (%s)\n", c.Input, c.Translated, strings.Join(c.Hex, ":"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", mode, "display mode (SHORT|FULL|HEX|GER, lower case for lower-case output)")

	return cmd
}
