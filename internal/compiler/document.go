package compiler

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
	"cuelang.org/go/encoding/yaml"
	"github.com/shopspring/decimal"

	"github.com/roach88/loom/internal/model"
)

//go:embed schema.cue
var schemaSource []byte

// ConnectorDecl is a named connector or ferrule template declaration.
type ConnectorDecl struct {
	Name   string
	Config model.ConnectorConfig
	Pos    token.Pos
}

// CableDecl is a named cable or bundle declaration.
type CableDecl struct {
	Name   string
	Config model.CableConfig
	Pos    token.Pos
}

// Document is a harness document after schema checking. Declarations keep
// source order; connection records are left in generic form for ParseRecords.
type Document struct {
	// Name is the file name without directory or extension.
	Name string

	Connectors  []ConnectorDecl
	Cables      []CableDecl
	Ferrules    []ConnectorDecl
	Connections []any
}

// FerruleTemplates returns the ferrule templates keyed by name.
func (d *Document) FerruleTemplates() map[string]model.ConnectorConfig {
	out := make(map[string]model.ConnectorConfig, len(d.Ferrules))
	for _, f := range d.Ferrules {
		out[f.Name] = f.Config
	}
	return out
}

// LoadFile reads a YAML (.yml, .yaml) or CUE (.cue) harness document.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(path, data)
}

// Load parses data as a harness document. The filename extension selects
// the syntax; anything other than .cue is read as YAML.
func Load(filename string, data []byte) (*Document, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling document schema: %w", err)
	}

	var v cue.Value
	if strings.EqualFold(filepath.Ext(filename), ".cue") {
		v = ctx.CompileBytes(data, cue.Filename(filename))
	} else {
		f, err := yaml.Extract(filename, data)
		if err != nil {
			return nil, formatCUEError(err)
		}
		v = ctx.BuildFile(f)
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	checked := schema.LookupPath(cue.ParsePath("#Document")).Unify(dropNullSections(ctx, v))
	if err := checked.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	return compileDocument(documentName(filename), checked, v)
}

// sections are the top-level keys of a document.
var sections = []string{"connectors", "cables", "ferrules", "connections"}

// dropNullSections removes sections given without a value, so an empty
// "connectors:" key in YAML reads as an absent section.
func dropNullSections(ctx *cue.Context, v cue.Value) cue.Value {
	if v.IncompleteKind() != cue.StructKind {
		return v
	}
	iter, err := v.Fields()
	if err != nil {
		return v
	}
	out := ctx.CompileString("{}")
	for iter.Next() {
		if iter.Value().IsNull() && slices.Contains(sections, iter.Selector().Unquoted()) {
			continue
		}
		out = out.FillPath(cue.MakePath(iter.Selector()), iter.Value())
	}
	return out
}

func documentName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// compileDocument reads the schema-checked value v. Positions come from
// src, the value as written; unification with the schema leaves
// declarations without a single source.
func compileDocument(name string, v, src cue.Value) (*Document, error) {
	doc := &Document{Name: name}
	pos := func(section, label string) token.Pos {
		return src.LookupPath(cue.MakePath(cue.Str(section), cue.Str(label))).Pos()
	}

	err := eachField(v, "connectors", func(label string, fv cue.Value) error {
		cfg, err := CompileConnector(fv)
		if err != nil {
			return err
		}
		doc.Connectors = append(doc.Connectors, ConnectorDecl{Name: label, Config: cfg, Pos: pos("connectors", label)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(v, "cables", func(label string, fv cue.Value) error {
		cfg, err := CompileCable(fv)
		if err != nil {
			return err
		}
		doc.Cables = append(doc.Cables, CableDecl{Name: label, Config: cfg, Pos: pos("cables", label)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(v, "ferrules", func(label string, fv cue.Value) error {
		cfg, err := CompileConnector(fv)
		if err != nil {
			return err
		}
		cfg.Category = model.CategoryFerrule
		doc.Ferrules = append(doc.Ferrules, ConnectorDecl{Name: label, Config: cfg, Pos: pos("ferrules", label)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	connVal := v.LookupPath(cue.ParsePath("connections"))
	if connVal.Exists() && !connVal.IsNull() {
		iter, err := connVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			raw, err := toGeneric(iter.Value())
			if err != nil {
				return nil, err
			}
			doc.Connections = append(doc.Connections, raw)
		}
	}

	return doc, nil
}

// eachField calls fn for every field of section in declaration order.
// Absent and null sections are empty.
func eachField(v cue.Value, section string, fn func(label string, fv cue.Value) error) error {
	sv := v.LookupPath(cue.ParsePath(section))
	if !sv.Exists() || sv.IsNull() {
		return nil
	}
	iter, err := sv.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Selector().Unquoted(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

// CompileConnector converts a schema-checked connector value into its
// configuration struct.
func CompileConnector(v cue.Value) (model.ConnectorConfig, error) {
	var cfg model.ConnectorConfig
	var err error

	var category string
	if category, err = optString(v, "category"); err != nil {
		return cfg, err
	}
	cfg.Category = model.Category(category)

	for field, dst := range map[string]*string{
		"type":        &cfg.Type,
		"subtype":     &cfg.Subtype,
		"part_number": &cfg.PartNumber,
		"color":       &cfg.Color,
		"notes":       &cfg.Notes,
	} {
		if *dst, err = optString(v, field); err != nil {
			return cfg, err
		}
	}

	if cfg.Pincount, err = optInt(v, "pincount"); err != nil {
		return cfg, err
	}
	if cfg.Pinout, err = optLabels(v, "pinout"); err != nil {
		return cfg, err
	}

	if cfg.ShowName, err = optBool(v, "show_name"); err != nil {
		return cfg, err
	}
	if cfg.ShowPincount, err = optBool(v, "show_pincount"); err != nil {
		return cfg, err
	}
	hide, err := optBool(v, "hide_disconnected_pins")
	if err != nil {
		return cfg, err
	}
	cfg.HideDisconnectedPins = hide != nil && *hide

	return cfg, nil
}

// CompileCable converts a schema-checked cable value into its configuration
// struct.
func CompileCable(v cue.Value) (model.CableConfig, error) {
	var cfg model.CableConfig
	var err error

	for field, dst := range map[string]*string{
		"category":    &cfg.Category,
		"type":        &cfg.Type,
		"part_number": &cfg.PartNumber,
		"notes":       &cfg.Notes,
		"gauge_unit":  &cfg.GaugeUnit,
		"color_code":  &cfg.ColorCode,
	} {
		if *dst, err = optString(v, field); err != nil {
			return cfg, err
		}
	}

	if gv := v.LookupPath(cue.ParsePath("gauge")); gv.Exists() {
		if gv.Kind() == cue.StringKind {
			if cfg.GaugeText, err = gv.String(); err != nil {
				return cfg, formatCUEError(err)
			}
		} else {
			d, err := toDecimal(gv)
			if err != nil {
				return cfg, err
			}
			cfg.GaugeValue = decimal.NewNullDecimal(d)
		}
	}

	if lv := v.LookupPath(cue.ParsePath("length")); lv.Exists() {
		if cfg.Length, err = toDecimal(lv); err != nil {
			return cfg, err
		}
	}

	if cfg.Wirecount, err = optInt(v, "wirecount"); err != nil {
		return cfg, err
	}
	if cfg.Colors, err = optLabels(v, "colors"); err != nil {
		return cfg, err
	}

	shield, err := optBool(v, "shield")
	if err != nil {
		return cfg, err
	}
	cfg.Shield = shield != nil && *shield

	if cfg.ShowName, err = optBool(v, "show_name"); err != nil {
		return cfg, err
	}
	if cfg.ShowWirecount, err = optBool(v, "show_wirecount"); err != nil {
		return cfg, err
	}
	for field, dst := range map[string]*bool{
		"show_pinout": &cfg.ShowPinout,
		"show_equiv":  &cfg.ShowEquiv,
	} {
		b, err := optBool(v, field)
		if err != nil {
			return cfg, err
		}
		*dst = b != nil && *b
	}

	return cfg, nil
}

func optString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optInt(v cue.Value, field string) (*int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	i := int(n)
	return &i, nil
}

func optBool(v cue.Value, field string) (*bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return &b, nil
}

// optLabels reads a list of strings or integers as strings.
func optLabels(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		ev := iter.Value()
		switch ev.Kind() {
		case cue.IntKind:
			n, err := ev.Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			out = append(out, strconv.FormatInt(n, 10))
		default:
			s, err := ev.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			out = append(out, s)
		}
	}
	return out, nil
}

func toDecimal(v cue.Value) (decimal.Decimal, error) {
	if v.Kind() == cue.IntKind {
		n, err := v.Int64()
		if err != nil {
			return decimal.Decimal{}, formatCUEError(err)
		}
		return decimal.NewFromInt(n), nil
	}
	f, err := v.Float64()
	if err != nil {
		return decimal.Decimal{}, formatCUEError(err)
	}
	return decimal.NewFromFloat(f), nil
}

// toGeneric converts a concrete value into strings, ints, float64s, bools,
// nil, []any and map[string]any.
func toGeneric(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		b, err := v.Bool()
		return b, formatCUEError(err)
	case cue.IntKind:
		n, err := v.Int64()
		return int(n), formatCUEError(err)
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		return f, formatCUEError(err)
	case cue.StringKind:
		s, err := v.String()
		return s, formatCUEError(err)
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := []any{}
		for iter.Next() {
			e, err := toGeneric(iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := map[string]any{}
		for iter.Next() {
			e, err := toGeneric(iter.Value())
			if err != nil {
				return nil, err
			}
			out[iter.Selector().Unquoted()] = e
		}
		return out, nil
	default:
		return nil, &CompileError{
			Field:   v.Path().String(),
			Message: fmt.Sprintf("unsupported value kind: %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}
