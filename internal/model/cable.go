package model

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/loom/internal/pinspec"
	"github.com/roach88/loom/internal/wirecolor"
)

// CategoryBundle marks a cable that is really a group of loose wires.
const CategoryBundle = "bundle"

// UnitMM2 is the default gauge unit.
const UnitMM2 = "mm²"

// CableConfig is the declared form of a cable or bundle.
type CableConfig struct {
	Category   string
	Type       string
	PartNumber string
	Notes      string

	// GaugeText is the combined "<value> <unit>" form; GaugeValue the bare
	// numeric form whose unit is GaugeUnit (default mm²). GaugeText wins.
	GaugeText  string
	GaugeValue decimal.NullDecimal
	GaugeUnit  string

	Length decimal.Decimal

	// Wirecount, Colors and ColorCode determine the conductors.
	Wirecount *int
	Colors    []string
	ColorCode string

	Shield bool

	ShowName      *bool // default true
	ShowWirecount *bool // default true
	ShowPinout    bool
	ShowEquiv     bool
}

// Cable is a declared cable or bundle and the connections made through it.
type Cable struct {
	Name       string
	Category   string
	Type       string
	PartNumber string
	Notes      string

	// Gauge is the gauge as written ("0.25", "4/0"); empty when not given.
	Gauge     string
	GaugeUnit string

	// Length in meters.
	Length decimal.Decimal

	// Colors has one entry per conductor; entries may be blank.
	Colors []string
	Shield bool

	ShowName      bool
	ShowWirecount bool
	ShowPinout    bool
	ShowEquiv     bool

	connections []Connection
}

// NewCable validates cfg and derives the cable's conductors.
func NewCable(name string, cfg CableConfig) (*Cable, error) {
	c := &Cable{
		Name:          name,
		Category:      cfg.Category,
		Type:          cfg.Type,
		PartNumber:    cfg.PartNumber,
		Notes:         cfg.Notes,
		Length:        cfg.Length,
		Shield:        cfg.Shield,
		ShowName:      boolOr(cfg.ShowName, true),
		ShowWirecount: boolOr(cfg.ShowWirecount, true),
		ShowPinout:    cfg.ShowPinout,
		ShowEquiv:     cfg.ShowEquiv,
	}

	switch {
	case cfg.GaugeText != "":
		parts := strings.Split(cfg.GaugeText, " ")
		if len(parts) != 2 {
			return nil, NewSchemaError(name, "gauge must be a number, or number and unit separated by a space: %q", cfg.GaugeText)
		}
		c.Gauge = parts[0]
		c.GaugeUnit = normalizeUnit(parts[1])
	case cfg.GaugeValue.Valid:
		c.Gauge = cfg.GaugeValue.Decimal.String()
		c.GaugeUnit = UnitMM2
		if cfg.GaugeUnit != "" {
			c.GaugeUnit = normalizeUnit(cfg.GaugeUnit)
		}
	}

	colors, err := resolveColors(name, cfg)
	if err != nil {
		return nil, err
	}
	c.Colors = colors

	return c, nil
}

// resolveColors applies the wirecount/colors/color-code rules.
func resolveColors(name string, cfg CableConfig) ([]string, error) {
	if cfg.Wirecount == nil {
		if len(cfg.Colors) == 0 {
			return nil, NewSchemaError(name, "unknown number of wires: specify wirecount or colors")
		}
		return append([]string(nil), cfg.Colors...), nil
	}

	n := *cfg.Wirecount
	if n < 1 {
		return nil, NewSchemaError(name, "wirecount must be positive, got %d", n)
	}

	switch {
	case len(cfg.Colors) > 0:
		return wirecolor.Fit(cfg.Colors, n), nil
	case cfg.ColorCode != "":
		palette, err := wirecolor.Palette(cfg.ColorCode)
		if err != nil {
			return nil, NewSchemaError(name, "%v", err)
		}
		return wirecolor.Fit(palette, n), nil
	default:
		return make([]string, n), nil
	}
}

func normalizeUnit(u string) string {
	return strings.ReplaceAll(u, "mm2", UnitMM2)
}

// Wirecount is the number of conductors, excluding the shield.
func (c *Cable) Wirecount() int {
	return len(c.Colors)
}

// IsBundle reports whether the cable is a bundle of loose wires.
func (c *Cable) IsBundle() bool {
	return c.Category == CategoryBundle
}

// Connections returns the cable's connections in resolution order.
func (c *Cable) Connections() []Connection {
	return append([]Connection(nil), c.connections...)
}

// ResolveConductor maps a pin reference to a conductor. Numbers address
// wires 1..wirecount; the label "s" addresses the shield.
func (c *Cable) ResolveConductor(p pinspec.Pin) (Conductor, error) {
	if n, ok := p.Int(); ok {
		if n < 1 || n > c.Wirecount() {
			return Conductor{}, NewUnknownPinError(c.Name, "wire %d out of range 1..%d", n, c.Wirecount())
		}
		return Conductor{Wire: n}, nil
	}
	if strings.EqualFold(p.String(), "s") {
		if !c.Shield {
			return Conductor{}, NewUnknownPinError(c.Name, "cable has no shield")
		}
		return Conductor{Shield: true}, nil
	}
	return Conductor{}, NewUnknownPinError(c.Name, "no conductor %q", p.String())
}

// Conductor addresses one wire of a cable, or its shield.
type Conductor struct {
	Wire   int // 1-based; 0 for the shield
	Shield bool
}

// Port is the conductor's port name on the cable node: "w<n>" or "ws".
func (c Conductor) Port() string {
	if c.Shield {
		return "ws"
	}
	return "w" + strconv.Itoa(c.Wire)
}

// String renders the conductor as written in documents: "<n>" or "s".
func (c Conductor) String() string {
	if c.Shield {
		return "s"
	}
	return strconv.Itoa(c.Wire)
}

// Endpoint is one end of a connection: a connector pin. The zero value is
// an open end.
type Endpoint struct {
	Name string
	Pin  int
}

// Open reports whether the endpoint is absent.
func (e Endpoint) Open() bool {
	return e.Name == ""
}

// Connection links a conductor of its owning cable to up to two connector
// pins.
type Connection struct {
	From Endpoint
	Via  Conductor
	To   Endpoint
}
