package model

import (
	"github.com/roach88/loom/internal/pinspec"
)

// Category distinguishes ordinary connectors from ferrules.
type Category string

const (
	CategoryGeneric Category = "generic"
	CategoryFerrule Category = "ferrule"
)

// ConnectorConfig is the declared form of a connector. Pointer fields
// distinguish "not given" from a zero value.
type ConnectorConfig struct {
	Category   Category
	Type       string
	Subtype    string
	PartNumber string
	Color      string
	Notes      string

	// At most one of Pincount and Pinout may be given.
	Pincount *int
	Pinout   []string

	ShowName             *bool // default true
	ShowPincount         *bool // default true
	HideDisconnectedPins bool
}

// Loop is an internal jumper between two pins of the same connector.
type Loop struct {
	From int
	To   int
}

// Connector is a declared connector or a synthesized ferrule instance.
type Connector struct {
	Name       string
	Category   Category
	Type       string
	Subtype    string
	PartNumber string
	Color      string
	Notes      string

	// Pinout holds one label per pin; labels may be blank.
	Pinout []string

	ShowName             bool
	ShowPincount         bool
	HideDisconnectedPins bool

	// PortsLeft is set once a connection arrives at this connector
	// (it is the "to" side); PortsRight once one leaves it.
	PortsLeft  bool
	PortsRight bool

	loops  []Loop
	active map[int]bool
}

// NewConnector validates cfg and derives the connector's pinout.
func NewConnector(name string, cfg ConnectorConfig) (*Connector, error) {
	category := cfg.Category
	switch category {
	case "":
		category = CategoryGeneric
	case CategoryGeneric, CategoryFerrule:
	default:
		return nil, NewSchemaError(name, "unknown connector category %q", category)
	}

	var pinout []string
	switch {
	case len(cfg.Pinout) > 0 && cfg.Pincount != nil:
		return nil, NewSchemaError(name, "cannot specify both pinout and pincount")
	case len(cfg.Pinout) > 0:
		pinout = append([]string(nil), cfg.Pinout...)
	default:
		n := 1
		if cfg.Pincount != nil && *cfg.Pincount > 0 {
			n = *cfg.Pincount
		}
		pinout = make([]string, n)
	}

	return &Connector{
		Name:                 name,
		Category:             category,
		Type:                 cfg.Type,
		Subtype:              cfg.Subtype,
		PartNumber:           cfg.PartNumber,
		Color:                cfg.Color,
		Notes:                cfg.Notes,
		Pinout:               pinout,
		ShowName:             boolOr(cfg.ShowName, true),
		ShowPincount:         boolOr(cfg.ShowPincount, true),
		HideDisconnectedPins: cfg.HideDisconnectedPins,
		active:               make(map[int]bool),
	}, nil
}

// Pincount is the number of pins, always equal to len(Pinout).
func (c *Connector) Pincount() int {
	return len(c.Pinout)
}

// IsFerrule reports whether the connector is a ferrule.
func (c *Connector) IsFerrule() bool {
	return c.Category == CategoryFerrule
}

// Loops returns the connector's loops in declaration order.
func (c *Connector) Loops() []Loop {
	return append([]Loop(nil), c.loops...)
}

// IsActive reports whether pin (1-based) has a connection or loop.
func (c *Connector) IsActive(pin int) bool {
	return c.active[pin]
}

// PinVisible reports whether pin is drawn. All pins are drawn unless
// HideDisconnectedPins is set, in which case only active pins are.
func (c *Connector) PinVisible(pin int) bool {
	return !c.HideDisconnectedPins || c.active[pin]
}

// ResolvePin maps a pin reference to a 1-based pin index. Numbers must lie
// within the pincount; labels match the first equal pinout entry.
func (c *Connector) ResolvePin(p pinspec.Pin) (int, error) {
	if n, ok := p.Int(); ok {
		if n < 1 || n > c.Pincount() {
			return 0, NewUnknownPinError(c.Name, "pin %d out of range 1..%d", n, c.Pincount())
		}
		return n, nil
	}
	for i, label := range c.Pinout {
		if label != "" && label == p.String() {
			return i + 1, nil
		}
	}
	return 0, NewUnknownPinError(c.Name, "no pin labeled %q", p.String())
}

func (c *Connector) activate(pin int) {
	c.active[pin] = true
}

func (c *Connector) addLoop(from, to int) {
	c.loops = append(c.loops, Loop{From: from, To: to})
	c.activate(from)
	c.activate(to)
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
