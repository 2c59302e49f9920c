package compiler

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/roach88/loom/internal/model"
	"github.com/roach88/loom/internal/pinspec"
)

// Role is what a designator names.
type Role int

const (
	RoleNone Role = iota
	RoleConnector
	RoleCable
	RoleFerrule
)

func (r Role) String() string {
	switch r {
	case RoleConnector:
		return "connector"
	case RoleCable:
		return "cable"
	case RoleFerrule:
		return "ferrule"
	default:
		return "undeclared name"
	}
}

// Designator is the result of a role lookup. Exactly one of Connector,
// Cable and Ferrule is set unless Role is RoleNone.
type Designator struct {
	Name      string
	Role      Role
	Connector *model.Connector
	Cable     *model.Cable
	Ferrule   *model.ConnectorConfig
}

// Element is one entry of a connection record: a designator and its pins.
// Bare elements were written as a plain name, which doubles as the pin.
type Element struct {
	Name string
	Pins any
	Bare bool
}

// Record is a two- or three-element connection record.
type Record []Element

// ParseRecords converts generic connection records into Records. Errors
// name the 1-based record index.
func ParseRecords(raw []any) ([]Record, error) {
	records := make([]Record, 0, len(raw))
	for i, r := range raw {
		rec, err := ParseRecord(i+1, r)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseRecord converts one generic connection record. index is only used
// in errors.
func ParseRecord(index int, raw any) (Record, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, model.NewMalformedRecordError(index, "connection must be a list, got %T", raw)
	}
	if len(list) != 2 && len(list) != 3 {
		return nil, model.NewMalformedRecordError(index, "connection must have 2 or 3 elements, got %d", len(list))
	}

	rec := make(Record, 0, len(list))
	for pos, e := range list {
		switch v := e.(type) {
		case string:
			rec = append(rec, Element{Name: v, Pins: v, Bare: true})
		case map[string]any:
			if len(v) != 1 {
				keys := make([]string, 0, len(v))
				for k := range v {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				return nil, model.NewMalformedRecordError(index, "element %d must have exactly one designator, got %d %v", pos+1, len(v), keys)
			}
			for name, pins := range v {
				rec = append(rec, Element{Name: name, Pins: pins})
			}
		default:
			return nil, model.NewMalformedRecordError(index, "element %d must be a name or a single-key mapping, got %T", pos+1, e)
		}
	}
	return rec, nil
}

// Resolver turns connection records into connections and loops on a
// declared harness. Synthetic ferrule connectors are numbered per resolver,
// starting at _F1.
type Resolver struct {
	harness      *model.Harness
	ferrules     map[string]model.ConnectorConfig
	ferruleCount int
	logger       *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver over h. ferrules are the templates that
// ferrule records instantiate.
func NewResolver(h *model.Harness, ferrules map[string]model.ConnectorConfig, opts ...Option) *Resolver {
	r := &Resolver{
		harness:  h,
		ferrules: ferrules,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FerruleCount is the number of ferrule connectors synthesized so far.
func (r *Resolver) FerruleCount() int {
	return r.ferruleCount
}

// Lookup reports which role name plays in the harness.
func (r *Resolver) Lookup(name string) Designator {
	if c := r.harness.Connector(name); c != nil {
		return Designator{Name: name, Role: RoleConnector, Connector: c}
	}
	if c := r.harness.Cable(name); c != nil {
		return Designator{Name: name, Role: RoleCable, Cable: c}
	}
	if f, ok := r.ferrules[name]; ok {
		return Designator{Name: name, Role: RoleFerrule, Ferrule: &f}
	}
	return Designator{Name: name, Role: RoleNone}
}

// Resolve applies records in order and stops at the first error.
func (r *Resolver) Resolve(records []Record) error {
	for i, rec := range records {
		index := i + 1
		r.logger.Debug("resolving connection", "record", index, "elements", len(rec))

		var err error
		switch len(rec) {
		case 3:
			err = r.resolveThrough(rec)
		case 2:
			err = r.resolvePair(rec)
		default:
			return model.NewMalformedRecordError(index, "connection must have 2 or 3 elements, got %d", len(rec))
		}
		if err != nil {
			return model.AtRecord(err, index)
		}
	}
	return nil
}

// resolveThrough handles connector, cable, connector records.
func (r *Resolver) resolveThrough(rec Record) error {
	want := [3]Role{RoleConnector, RoleCable, RoleConnector}
	for i, e := range rec {
		if e.Bare {
			return model.NewMalformedRecordError(0, "element %d: %q needs a pin list in a three-element connection", i+1, e.Name)
		}
		if d := r.Lookup(e.Name); d.Role != want[i] {
			return model.NewUnresolvedError(e.Name, "expected %s, found %s", want[i], d.Role)
		}
	}

	from, err := pinspec.Expand(rec[0].Pins)
	if err != nil {
		return err
	}
	via, err := pinspec.Expand(rec[1].Pins)
	if err != nil {
		return err
	}
	to, err := pinspec.Expand(rec[2].Pins)
	if err != nil {
		return err
	}
	if len(from) != len(via) || len(via) != len(to) {
		return model.NewMalformedRecordError(0, "list length mismatch: %s has %d pins, %s has %d, %s has %d",
			rec[0].Name, len(from), rec[1].Name, len(via), rec[2].Name, len(to))
	}

	for i := range from {
		if err := r.harness.AddConnection(rec[0].Name, from[i], rec[1].Name, via[i], rec[2].Name, to[i]); err != nil {
			return err
		}
	}
	return nil
}

// resolvePair handles the two-element shorthands: an open-ended wire,
// a loop, or ferrules crimped onto cable wires.
func (r *Resolver) resolvePair(rec Record) error {
	a, b := r.Lookup(rec[0].Name), r.Lookup(rec[1].Name)
	for _, d := range []Designator{a, b} {
		if d.Role == RoleNone {
			return model.NewUnresolvedError(d.Name, "not a declared connector, cable or ferrule")
		}
	}

	aPins, err := pinspec.Expand(rec[0].Pins)
	if err != nil {
		return err
	}
	bPins, err := pinspec.Expand(rec[1].Pins)
	if err != nil {
		return err
	}

	switch {
	case a.Role == RoleConnector && b.Role == RoleCable,
		a.Role == RoleCable && b.Role == RoleConnector,
		a.Role == RoleConnector && b.Role == RoleConnector:
		if len(aPins) != len(bPins) {
			return model.NewMalformedRecordError(0, "list length mismatch: %s has %d pins, %s has %d",
				a.Name, len(aPins), b.Name, len(bPins))
		}
	}

	var none pinspec.Pin
	switch {
	case a.Role == RoleConnector && b.Role == RoleCable:
		for i := range aPins {
			if err := r.harness.AddConnection(a.Name, aPins[i], b.Name, bPins[i], "", none); err != nil {
				return err
			}
		}
	case a.Role == RoleCable && b.Role == RoleConnector:
		for i := range aPins {
			if err := r.harness.AddConnection("", none, a.Name, aPins[i], b.Name, bPins[i]); err != nil {
				return err
			}
		}
	case a.Role == RoleConnector && b.Role == RoleConnector:
		if a.Name != b.Name {
			return model.NewUnresolvedError(b.Name, "wrong designators: a loop names one connector twice, got %s and %s", a.Name, b.Name)
		}
		for i := range aPins {
			if err := r.harness.AddLoop(a.Name, aPins[i], bPins[i]); err != nil {
				return err
			}
		}
	case a.Role == RoleFerrule && b.Role == RoleCable:
		return r.crimp(a, b, bPins, true)
	case a.Role == RoleCable && b.Role == RoleFerrule:
		return r.crimp(b, a, aPins, false)
	default:
		return model.NewUnresolvedError("", "wrong designators: %s %q cannot connect to %s %q", a.Role, a.Name, b.Role, b.Name)
	}
	return nil
}

// crimp synthesizes one ferrule connector per cable pin and connects it on
// the left of the cable (leading) or on its right.
func (r *Resolver) crimp(ferrule, cable Designator, cablePins []pinspec.Pin, leading bool) error {
	var none pinspec.Pin
	for _, pin := range cablePins {
		r.ferruleCount++
		id := fmt.Sprintf("_F%d", r.ferruleCount)

		cfg := *ferrule.Ferrule
		cfg.Category = model.CategoryFerrule
		if _, err := r.harness.DeclareConnector(id, cfg); err != nil {
			return err
		}
		r.logger.Debug("synthesized ferrule", "id", id, "template", ferrule.Name, "cable", cable.Name, "wire", pin.String())

		var err error
		if leading {
			err = r.harness.AddConnection(id, pinspec.Number(1), cable.Name, pin, "", none)
		} else {
			err = r.harness.AddConnection("", none, cable.Name, pin, id, pinspec.Number(1))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
