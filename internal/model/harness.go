package model

import (
	"github.com/roach88/loom/internal/pinspec"
)

// Harness is the aggregate root: name-keyed connectors and cables in
// declaration order.
type Harness struct {
	connectors     map[string]*Connector
	connectorOrder []string
	cables         map[string]*Cable
	cableOrder     []string
}

// New creates an empty harness.
func New() *Harness {
	return &Harness{
		connectors: make(map[string]*Connector),
		cables:     make(map[string]*Cable),
	}
}

// DeclareConnector adds a connector. Designators are unique across
// connectors and cables.
func (h *Harness) DeclareConnector(name string, cfg ConnectorConfig) (*Connector, error) {
	if err := h.checkFree(name); err != nil {
		return nil, err
	}
	c, err := NewConnector(name, cfg)
	if err != nil {
		return nil, err
	}
	h.connectors[name] = c
	h.connectorOrder = append(h.connectorOrder, name)
	return c, nil
}

// DeclareCable adds a cable or bundle.
func (h *Harness) DeclareCable(name string, cfg CableConfig) (*Cable, error) {
	if err := h.checkFree(name); err != nil {
		return nil, err
	}
	c, err := NewCable(name, cfg)
	if err != nil {
		return nil, err
	}
	h.cables[name] = c
	h.cableOrder = append(h.cableOrder, name)
	return c, nil
}

func (h *Harness) checkFree(name string) error {
	if name == "" {
		return NewSchemaError("", "designator must not be empty")
	}
	if _, ok := h.connectors[name]; ok {
		return NewSchemaError(name, "designator declared more than once")
	}
	if _, ok := h.cables[name]; ok {
		return NewSchemaError(name, "designator declared more than once")
	}
	return nil
}

// Connector returns the named connector, or nil.
func (h *Harness) Connector(name string) *Connector {
	return h.connectors[name]
}

// Cable returns the named cable, or nil.
func (h *Harness) Cable(name string) *Cable {
	return h.cables[name]
}

// Connectors returns all connectors in declaration order.
func (h *Harness) Connectors() []*Connector {
	out := make([]*Connector, len(h.connectorOrder))
	for i, name := range h.connectorOrder {
		out[i] = h.connectors[name]
	}
	return out
}

// Cables returns all cables and bundles in declaration order.
func (h *Harness) Cables() []*Cable {
	out := make([]*Cable, len(h.cableOrder))
	for i, name := range h.cableOrder {
		out[i] = h.cables[name]
	}
	return out
}

// AddLoop records a jumper between two pins of a connector.
func (h *Harness) AddLoop(connector string, from, to pinspec.Pin) error {
	c := h.connectors[connector]
	if c == nil {
		return NewUnresolvedError(connector, "not a declared connector")
	}
	a, err := c.ResolvePin(from)
	if err != nil {
		return err
	}
	b, err := c.ResolvePin(to)
	if err != nil {
		return err
	}
	c.addLoop(a, b)
	return nil
}

// AddConnection links conductor viaPin of cable via to fromPin on connector
// from and toPin on connector to. An empty connector name leaves that end
// open. Both connector pins become active; from gains a right-hand side and
// to a left-hand side.
func (h *Harness) AddConnection(from string, fromPin pinspec.Pin, via string, viaPin pinspec.Pin, to string, toPin pinspec.Pin) error {
	cable := h.cables[via]
	if cable == nil {
		return NewUnresolvedError(via, "not a declared cable")
	}
	conductor, err := cable.ResolveConductor(viaPin)
	if err != nil {
		return err
	}

	conn := Connection{Via: conductor}
	var fromConn, toConn *Connector
	if from != "" {
		if fromConn, conn.From, err = h.endpoint(from, fromPin); err != nil {
			return err
		}
	}
	if to != "" {
		if toConn, conn.To, err = h.endpoint(to, toPin); err != nil {
			return err
		}
	}

	cable.connections = append(cable.connections, conn)
	if fromConn != nil {
		fromConn.activate(conn.From.Pin)
		fromConn.PortsRight = true
	}
	if toConn != nil {
		toConn.activate(conn.To.Pin)
		toConn.PortsLeft = true
	}
	return nil
}

func (h *Harness) endpoint(name string, pin pinspec.Pin) (*Connector, Endpoint, error) {
	c := h.connectors[name]
	if c == nil {
		return nil, Endpoint{}, NewUnresolvedError(name, "not a declared connector")
	}
	n, err := c.ResolvePin(pin)
	if err != nil {
		return nil, Endpoint{}, err
	}
	return c, Endpoint{Name: name, Pin: n}, nil
}
