// Package graph turns a resolved harness into a graph description: one node
// per connector, ferrule and cable, plus the edges that wire them together.
//
// Build only reads the harness. Port sides and pin visibility were settled
// while connections were resolved, so several builders may share one harness.
package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/model"
	"github.com/roach88/loom/internal/wirecolor"
)

// Options control how labels are rendered.
type Options struct {
	// Name labels the graph, usually the document name.
	Name string

	// ColorMode selects how wire and ferrule colours are written in labels.
	// Empty means wirecolor.ModeShort.
	ColorMode wirecolor.Mode

	// AWGStrict snaps gauge equivalents to standard sizes.
	AWGStrict bool
}

// DefaultOptions returns short colour codes and strict gauge equivalents.
func DefaultOptions() Options {
	return Options{ColorMode: wirecolor.ModeShort, AWGStrict: true}
}

// Edge colours.
const (
	colorNeutral = "#000000:#ffffff:#000000"
	colorShield  = "#000000"
	colorOutline = "#000000"
	bandDefault  = "#ffffff"
)

// Build emits the graph description for h.
func Build(h *model.Harness, opts Options) (*ir.Graph, error) {
	if opts.ColorMode == "" {
		opts.ColorMode = wirecolor.ModeShort
	}
	b := &builder{
		h:    h,
		opts: opts,
		g: &ir.Graph{
			Name:     opts.Name,
			Comments: []string{"Graph generated by loom"},
			GraphAttrs: ir.Attrs{
				"rankdir":  "LR",
				"ranksep":  "2",
				"bgcolor":  "white",
				"nodesep":  "0.33",
				"fontname": "arial",
			},
			NodeAttrs: ir.Attrs{
				"shape":     "record",
				"style":     "filled",
				"fillcolor": "white",
				"fontname":  "arial",
			},
			EdgeAttrs: ir.Attrs{
				"style":    "bold",
				"fontname": "arial",
			},
			Nodes: []ir.Node{},
			Edges: []ir.Edge{},
		},
	}

	for _, c := range h.Connectors() {
		if c.IsFerrule() {
			b.ferrule(c)
			continue
		}
		if err := b.connector(c); err != nil {
			return nil, err
		}
	}
	for _, c := range h.Cables() {
		b.cable(c)
	}
	return b.g, nil
}

type builder struct {
	h    *model.Harness
	opts Options
	g    *ir.Graph
}

func (b *builder) connector(c *model.Connector) error {
	var ports []string
	var left, labels, right []any
	for i, label := range c.Pinout {
		pin := i + 1
		if !c.PinVisible(pin) {
			continue
		}
		n := strconv.Itoa(pin)
		if c.PortsLeft {
			left = append(left, "<p"+n+"l>"+n)
			ports = append(ports, "p"+n+"l")
		}
		labels = append(labels, escapeRecord(label))
		if c.PortsRight {
			right = append(right, "<p"+n+"r>"+n)
			ports = append(ports, "p"+n+"r")
		}
	}

	var name string
	if c.ShowName {
		name = escapeRecord(c.Name)
	}
	var pincount string
	if c.ShowPincount {
		pincount = fmt.Sprintf("%d-pin", c.Pincount())
	}
	label := nested([]any{
		name,
		[]any{escapeRecord(c.PartNumber), escapeRecord(c.Type), escapeRecord(c.Subtype), pincount},
		[]any{left, pinLabelColumn(labels), right},
		escapeRecord(c.Notes),
	})

	b.g.Nodes = append(b.g.Nodes, ir.Node{
		ID:    c.Name,
		Kind:  ir.NodeConnector,
		Ports: ports,
		Attrs: ir.Attrs{"label": label},
	})

	loops := c.Loops()
	if len(loops) == 0 {
		return nil
	}
	var side, compass string
	switch {
	case c.PortsLeft:
		side, compass = "l", "w"
	case c.PortsRight:
		side, compass = "r", "e"
	default:
		return model.NewAmbiguousRenderingError(c.Name, "no side for loops: connector has no connections")
	}
	for _, l := range loops {
		b.g.Edges = append(b.g.Edges, ir.Edge{
			From:  ir.Endpoint{Node: c.Name, Port: fmt.Sprintf("p%d%s", l.From, side), Compass: compass},
			To:    ir.Endpoint{Node: c.Name, Port: fmt.Sprintf("p%d%s", l.To, side), Compass: compass},
			Attrs: ir.Attrs{"color": colorNeutral},
		})
	}
	return nil
}

func (b *builder) ferrule(c *model.Connector) {
	info := c.Type
	if c.Subtype != "" {
		info += ", " + c.Subtype
	}
	if color := wirecolor.Translate(c.Color, b.opts.ColorMode); color != "" {
		info = strings.TrimSpace(info + " " + color)
	}
	info = escapeHTML(info)

	var infoLeft, infoRight, bar string
	if c.PortsRight {
		infoLeft = info
	}
	if c.PortsLeft {
		infoRight = info
	}
	if bands := wirecolor.HexBands(c.Color); bands != nil {
		bar = fmt.Sprintf(`<td bgcolor="%s" width="4"></td>`, strings.Join(bands, ":"))
	}
	label := `<table border="0" cellspacing="0" cellpadding="3" cellborder="1"><tr>` +
		`<td port="p1l"> ` + infoLeft + ` </td>` + bar + `<td port="p1r"> ` + infoRight + ` </td>` +
		`</tr></table>`

	orientation := "180"
	if c.PortsLeft {
		orientation = "0"
	}
	b.g.Nodes = append(b.g.Nodes, ir.Node{
		ID:    c.Name,
		Kind:  ir.NodeFerrule,
		Ports: []string{"p1l", "p1r"},
		HTML:  true,
		Attrs: ir.Attrs{
			"label":       label,
			"shape":       "none",
			"margin":      "0",
			"orientation": orientation,
		},
	})
}

func (b *builder) cable(c *model.Cable) {
	t := newCableTable(c, b.opts)

	for _, conn := range c.Connections() {
		color := colorShield
		if !conn.Via.Shield {
			color = colorNeutral
			if bands := wirecolor.HexBands(c.Colors[conn.Via.Wire-1]); bands != nil {
				color = colorOutline + ":" + strings.Join(bands, ":") + ":" + colorOutline
			}
		}

		if !conn.From.Open() {
			from := b.connectorEnd(conn.From, "r", "e")
			t.fill(conn.Via.String()+"_in", b.endLabel(conn.From))
			b.g.Edges = append(b.g.Edges, ir.Edge{
				From:  from,
				To:    ir.Endpoint{Node: c.Name, Port: conn.Via.Port(), Compass: "w"},
				Attrs: ir.Attrs{"color": color},
			})
		}
		if !conn.To.Open() {
			to := b.connectorEnd(conn.To, "l", "w")
			t.fill(conn.Via.String()+"_out", b.endLabel(conn.To))
			b.g.Edges = append(b.g.Edges, ir.Edge{
				From:  ir.Endpoint{Node: c.Name, Port: conn.Via.Port(), Compass: "e"},
				To:    to,
				Attrs: ir.Attrs{"color": color},
			})
		}
	}

	style := "filled"
	if c.IsBundle() {
		style = "filled,dashed"
	}
	b.g.Nodes = append(b.g.Nodes, ir.Node{
		ID:    c.Name,
		Kind:  ir.NodeCable,
		Ports: t.ports,
		HTML:  true,
		Attrs: ir.Attrs{
			"label":     t.String(),
			"shape":     "box",
			"style":     style,
			"margin":    "0",
			"fillcolor": "white",
		},
	})
}

// connectorEnd addresses a connector pin on the given side. Ferrules have a
// single cell, so their edges attach to the node itself.
func (b *builder) connectorEnd(e model.Endpoint, side, compass string) ir.Endpoint {
	if c := b.h.Connector(e.Name); c != nil && c.IsFerrule() {
		return ir.Endpoint{Node: e.Name, Compass: compass}
	}
	return ir.Endpoint{Node: e.Name, Port: fmt.Sprintf("p%d%s", e.Pin, side), Compass: compass}
}

// endLabel is the text written beside a wire for the pin at its end.
// Ferrules show nothing; their own node already carries the detail.
func (b *builder) endLabel(e model.Endpoint) string {
	if c := b.h.Connector(e.Name); c != nil && c.IsFerrule() {
		return ""
	}
	return escapeHTML(fmt.Sprintf("%s:%d", e.Name, e.Pin))
}
