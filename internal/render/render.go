// Package render serializes graph descriptions and BOM tables.
//
// Graphs replay onto a Renderer, which receives node and edge declarations
// in order. The DOT writer is the Renderer used for Graphviz output; JSON
// and YAML dump the description as data. BOM tables are written as TSV or
// as an HTML page.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/loom/internal/ir"
)

// Renderer receives a graph description one declaration at a time.
type Renderer interface {
	DeclareNode(id string, attrs ir.Attrs)
	DeclareEdge(from, to ir.Endpoint, attrs ir.Attrs)
}

// Declare replays g onto r: every node, then every edge, in graph order.
//
// HTML-like labels are passed wrapped in angle brackets, the way DOT
// delimits them. The graph itself is not modified.
func Declare(g *ir.Graph, r Renderer) {
	for _, n := range g.Nodes {
		attrs := make(ir.Attrs, len(n.Attrs))
		for k, v := range n.Attrs {
			attrs[k] = v
		}
		if label, ok := attrs["label"]; ok && n.HTML {
			attrs["label"] = "<" + label + ">"
		}
		r.DeclareNode(n.ID, attrs)
	}
	for _, e := range g.Edges {
		r.DeclareEdge(e.From, e.To, e.Attrs)
	}
}

// GraphFormat names a graph output encoding.
type GraphFormat string

const (
	GraphDOT  GraphFormat = "dot"
	GraphJSON GraphFormat = "json"
	GraphYAML GraphFormat = "yaml"
)

// Extension is the file suffix for the format.
func (f GraphFormat) Extension() string {
	if f == GraphDOT {
		return ".gv"
	}
	return ".graph." + string(f)
}

// ParseGraphFormat validates a graph format name.
func ParseGraphFormat(s string) (GraphFormat, error) {
	switch f := GraphFormat(strings.ToLower(s)); f {
	case GraphDOT, GraphJSON, GraphYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown graph format %q: must be dot, json or yaml", s)
}

// WriteGraph encodes g to w in the given format.
func WriteGraph(w io.Writer, g *ir.Graph, format GraphFormat) error {
	switch format {
	case GraphDOT:
		return WriteDOT(w, g)
	case GraphJSON:
		return WriteJSON(w, g)
	case GraphYAML:
		return WriteYAML(w, g)
	}
	return fmt.Errorf("unknown graph format %q", format)
}

// BOMFormat names a BOM output encoding.
type BOMFormat string

const (
	BOMTSV  BOMFormat = "tsv"
	BOMHTML BOMFormat = "html"
)

// Extension is the file suffix for the format.
func (f BOMFormat) Extension() string {
	if f == BOMTSV {
		return ".bom.tsv"
	}
	return ".html"
}

// ParseBOMFormat validates a BOM format name.
func ParseBOMFormat(s string) (BOMFormat, error) {
	switch f := BOMFormat(strings.ToLower(s)); f {
	case BOMTSV, BOMHTML:
		return f, nil
	}
	return "", fmt.Errorf("unknown bom format %q: must be tsv or html", s)
}
