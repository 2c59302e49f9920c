package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/loom/internal/ir"
)

// WriteDOT writes g as an undirected Graphviz graph.
func WriteDOT(w io.Writer, g *ir.Graph) error {
	d := &dotWriter{w: w}

	for _, c := range g.Comments {
		d.printf("// %s\n", c)
	}
	if g.Name != "" {
		d.printf("graph %s {\n", quoteDOT(g.Name))
	} else {
		d.printf("graph {\n")
	}
	d.printf("\tgraph%s\n", attrList(g.GraphAttrs))
	d.printf("\tnode%s\n", attrList(g.NodeAttrs))
	d.printf("\tedge%s\n", attrList(g.EdgeAttrs))

	Declare(g, d)

	d.printf("}\n")
	return d.err
}

// dotWriter is a Renderer that emits DOT statements. The first write
// error sticks and later writes are skipped.
type dotWriter struct {
	w   io.Writer
	err error
}

func (d *dotWriter) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func (d *dotWriter) DeclareNode(id string, attrs ir.Attrs) {
	d.printf("\t%s%s\n", quoteDOT(id), attrList(attrs))
}

func (d *dotWriter) DeclareEdge(from, to ir.Endpoint, attrs ir.Attrs) {
	d.printf("\t%s -- %s%s\n", dotEndpoint(from), dotEndpoint(to), attrList(attrs))
}

func dotEndpoint(e ir.Endpoint) string {
	s := quoteDOT(e.Node)
	if e.Port != "" {
		s += ":" + quoteDOT(e.Port)
	}
	if e.Compass != "" {
		s += ":" + e.Compass
	}
	return s
}

// attrList renders " [k=v ...]" in key order, or "" when attrs is empty.
func attrList(attrs ir.Attrs) string {
	if len(attrs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(attrs))
	for _, k := range attrs.Keys() {
		parts = append(parts, k+"="+dotValue(attrs[k]))
	}
	return " [" + strings.Join(parts, " ") + "]"
}

// dotValue quotes v unless it is an HTML-like label.
func dotValue(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">") {
		return v
	}
	return quoteDOT(v)
}

var dotEscaper = strings.NewReplacer(`"`, `\"`, "\n", `\n`)

func quoteDOT(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
