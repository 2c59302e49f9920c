package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/testutil"
)

func sampleGraph() *ir.Graph {
	return &ir.Graph{
		Name:       "demo",
		Comments:   []string{"Graph generated by loom"},
		GraphAttrs: ir.Attrs{"rankdir": "LR", "ranksep": "2"},
		NodeAttrs:  ir.Attrs{"shape": "record"},
		EdgeAttrs:  ir.Attrs{"style": "bold"},
		Nodes: []ir.Node{
			{ID: "X1", Kind: ir.NodeConnector, Ports: []string{"p1r"}, Attrs: ir.Attrs{"label": "X1|{{<p1r>1}}"}},
			{ID: "W1", Kind: ir.NodeCable, Ports: []string{"w1"}, HTML: true, Attrs: ir.Attrs{
				"label": `<table><tr><td port="w1">BK</td></tr></table>`,
				"shape": "box",
			}},
		},
		Edges: []ir.Edge{
			{
				From:  ir.Endpoint{Node: "X1", Port: "p1r", Compass: "e"},
				To:    ir.Endpoint{Node: "W1", Port: "w1", Compass: "w"},
				Attrs: ir.Attrs{"color": "#000000:#000000:#000000"},
			},
		},
	}
}

type declaration struct {
	node  string
	edge  string
	attrs ir.Attrs
}

type recorder struct {
	calls []declaration
}

func (r *recorder) DeclareNode(id string, attrs ir.Attrs) {
	r.calls = append(r.calls, declaration{node: id, attrs: attrs})
}

func (r *recorder) DeclareEdge(from, to ir.Endpoint, attrs ir.Attrs) {
	r.calls = append(r.calls, declaration{edge: from.String() + " " + to.String(), attrs: attrs})
}

func TestDeclare(t *testing.T) {
	g := sampleGraph()
	r := &recorder{}

	Declare(g, r)

	require.Len(t, r.calls, 3)
	assert.Equal(t, "X1", r.calls[0].node)
	assert.Equal(t, "X1|{{<p1r>1}}", r.calls[0].attrs["label"])
	assert.Equal(t, "W1", r.calls[1].node)
	assert.Equal(t, `<<table><tr><td port="w1">BK</td></tr></table>>`, r.calls[1].attrs["label"])
	assert.Equal(t, "box", r.calls[1].attrs["shape"])
	assert.Equal(t, "X1:p1r:e W1:w1:w", r.calls[2].edge)

	// The graph keeps its unwrapped label.
	assert.Equal(t, `<table><tr><td port="w1">BK</td></tr></table>`, g.Nodes[1].Attrs["label"])
}

func TestWriteDOT_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, sampleGraph()))

	testutil.AssertGolden(t, "demo.gv", buf.Bytes())
}

func TestWriteDOT_Quoting(t *testing.T) {
	g := &ir.Graph{
		Nodes: []ir.Node{{ID: `say "hi"`, Attrs: ir.Attrs{"label": "a\nb"}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, g))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "graph {\n"), out)
	assert.Contains(t, out, "\tgraph\n\tnode\n\tedge\n")
	assert.Contains(t, out, `"say \"hi\"" [label="a\nb"]`)
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n == 0 {
		return 0, errors.New("disk full")
	}
	w.n--
	return len(p), nil
}

func TestWriteDOT_WriteError(t *testing.T) {
	err := WriteDOT(&failingWriter{n: 3}, sampleGraph())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleGraph()))

	assert.Contains(t, buf.String(), `"label": "<table><tr><td port=\"w1\">BK</td></tr></table>"`)
	assert.NotContains(t, buf.String(), `\u003c`)

	var back ir.Graph
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, *sampleGraph(), back)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleGraph()))

	assert.Contains(t, buf.String(), "rankdir: LR")

	var back ir.Graph
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, *sampleGraph(), back)
}

func TestWriteGraph(t *testing.T) {
	for _, f := range []GraphFormat{GraphDOT, GraphJSON, GraphYAML} {
		var buf bytes.Buffer
		require.NoError(t, WriteGraph(&buf, sampleGraph(), f), f)
		assert.NotEmpty(t, buf.String(), f)
	}

	err := WriteGraph(&bytes.Buffer{}, sampleGraph(), "svg")
	assert.Error(t, err)
}

func TestParseFormats(t *testing.T) {
	f, err := ParseGraphFormat("DOT")
	require.NoError(t, err)
	assert.Equal(t, GraphDOT, f)
	assert.Equal(t, ".gv", f.Extension())
	assert.Equal(t, ".graph.json", GraphJSON.Extension())

	_, err = ParseGraphFormat("png")
	assert.Error(t, err)

	b, err := ParseBOMFormat("tsv")
	require.NoError(t, err)
	assert.Equal(t, BOMTSV, b)
	assert.Equal(t, ".bom.tsv", b.Extension())
	assert.Equal(t, ".html", BOMHTML.Extension())

	_, err = ParseBOMFormat("csv")
	assert.Error(t, err)
}
