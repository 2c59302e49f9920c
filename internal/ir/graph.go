package ir

import (
	"sort"
	"strings"
)

// NodeKind is what a graph node depicts.
type NodeKind string

const (
	NodeConnector NodeKind = "connector"
	NodeFerrule   NodeKind = "ferrule"
	NodeCable     NodeKind = "cable"
)

// Attrs are layout attributes. Serializers emit them in key order.
type Attrs map[string]string

// Keys returns the attribute names sorted.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Node is one node declaration.
type Node struct {
	ID   string   `json:"id" yaml:"id"`
	Kind NodeKind `json:"kind" yaml:"kind"`

	// Ports lists the port names the label defines, in label order.
	Ports []string `json:"ports,omitempty" yaml:"ports,omitempty"`

	// HTML marks the label attribute as an HTML-like table rather than
	// a record label.
	HTML bool `json:"html,omitempty" yaml:"html,omitempty"`

	Attrs Attrs `json:"attrs" yaml:"attrs"`
}

// Endpoint addresses an edge end: a node, optionally a port on it, and
// optionally the compass side the edge attaches to.
type Endpoint struct {
	Node    string `json:"node" yaml:"node"`
	Port    string `json:"port,omitempty" yaml:"port,omitempty"`
	Compass string `json:"compass,omitempty" yaml:"compass,omitempty"`
}

// String renders the endpoint as node[:port][:compass].
func (e Endpoint) String() string {
	parts := []string{e.Node}
	if e.Port != "" {
		parts = append(parts, e.Port)
	}
	if e.Compass != "" {
		parts = append(parts, e.Compass)
	}
	return strings.Join(parts, ":")
}

// Edge is one edge declaration.
type Edge struct {
	From  Endpoint `json:"from" yaml:"from"`
	To    Endpoint `json:"to" yaml:"to"`
	Attrs Attrs    `json:"attrs" yaml:"attrs"`
}

// Graph is an ordered list of node and edge declarations plus the default
// attributes for the graph, its nodes and its edges.
type Graph struct {
	Name       string   `json:"name" yaml:"name"`
	Comments   []string `json:"comments,omitempty" yaml:"comments,omitempty"`
	GraphAttrs Attrs    `json:"graph_attrs" yaml:"graph_attrs"`
	NodeAttrs  Attrs    `json:"node_attrs" yaml:"node_attrs"`
	EdgeAttrs  Attrs    `json:"edge_attrs" yaml:"edge_attrs"`
	Nodes      []Node   `json:"nodes" yaml:"nodes"`
	Edges      []Edge   `json:"edges" yaml:"edges"`
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// canonical converts the graph to plain values for MarshalCanonical.
func (g *Graph) canonical() map[string]any {
	nodes := make([]any, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = map[string]any{
			"id":    n.ID,
			"kind":  string(n.Kind),
			"ports": strings2any(n.Ports),
			"html":  n.HTML,
			"attrs": attrs2any(n.Attrs),
		}
	}
	edges := make([]any, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = map[string]any{
			"from":  e.From.String(),
			"to":    e.To.String(),
			"attrs": attrs2any(e.Attrs),
		}
	}
	return map[string]any{
		"name":        g.Name,
		"graph_attrs": attrs2any(g.GraphAttrs),
		"node_attrs":  attrs2any(g.NodeAttrs),
		"edge_attrs":  attrs2any(g.EdgeAttrs),
		"nodes":       nodes,
		"edges":       edges,
	}
}

func attrs2any(a Attrs) map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func strings2any(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
