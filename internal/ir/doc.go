// Package ir holds the output representation shared by the graph builder,
// the BOM aggregator and the serializers: graph nodes and edges, BOM line
// items and tables, and their canonical JSON form and content hashes.
//
// ir imports nothing internal. All JSON and YAML tags use snake_case.
package ir
