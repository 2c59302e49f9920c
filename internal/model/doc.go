// Package model holds the harness entity model: connectors, cables (and
// bundles), the wire-level connections inside cables, and the Harness
// aggregate that owns them.
//
// Lifecycle:
//
//  1. Declaration: DeclareConnector / DeclareCable validate configuration and
//     derive fields (pincount from pinout, colours from wirecount and palette).
//  2. Resolution: AddConnection and AddLoop append connections and loops and
//     record which connector pins and sides are in use.
//  3. Output: the graph builder and BOM aggregator only read the harness.
//
// Nothing in this package is safe for concurrent mutation. After resolution
// completes the harness may be read from several goroutines.
package model
