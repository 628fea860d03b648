// Package table loads equivalence tables from disk and keeps them fresh.
//
// Load(path, opts) opens the file and builds a *unitgraph.Graph from it.
// Watch(ctx, path, opts, onChange) rebuilds the graph each time the file is
// written and hands the new graph to onChange. A rebuild that fails leaves
// the caller's current graph in place.
package table
