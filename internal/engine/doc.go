// Package engine ties query parsing, name resolution and factor lookup
// together behind one thread-safe facade shared by the prompt, the REST API
// and the WebSocket endpoint.
//
// The engine holds the current *unitgraph.Graph. A table change is picked up
// by building a new graph and calling Swap; in-flight conversions keep the
// graph they started with.
//
// Query tokens are resolved in two steps: the word as typed (lower-cased)
// must match exactly, otherwise its singular form is resolved with fuzzy
// matching up to Options.MaxDistance edits.
package engine
