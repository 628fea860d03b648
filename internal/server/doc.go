// Package server assembles unitconv-server: the REST API, the WebSocket hub
// and /metrics on one HTTP listener, plus table hot reload.
//
// A reload builds a new graph with table.Watch, installs it with
// engine.Swap, updates the table gauges and broadcasts "table_reloaded" to
// WebSocket clients. A failed reload only bumps the error counter.
package server
