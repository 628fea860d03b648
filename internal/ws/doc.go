// Package ws serves conversions over WebSocket at /ws/convert.
//
// Hub.ServeHTTP upgrades the connection, sends a "ready" event carrying the
// table summary, then answers every text frame. A frame is either a bare
// query ("24 in to ft") or {"query": "..."}. Replies are JSON envelopes:
//
//	{"event": "result", "data": {...conversion...}}
//	{"event": "error",  "data": {"query": ..., "error": ..., "kind": ...}}
//
// Broadcast pushes an event to every connected client; the server uses it
// to announce "table_reloaded" after a successful hot reload. Run fans
// broadcasts out and closes all connections when its context is cancelled.
package ws
