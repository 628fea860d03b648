// Package api implements the HTTP REST API for unitconv-server.
//
// New(engine) returns an http.Handler that serves:
//
//	GET  /api/v1/health        unit/edge counts, skipped lines, loaded_at
//	GET  /api/v1/units         every unit in table order ([]UnitResponse)
//	GET  /api/v1/units/{name}  one unit and its direct conversions; 404 if unknown
//	GET  /api/v1/convert?q=... answer a query
//	POST /api/v1/convert       same, body {"query": "..."}
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for unsupported methods
//
// Conversion failures map to status codes by kind: 400 for a bad number or
// query shape, 404 for an unknown unit, 422 when two units are not connected.
// JSON types are defined in types.go. No external HTTP framework is used.
package api
