package api

import "github.com/ameliorater/unit-converter/internal/engine"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Units    int    `json:"units"`
	Edges    int    `json:"edges"`
	Skipped  int    `json:"skipped_lines"`
	LoadedAt string `json:"loaded_at"` // RFC3339
}

// UnitResponse is one entry of GET /api/v1/units.
type UnitResponse struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Display      string `json:"display"`
}

// ConversionResponse is one direct edge out of a unit.
type ConversionResponse struct {
	To     string  `json:"to"`
	Factor float64 `json:"factor"`
}

// UnitDetailResponse is the payload for GET /api/v1/units/{name}.
type UnitDetailResponse struct {
	UnitResponse
	Conversions []ConversionResponse `json:"conversions"`
}

// ConvertRequest is the body of POST /api/v1/convert.
type ConvertRequest struct {
	Query string `json:"query"`
}

// ConvertResponse is the payload of a successful conversion.
type ConvertResponse struct {
	Query string `json:"query"`
	*engine.Result
	Display string `json:"display"`
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`

	// Kind is the engine outcome (syntax, unresolved_unit, no_path, ...).
	Kind string `json:"kind,omitempty"`

	// Candidates lists the units an ambiguous token matched.
	Candidates []string `json:"candidates,omitempty"`
}
