package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/ameliorater/unit-converter/internal/engine"
	"github.com/ameliorater/unit-converter/internal/unitgraph"
)

// maxBodyBytes bounds POST /api/v1/convert bodies.
const maxBodyBytes = 1 << 16

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	eng *engine.Engine
	mux *http.ServeMux
}

// New creates a Handler wired to eng and registers all routes.
func New(eng *engine.Engine) http.Handler {
	h := &Handler{eng: eng, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/units", h.listUnits)
	h.mux.HandleFunc("/api/v1/units/", h.getUnit) // subtree, extracts {name}
	h.mux.HandleFunc("/api/v1/convert", h.convert)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jsonResp(w, http.StatusOK, BuildHealth(h.eng))
}

// listUnits returns GET /api/v1/units.
func (h *Handler) listUnits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	units := h.eng.Units()
	out := make([]UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, toUnitResponse(u))
	}
	jsonResp(w, http.StatusOK, out)
}

// getUnit returns GET /api/v1/units/{name}. The name is resolved like a
// query token, so "feet" and "ft" both find foot.
func (h *Handler) getUnit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/v1/units/")
	if name == "" {
		h.listUnits(w, r)
		return
	}

	g := h.eng.Graph()
	u, err := h.eng.LookupIn(g, name)
	if err != nil {
		writeConvertErr(w, err)
		return
	}

	edges := g.Neighbors(u)
	resp := UnitDetailResponse{
		UnitResponse: toUnitResponse(u),
		Conversions:  make([]ConversionResponse, 0, len(edges)),
	}
	for _, e := range edges {
		resp.Conversions = append(resp.Conversions, ConversionResponse{To: e.To.Name(), Factor: e.Factor})
	}
	jsonResp(w, http.StatusOK, resp)
}

// convert answers GET /api/v1/convert?q=... and POST /api/v1/convert.
func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	var q string
	switch r.Method {
	case http.MethodGet:
		q = r.URL.Query().Get("q")
	case http.MethodPost:
		var req ConvertRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			jsonErr(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		q = req.Query
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if strings.TrimSpace(q) == "" {
		jsonErr(w, http.StatusBadRequest, "query is required")
		return
	}

	res, err := h.eng.Convert(q)
	if err != nil {
		slog.Debug("api: conversion failed", "query", q, "err", err)
		writeConvertErr(w, err)
		return
	}
	if !representable(res) {
		jsonResp(w, http.StatusUnprocessableEntity, errorResponse{Error: "result out of range", Kind: engine.OutcomeError})
		return
	}
	jsonResp(w, http.StatusOK, ConvertResponse{Query: q, Result: res, Display: res.String()})
}

// --- helpers ----------------------------------------------------------------

// representable reports whether res survives JSON encoding. A path whose
// factor overflowed yields ±Inf, or NaN for a zero quantity.
func representable(res *engine.Result) bool {
	for _, v := range []float64{res.Factor, res.Raw, res.Value} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// BuildHealth summarizes the table eng is serving. The WebSocket hub sends
// the same payload on connect and after every reload.
func BuildHealth(eng *engine.Engine) HealthResponse {
	g := eng.Graph()
	return HealthResponse{
		Status:   "ok",
		Units:    g.Len(),
		Edges:    g.EdgeCount(),
		Skipped:  g.Skipped(),
		LoadedAt: eng.LoadedAt().UTC().Format(time.RFC3339),
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// writeConvertErr maps an engine error to its status code and body.
func writeConvertErr(w http.ResponseWriter, err error) {
	kind := engine.Outcome(err)
	resp := errorResponse{Error: err.Error(), Kind: kind}

	var ue *unitgraph.UnresolvedError
	if errors.As(err, &ue) {
		resp.Candidates = ue.Candidates
	}
	jsonResp(w, StatusFor(kind), resp)
}

// StatusFor maps an engine outcome to an HTTP status code.
func StatusFor(outcome string) int {
	switch outcome {
	case engine.OutcomeOK:
		return http.StatusOK
	case engine.OutcomeInvalidQuantity, engine.OutcomeSyntax:
		return http.StatusBadRequest
	case engine.OutcomeUnresolvedUnit:
		return http.StatusNotFound
	case engine.OutcomeNoPath:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func toUnitResponse(u *unitgraph.Unit) UnitResponse {
	abbrev, _ := u.Abbrev()
	return UnitResponse{Name: u.Name(), Abbreviation: abbrev, Display: u.String()}
}
