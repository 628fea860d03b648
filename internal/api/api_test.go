package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ameliorater/unit-converter/internal/api"
	"github.com/ameliorater/unit-converter/internal/engine"
	"github.com/ameliorater/unit-converter/internal/unitgraph"
)

// --- test helpers -----------------------------------------------------------

const table = `
12 inches(in) = 1 foot(ft)
1 mile(mi) = 5280 feet
1 hour(hr) = 60 minutes(min)
1 kilogram(kg) = 1000 grams(g)
`

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	g, err := unitgraph.BuildString(table, unitgraph.DefaultOptions())
	if err != nil {
		t.Fatalf("BuildString: %v", err)
	}
	return api.New(engine.New(g, engine.Options{MaxDistance: engine.DefaultMaxDistance}))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

type errorBody struct {
	Error      string   `json:"error"`
	Kind       string   `json:"kind"`
	Candidates []string `json:"candidates"`
}

// --- health -----------------------------------------------------------------

func TestHealth(t *testing.T) {
	rr := get(t, newHandler(t), "/api/v1/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}

	var resp api.HealthResponse
	decode(t, rr, &resp)
	if resp.Status != "ok" {
		t.Errorf("status: got %q", resp.Status)
	}
	if resp.Units != 7 {
		t.Errorf("units: got %d, want 7", resp.Units)
	}
	if resp.Edges != 8 {
		t.Errorf("edges: got %d, want 8", resp.Edges)
	}
	if resp.LoadedAt == "" {
		t.Error("loaded_at is empty")
	}
}

// --- units ------------------------------------------------------------------

func TestListUnits(t *testing.T) {
	rr := get(t, newHandler(t), "/api/v1/units")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	var units []api.UnitResponse
	decode(t, rr, &units)

	want := []api.UnitResponse{
		{Name: "inche", Abbreviation: "in", Display: "inche(in)"},
		{Name: "foot", Abbreviation: "ft", Display: "foot(ft)"},
		{Name: "mile", Abbreviation: "mi", Display: "mile(mi)"},
		{Name: "hour", Abbreviation: "hr", Display: "hour(hr)"},
		{Name: "minute", Abbreviation: "min", Display: "minute(min)"},
		{Name: "kilogram", Abbreviation: "kg", Display: "kilogram(kg)"},
		{Name: "gram", Abbreviation: "g", Display: "gram(g)"},
	}
	if diff := cmp.Diff(want, units); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
}

func TestGetUnit(t *testing.T) {
	rr := get(t, newHandler(t), "/api/v1/units/feet")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}

	var resp api.UnitDetailResponse
	decode(t, rr, &resp)
	if resp.Name != "foot" {
		t.Errorf("name: got %q, want foot", resp.Name)
	}
	// Both edges out of foot are synthesized reverses, in table order.
	want := []api.ConversionResponse{
		{To: "inche", Factor: 12},
		{To: "mile", Factor: 1.0 / 5280},
	}
	if diff := cmp.Diff(want, resp.Conversions, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("conversions mismatch (-want +got):\n%s", diff)
	}
}

func TestGetUnit_NotFound(t *testing.T) {
	rr := get(t, newHandler(t), "/api/v1/units/parsec")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rr.Code)
	}
	var body errorBody
	decode(t, rr, &body)
	if body.Kind != engine.OutcomeUnresolvedUnit {
		t.Errorf("kind: got %q", body.Kind)
	}
}

// --- convert ----------------------------------------------------------------

func TestConvert_GET(t *testing.T) {
	rr := get(t, newHandler(t), "/api/v1/convert?q=24+in+to+ft")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}

	var resp api.ConvertResponse
	decode(t, rr, &resp)
	if resp.Value != 2 {
		t.Errorf("value: got %v, want 2", resp.Value)
	}
	if resp.To != "foot" {
		t.Errorf("to: got %q, want foot", resp.To)
	}
	if resp.Display != "2 foot" {
		t.Errorf("display: got %q, want %q", resp.Display, "2 foot")
	}
	if resp.Query != "24 in to ft" {
		t.Errorf("query: got %q", resp.Query)
	}
}

func TestConvert_POST(t *testing.T) {
	rr := post(t, newHandler(t), "/api/v1/convert", `{"query":"1 mi to in"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}

	var resp api.ConvertResponse
	decode(t, rr, &resp)
	if resp.Value != 63360 {
		t.Errorf("value: got %v, want 63360", resp.Value)
	}
	if diff := cmp.Diff([]string{"mile", "foot", "inche"}, resp.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_Errors(t *testing.T) {
	h := newHandler(t)

	tests := []struct {
		name   string
		path   string
		status int
		kind   string
	}{
		{"missing query", "/api/v1/convert", http.StatusBadRequest, ""},
		{"bad number", "/api/v1/convert?q=x+in+to+ft", http.StatusBadRequest, engine.OutcomeInvalidQuantity},
		{"bad shape", "/api/v1/convert?q=24+in+ft", http.StatusBadRequest, engine.OutcomeSyntax},
		{"unknown unit", "/api/v1/convert?q=24+parsecs+to+ft", http.StatusNotFound, engine.OutcomeUnresolvedUnit},
		{"no path", "/api/v1/convert?q=1+kg+to+mi", http.StatusUnprocessableEntity, engine.OutcomeNoPath},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := get(t, h, tc.path)
			if rr.Code != tc.status {
				t.Fatalf("status: got %d, want %d (body: %s)", rr.Code, tc.status, rr.Body.String())
			}
			var body errorBody
			decode(t, rr, &body)
			if body.Error == "" {
				t.Error("error message is empty")
			}
			if body.Kind != tc.kind {
				t.Errorf("kind: got %q, want %q", body.Kind, tc.kind)
			}
		})
	}
}

func TestConvert_BadJSON(t *testing.T) {
	rr := post(t, newHandler(t), "/api/v1/convert", `{"query":`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

// --- methods ----------------------------------------------------------------

func TestMethodNotAllowed(t *testing.T) {
	h := newHandler(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/health"},
		{http.MethodDelete, "/api/v1/units"},
		{http.MethodPut, "/api/v1/units/foot"},
		{http.MethodPut, "/api/v1/convert"},
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: got %d, want 405", tc.method, tc.path, rr.Code)
		}
	}
}

func TestStatusFor(t *testing.T) {
	if got := api.StatusFor(engine.OutcomeError); got != http.StatusInternalServerError {
		t.Errorf("StatusFor(error): got %d, want 500", got)
	}
	if got := api.StatusFor(engine.OutcomeOK); got != http.StatusOK {
		t.Errorf("StatusFor(ok): got %d, want 200", got)
	}
}

func TestConvert_Overflow(t *testing.T) {
	rr := get(t, newHandler(t), "/api/v1/convert?q=1e308+mi+to+in")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422 (body: %s)", rr.Code, rr.Body.String())
	}
}

func TestConvert_ZeroAlongOverflowedPath(t *testing.T) {
	g, err := unitgraph.BuildString("1 galaxy(gx) = 1e200 stars(st)\n1 star = 1e200 atoms(at)", unitgraph.DefaultOptions())
	if err != nil {
		t.Fatalf("BuildString: %v", err)
	}
	h := api.New(engine.New(g, engine.Options{MaxDistance: engine.DefaultMaxDistance}))

	rr := get(t, h, "/api/v1/convert?q=0+gx+to+at")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422 (body: %s)", rr.Code, rr.Body.String())
	}
	var body errorBody
	decode(t, rr, &body)
	if body.Kind != engine.OutcomeError {
		t.Errorf("kind: got %q, want %q", body.Kind, engine.OutcomeError)
	}
}
