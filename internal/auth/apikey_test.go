package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
})

func call(t *testing.T, h http.Handler, target, header, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if key != "" {
		req.Header.Set(header, key)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAPIKey_ModeNone_PassesThrough(t *testing.T) {
	h := APIKey("none", "x-api-key", "secret")(okHandler)
	if w := call(t, h, "/api/v1/units", "", ""); w.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", w.Code)
	}
}

func TestAPIKey_EmptyKey_PassesThrough(t *testing.T) {
	h := APIKey("apikey", "x-api-key", "")(okHandler)
	if w := call(t, h, "/api/v1/units", "", ""); w.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", w.Code)
	}
}

func TestAPIKey(t *testing.T) {
	h := APIKey("apikey", "x-api-key", "supersecret")(okHandler)

	tests := []struct {
		name   string
		target string
		header string
		key    string
		want   int
	}{
		{"correct key", "/api/v1/units", "x-api-key", "supersecret", http.StatusOK},
		{"header is case-insensitive", "/api/v1/units", "X-Api-Key", "supersecret", http.StatusOK},
		{"wrong key", "/api/v1/units", "x-api-key", "wrong", http.StatusUnauthorized},
		{"missing key", "/api/v1/units", "", "", http.StatusUnauthorized},
		{"wrong header", "/api/v1/units", "authorization", "supersecret", http.StatusUnauthorized},
		{"query param", "/ws/convert?api_key=supersecret", "", "", http.StatusOK},
		{"wrong query param", "/ws/convert?api_key=nope", "", "", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := call(t, h, tc.target, tc.header, tc.key)
			if w.Code != tc.want {
				t.Errorf("status: got %d, want %d", w.Code, tc.want)
			}
			if tc.want == http.StatusUnauthorized {
				if ct := w.Header().Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type: got %q, want application/json", ct)
				}
			}
		})
	}
}
