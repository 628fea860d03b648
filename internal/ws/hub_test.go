package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ameliorater/unit-converter/internal/engine"
	"github.com/ameliorater/unit-converter/internal/unitgraph"
	wsHub "github.com/ameliorater/unit-converter/internal/ws"
)

const table = `
12 inches(in) = 1 foot(ft)
1 mile(mi) = 5280 feet
1 kilogram(kg) = 1000 grams(g)
`

// --- helpers ----------------------------------------------------------------

type envelope struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	g, err := unitgraph.BuildString(table, unitgraph.DefaultOptions())
	if err != nil {
		t.Fatalf("BuildString: %v", err)
	}
	return engine.New(g, engine.Options{MaxDistance: engine.DefaultMaxDistance})
}

// startHub starts a test HTTP server with the hub as its handler and runs
// the hub with a cancellable context. Returns the ws:// URL and the hub.
func startHub(t *testing.T) (wsURL string, hub *wsHub.Hub) {
	t.Helper()

	hub = wsHub.New(newEngine(t))
	ctx, cancel := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return "ws" + strings.TrimPrefix(srv.URL, "http"), hub
}

// dial connects a client and consumes the ready event.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	if m := readMessage(t, conn); m.Event != wsHub.EventReady {
		t.Fatalf("first event: got %q, want %q", m.Event, wsHub.EventReady)
	}
	return conn
}

// readMessage reads one envelope from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var m envelope
	if err := json.Unmarshal(msg, &m); err != nil {
		t.Fatalf("unmarshal %s: %v", msg, err)
	}
	return m
}

func ask(t *testing.T, conn *websocket.Conn, frame string) envelope {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	return readMessage(t, conn)
}

// waitCount polls hub.Count until it equals want.
func waitCount(t *testing.T, hub *wsHub.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Count: got %d, want %d", hub.Count(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// --- tests ------------------------------------------------------------------

func TestHub_ReadyEventCarriesTableSummary(t *testing.T) {
	wsURL, _ := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	m := readMessage(t, conn)
	if m.Event != wsHub.EventReady {
		t.Fatalf("event: got %q, want ready", m.Event)
	}
	if m.Data["units"] != float64(5) {
		t.Errorf("units: got %v, want 5", m.Data["units"])
	}
	if m.Data["loaded_at"] == nil || m.Data["loaded_at"] == "" {
		t.Error("loaded_at: missing")
	}
}

func TestHub_PlainQuery(t *testing.T) {
	wsURL, _ := startHub(t)
	conn := dial(t, wsURL)

	m := ask(t, conn, "24 in to ft")
	if m.Event != wsHub.EventResult {
		t.Fatalf("event: got %q, want result (%v)", m.Event, m.Data)
	}
	if m.Data["value"] != float64(2) {
		t.Errorf("value: got %v, want 2", m.Data["value"])
	}
	if m.Data["display"] != "2 foot" {
		t.Errorf("display: got %v", m.Data["display"])
	}
}

func TestHub_JSONQuery(t *testing.T) {
	wsURL, _ := startHub(t)
	conn := dial(t, wsURL)

	m := ask(t, conn, `{"query": "1 ft to in"}`)
	if m.Event != wsHub.EventResult {
		t.Fatalf("event: got %q, want result (%v)", m.Event, m.Data)
	}
	if m.Data["value"] != float64(12) {
		t.Errorf("value: got %v, want 12", m.Data["value"])
	}
}

func TestHub_ErrorsKeepConnectionOpen(t *testing.T) {
	wsURL, _ := startHub(t)
	conn := dial(t, wsURL)

	tests := []struct {
		frame string
		kind  string
	}{
		{"24 parsecs to ft", engine.OutcomeUnresolvedUnit},
		{"1 kg to mi", engine.OutcomeNoPath},
		{"x in to ft", engine.OutcomeInvalidQuantity},
		{`{"query": `, engine.OutcomeSyntax},
	}
	for _, tc := range tests {
		m := ask(t, conn, tc.frame)
		if m.Event != wsHub.EventError {
			t.Errorf("%q: event got %q, want error", tc.frame, m.Event)
			continue
		}
		if m.Data["kind"] != tc.kind {
			t.Errorf("%q: kind got %v, want %s", tc.frame, m.Data["kind"], tc.kind)
		}
	}

	// Still answering after the errors.
	if m := ask(t, conn, "1 mi to ft"); m.Data["value"] != float64(5280) {
		t.Errorf("after errors: got %v, want 5280", m.Data["value"])
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	wsURL, hub := startHub(t)

	conns := []*websocket.Conn{dial(t, wsURL), dial(t, wsURL)}
	waitCount(t, hub, 2)

	hub.Broadcast(wsHub.EventTableReloaded, map[string]int{"units": 9})

	for i, conn := range conns {
		m := readMessage(t, conn)
		if m.Event != wsHub.EventTableReloaded {
			t.Errorf("client %d: event got %q, want table_reloaded", i, m.Event)
		}
		if m.Data["units"] != float64(9) {
			t.Errorf("client %d: units got %v, want 9", i, m.Data["units"])
		}
	}
}

func TestHub_CountDecreasesOnDisconnect(t *testing.T) {
	wsURL, hub := startHub(t)

	conn := dial(t, wsURL)
	waitCount(t, hub, 1)

	conn.Close()
	waitCount(t, hub, 0)
}

func TestHub_ContextCancelClosesConnections(t *testing.T) {
	hub := wsHub.New(newEngine(t))
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer srv.Close()

	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	conn := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	waitCount(t, hub, 1)

	cancel()
	<-done

	if n := hub.Count(); n != 0 {
		t.Errorf("Count after cancel: got %d, want 0", n)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("ReadMessage after cancel: got nil error, want close")
	}
}
