package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/espdash/internal/refresh"
	"github.com/muurk/espdash/internal/render"
)

const fragment = `<div class="section"><h2>Uptime</h2><div class="info-grid">` +
	`<div class="info-item"><div class="info-label">Uptime</div><div class="info-value" id="uptime">0d 0h 1m</div></div>` +
	`</div></div>`

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	srv, err := New(&Config{Lang: "fr", Device: "http://esp32.local", Placeholder: "Chargement..."})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.hub.Close()
		ts.Close()
	})
	return srv, ts
}

func TestPage_UptimeNodeExistsOnlyAfterFragment(t *testing.T) {
	page := NewPage("loading", nil)

	if _, ok := page.Lookup(render.UptimeID); ok {
		t.Fatal("uptime node should not exist before the fragment is rendered")
	}
	if _, ok := page.Lookup("unknown"); ok {
		t.Fatal("unknown ids should not resolve")
	}

	container, ok := page.Lookup(render.ContainerID)
	if !ok {
		t.Fatal("container node should always exist")
	}
	container.SetInnerHTML(fragment)

	uptime, ok := page.Lookup(render.UptimeID)
	if !ok {
		t.Fatal("uptime node should exist after the fragment is rendered")
	}
	uptime.SetText("0d 0h 2m")

	if got := page.Uptime(); got != "0d 0h 2m" {
		t.Errorf("Uptime() = %q, want %q", got, "0d 0h 2m")
	}

	// An error block replaces the fragment and removes the uptime node
	container.SetInnerHTML(`<div class="section"><p>Erreur: boom</p></div>`)
	if _, ok := page.Lookup(render.UptimeID); ok {
		t.Error("uptime node should disappear with the fragment")
	}
	if got := page.Uptime(); got != "" {
		t.Errorf("Uptime() after re-render = %q, want empty", got)
	}
}

func TestPage_ContainerSetTextEscapes(t *testing.T) {
	page := NewPage("", nil)
	node, _ := page.Lookup(render.ContainerID)
	node.SetText("<b>")

	if got := page.Container(); got != "&lt;b&gt;" {
		t.Errorf("Container() = %q, want %q", got, "&lt;b&gt;")
	}
}

func TestPage_BroadcastsWrites(t *testing.T) {
	var patches []Patch
	page := NewPage("", func(p Patch) { patches = append(patches, p) })

	container, _ := page.Lookup(render.ContainerID)
	container.SetInnerHTML(fragment)
	uptime, _ := page.Lookup(render.UptimeID)
	uptime.SetText("0d 0h 3m")

	want := []Patch{
		{ID: render.ContainerID, Op: OpHTML, Value: fragment},
		{ID: render.UptimeID, Op: OpText, Value: "0d 0h 3m"},
	}
	if len(patches) != len(want) {
		t.Fatalf("got %d patches, want %d", len(patches), len(want))
	}
	for i := range want {
		if patches[i] != want[i] {
			t.Errorf("patch[%d] = %+v, want %+v", i, patches[i], want[i])
		}
	}
}

func TestPage_Snapshot(t *testing.T) {
	page := NewPage("loading", nil)

	snap := page.Snapshot()
	if len(snap) != 1 || snap[0].Value != "loading" {
		t.Fatalf("Snapshot() before load = %+v", snap)
	}

	container, _ := page.Lookup(render.ContainerID)
	container.SetInnerHTML(fragment)
	uptime, _ := page.Lookup(render.UptimeID)
	uptime.SetText("1d 0h 0m")

	snap = page.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() = %d patches, want 2", len(snap))
	}
	if snap[1].ID != render.UptimeID || snap[1].Value != "1d 0h 0m" {
		t.Errorf("Snapshot()[1] = %+v", snap[1])
	}
}

func TestHandlePage(t *testing.T) {
	srv, ts := newTestServer(t)

	node, _ := srv.Page().Lookup(render.ContainerID)
	node.SetInnerHTML(fragment)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	page := string(body)

	checks := []string{
		`<html lang="fr">`,
		`<div id="overviewContainer">` + fragment + `</div>`,
		`<title>ESP32 Diagnostic</title>`,
	}
	for _, want := range checks {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHandlePage_NotFound(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/missing")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		stats      StatsFunc
		wantStatus string
		wantError  string
	}{
		{
			name:       "no loop attached",
			wantStatus: "ok",
		},
		{
			name: "healthy",
			stats: func() refresh.Stats {
				return refresh.Stats{Ticks: 4, Applied: 4, LastSuccess: time.Now()}
			},
			wantStatus: "ok",
		},
		{
			name: "failing",
			stats: func() refresh.Stats {
				return refresh.Stats{Ticks: 2, Failures: 2, ConsecutiveFailures: 2, LastError: errors.New("timeout")}
			},
			wantStatus: "degraded",
			wantError:  "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, ts := newTestServer(t)
			srv.SetStatsFunc(tt.stats)

			resp, err := http.Get(ts.URL + "/healthz")
			if err != nil {
				t.Fatalf("GET /healthz error = %v", err)
			}
			defer resp.Body.Close()

			var health healthResponse
			if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if health.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", health.Status, tt.wantStatus)
			}
			if health.LastError != tt.wantError {
				t.Errorf("LastError = %q, want %q", health.LastError, tt.wantError)
			}
			if health.Device != "http://esp32.local" {
				t.Errorf("Device = %q", health.Device)
			}
		})
	}
}

func readPatch(t *testing.T, conn *websocket.Conn) Patch {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var p Patch
	if err := conn.ReadJSON(&p); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return p
}

func TestWebSocket_SnapshotThenBroadcast(t *testing.T) {
	srv, ts := newTestServer(t)

	container, _ := srv.Page().Lookup(render.ContainerID)
	container.SetInnerHTML(fragment)
	uptime, _ := srv.Page().Lookup(render.UptimeID)
	uptime.SetText("0d 0h 5m")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if p := readPatch(t, conn); p.ID != render.ContainerID || p.Op != OpHTML {
		t.Errorf("first patch = %+v, want container html", p)
	}
	if p := readPatch(t, conn); p.ID != render.UptimeID || p.Value != "0d 0h 5m" {
		t.Errorf("second patch = %+v, want current uptime", p)
	}

	// Wait for registration before broadcasting
	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	uptime.SetText("0d 0h 6m")
	if p := readPatch(t, conn); p.ID != render.UptimeID || p.Op != OpText || p.Value != "0d 0h 6m" {
		t.Errorf("broadcast patch = %+v", p)
	}
}

func TestWebSocket_WriteDuringHandshakeReachesClient(t *testing.T) {
	hub := NewHub()
	page := NewPage(`<div class="loading">Chargement...</div>`, hub.Broadcast)
	container, _ := page.Lookup(render.ContainerID)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot := page.Snapshot
		// The overview lands after the handler started but before the client is registered
		container.SetInnerHTML(fragment)
		hub.ServeWS(w, r, snapshot)
	}))
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if p := readPatch(t, conn); p.ID != render.ContainerID || p.Value != fragment {
		t.Fatalf("first patch = %+v, want the loaded overview", p)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	uptime, ok := page.Lookup(render.UptimeID)
	if !ok {
		t.Fatal("uptime node missing after overview write")
	}
	uptime.SetText("0d 0h 2m")
	if p := readPatch(t, conn); p.ID != render.UptimeID || p.Value != "0d 0h 2m" {
		t.Errorf("broadcast patch = %+v, want live uptime", p)
	}
}

func TestServer_StartStopsOnContextCancel(t *testing.T) {
	srv, err := New(&Config{Host: "127.0.0.1", Port: 0})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	// New defaults a zero port, so bind an ephemeral one explicitly
	srv.config.Port = 0
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}

func TestNewTLSConfig_MissingPaths(t *testing.T) {
	if _, err := NewTLSConfig("", "key.pem"); err == nil {
		t.Error("expected error for missing certificate path")
	}
	if _, err := New(&Config{CertPath: "/nonexistent/cert.pem", KeyPath: "/nonexistent/key.pem"}); err == nil {
		t.Error("expected error for unreadable key pair")
	}
}
