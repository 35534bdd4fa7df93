package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/espdash/internal/logging"
	"github.com/muurk/espdash/internal/refresh"
	"github.com/muurk/espdash/internal/render"
)

// pageTemplate is the dashboard shell. The container is seeded with the
// current fragment and the script applies patches pushed over /ws.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; background: #0d1117; color: #e6edf3; margin: 0; }
        .container { max-width: 960px; margin: 0 auto; padding: 2rem; }
        h1 { font-size: 1.5rem; margin-bottom: 1.5rem; }
        .section { background: #161b22; border: 1px solid #30363d; border-radius: 8px; padding: 1rem 1.5rem; margin-bottom: 1rem; }
        .section h2 { font-size: 1.1rem; margin: 0 0 0.75rem 0; color: #58a6ff; }
        .info-grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(220px, 1fr)); gap: 0.75rem; }
        .info-label { color: #8b949e; font-size: 0.85rem; }
        .info-value { font-family: monospace; font-size: 1rem; }
        .loading { color: #8b949e; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <div id="{{.ContainerID}}">{{.Container}}</div>
    </div>
    <script>
    (function () {
        var scheme = location.protocol === 'https:' ? 'wss:' : 'ws:';
        function connect() {
            var ws = new WebSocket(scheme + '//' + location.host + '/ws');
            ws.onmessage = function (ev) {
                var p = JSON.parse(ev.data);
                var el = document.getElementById(p.id);
                if (!el) { return; }
                if (p.op === 'html') { el.innerHTML = p.value; } else { el.textContent = p.value; }
            };
            ws.onclose = function () { setTimeout(connect, 2000); };
        }
        connect();
    })();
    </script>
</body>
</html>
`))

type pageData struct {
	Lang        string
	Title       string
	ContainerID string
	// Container is produced by render.Builder, which escapes every device value
	Container template.HTML
}

// healthResponse is the /healthz body
type healthResponse struct {
	Status              string `json:"status"`
	Device              string `json:"device"`
	Clients             int    `json:"clients"`
	Ticks               uint64 `json:"ticks"`
	Applied             uint64 `json:"applied"`
	Stale               uint64 `json:"stale"`
	Failures            uint64 `json:"failures"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	LastError           string `json:"last_error,omitempty"`
	LastSuccess         string `json:"last_success,omitempty"`
	Uptime              string `json:"uptime,omitempty"`
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return logRequests(mux)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := pageData{
		Lang:        s.config.Lang,
		Title:       s.config.Title,
		ContainerID: render.ContainerID,
		Container:   template.HTML(s.page.Container()), //nolint:gosec // fragment values are escaped by render.Escape
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, data); err != nil {
		logging.Error("Failed to render dashboard page", zap.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r, s.page.Snapshot)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Device:  s.config.Device,
		Clients: s.hub.Len(),
		Uptime:  s.page.Uptime(),
	}

	if s.stats != nil {
		st := s.stats()
		resp.Ticks = st.Ticks
		resp.Applied = st.Applied
		resp.Stale = st.Stale
		resp.Failures = st.Failures
		resp.ConsecutiveFailures = st.ConsecutiveFailures
		if st.LastError != nil {
			resp.LastError = st.LastError.Error()
		}
		if !st.LastSuccess.IsZero() {
			resp.LastSuccess = st.LastSuccess.UTC().Format(time.RFC3339)
		}
		if st.ConsecutiveFailures > 0 {
			resp.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error("Failed to encode health response", zap.Error(err))
	}
}

// StatsFunc reports refresh loop counters for /healthz
type StatsFunc func() refresh.Stats

// statusRecorder captures the response code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status)
	})
}
