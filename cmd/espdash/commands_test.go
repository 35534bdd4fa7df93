package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/muurk/espdash/internal/config"
	"github.com/muurk/espdash/internal/deviceapi"
	"github.com/muurk/espdash/internal/discovery"
)

// discovered turns a test server address into an mDNS result
func discovered(t *testing.T, server *httptest.Server) *discovery.Device {
	t.Helper()

	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(server.URL, "http://"))
	if err != nil {
		t.Fatalf("SplitHostPort() error = %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return &discovery.Device{Hostname: "esp32-diagnostic.local.", IP: host, Port: port}
}

func TestVerifyDevice(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantErr  bool
		wantHTTP bool
	}{
		{
			name: "diagnostic firmware",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != deviceapi.StatusPath {
					http.NotFound(w, r)
					return
				}
				_, _ = w.Write([]byte(`{"uptime": 61000}`))
			},
		},
		{
			name:     "other web server",
			handler:  http.NotFound,
			wantErr:  true,
			wantHTTP: true,
		},
		{
			name: "unexpected payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status": "ok"}`))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()
			cfg = config.NewConfig()

			err := verifyDevice(context.Background(), discovered(t, server))
			if (err != nil) != tt.wantErr {
				t.Fatalf("verifyDevice() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := deviceapi.IsHTTPError(err); got != tt.wantHTTP {
				t.Errorf("IsHTTPError() = %v, want %v", got, tt.wantHTTP)
			}
			if tt.wantHTTP && !strings.Contains(err.Error(), "does not serve the diagnostic API") {
				t.Errorf("error = %q, want a hint about the API", err)
			}
		})
	}
}
