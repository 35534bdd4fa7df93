package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/espdash/internal/logging"
)

// Defaults for the dashboard listener
const (
	DefaultHost  = "127.0.0.1"
	DefaultPort  = 8080
	DefaultTitle = "ESP32 Diagnostic"

	shutdownTimeout = 5 * time.Second
)

// Config holds the server configuration
type Config struct {
	Host     string
	Port     int
	CertPath string // Serve HTTPS when both CertPath and KeyPath are set
	KeyPath  string
	Lang     string // <html lang> of the page shell
	Title    string
	Device   string // Device URL reported by /healthz

	// Placeholder is shown in the container until the first load finishes
	Placeholder string
}

// Server serves the dashboard page, its websocket feed and a health endpoint
type Server struct {
	config     *Config
	page       *Page
	hub        *Hub
	stats      StatsFunc
	tlsConfig  *tls.Config
	httpServer *http.Server
	listener   net.Listener
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	cfg := *config
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}

	var tlsConfig *tls.Config
	if cfg.CertPath != "" || cfg.KeyPath != "" {
		var err error
		tlsConfig, err = NewTLSConfig(cfg.CertPath, cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	hub := NewHub()
	s := &Server{
		config:    &cfg,
		hub:       hub,
		page:      NewPage(cfg.Placeholder, hub.Broadcast),
		tlsConfig: tlsConfig,
	}
	s.httpServer = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         tlsConfig,
	}
	return s, nil
}

// Page returns the document the refresh loop writes into
func (s *Server) Page() *Page {
	return s.page
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// SetStatsFunc sets the source of refresh counters reported by /healthz
func (s *Server) SetStatsFunc(fn StatsFunc) {
	s.stats = fn
}

// Addr returns the listen address, or the configured one before Listen
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))
}

// Listen binds the listener without serving
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
	}
	s.listener = listener
	return nil
}

// Start starts the server and blocks until ctx is cancelled, a shutdown
// signal arrives or serving fails
func (s *Server) Start(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	scheme := "http"
	if s.tlsConfig != nil {
		scheme = "https"
	}
	logging.Info("Starting dashboard server",
		zap.String("addr", s.Addr()),
		zap.String("url", fmt.Sprintf("%s://%s/", scheme, s.Addr())),
		zap.String("device", s.config.Device),
		zap.Any("tls_info", GetTLSInfo(s.tlsConfig)),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
	case <-ctx.Done():
		logging.Info("Context cancelled, stopping server...")
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown closes websocket clients and stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logging.Info("Server stopped")
	return nil
}
