package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/espdash/internal/deviceapi"
	"github.com/muurk/espdash/internal/discovery"
	"github.com/muurk/espdash/internal/i18n"
	"github.com/muurk/espdash/internal/logging"
	"github.com/muurk/espdash/internal/refresh"
	"github.com/muurk/espdash/internal/render"
)

// session holds the pieces every dashboard command wires together
type session struct {
	device     string
	client     *deviceapi.Client
	translator *i18n.Translator
	builder    *render.Builder
}

// newSession resolves the device and builds the client and renderer
func newSession(ctx context.Context) (*session, error) {
	table, err := i18n.Load(cfg.Display.Language, cfg.Display.TranslationsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	tr := i18n.New(table)

	device, err := resolveDevice(ctx)
	if err != nil {
		return nil, err
	}

	client := deviceapi.NewClientWithURL(device)
	client.SetTimeout(cfg.RequestTimeout())

	return &session{
		device:     client.BaseURL,
		client:     client,
		translator: tr,
		builder:    render.NewBuilder(tr),
	}, nil
}

// newLoop creates a refresh loop rendering into doc
func (s *session) newLoop(doc refresh.Document) *refresh.Loop {
	return refresh.New(s.client, s.builder, doc,
		refresh.WithInterval(cfg.RefreshInterval()),
	)
}

// resolveDevice returns the configured device URL, or finds one with mDNS
func resolveDevice(ctx context.Context) (string, error) {
	if url := strings.TrimSpace(cfg.Device.URL); url != "" {
		return url, nil
	}
	if !cfg.Discovery.Enabled {
		return "", fmt.Errorf("no device configured; use --device or set device.url in the config file")
	}

	logging.Info("No device configured, browsing mDNS",
		zap.Duration("timeout", cfg.DiscoveryTimeout()),
	)

	scanner := discovery.NewScanner()
	scanner.Timeout = cfg.DiscoveryTimeout()
	device, err := scanner.WaitForDevice(ctx, "")
	if err != nil {
		return "", fmt.Errorf("device discovery failed: %w", err)
	}

	logging.Info("Using discovered device",
		zap.String("hostname", device.Name()),
		zap.String("url", device.BaseURL()),
	)
	return device.BaseURL(), nil
}

// bufferDocument is an in-memory document for one-shot rendering. It has
// no live nodes, so only the container is ever written.
type bufferDocument struct {
	mu        sync.Mutex
	container string
}

func (d *bufferDocument) Lookup(id string) (refresh.Node, bool) {
	if id != render.ContainerID {
		return nil, false
	}
	return bufferNode{doc: d}, true
}

func (d *bufferDocument) Container() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.container
}

type bufferNode struct{ doc *bufferDocument }

func (n bufferNode) SetInnerHTML(markup string) {
	n.doc.mu.Lock()
	n.doc.container = markup
	n.doc.mu.Unlock()
}

func (n bufferNode) SetText(text string) { n.SetInnerHTML(render.Escape(text)) }
