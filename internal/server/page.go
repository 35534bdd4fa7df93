package server

import (
	"strings"
	"sync"

	"github.com/muurk/espdash/internal/refresh"
	"github.com/muurk/espdash/internal/render"
)

// Patch operations understood by the page script
const (
	OpHTML = "html"
	OpText = "text"
)

// Patch is one node update pushed to connected browsers
type Patch struct {
	ID    string `json:"id"`
	Op    string `json:"op"`
	Value string `json:"value"`
}

// Page is the server-side model of the dashboard document. It holds the
// current overview fragment and live uptime text, and forwards every
// write to its broadcaster so open browsers stay in sync.
type Page struct {
	mu        sync.RWMutex
	container string
	uptime    string
	hasUptime bool
	broadcast func(Patch)
}

// NewPage creates a page whose container initially shows placeholder markup
func NewPage(placeholder string, broadcast func(Patch)) *Page {
	return &Page{
		container: placeholder,
		broadcast: broadcast,
	}
}

// Lookup implements refresh.Document. The uptime node only exists once the
// container holds a fragment that declares it.
func (p *Page) Lookup(id string) (refresh.Node, bool) {
	switch id {
	case render.ContainerID:
		return containerNode{page: p}, true
	case render.UptimeID:
		p.mu.RLock()
		defined := p.hasUptime
		p.mu.RUnlock()
		if !defined {
			return nil, false
		}
		return uptimeNode{page: p}, true
	}
	return nil, false
}

// Container returns the current overview markup
func (p *Page) Container() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.container
}

// Uptime returns the last uptime text written by the refresh loop
func (p *Page) Uptime() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.uptime
}

// Snapshot returns the patches a newly connected client needs to catch up
func (p *Page) Snapshot() []Patch {
	p.mu.RLock()
	defer p.mu.RUnlock()

	patches := []Patch{{ID: render.ContainerID, Op: OpHTML, Value: p.container}}
	if p.hasUptime && p.uptime != "" {
		patches = append(patches, Patch{ID: render.UptimeID, Op: OpText, Value: p.uptime})
	}
	return patches
}

func (p *Page) setContainer(markup string) {
	p.mu.Lock()
	p.container = markup
	p.hasUptime = strings.Contains(markup, `id="`+render.UptimeID+`"`)
	p.uptime = ""
	p.mu.Unlock()

	p.send(Patch{ID: render.ContainerID, Op: OpHTML, Value: markup})
}

func (p *Page) setUptime(text string) {
	p.mu.Lock()
	p.uptime = text
	p.mu.Unlock()

	p.send(Patch{ID: render.UptimeID, Op: OpText, Value: text})
}

// send runs without p.mu held; the hub reads the page while registering a
// client under its own lock.
func (p *Page) send(patch Patch) {
	if p.broadcast != nil {
		p.broadcast(patch)
	}
}

type containerNode struct{ page *Page }

func (n containerNode) SetInnerHTML(markup string) { n.page.setContainer(markup) }

// SetText on the container replaces its markup with escaped text
func (n containerNode) SetText(text string) { n.page.setContainer(render.Escape(text)) }

type uptimeNode struct{ page *Page }

// SetInnerHTML is not used for the uptime field; markup is stored as text
func (n uptimeNode) SetInnerHTML(markup string) { n.page.setUptime(markup) }

func (n uptimeNode) SetText(text string) { n.page.setUptime(text) }
