package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/espdash/internal/logging"
	"github.com/muurk/espdash/internal/refresh"
	"github.com/muurk/espdash/internal/render"
)

// Sender delivers messages to a running Bubble Tea program
type Sender interface {
	Send(msg tea.Msg)
}

// Messages produced by Document writes
type containerMsg struct{ frag Fragment }
type liveTextMsg struct {
	id   string
	text string
}

// Document adapts a Bubble Tea program to refresh.Document. Writes are
// parsed here and delivered to the Dashboard model as messages.
type Document struct {
	mu     sync.RWMutex
	sender Sender
	frag   Fragment // last fragment sent, resolves live ids
}

// NewDocument creates a Document that forwards writes to sender
func NewDocument(sender Sender) *Document {
	return &Document{sender: sender}
}

// Lookup implements refresh.Document
func (d *Document) Lookup(id string) (refresh.Node, bool) {
	if id == render.ContainerID {
		return containerNode{doc: d}, true
	}
	d.mu.RLock()
	defined := d.frag.HasID(id)
	d.mu.RUnlock()
	if !defined {
		return nil, false
	}
	return liveNode{doc: d, id: id}, true
}

func (d *Document) setContainer(markup string) {
	frag, err := ParseFragment(markup)
	if err != nil {
		logging.Warn("Failed to parse overview markup", zap.Error(err))
		frag = Fragment{Text: markup}
	}
	d.setFragment(frag)
}

func (d *Document) setFragment(frag Fragment) {
	d.mu.Lock()
	d.frag = frag
	d.mu.Unlock()

	d.sender.Send(containerMsg{frag: frag})
}

type containerNode struct{ doc *Document }

func (n containerNode) SetInnerHTML(markup string) { n.doc.setContainer(markup) }

func (n containerNode) SetText(text string) { n.doc.setFragment(Fragment{Text: text}) }

type liveNode struct {
	doc *Document
	id  string
}

func (n liveNode) SetInnerHTML(markup string) { n.SetText(markup) }

func (n liveNode) SetText(text string) { n.doc.sender.Send(liveTextMsg{id: n.id, text: text}) }
