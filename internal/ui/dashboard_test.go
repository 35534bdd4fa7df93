package ui

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/espdash/internal/refresh"
	"github.com/muurk/espdash/internal/render"
)

// fakeSender records messages instead of delivering them to a program
type fakeSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *fakeSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *fakeSender) last() tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.msgs) == 0 {
		return nil
	}
	return s.msgs[len(s.msgs)-1]
}

func update(t *testing.T, m Dashboard, msg tea.Msg) Dashboard {
	t.Helper()
	next, _ := m.Update(msg)
	d, ok := next.(Dashboard)
	if !ok {
		t.Fatalf("Update returned %T, want Dashboard", next)
	}
	return d
}

func TestDocument_UptimeNodeFollowsFragment(t *testing.T) {
	sender := &fakeSender{}
	doc := NewDocument(sender)

	if _, ok := doc.Lookup(render.UptimeID); ok {
		t.Fatal("uptime node should not exist before the first render")
	}

	container, ok := doc.Lookup(render.ContainerID)
	if !ok {
		t.Fatal("container node should always exist")
	}
	container.SetInnerHTML(sampleFragment(t))

	msg, ok := sender.last().(containerMsg)
	if !ok {
		t.Fatalf("last message = %T, want containerMsg", sender.last())
	}
	if len(msg.frag.Sections) != 3 {
		t.Errorf("sent fragment has %d sections, want 3", len(msg.frag.Sections))
	}

	uptime, ok := doc.Lookup(render.UptimeID)
	if !ok {
		t.Fatal("uptime node should exist after the overview is rendered")
	}
	uptime.SetText("0d 0h 7m")
	if live, ok := sender.last().(liveTextMsg); !ok || live.id != render.UptimeID || live.text != "0d 0h 7m" {
		t.Errorf("last message = %#v, want uptime text", sender.last())
	}

	container.SetText("Loading...")
	if _, ok := doc.Lookup(render.UptimeID); ok {
		t.Error("uptime node should disappear when the container is replaced")
	}
}

func TestDashboard_LoadingThenOverview(t *testing.T) {
	m := NewDashboard(DashboardConfig{
		Title:       "ESP32 Diagnostic",
		Command:     "espdash watch",
		Device:      "http://esp32.local",
		LoadingText: "Loading...",
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})

	view := m.View()
	if !strings.Contains(view, "Loading...") {
		t.Error("view should show the loading text before the first overview")
	}
	if !strings.Contains(view, "http://esp32.local") {
		t.Error("view should show the device in the header")
	}

	frag, err := ParseFragment(sampleFragment(t))
	if err != nil {
		t.Fatalf("ParseFragment() error = %v", err)
	}
	m = update(t, m, containerMsg{frag: frag})

	view = m.View()
	if strings.Contains(view, "Loading...") {
		t.Error("loading text should be gone after the overview arrives")
	}
	if !strings.Contains(view, "ESP32-S3") {
		t.Error("view should show the chip model")
	}

	m = update(t, m, liveTextMsg{id: render.UptimeID, text: "5d 4h 3m"})
	if !strings.Contains(m.View(), "5d 4h 3m") {
		t.Error("view should show the live uptime")
	}

	// A new overview resets live values to what the fragment carries
	m = update(t, m, containerMsg{frag: frag})
	if strings.Contains(m.View(), "5d 4h 3m") {
		t.Error("live uptime should reset when the overview is replaced")
	}
}

func TestDashboard_Footer(t *testing.T) {
	tests := []struct {
		name  string
		stats func() refresh.Stats
		want  []string
	}{
		{
			name: "no stats",
			want: []string{"updated 10 seconds ago"},
		},
		{
			name: "healthy",
			stats: func() refresh.Stats {
				return refresh.Stats{Applied: 1200, Stale: 2}
			},
			want: []string{"updated 10 seconds ago", "1,200 updates", "2 stale"},
		},
		{
			name: "failing",
			stats: func() refresh.Stats {
				return refresh.Stats{ConsecutiveFailures: 3, LastError: errors.New("i/o timeout")}
			},
			want: []string{"3 failed polls", "i/o timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewDashboard(DashboardConfig{Stats: tt.stats})
			start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
			m = update(t, m, clockMsg(start))
			m = update(t, m, containerMsg{frag: Fragment{Text: "x"}})
			m = update(t, m, clockMsg(start.Add(10*time.Second)))

			footer := m.footer()
			for _, want := range tt.want {
				if !strings.Contains(footer, want) {
					t.Errorf("footer = %q, missing %q", footer, want)
				}
			}
		})
	}
}

func TestDashboard_Keys(t *testing.T) {
	reloaded := make(chan struct{}, 1)
	m := NewDashboard(DashboardConfig{Reload: func() { reloaded <- struct{}{} }})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd == nil {
		t.Fatal("reload key should return a command")
	}
	cmd()
	select {
	case <-reloaded:
	default:
		t.Error("reload command should call Reload")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("quit key should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key should return tea.Quit")
	}
}
