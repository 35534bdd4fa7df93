package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/muurk/espdash/internal/deviceapi"
	"github.com/muurk/espdash/internal/refresh"
)

// clockInterval drives the "updated ... ago" footer
const clockInterval = time.Second

type clockMsg time.Time

// dashboardKeyMap defines key bindings for the dashboard screen
type dashboardKeyMap struct {
	Reload key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reload, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Reload, k.Quit}}
}

// DashboardConfig configures the terminal dashboard
type DashboardConfig struct {
	Title       string
	Command     string
	Device      string
	LoadingText string
	// Stats reports refresh counters for the footer (optional)
	Stats func() refresh.Stats
	// Reload re-fetches the full overview (optional)
	Reload func()
}

// Dashboard is the Bubble Tea model behind "espdash watch". It shows a
// spinner until the first overview arrives, then the overview sections
// with the live uptime and a status footer.
type Dashboard struct {
	cfg     DashboardConfig
	keys    dashboardKeyMap
	help    help.Model
	spinner spinner.Model

	loaded     bool
	frag       Fragment
	live       map[string]string
	lastUpdate time.Time
	now        time.Time
	width      int
}

// NewDashboard creates the dashboard model
func NewDashboard(cfg DashboardConfig) Dashboard {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return Dashboard{
		cfg: cfg,
		keys: dashboardKeyMap{
			Reload: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "reload"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "ctrl+c", "esc"),
				key.WithHelp("q", "quit"),
			),
		},
		help:    help.New(),
		spinner: s,
		live:    map[string]string{},
		now:     time.Now(),
		width:   GetTerminalWidth(),
	}
}

func tickClock() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// Init implements tea.Model
func (m Dashboard) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickClock())
}

// Update implements tea.Model
func (m Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = ClampWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reload):
			if m.cfg.Reload == nil {
				return m, nil
			}
			reload := m.cfg.Reload
			return m, func() tea.Msg {
				reload()
				return nil
			}
		}
		return m, nil

	case containerMsg:
		m.loaded = true
		m.frag = msg.frag
		m.live = map[string]string{}
		m.lastUpdate = m.now
		return m, nil

	case liveTextMsg:
		m.live[msg.id] = msg.text
		m.lastUpdate = m.now
		return m, nil

	case clockMsg:
		m.now = time.Time(msg)
		return m, tickClock()

	case spinner.TickMsg:
		if m.loaded {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m Dashboard) View() string {
	params := []Param{{Key: "Device", Value: m.cfg.Device}}
	header := NewHeader(m.cfg.Title, m.cfg.Command, params...).SetWidth(m.width).Render()

	var body string
	if !m.loaded {
		body = FooterStyle.Render(m.spinner.View() + " " + m.cfg.LoadingText)
	} else {
		body = RenderFragment(m.frag, m.width, m.live)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.footer(),
		FooterStyle.Render(m.help.View(m.keys)),
	)
}

func (m Dashboard) footer() string {
	if !m.loaded {
		return ""
	}

	updated := "updated " + humanize.RelTime(m.lastUpdate, m.now, "ago", "from now")
	if m.cfg.Stats == nil {
		return FooterStyle.Render(updated)
	}

	st := m.cfg.Stats()
	if st.ConsecutiveFailures > 0 {
		msg := fmt.Sprintf("⚠ %d failed polls", st.ConsecutiveFailures)
		if st.LastError != nil {
			msg += ": " + deviceapi.GetShortErrorMessage(st.LastError)
		}
		return StaleFooterStyle.Render(msg + " · " + updated)
	}

	parts := []string{updated, humanize.Comma(int64(st.Applied)) + " updates"}
	if st.Stale > 0 {
		parts = append(parts, humanize.Comma(int64(st.Stale))+" stale")
	}
	return FooterStyle.Render(strings.Join(parts, " · "))
}
