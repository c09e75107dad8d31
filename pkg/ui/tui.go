package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ORDEP81/ticketsight/pkg/ui/components"
)

// Program is the running Bubble Tea program; set by the entry point so the
// pipeline can push messages in.
var Program *tea.Program

// OnPauseChanged is called when the user toggles pause; wired by the entry
// point to suspend snapshot handling.
var OnPauseChanged func(paused bool)

// Send delivers a message into the running program, dropping it when the
// TUI is not up.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}

const tickInterval = time.Second

// Model is the main Bubble Tea model.
type Model struct {
	keys   KeyMap
	ticket *components.TicketComponent
	events *components.EventsComponent

	state      string // "open" or "closed"
	bridgeAddr string
	connected  bool
	paused     bool
	showHelp   bool
	quitting   bool
	lastUpdate time.Time
	width      int
	height     int
}

// New creates the TUI model.
func New(bridgeAddr string) Model {
	return Model{
		keys:       DefaultKeyMap(),
		ticket:     components.NewTicketComponent(),
		events:     components.NewEventsComponent(8),
		state:      "closed",
		bridgeAddr: bridgeAddr,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			if OnPauseChanged != nil {
				OnPauseChanged(m.paused)
			}
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.events.Clear()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}
		return m, nil

	case TicketMsg:
		m.state = "open"
		m.lastUpdate = msg.At
		m.ticket.Set(msg.Ticket, msg.Odds, msg.OddsLine)
		m.events.Add("info", fmt.Sprintf("ticket %s, odds %s", msg.Event, msg.OddsLine))
		return m, nil

	case ClosedMsg:
		m.state = "closed"
		m.lastUpdate = msg.At
		m.ticket.Clear()
		m.events.Add("info", "ticket closed")
		return m, nil

	case BridgeMsg:
		m.bridgeAddr = msg.Addr
		m.connected = msg.Connected
		return m, nil

	case ErrorMsg:
		m.events.Add("error", msg.Error.Error())
		return m, nil

	case LogMsg:
		m.events.Add(msg.Level, msg.Message)
		return m, nil

	case TickMsg:
		return m, tick()
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := TitleStyle.Render("ticketsight")

	state := ClosedStyle.Render("● closed")
	if m.state == "open" {
		state = OpenStyle.Render("● open")
	}
	if m.paused {
		state += WarningStyle.Render("  paused")
	}

	bridge := MutedStyle.Render("bridge off")
	if m.bridgeAddr != "" {
		marker := MutedStyle.Render("○")
		if m.connected {
			marker = OpenStyle.Render("●")
		}
		bridge = fmt.Sprintf("%s %s", marker, MutedStyle.Render(m.bridgeAddr))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", state, "  ", bridge)

	var b strings.Builder
	b.WriteString(header + "\n\n")
	b.WriteString(BoxStyle.Render(m.ticket.View()) + "\n")
	b.WriteString(BoxStyle.Render(m.events.View()) + "\n")

	if m.showHelp {
		var lines []string
		for _, group := range m.keys.FullHelp() {
			var parts []string
			for _, binding := range group {
				parts = append(parts, binding.Help().Key+" "+binding.Help().Desc)
			}
			lines = append(lines, strings.Join(parts, "  "))
		}
		b.WriteString(HelpStyle.Render(strings.Join(lines, "\n")) + "\n")
	} else {
		var parts []string
		for _, binding := range m.keys.ShortHelp() {
			parts = append(parts, binding.Help().Key+" "+binding.Help().Desc)
		}
		b.WriteString(HelpStyle.Render(strings.Join(parts, "  ")) + "\n")
	}

	return b.String()
}
