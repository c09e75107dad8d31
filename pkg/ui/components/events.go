package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// EventEntry is one line in the events feed.
type EventEntry struct {
	Level   string // "info", "warn", "error"
	Message string
	At      time.Time
}

// EventsComponent keeps a bounded feed of recent lifecycle events and log
// mirrors, newest last.
type EventsComponent struct {
	entries []EventEntry
	max     int
}

// NewEventsComponent creates a feed keeping the last max entries.
func NewEventsComponent(max int) *EventsComponent {
	if max < 1 {
		max = 10
	}
	return &EventsComponent{max: max}
}

// Add appends an entry, evicting the oldest beyond the cap.
func (e *EventsComponent) Add(level, message string) {
	e.entries = append(e.entries, EventEntry{Level: level, Message: message, At: time.Now()})
	if len(e.entries) > e.max {
		e.entries = e.entries[len(e.entries)-e.max:]
	}
}

// Clear empties the feed.
func (e *EventsComponent) Clear() {
	e.entries = nil
}

// View renders the feed.
func (e *EventsComponent) View() string {
	if len(e.entries) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Render("no events yet")
	}

	var b strings.Builder
	for _, entry := range e.entries {
		style := lipgloss.NewStyle()
		switch entry.Level {
		case "warn":
			style = style.Foreground(lipgloss.Color("#F59E0B"))
		case "error":
			style = style.Foreground(lipgloss.Color("#EF4444"))
		default:
			style = style.Foreground(lipgloss.Color("#9CA3AF"))
		}
		b.WriteString(fmt.Sprintf("%s %s\n",
			entry.At.Format("15:04:05"), style.Render(entry.Message)))
	}
	return strings.TrimRight(b.String(), "\n")
}
