// Package domain defines the ticket lifecycle: states, transition events
// and the content fingerprint that drives change detection.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of the order ticket on the page.
type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// EventType labels a lifecycle transition.
type EventType string

const (
	EventOpened  EventType = "opened"
	EventChanged EventType = "changed"
	EventClosed  EventType = "closed"
)

// Event is one lifecycle transition. Hash carries the content fingerprint
// that triggered it; zero for closed events.
type Event struct {
	Type        EventType
	Fingerprint uint64
	TicketID    uuid.UUID // set once a parse produced a record
	At          time.Time
}
