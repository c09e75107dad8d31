package ui

import (
	"time"

	oddsDomain "github.com/ORDEP81/ticketsight/business/odds/domain"
	ticketDomain "github.com/ORDEP81/ticketsight/business/ticket/domain"
)

// Message types for TUI updates. Everything arriving here is already
// computed; the UI only renders.

// TicketMsg carries a fresh parse result and its rendered odds line.
type TicketMsg struct {
	Event    string // opened, changed, closed
	Ticket   *ticketDomain.TicketData
	Odds     *oddsDomain.AfterFeeResult
	OddsLine string
	At       time.Time
}

// ClosedMsg signals the ticket went away.
type ClosedMsg struct {
	At time.Time
}

// BridgeMsg reports the snapshot bridge state.
type BridgeMsg struct {
	Addr      string
	Connected bool
}

// ErrorMsg surfaces a pipeline error.
type ErrorMsg struct {
	Error error
}

// LogMsg mirrors a log record into the events feed.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// TickMsg drives periodic redraws.
type TickMsg struct{}
