package events

import (
	"time"

	"github.com/ticketflow/ticketflow/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
)

// Event represents a domain event emitted after a mutation has committed.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload carries everything a notification needs so handlers
// never have to reach back into the database.
type TicketCreatedPayload struct {
	Ticket domain.Ticket
	Actor  domain.User
}

// TicketUpdatedPayload carries before/after snapshots; handlers derive the
// changed-field lines from the pair.
type TicketUpdatedPayload struct {
	Before domain.Ticket
	After  domain.Ticket
	Actor  domain.User
}
