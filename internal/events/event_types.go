package events

import (
	"time"

	"github.com/helpdesk-hq/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketMessageAdded  EventType = "ticket_message_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role    domain.AuthorRole `json:"role"`
	AgentID *string           `json:"agent_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload carries everything the notification emails need.
type TicketCreatedPayload struct {
	Subject       string  `json:"subject"`
	Location      string  `json:"location"`
	Email         string  `json:"email"`
	RequesterName *string `json:"requester_name,omitempty"`
	Details       string  `json:"details"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID   int64             `json:"message_id"`
	AuthorRole  domain.AuthorRole `json:"author_role"`
	AuthorID    *string           `json:"author_id,omitempty"`
	TextPreview string            `json:"text_preview"`
}
