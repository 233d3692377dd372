package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusNewAlert   TicketStatus = "new-alert"
)

// AllTicketStatuses lists every accepted status value.
var AllTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusNewAlert,
}

// Valid reports whether the status belongs to the fixed set.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved,
		TicketStatusClosed, TicketStatusNewAlert:
		return true
	}
	return false
}

// Rank returns the display priority for the agent list; new-alert sorts first.
func (s TicketStatus) Rank() int {
	switch s {
	case TicketStatusNewAlert:
		return 0
	case TicketStatusOpen:
		return 1
	case TicketStatusInProgress:
		return 2
	case TicketStatusResolved:
		return 3
	case TicketStatusClosed:
		return 4
	}
	return 5
}

// Ticket is the aggregate for helpdesk requests. IDs are human-shareable
// HDK-XXXXX keys and never change once assigned.
type Ticket struct {
	ID            string
	Subject       string
	Location      string
	Email         string
	RequesterName *string
	Details       string
	Status        TicketStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastMessageAt *time.Time
}
