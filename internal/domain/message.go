package domain

import "time"

// AuthorRole indicates who authored a message.
type AuthorRole string

const (
	RoleAgent     AuthorRole = "agent"
	RoleRequester AuthorRole = "requester"
)

// Message is an immutable note in a ticket thread, ordered by CreatedAt.
// AuthorID is set only for agent-authored messages.
type Message struct {
	ID         int64
	TicketID   string
	AuthorRole AuthorRole
	AuthorID   *string
	Text       string
	CreatedAt  time.Time
}
