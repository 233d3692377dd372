package dto

import (
	"time"

	"github.com/helpdesk-hq/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject  string  `json:"subject"`
	Location string  `json:"location"`
	Email    string  `json:"email"`
	Name     *string `json:"name"`
	Details  string  `json:"details"`
}

// CreateTicketResponse carries the generated ticket id.
type CreateTicketResponse struct {
	TicketID string `json:"ticketId"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	TicketID      string              `json:"ticketId"`
	Subject       string              `json:"subject"`
	Location      string              `json:"location"`
	Email         string              `json:"email"`
	RequesterName *string             `json:"requesterName"`
	Details       string              `json:"details"`
	Status        domain.TicketStatus `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	LastMessageAt *time.Time          `json:"lastMessageAt"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Text       string  `json:"text"`
	AuthorRole string  `json:"authorRole"`
	AuthorID   *string `json:"authorId"`
}

// MessageResponse represents a thread message.
type MessageResponse struct {
	ID         int64             `json:"id"`
	AuthorRole domain.AuthorRole `json:"authorRole"`
	AuthorID   *string           `json:"authorId"`
	Text       string            `json:"text"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
