package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-hq/helpdesk-service/internal/api/dto"
	"github.com/helpdesk-hq/helpdesk-service/internal/auth"
	"github.com/helpdesk-hq/helpdesk-service/internal/domain"
	"github.com/helpdesk-hq/helpdesk-service/internal/service"
)

// TicketsHandler manages the public (requester-facing) ticket endpoints.
// Possession of the unguessable ticket id is the access control here.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.Context(), service.TicketCreateInput{
		Subject:  req.Subject,
		Location: req.Location,
		Email:    req.Email,
		Name:     req.Name,
		Details:  req.Details,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.CreateTicketResponse{TicketID: ticket.ID})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ticket": ticketResponse(ticket)})
}

// ListMessages GET /api/tickets/:id/messages.
func (h *TicketsHandler) ListMessages(c *fiber.Ctx) error {
	msgs, err := h.service.ListMessages(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, messageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"messages": items})
}

// AddMessage POST /api/tickets/:id/messages. Requester messages need no
// credential; agent messages require a valid bearer token.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	var req dto.CreateMessageRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}

	var agent *domain.Agent
	if principal, ok := auth.PrincipalFromContext(c); ok {
		agent = principal.Agent
	}

	_, err := h.service.AppendMessage(
		c.Context(),
		c.Params("id"),
		req.Text,
		domain.AuthorRole(req.AuthorRole),
		agent,
		req.AuthorID,
	)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		TicketID:      ticket.ID,
		Subject:       ticket.Subject,
		Location:      ticket.Location,
		Email:         ticket.Email,
		RequesterName: ticket.RequesterName,
		Details:       ticket.Details,
		Status:        ticket.Status,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
		LastMessageAt: ticket.LastMessageAt,
	}
}

func messageResponse(msg *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         msg.ID,
		AuthorRole: msg.AuthorRole,
		AuthorID:   msg.AuthorID,
		Text:       msg.Text,
		CreatedAt:  msg.CreatedAt,
	}
}
