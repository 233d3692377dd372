package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-hq/helpdesk-service/internal/api/dto"
	"github.com/helpdesk-hq/helpdesk-service/internal/auth"
	"github.com/helpdesk-hq/helpdesk-service/internal/domain"
	"github.com/helpdesk-hq/helpdesk-service/internal/readmodel"
	"github.com/helpdesk-hq/helpdesk-service/internal/service"
	apperrors "github.com/helpdesk-hq/helpdesk-service/pkg/util"
)

// AdminTicketsHandler handles agent-facing ticket endpoints.
type AdminTicketsHandler struct {
	service *service.TicketService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService *service.TicketService) *AdminTicketsHandler {
	return &AdminTicketsHandler{service: ticketService}
}

// ListTickets GET /api/admin/tickets. Optional query params: status (a status
// value or "all"), search (substring over subject/email/details), and
// sort=priority for the status-priority ordering.
func (h *AdminTicketsHandler) ListTickets(c *fiber.Ctx) error {
	agent, err := agentPrincipal(c)
	if err != nil {
		return err
	}
	opts := readmodel.ListOptions{
		Status:         c.Query("status"),
		Search:         c.Query("search"),
		SortByPriority: c.Query("sort") == "priority",
	}
	tickets, err := h.service.ListTicketsForAgent(c.Context(), agent, opts)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"tickets": items})
}

// SetStatus PATCH /api/admin/tickets/:id.
func (h *AdminTicketsHandler) SetStatus(c *fiber.Ctx) error {
	agent, err := agentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}
	if _, err := h.service.SetStatus(c.Context(), agent, c.Params("id"), req.Status); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func agentPrincipal(c *fiber.Ctx) (*domain.Agent, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return nil, apperrors.NewUnauthorized("agent required")
	}
	return principal.Agent, nil
}
