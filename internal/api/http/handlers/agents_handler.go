package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-hq/helpdesk-service/internal/api/dto"
	"github.com/helpdesk-hq/helpdesk-service/internal/service"
	apperrors "github.com/helpdesk-hq/helpdesk-service/pkg/util"
)

// AgentsHandler manages agent authentication endpoints.
type AgentsHandler struct {
	service *service.AuthService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(authService *service.AuthService) *AgentsHandler {
	return &AgentsHandler{service: authService}
}

// Login POST /auth/agents/login.
func (h *AgentsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	agent, token, exp, err := h.service.LoginAgent(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		Agent: dto.AgentResponse{
			ID:    agent.ID,
			Name:  agent.Name,
			Email: agent.Email,
		},
	})
}

// Logout POST /auth/agents/logout. Revokes the presented bearer token.
func (h *AgentsHandler) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("missing bearer token")
	}
	if err := h.service.Logout(c.Context(), parts[1]); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}
