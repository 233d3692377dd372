package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-hq/helpdesk-service/internal/domain"
	"github.com/helpdesk-hq/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-hq/helpdesk-service/pkg/util"
)

const principalKey = "auth_principal"

// TokenDenylist checks whether an issued token has been revoked (logout).
type TokenDenylist interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Principal represents the authenticated agent making the request.
type Principal struct {
	Agent *domain.Agent
	Token *Claims
}

// AuthMiddleware validates bearer tokens and loads agent principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	agents   repository.AgentRepository
	denylist TokenDenylist
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, agents repository.AgentRepository, denylist TokenDenylist) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, agents: agents, denylist: denylist}
}

// Handle enforces agent authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.authenticate(c)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// HandleOptional attaches a principal when a valid bearer token is present and
// lets the request through anonymously otherwise. Used on the public message
// route, where only agent-authored messages need a credential.
func (m *AuthMiddleware) HandleOptional(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Next()
	}
	principal, err := m.authenticate(c)
	if err != nil {
		return c.Next()
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*Principal, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	if m.denylist != nil {
		revoked, err := m.denylist.IsRevoked(c.Context(), claims.ID)
		if err == nil && revoked {
			return nil, apperrors.NewUnauthorized("token revoked")
		}
	}

	agent, err := m.agents.GetByID(c.Context(), claims.AgentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("agent not found")
		}
		return nil, apperrors.MapError(err)
	}
	if !agent.Active {
		return nil, apperrors.NewUnauthorized("agent inactive")
	}

	return &Principal{Agent: agent, Token: claims}, nil
}

// PrincipalFromContext retrieves the authenticated agent, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
