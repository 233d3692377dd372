package service

import (
	"context"
	"crypto/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-hq/helpdesk-service/internal/domain"
	"github.com/helpdesk-hq/helpdesk-service/internal/events"
	"github.com/helpdesk-hq/helpdesk-service/internal/readmodel"
	"github.com/helpdesk-hq/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-hq/helpdesk-service/pkg/util"
)

const (
	ticketIDPrefix   = "HDK-"
	ticketIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	ticketIDLength   = 5
	maxSubjectLength = 200
	minDetailsLength = 20
	maxListedTickets = 200
	maxIDAttempts    = 5
)

// TicketService coordinates the ticket and message lifecycle.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.MessageRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.MessageRepository
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject  string
	Location string
	Email    string
	Name     *string
	Details  string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket validates input, persists a new ticket and emits the created
// event. Notification delivery hangs off the event and never fails the create.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(truncate(input.Subject, maxSubjectLength))
	location := strings.TrimSpace(input.Location)
	email := strings.TrimSpace(input.Email)
	details := strings.TrimSpace(input.Details)

	if subject == "" {
		return nil, apperrors.NewValidationError("Missing subject", nil)
	}
	if location == "" {
		return nil, apperrors.NewValidationError("Location is required (in office or working at home).", nil)
	}
	if utf8.RuneCountInString(details) < minDetailsLength {
		return nil, apperrors.NewValidationError("Details must be at least 20 characters long.", nil)
	}
	if email == "" {
		return nil, apperrors.NewValidationError("Email is required so we can contact the requester.", nil)
	}

	var requesterName *string
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			requesterName = &name
		}
	}

	now := time.Now()
	ticket := &domain.Ticket{
		Subject:       subject,
		Location:      location,
		Email:         email,
		RequesterName: requesterName,
		Details:       details,
		Status:        domain.TicketStatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
		LastMessageAt: nil,
	}

	if err := s.createWithFreshID(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    requesterActor(),
		Payload: events.TicketCreatedPayload{
			Subject:       ticket.Subject,
			Location:      ticket.Location,
			Email:         ticket.Email,
			RequesterName: ticket.RequesterName,
			Details:       ticket.Details,
		},
	})
	return ticket, nil
}

// GetTicket fetches a single ticket; possession of the id is the access token.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListMessages returns the thread for a ticket ordered oldest first. An absent
// ticket yields an empty thread; the reader does not distinguish.
func (s *TicketService) ListMessages(ctx context.Context, ticketID string) ([]domain.Message, error) {
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// AppendMessage validates and appends a message to a ticket. Agent-authored
// messages require an authenticated agent. A requester message forces the
// ticket into new-alert; an agent message leaves the status untouched. The
// message insert and the ticket summary update happen in one transaction.
func (s *TicketService) AppendMessage(ctx context.Context, ticketID, text string, role domain.AuthorRole, agent *domain.Agent, authorID *string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("Missing text", nil)
	}

	if role != domain.RoleAgent {
		role = domain.RoleRequester
	}

	if role == domain.RoleAgent {
		if agent == nil {
			return nil, apperrors.NewUnauthorized("agent credential required")
		}
		if authorID == nil {
			authorID = &agent.ID
		}
	} else {
		authorID = nil
	}

	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}

	msg := &domain.Message{
		TicketID:   ticketID,
		AuthorRole: role,
		AuthorID:   authorID,
		Text:       text,
		CreatedAt:  time.Now(),
	}

	if err := s.messages.Append(ctx, msg, role == domain.RoleRequester); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticketID,
		Actor:    actorForRole(role, authorID),
		Payload: events.TicketMessageAddedPayload{
			MessageID:   msg.ID,
			AuthorRole:  msg.AuthorRole,
			AuthorID:    msg.AuthorID,
			TextPreview: textPreview(msg.Text, 120),
		},
	})
	return msg, nil
}

// SetStatus applies an agent-initiated status change. Every member of the
// fixed status set is reachable from every other; the workflow is advisory.
func (s *TicketService) SetStatus(ctx context.Context, agent *domain.Agent, ticketID, newStatus string) (*domain.Ticket, error) {
	if agent == nil {
		return nil, apperrors.NewUnauthorized("agent credential required")
	}
	status := domain.TicketStatus(newStatus)
	if !status.Valid() {
		return nil, apperrors.NewInvalidStatus("Bad status")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}

	now := time.Now()
	if err := s.tickets.UpdateStatus(ctx, ticketID, status, now); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}

	oldStatus := ticket.Status
	ticket.Status = status
	ticket.UpdatedAt = now

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    agentActor(agent.ID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return ticket, nil
}

// ListTicketsForAgent returns the agent-facing list, ordered by last message
// recency and capped at 200, with the read-model filters applied on top.
func (s *TicketService) ListTicketsForAgent(ctx context.Context, agent *domain.Agent, opts readmodel.ListOptions) ([]domain.Ticket, error) {
	if agent == nil {
		return nil, apperrors.NewUnauthorized("agent credential required")
	}
	tickets, err := s.tickets.List(ctx, maxListedTickets)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return readmodel.Apply(tickets, opts), nil
}

func (s *TicketService) createWithFreshID(ctx context.Context, ticket *domain.Ticket) error {
	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		ticket.ID = generateTicketID()
		err = s.tickets.Create(ctx, ticket)
		if err != repository.ErrDuplicateID {
			return err
		}
	}
	return err
}

// generateTicketID produces a human-shareable HDK-XXXXX key, 5 base-36
// uppercase characters after the prefix.
func generateTicketID() string {
	buf := make([]byte, ticketIDLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for request handling anyway
		panic(err)
	}
	for i, b := range buf {
		buf[i] = ticketIDAlphabet[int(b)%len(ticketIDAlphabet)]
	}
	return ticketIDPrefix + string(buf)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func textPreview(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	if max <= 3 {
		return text[:max]
	}
	return text[:max-3] + "..."
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func requesterActor() events.Actor {
	return events.Actor{Role: domain.RoleRequester}
}

func agentActor(agentID string) events.Actor {
	return events.Actor{Role: domain.RoleAgent, AgentID: &agentID}
}

func actorForRole(role domain.AuthorRole, agentID *string) events.Actor {
	if role == domain.RoleAgent {
		return events.Actor{Role: domain.RoleAgent, AgentID: agentID}
	}
	return requesterActor()
}
