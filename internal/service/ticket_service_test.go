package service

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdesk-hq/helpdesk-service/internal/config"
	"github.com/helpdesk-hq/helpdesk-service/internal/domain"
	"github.com/helpdesk-hq/helpdesk-service/internal/events"
	"github.com/helpdesk-hq/helpdesk-service/internal/notify"
	"github.com/helpdesk-hq/helpdesk-service/internal/readmodel"
	"github.com/helpdesk-hq/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-hq/helpdesk-service/pkg/util"
)

var ticketIDPattern = regexp.MustCompile(`^HDK-[0-9A-Z]{5}$`)

type fakeTicketRepo struct {
	tickets         map[string]*domain.Ticket
	duplicatesLeft  int
	createdAttempts int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.createdAttempts++
	if f.duplicatesLeft > 0 {
		f.duplicatesLeft--
		return repository.ErrDuplicateID
	}
	if _, exists := f.tickets[ticket.ID]; exists {
		return repository.ErrDuplicateID
	}
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus, updatedAt time.Time) error {
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	ticket.UpdatedAt = updatedAt
	return nil
}

func (f *fakeTicketRepo) List(_ context.Context, limit int) ([]domain.Ticket, error) {
	out := make([]domain.Ticket, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		out = append(out, *ticket)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastMessageAt, out[j].LastMessageAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeMessageRepo struct {
	tickets *fakeTicketRepo
	msgs    map[string][]domain.Message
	nextID  int64
}

func newFakeMessageRepo(tickets *fakeTicketRepo) *fakeMessageRepo {
	return &fakeMessageRepo{tickets: tickets, msgs: make(map[string][]domain.Message)}
}

func (f *fakeMessageRepo) Append(_ context.Context, msg *domain.Message, forceNewAlert bool) error {
	ticket, ok := f.tickets.tickets[msg.TicketID]
	if !ok {
		return pgx.ErrNoRows
	}
	f.nextID++
	msg.ID = f.nextID
	f.msgs[msg.TicketID] = append(f.msgs[msg.TicketID], *msg)

	at := msg.CreatedAt
	ticket.UpdatedAt = at
	ticket.LastMessageAt = &at
	if forceNewAlert {
		ticket.Status = domain.TicketStatusNewAlert
	}
	return nil
}

func (f *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Message, error) {
	return append([]domain.Message{}, f.msgs[ticketID]...), nil
}

func newTestService(t *testing.T) (*TicketService, *fakeTicketRepo, *fakeMessageRepo) {
	t.Helper()
	ticketRepo := newFakeTicketRepo()
	messageRepo := newFakeMessageRepo(ticketRepo)
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		Dispatcher:  events.NewInMemoryDispatcher(),
	})
	return svc, ticketRepo, messageRepo
}

func validInput() TicketCreateInput {
	return TicketCreateInput{
		Subject:  "Five9 issue",
		Location: "In office",
		Email:    "a@x.com",
		Details:  "My phone will not dial out today",
	}
}

func createTicket(t *testing.T, svc *TicketService) *domain.Ticket {
	t.Helper()
	ticket, err := svc.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketValid(t *testing.T) {
	svc, repo, _ := newTestService(t)

	ticket := createTicket(t, svc)

	assert.Regexp(t, ticketIDPattern, ticket.ID)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Nil(t, ticket.LastMessageAt)
	assert.Equal(t, ticket.CreatedAt, ticket.UpdatedAt)

	stored, err := repo.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, stored.ID)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
}

func TestCreateTicketValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TicketCreateInput)
		wantMsg string
	}{
		{
			name:    "missing subject",
			mutate:  func(in *TicketCreateInput) { in.Subject = "   " },
			wantMsg: "Missing subject",
		},
		{
			name:    "missing location",
			mutate:  func(in *TicketCreateInput) { in.Location = "" },
			wantMsg: "Location is required (in office or working at home).",
		},
		{
			name:    "details nineteen chars",
			mutate:  func(in *TicketCreateInput) { in.Details = strings.Repeat("x", 19) },
			wantMsg: "Details must be at least 20 characters long.",
		},
		{
			name:    "missing email",
			mutate:  func(in *TicketCreateInput) { in.Email = " " },
			wantMsg: "Email is required so we can contact the requester.",
		},
		{
			name: "subject checked before details",
			mutate: func(in *TicketCreateInput) {
				in.Subject = ""
				in.Details = "short"
			},
			wantMsg: "Missing subject",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			input := validInput()
			tt.mutate(&input)

			_, err := svc.CreateTicket(context.Background(), input)
			require.Error(t, err)

			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			assert.Equal(t, tt.wantMsg, domainErr.Message)
			assert.Zero(t, repo.createdAttempts, "validation failure must precede any write")
		})
	}
}

func TestCreateTicketDetailsBoundary(t *testing.T) {
	svc, _, _ := newTestService(t)
	input := validInput()
	input.Details = strings.Repeat("y", 20)

	_, err := svc.CreateTicket(context.Background(), input)
	assert.NoError(t, err)
}

func TestCreateTicketSubjectTruncated(t *testing.T) {
	svc, _, _ := newTestService(t)
	input := validInput()
	input.Subject = strings.Repeat("s", 250)

	ticket, err := svc.CreateTicket(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, ticket.Subject, 200)
}

func TestCreateTicketBlankNameDropped(t *testing.T) {
	svc, _, _ := newTestService(t)
	input := validInput()
	blank := "   "
	input.Name = &blank

	ticket, err := svc.CreateTicket(context.Background(), input)
	require.NoError(t, err)
	assert.Nil(t, ticket.RequesterName)
}

func TestCreateTicketRetriesOnDuplicateID(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.duplicatesLeft = 2

	ticket, err := svc.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)
	assert.Regexp(t, ticketIDPattern, ticket.ID)
	assert.Equal(t, 3, repo.createdAttempts)
}

func TestAppendMessageRequesterForcesNewAlert(t *testing.T) {
	for _, prior := range domain.AllTicketStatuses {
		t.Run(string(prior), func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			ticket := createTicket(t, svc)
			repo.tickets[ticket.ID].Status = prior

			_, err := svc.AppendMessage(context.Background(), ticket.ID, "any update?", domain.RoleRequester, nil, nil)
			require.NoError(t, err)

			stored, err := svc.GetTicket(context.Background(), ticket.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.TicketStatusNewAlert, stored.Status)
			assert.NotNil(t, stored.LastMessageAt)
		})
	}
}

func TestAppendMessageAgentKeepsStatus(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ticket := createTicket(t, svc)
	repo.tickets[ticket.ID].Status = domain.TicketStatusInProgress

	agent := &domain.Agent{ID: "agent-1", Active: true}
	msg, err := svc.AppendMessage(context.Background(), ticket.ID, "working on it", domain.RoleAgent, agent, nil)
	require.NoError(t, err)
	require.NotNil(t, msg.AuthorID)
	assert.Equal(t, "agent-1", *msg.AuthorID)

	stored, err := svc.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
	assert.NotNil(t, stored.LastMessageAt)
}

func TestAppendMessageAgentUnauthorized(t *testing.T) {
	svc, repo, msgs := newTestService(t)
	ticket := createTicket(t, svc)

	_, err := svc.AppendMessage(context.Background(), ticket.ID, "sneaky", domain.RoleAgent, nil, nil)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)

	stored := repo.tickets[ticket.ID]
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Nil(t, stored.LastMessageAt)
	assert.Empty(t, msgs.msgs[ticket.ID])
}

func TestAppendMessageRequesterIgnoresAuthorID(t *testing.T) {
	svc, _, _ := newTestService(t)
	ticket := createTicket(t, svc)

	spoofed := "agent-1"
	msg, err := svc.AppendMessage(context.Background(), ticket.ID, "hello", domain.RoleRequester, nil, &spoofed)
	require.NoError(t, err)
	assert.Nil(t, msg.AuthorID)
}

func TestAppendMessageMissingText(t *testing.T) {
	svc, _, _ := newTestService(t)
	ticket := createTicket(t, svc)

	_, err := svc.AppendMessage(context.Background(), ticket.ID, "   ", domain.RoleRequester, nil, nil)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, "Missing text", domainErr.Message)
}

func TestAppendMessageTicketNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AppendMessage(context.Background(), "HDK-ZZZZZ", "hello", domain.RoleRequester, nil, nil)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestSetStatusUnauthorized(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ticket := createTicket(t, svc)

	_, err := svc.SetStatus(context.Background(), nil, ticket.ID, "closed")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
	assert.Equal(t, domain.TicketStatusOpen, repo.tickets[ticket.ID].Status)
}

func TestSetStatusInvalid(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ticket := createTicket(t, svc)
	agent := &domain.Agent{ID: "agent-1", Active: true}

	_, err := svc.SetStatus(context.Background(), agent, ticket.ID, "bogus")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATUS", domainErr.Code)
	assert.Equal(t, domain.TicketStatusOpen, repo.tickets[ticket.ID].Status)
}

func TestSetStatusSuccess(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ticket := createTicket(t, svc)
	agent := &domain.Agent{ID: "agent-1", Active: true}

	for _, status := range domain.AllTicketStatuses {
		updated, err := svc.SetStatus(context.Background(), agent, ticket.ID, string(status))
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
		assert.Equal(t, status, repo.tickets[ticket.ID].Status)
	}
	// status changes never touch lastMessageAt
	assert.Nil(t, repo.tickets[ticket.ID].LastMessageAt)
}

func TestSetStatusNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	agent := &domain.Agent{ID: "agent-1", Active: true}

	_, err := svc.SetStatus(context.Background(), agent, "HDK-ZZZZZ", "closed")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestListMessagesOrderedAndIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ticket := createTicket(t, svc)

	for _, text := range []string{"first message here", "second message here", "third message here"} {
		_, err := svc.AppendMessage(context.Background(), ticket.ID, text, domain.RoleRequester, nil, nil)
		require.NoError(t, err)
	}

	first, err := svc.ListMessages(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, first, 3)
	for i := 1; i < len(first); i++ {
		assert.False(t, first[i].CreatedAt.Before(first[i-1].CreatedAt))
		assert.Greater(t, first[i].ID, first[i-1].ID)
	}

	second, err := svc.ListMessages(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListMessagesAbsentTicketIsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)
	msgs, err := svc.ListMessages(context.Background(), "HDK-ZZZZZ")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestListTicketsForAgent(t *testing.T) {
	svc, repo, _ := newTestService(t)
	agent := &domain.Agent{ID: "agent-1", Active: true}

	first := createTicket(t, svc)
	second := createTicket(t, svc)
	third := createTicket(t, svc)

	// message recency drives the default ordering
	base := time.Now()
	for i, id := range []string{second.ID, third.ID} {
		at := base.Add(time.Duration(i+1) * time.Minute)
		repo.tickets[id].LastMessageAt = &at
	}

	tickets, err := svc.ListTicketsForAgent(context.Background(), agent, readmodel.ListOptions{})
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, third.ID, tickets[0].ID)
	assert.Equal(t, second.ID, tickets[1].ID)
	assert.Equal(t, first.ID, tickets[2].ID)
}

func TestListTicketsForAgentUnauthorized(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ListTicketsForAgent(context.Background(), nil, readmodel.ListOptions{})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
}

type recordingMailer struct {
	sent []notify.Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, email notify.Email) error {
	m.sent = append(m.sent, email)
	return m.err
}

func newNotifyingService(t *testing.T, mailer notify.Mailer) *TicketService {
	t.Helper()
	dispatcher := events.NewInMemoryDispatcher()
	ticketRepo := newFakeTicketRepo()
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: newFakeMessageRepo(ticketRepo),
		Dispatcher:  dispatcher,
	})
	notifications := NewNotificationService(dispatcher, mailer, zap.NewNop(), config.NotificationConfig{
		EmailFrom:  "helpdesk@example.com",
		HelpdeskTo: "queue@example.com",
		BaseURL:    "https://helpdesk.example.com",
	})
	notifications.RegisterHandlers()
	return svc
}

func TestCreateTicketSendsBothEmails(t *testing.T) {
	mailer := &recordingMailer{}
	svc := newNotifyingService(t, mailer)

	ticket := createTicket(t, svc)

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "queue@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, ticket.ID)
	assert.Contains(t, mailer.sent[0].HTML, "https://helpdesk.example.com/ticket/"+ticket.ID)
	assert.Equal(t, "a@x.com", mailer.sent[1].To)
	assert.Contains(t, mailer.sent[1].Subject, ticket.ID)
}

func TestCreateTicketSucceedsWhenMailerFails(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp connect refused")}
	svc := newNotifyingService(t, mailer)

	ticket, err := svc.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)
	assert.Regexp(t, ticketIDPattern, ticket.ID)
	assert.Len(t, mailer.sent, 2)
}
