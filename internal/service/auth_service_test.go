package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-hq/helpdesk-service/internal/auth"
	"github.com/helpdesk-hq/helpdesk-service/internal/config"
	"github.com/helpdesk-hq/helpdesk-service/internal/domain"
	apperrors "github.com/helpdesk-hq/helpdesk-service/pkg/util"
)

type fakeAgentRepo struct {
	byEmail map[string]*domain.Agent
	byID    map[string]*domain.Agent
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{
		byEmail: make(map[string]*domain.Agent),
		byID:    make(map[string]*domain.Agent),
	}
}

func (f *fakeAgentRepo) Create(_ context.Context, agent *domain.Agent) error {
	f.byEmail[agent.Email] = agent
	f.byID[agent.ID] = agent
	return nil
}

func (f *fakeAgentRepo) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	if agent, ok := f.byID[id]; ok {
		return agent, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAgentRepo) GetByEmail(_ context.Context, email string) (*domain.Agent, error) {
	if agent, ok := f.byEmail[email]; ok {
		return agent, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeRevoker struct {
	revoked map[string]time.Duration
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if f.revoked == nil {
		f.revoked = make(map[string]time.Duration)
	}
	f.revoked[tokenID] = ttl
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeAgentRepo, *fakeRevoker) {
	t.Helper()
	repo := newFakeAgentRepo()
	revoker := &fakeRevoker{}
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}, repo, revoker)

	hash, err := auth.HashPassword("hunter22", 4)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &domain.Agent{
		ID:           "agent-1",
		Name:         "Agent One",
		Email:        "agent@example.com",
		PasswordHash: hash,
		Active:       true,
	}))
	return svc, repo, revoker
}

func TestLoginAgentSuccess(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	agent, token, exp, err := svc.LoginAgent(context.Background(), "agent@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "agent-1", agent.ID)
	assert.True(t, exp.After(time.Now()))

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "agent-1", claims.AgentID)
}

func TestLoginAgentFailures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		prepare  func(repo *fakeAgentRepo)
	}{
		{name: "unknown email", email: "nobody@example.com", password: "hunter22"},
		{name: "wrong password", email: "agent@example.com", password: "wrong"},
		{
			name:  "inactive agent",
			email: "agent@example.com", password: "hunter22",
			prepare: func(repo *fakeAgentRepo) {
				repo.byEmail["agent@example.com"].Active = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newAuthFixture(t)
			if tt.prepare != nil {
				tt.prepare(repo)
			}
			_, _, _, err := svc.LoginAgent(context.Background(), tt.email, tt.password)
			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, revoker := newAuthFixture(t)

	_, token, _, err := svc.LoginAgent(context.Background(), "agent@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token))

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	ttl, ok := revoker.revoked[claims.ID]
	require.True(t, ok, "token id should be denylisted")
	assert.Greater(t, ttl, time.Duration(0))
}

func TestLogoutInvalidToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	err := svc.Logout(context.Background(), "garbage")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
}
