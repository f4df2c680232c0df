package tui

import (
	"context"
	"errors"

	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/core/services"
)

type mockBackend struct {
	authURL  *domain.AuthorizationURL
	authErr  error
	payload  domain.TokenPayload
	exchErr  error
	exchReqs []domain.ExchangeRequest
}

func (m *mockBackend) RequestAuthorizationURL(
	_ context.Context, _ domain.AuthorizationRequest,
) (*domain.AuthorizationURL, error) {
	return m.authURL, m.authErr
}

func (m *mockBackend) ExchangeAuthorizationCode(
	_ context.Context, req domain.ExchangeRequest,
) (domain.TokenPayload, error) {
	m.exchReqs = append(m.exchReqs, req)
	return m.payload, m.exchErr
}

func okBackend() *mockBackend {
	return &mockBackend{
		authURL: &domain.AuthorizationURL{
			AuthURL:   "https://accounts.google.com/o/oauth2/v2/auth?state=st-1",
			SessionID: "sess-1",
			State:     "st-1",
		},
		payload: domain.TokenPayload{
			"access_token":  "ya29.a0AfH6SMBexample",
			"refresh_token": "1//0gexample",
			"expires_at":    float64(1717000000),
			"project_id":    "proj-1",
		},
	}
}

func newFlowPorts(backend *mockBackend, creds *mockCredentialsService) *Ports {
	ports := &Ports{Flow: services.NewOAuthFlow(backend, nil)}
	if creds != nil {
		ports.Credentials = creds
	}
	return ports
}

type mockCredentialsService struct {
	saved   []domain.StoredCredential
	saveErr error
}

func (m *mockCredentialsService) Save(_ context.Context, cred domain.StoredCredential) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, cred)
	return nil
}

func (m *mockCredentialsService) Get(_ context.Context, _ string) (*domain.StoredCredential, error) {
	return nil, domain.ErrNotFound
}

func (m *mockCredentialsService) List(_ context.Context) ([]domain.StoredCredential, error) {
	return nil, nil
}

func (m *mockCredentialsService) Delete(_ context.Context, _ string) error {
	return nil
}

func (m *mockCredentialsService) Inspect(_ context.Context, _ string) (*domain.TokenInfo, error) {
	return nil, errors.New("not implemented")
}
