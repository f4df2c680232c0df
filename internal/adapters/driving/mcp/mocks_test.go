package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/core/ports/driving"
	"github.com/custodia-labs/gemauth/internal/core/services"
)

// mockBackend is a mock implementation of driven.GeminiOAuthBackend.
type mockBackend struct {
	mu       sync.Mutex
	authURL  *domain.AuthorizationURL
	authErr  error
	payload  domain.TokenPayload
	exchErr  error
	authReqs []domain.AuthorizationRequest
	exchReqs []domain.ExchangeRequest
}

func (m *mockBackend) RequestAuthorizationURL(
	_ context.Context, req domain.AuthorizationRequest,
) (*domain.AuthorizationURL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authReqs = append(m.authReqs, req)
	return m.authURL, m.authErr
}

func (m *mockBackend) ExchangeAuthorizationCode(
	_ context.Context, req domain.ExchangeRequest,
) (domain.TokenPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchReqs = append(m.exchReqs, req)
	return m.payload, m.exchErr
}

func flowFactory(backend *mockBackend) driving.OAuthFlowFactory {
	return func() driving.OAuthFlow {
		return services.NewOAuthFlow(backend, nil)
	}
}

// mockCredentialsService is a mock implementation of driving.CredentialsService.
type mockCredentialsService struct {
	saved   []domain.StoredCredential
	creds   []domain.StoredCredential
	cred    *domain.StoredCredential
	err     error
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
	return m.cred, m.err
}

func (m *mockCredentialsService) List(_ context.Context) ([]domain.StoredCredential, error) {
	return m.creds, m.err
}

func (m *mockCredentialsService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockCredentialsService) Inspect(_ context.Context, _ string) (*domain.TokenInfo, error) {
	return nil, m.err
}
