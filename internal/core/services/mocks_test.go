package services

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

// mockBackend is a mock implementation of driven.GeminiOAuthBackend.
type mockBackend struct {
	mu sync.Mutex

	authURL    *domain.AuthorizationURL
	authErr    error
	payload    domain.TokenPayload
	exchErr    error
	authReqs   []domain.AuthorizationRequest
	exchReqs   []domain.ExchangeRequest
	onAuthCall func()
}

func (m *mockBackend) RequestAuthorizationURL(
	_ context.Context,
	req domain.AuthorizationRequest,
) (*domain.AuthorizationURL, error) {
	m.mu.Lock()
	m.authReqs = append(m.authReqs, req)
	hook := m.onAuthCall
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	if m.authErr != nil {
		return nil, m.authErr
	}
	return m.authURL, nil
}

func (m *mockBackend) ExchangeAuthorizationCode(
	_ context.Context,
	req domain.ExchangeRequest,
) (domain.TokenPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchReqs = append(m.exchReqs, req)
	if m.exchErr != nil {
		return nil, m.exchErr
	}
	return m.payload, nil
}

func (m *mockBackend) calls() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.authReqs), len(m.exchReqs)
}

// mockCredentialsStore is an in-memory driven.CredentialsStore.
type mockCredentialsStore struct {
	creds map[string]domain.StoredCredential
	err   error
}

func newMockCredentialsStore() *mockCredentialsStore {
	return &mockCredentialsStore{creds: make(map[string]domain.StoredCredential)}
}

func (m *mockCredentialsStore) Save(_ context.Context, cred domain.StoredCredential) error {
	if m.err != nil {
		return m.err
	}
	m.creds[cred.ID] = cred
	return nil
}

func (m *mockCredentialsStore) Get(_ context.Context, id string) (*domain.StoredCredential, error) {
	if m.err != nil {
		return nil, m.err
	}
	cred, ok := m.creds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cred, nil
}

func (m *mockCredentialsStore) List(_ context.Context) ([]domain.StoredCredential, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([]domain.StoredCredential, 0, len(m.creds))
	for _, c := range m.creds {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockCredentialsStore) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.creds, id)
	return nil
}

// mockInspector is a mock implementation of driven.TokenInspector.
type mockInspector struct {
	info *domain.TokenInfo
	err  error
	got  domain.Credential
}

func (m *mockInspector) Inspect(_ context.Context, cred domain.Credential) (*domain.TokenInfo, error) {
	m.got = cred
	return m.info, m.err
}
