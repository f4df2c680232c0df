package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/core/ports/driven"
)

// Ensure CredentialsStore implements the interface.
var _ driven.CredentialsStore = (*CredentialsStore)(nil)

// CredentialsStore is an in-memory implementation of driven.CredentialsStore.
type CredentialsStore struct {
	mu    sync.RWMutex
	creds map[string]domain.StoredCredential
}

// NewCredentialsStore creates a new in-memory credentials store.
func NewCredentialsStore() *CredentialsStore {
	return &CredentialsStore{
		creds: make(map[string]domain.StoredCredential),
	}
}

// Save stores or updates a credential.
func (s *CredentialsStore) Save(_ context.Context, cred domain.StoredCredential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.creds[cred.ID]; ok {
		cred.CreatedAt = existing.CreatedAt
	} else if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	if cred.UpdatedAt.IsZero() {
		cred.UpdatedAt = now
	}
	s.creds[cred.ID] = cloneCredential(cred)
	return nil
}

// Get retrieves a credential by ID.
func (s *CredentialsStore) Get(_ context.Context, id string) (*domain.StoredCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cred = cloneCredential(cred)
	return &cred, nil
}

// List returns all credentials, newest first.
func (s *CredentialsStore) List(_ context.Context) ([]domain.StoredCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.StoredCredential, 0, len(s.creds))
	for _, cred := range s.creds {
		result = append(result, cloneCredential(cred))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Delete removes a credential.
func (s *CredentialsStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, id)
	return nil
}

// cloneCredential copies the proxy pointer so callers cannot mutate stored state.
func cloneCredential(cred domain.StoredCredential) domain.StoredCredential {
	if cred.ProxyID != nil {
		id := *cred.ProxyID
		cred.ProxyID = &id
	}
	return cred
}
