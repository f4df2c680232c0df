package services

import (
	"context"
	"time"

	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/core/ports/driven"
	"github.com/custodia-labs/gemauth/internal/core/ports/driving"
)

// Ensure CredentialsService implements the interface.
var _ driving.CredentialsService = (*CredentialsService)(nil)

// CredentialsService manages locally stored Gemini credentials.
type CredentialsService struct {
	store     driven.CredentialsStore
	inspector driven.TokenInspector
	now       func() time.Time
}

// NewCredentialsService creates a new credentials service.
// Either dependency may be nil; the affected operations then return
// domain.ErrNotImplemented.
func NewCredentialsService(store driven.CredentialsStore, inspector driven.TokenInspector) *CredentialsService {
	return &CredentialsService{
		store:     store,
		inspector: inspector,
		now:       time.Now,
	}
}

// Save creates or updates a stored credential.
func (s *CredentialsService) Save(ctx context.Context, cred domain.StoredCredential) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if err := cred.Validate(); err != nil {
		return err
	}

	now := s.now()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	return s.store.Save(ctx, cred)
}

// Get retrieves a stored credential by ID.
func (s *CredentialsService) Get(ctx context.Context, id string) (*domain.StoredCredential, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.Get(ctx, id)
}

// List returns all stored credentials.
func (s *CredentialsService) List(ctx context.Context) ([]domain.StoredCredential, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.List(ctx)
}

// Delete removes a stored credential by ID.
func (s *CredentialsService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if id == "" {
		return domain.ErrInvalidInput
	}
	return s.store.Delete(ctx, id)
}

// Inspect asks the token issuer about a stored credential.
func (s *CredentialsService) Inspect(ctx context.Context, id string) (*domain.TokenInfo, error) {
	if s.inspector == nil {
		return nil, domain.ErrNotImplemented
	}
	stored, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.inspector.Inspect(ctx, stored.Credential)
}
