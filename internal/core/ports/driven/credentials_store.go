package driven

import (
	"context"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

// CredentialsStore persists normalized Gemini credentials.
type CredentialsStore interface {
	// Save stores a credential. Creates if new, updates if exists.
	Save(ctx context.Context, cred domain.StoredCredential) error

	// Get retrieves a credential by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.StoredCredential, error)

	// List returns all stored credentials, newest first.
	List(ctx context.Context) ([]domain.StoredCredential, error)

	// Delete removes a credential by ID.
	Delete(ctx context.Context, id string) error
}
