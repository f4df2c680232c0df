package driving

import (
	"context"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

// CredentialsService manages locally stored Gemini credentials.
type CredentialsService interface {
	// Save creates or updates a stored credential.
	Save(ctx context.Context, cred domain.StoredCredential) error

	// Get retrieves a stored credential by ID.
	Get(ctx context.Context, id string) (*domain.StoredCredential, error)

	// List returns all stored credentials.
	List(ctx context.Context) ([]domain.StoredCredential, error)

	// Delete removes a stored credential by ID.
	Delete(ctx context.Context, id string) error

	// Inspect asks the token issuer about a stored credential.
	Inspect(ctx context.Context, id string) (*domain.TokenInfo, error)
}
