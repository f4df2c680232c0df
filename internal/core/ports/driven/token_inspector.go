package driven

import (
	"context"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

// TokenInspector asks the token issuer what it knows about a credential.
type TokenInspector interface {
	Inspect(ctx context.Context, cred domain.Credential) (*domain.TokenInfo, error)
}
