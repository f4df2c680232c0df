package driven

import (
	"context"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

// GeminiOAuthBackend is the admin API that runs the server side of the
// Gemini OAuth flow. Implementations are pure transport: they send the
// request as-is and return the decoded body or the failure unchanged.
type GeminiOAuthBackend interface {
	// RequestAuthorizationURL calls POST /admin/gemini/oauth/auth-url.
	RequestAuthorizationURL(ctx context.Context, req domain.AuthorizationRequest) (*domain.AuthorizationURL, error)

	// ExchangeAuthorizationCode calls POST /admin/gemini/oauth/exchange-code.
	ExchangeAuthorizationCode(ctx context.Context, req domain.ExchangeRequest) (domain.TokenPayload, error)
}
