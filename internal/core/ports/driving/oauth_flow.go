package driving

import (
	"context"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

// OAuthFlow drives one Gemini authorization-code flow and exposes its
// transient state. An instance is not meant for concurrent reentrant use.
type OAuthFlow interface {
	// Reset restores every state field to its default.
	Reset()

	// StartFlow requests an authorization URL. It returns false and sets
	// Error on failure; on success AuthURL, SessionID and State are populated.
	StartFlow(ctx context.Context, proxyID *int64, redirectURI string) bool

	// FinishFlow exchanges the authorization code. It returns nil and sets
	// Error on failure. The payload is returned unnormalized.
	FinishFlow(ctx context.Context, params domain.FinishParams) domain.TokenPayload

	// Normalize reshapes a token payload into a Credential.
	Normalize(payload domain.TokenPayload) domain.Credential

	AuthURL() string
	SessionID() string
	State() string
	Loading() bool
	Error() string

	// Snapshot returns all state fields at once.
	Snapshot() domain.FlowState
}

// OAuthFlowFactory creates a fresh, independent flow controller.
type OAuthFlowFactory func() OAuthFlow
