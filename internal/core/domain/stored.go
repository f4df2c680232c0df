package domain

import "time"

// StoredCredential is a normalized Gemini credential saved locally by the CLI.
type StoredCredential struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`
	// Label is a free-form name chosen by the administrator.
	Label string `json:"label,omitempty"`
	// ProxyID is the backend proxy the OAuth session was scoped to, if any.
	ProxyID *int64 `json:"proxy_id,omitempty"`
	// Credential holds the normalized tokens.
	Credential Credential `json:"credential"`
	// CreatedAt is when the record was first saved.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the record was last saved.
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields a store requires.
func (s *StoredCredential) Validate() error {
	if s.ID == "" || s.Credential.AccessToken == "" {
		return ErrInvalidInput
	}
	return nil
}

// TokenInfo describes what the token issuer reports about an access token.
type TokenInfo struct {
	Email         string `json:"email,omitempty"`
	VerifiedEmail bool   `json:"verified_email"`
	Scope         string `json:"scope,omitempty"`
	Audience      string `json:"audience,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	// ExpiresIn is the remaining lifetime in seconds reported by the issuer.
	ExpiresIn int64 `json:"expires_in"`
	// LocallyValid is false when the stored expiry has already passed.
	LocallyValid bool `json:"locally_valid"`
}
