// Package oauth converts normalized credentials into golang.org/x/oauth2 tokens
// and inspects them against Google's tokeninfo endpoint.
package oauth

import (
	"golang.org/x/oauth2"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

// ToToken converts a normalized credential into an oauth2.Token.
// The expiry is left zero when ExpiresAt is absent or not an integer epoch.
func ToToken(cred domain.Credential) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
	}
	if expiry, ok := cred.ExpiryTime(); ok {
		tok.Expiry = expiry
	}
	if cred.Scope != "" {
		tok = tok.WithExtra(map[string]any{domain.FieldScope: cred.Scope})
	}
	return tok
}
