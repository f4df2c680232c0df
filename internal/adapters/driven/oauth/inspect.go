package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/core/ports/driven"
)

// Ensure Inspector implements the interface.
var _ driven.TokenInspector = (*Inspector)(nil)

// Inspector asks Google's tokeninfo endpoint about an access token.
type Inspector struct {
	opts []option.ClientOption
}

// NewInspector creates an inspector. endpoint overrides the Google API base
// URL when non-empty; httpClient is used when non-nil.
func NewInspector(endpoint string, httpClient *http.Client) *Inspector {
	opts := []option.ClientOption{option.WithoutAuthentication()}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &Inspector{opts: opts}
}

// Inspect reports what the issuer knows about the credential's access token.
func (i *Inspector) Inspect(ctx context.Context, cred domain.Credential) (*domain.TokenInfo, error) {
	if cred.AccessToken == "" {
		return nil, fmt.Errorf("%w: access token is empty", domain.ErrInvalidInput)
	}

	svc, err := oauth2api.NewService(ctx, i.opts...)
	if err != nil {
		return nil, fmt.Errorf("create tokeninfo service: %w", err)
	}

	info, err := svc.Tokeninfo().AccessToken(cred.AccessToken).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: token rejected by issuer: %s", domain.ErrInvalidInput, apiErr.Message)
		}
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}

	return &domain.TokenInfo{
		Email:         info.Email,
		VerifiedEmail: info.VerifiedEmail,
		Scope:         info.Scope,
		Audience:      info.Audience,
		UserID:        info.UserId,
		ExpiresIn:     info.ExpiresIn,
		LocallyValid:  !cred.IsExpired(),
	}, nil
}
