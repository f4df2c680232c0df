package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/logger"
)

const (
	// uriScheme is the custom URI scheme for gemauth resources.
	uriScheme = "gemauth://"
)

// credentialInfo is a stored credential with its secrets redacted.
type credentialInfo struct {
	ID          string    `json:"id"`
	Label       string    `json:"label,omitempty"`
	ProxyID     *int64    `json:"proxy_id,omitempty"`
	AccessToken string    `json:"access_token"`
	HasRefresh  bool      `json:"has_refresh_token"`
	ExpiresAt   string    `json:"expires_at,omitempty"`
	Expired     bool      `json:"expired"`
	Scope       string    `json:"scope,omitempty"`
	ProjectID   string    `json:"project_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "credentials",
		Name:        "credentials",
		Description: "Locally stored Gemini credentials with secrets redacted",
		MIMEType:    "application/json",
	}, s.handleCredentialsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "credentials/{credentialId}",
		Name:        "credential",
		Description: "A single stored Gemini credential with secrets redacted",
		MIMEType:    "application/json",
	}, s.handleCredentialResource)
}

// handleCredentialsResource lists stored credentials.
func (s *Server) handleCredentialsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Credentials == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	creds, err := s.ports.Credentials.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}

	infos := make([]credentialInfo, len(creds))
	for i := range creds {
		infos[i] = redactCredential(creds[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling credentials: %w", err)
	}

	return jsonResult(req.Params.URI, string(data)), nil
}

// handleCredentialResource returns one stored credential.
func (s *Server) handleCredentialResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Credentials == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractCredentialID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	cred, err := s.ports.Credentials.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting credential: %w", err)
	}

	data, err := json.MarshalIndent(redactCredential(*cred), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling credential: %w", err)
	}

	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

func redactCredential(c domain.StoredCredential) credentialInfo {
	return credentialInfo{
		ID:          c.ID,
		Label:       c.Label,
		ProxyID:     c.ProxyID,
		AccessToken: logger.Redact(c.Credential.AccessToken),
		HasRefresh:  c.Credential.HasRefreshToken(),
		ExpiresAt:   c.Credential.ExpiresAt,
		Expired:     c.Credential.IsExpired(),
		Scope:       c.Credential.Scope,
		ProjectID:   c.Credential.ProjectID,
		CreatedAt:   c.CreatedAt,
	}
}

// extractCredentialID extracts the ID from a URI like gemauth://credentials/{credentialId}.
func extractCredentialID(uri string) string {
	const prefix = uriScheme + "credentials/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
