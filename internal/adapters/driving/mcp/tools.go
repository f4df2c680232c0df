package mcp

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

// AuthURLInput is the input schema for the gemini_auth_url tool.
type AuthURLInput struct {
	RedirectURI string `json:"redirect_uri" jsonschema:"the redirect URI registered for the OAuth client"`
	ProxyID     int64  `json:"proxy_id,omitempty" jsonschema:"backend proxy id to scope the session to (0 = none)"`
}

// AuthURLOutput is the output schema for the gemini_auth_url tool.
type AuthURLOutput struct {
	AuthURL   string `json:"auth_url"`
	SessionID string `json:"session_id"`
	State     string `json:"state"`
}

// ExchangeInput is the input schema for the gemini_exchange_code tool.
type ExchangeInput struct {
	SessionID   string `json:"session_id" jsonschema:"session id returned by gemini_auth_url"`
	State       string `json:"state" jsonschema:"state returned by gemini_auth_url"`
	Code        string `json:"code" jsonschema:"authorization code from the provider redirect"`
	RedirectURI string `json:"redirect_uri" jsonschema:"the redirect URI used for gemini_auth_url"`
	ProxyID     int64  `json:"proxy_id,omitempty" jsonschema:"backend proxy id (0 = none)"`
	Save        bool   `json:"save,omitempty" jsonschema:"store the normalized credential locally"`
	Label       string `json:"label,omitempty" jsonschema:"label for the stored credential"`
}

// ExchangeOutput is the output schema for the gemini_exchange_code tool.
type ExchangeOutput struct {
	Credential domain.Credential `json:"credential"`
	Payload    map[string]any    `json:"payload"`
	SavedID    string            `json:"saved_id,omitempty"`
	// SaveError is set when the exchange succeeded but storing the credential failed.
	SaveError string `json:"save_error,omitempty"`
}

// NormalizeInput is the input schema for the gemini_normalize tool.
type NormalizeInput struct {
	Payload map[string]any `json:"payload" jsonschema:"raw token payload from the exchange endpoint"`
}

// NormalizeOutput is the output schema for the gemini_normalize tool.
type NormalizeOutput struct {
	Credential domain.Credential `json:"credential"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "gemini_auth_url",
		Description: "Request a Gemini OAuth authorization URL from the admin backend",
	}, s.handleAuthURL)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "gemini_exchange_code",
		Description:  "Exchange a Gemini authorization code for tokens and normalize them",
		OutputSchema: outputSchema[ExchangeOutput](),
	}, s.handleExchange)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "gemini_normalize",
		Description:  "Normalize a raw Gemini token payload into a credential",
		OutputSchema: outputSchema[NormalizeOutput](),
	}, s.handleNormalize)
}

// credentialSchema accepts any JSON value for copied token fields, which
// keep the type the backend sent.
func credentialSchema() *jsonschema.Schema {
	props := map[string]*jsonschema.Schema{
		domain.FieldExpiresAt: {Type: "string"},
	}
	for _, name := range domain.CopiedFields() {
		props[name] = &jsonschema.Schema{}
	}
	return &jsonschema.Schema{Type: "object", Properties: props}
}

// outputSchema infers the schema for T with credentialSchema substituted
// for every domain.Credential.
func outputSchema[T any]() *jsonschema.Schema {
	schema, err := jsonschema.For[T](&jsonschema.ForOptions{
		TypeSchemas: map[reflect.Type]*jsonschema.Schema{
			reflect.TypeFor[domain.Credential](): credentialSchema(),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("inferring output schema: %v", err))
	}
	return schema
}

func (s *Server) handleAuthURL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AuthURLInput,
) (*mcp.CallToolResult, AuthURLOutput, error) {
	flow := s.ports.NewFlow()
	if !flow.StartFlow(ctx, proxyID(input.ProxyID), input.RedirectURI) {
		return nil, AuthURLOutput{}, errors.New(flow.Error())
	}

	return nil, AuthURLOutput{
		AuthURL:   flow.AuthURL(),
		SessionID: flow.SessionID(),
		State:     flow.State(),
	}, nil
}

func (s *Server) handleExchange(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExchangeInput,
) (*mcp.CallToolResult, ExchangeOutput, error) {
	flow := s.ports.NewFlow()
	payload := flow.FinishFlow(ctx, domain.FinishParams{
		Code:        input.Code,
		SessionID:   input.SessionID,
		State:       input.State,
		RedirectURI: input.RedirectURI,
		ProxyID:     proxyID(input.ProxyID),
	})
	if payload == nil {
		return nil, ExchangeOutput{}, errors.New(flow.Error())
	}

	output := ExchangeOutput{
		Credential: flow.Normalize(payload),
		Payload:    payload,
	}

	if input.Save {
		id, err := s.saveCredential(ctx, input, output.Credential)
		if err != nil {
			output.SaveError = err.Error()
		}
		output.SavedID = id
	}

	return nil, output, nil
}

func (s *Server) saveCredential(ctx context.Context, input ExchangeInput, cred domain.Credential) (string, error) {
	if s.ports.Credentials == nil {
		return "", errors.New("credential storage is not configured")
	}
	now := time.Now().UTC()
	stored := domain.StoredCredential{
		ID:         uuid.New().String(),
		Label:      input.Label,
		ProxyID:    proxyID(input.ProxyID),
		Credential: cred,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.ports.Credentials.Save(ctx, stored); err != nil {
		return "", fmt.Errorf("saving credential: %w", err)
	}
	return stored.ID, nil
}

func (s *Server) handleNormalize(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input NormalizeInput,
) (*mcp.CallToolResult, NormalizeOutput, error) {
	return nil, NormalizeOutput{
		Credential: domain.NormalizeCredential(domain.TokenPayload(input.Payload)),
	}, nil
}

// proxyID maps the tool's zero value to "no proxy".
func proxyID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
