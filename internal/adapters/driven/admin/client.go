package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/core/ports/driven"
	"github.com/custodia-labs/gemauth/internal/logger"
)

// Endpoint paths, relative to the configured base URL.
const (
	AuthURLPath      = "/admin/gemini/oauth/auth-url"
	ExchangeCodePath = "/admin/gemini/oauth/exchange-code"
)

// RequestIDHeader carries a per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Ensure Client implements the interface.
var _ driven.GeminiOAuthBackend = (*Client)(nil)

// Config configures the admin API client.
type Config struct {
	// BaseURL is the admin API root, e.g. https://host/api/v1.
	BaseURL string
	// AdminToken is sent as a bearer token when non-empty.
	AdminToken string
	// Timeout bounds each request. Zero uses domain.DefaultTimeout.
	Timeout time.Duration
	// RatePerSecond and Burst configure the outbound limiter.
	RatePerSecond float64
	Burst         int
	// Transport overrides the underlying round tripper (tests).
	Transport http.RoundTripper
}

// ConfigFromSettings builds a Config from resolved settings.
func ConfigFromSettings(s domain.BackendSettings) Config {
	return Config{
		BaseURL:       s.BaseURL,
		AdminToken:    s.AdminToken,
		Timeout:       s.Timeout,
		RatePerSecond: s.RatePerSecond,
		Burst:         s.Burst,
	}
}

// Client calls the admin backend's Gemini OAuth endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *RateLimiter
	newID   func() string
}

// NewClient creates an admin API client.
// Returns domain.ErrBackendNotConfigured when BaseURL is empty.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, domain.ErrBackendNotConfigured
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q: %w", base, domain.ErrInvalidInput)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if cfg.AdminToken != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: cfg.AdminToken,
				TokenType:   "Bearer",
			}),
			Base: transport,
		}
	}

	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: timeout, Transport: transport},
		limiter: NewRateLimiter(cfg.RatePerSecond, cfg.Burst),
		newID:   func() string { return uuid.New().String() },
	}, nil
}

// RequestAuthorizationURL calls POST /admin/gemini/oauth/auth-url.
func (c *Client) RequestAuthorizationURL(
	ctx context.Context,
	req domain.AuthorizationRequest,
) (*domain.AuthorizationURL, error) {
	var out domain.AuthorizationURL
	if err := c.post(ctx, AuthURLPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangeAuthorizationCode calls POST /admin/gemini/oauth/exchange-code.
// Numbers in the payload decode as json.Number.
func (c *Client) ExchangeAuthorizationCode(
	ctx context.Context,
	req domain.ExchangeRequest,
) (domain.TokenPayload, error) {
	var out domain.TokenPayload
	if err := c.post(ctx, ExchangeCodePath, req, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = domain.TokenPayload{}
	}
	return out, nil
}

// post sends body as JSON to path and decodes a successful response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := c.newID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	logger.Debug("admin api: POST %s (request_id=%s)", path, requestID)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}
	logger.Debug("admin api: %s -> %d (request_id=%s)", path, resp.StatusCode, requestID)

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.RecordRateLimitError(parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRemoteError(resp.StatusCode, raw)
	}

	data, err := unwrapEnvelope(resp.StatusCode, raw)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// newRemoteError builds a RemoteError, lifting a string "detail" field
// out of a JSON body when there is one.
func newRemoteError(status int, body []byte) error {
	remote := &domain.RemoteError{StatusCode: status, Body: body}

	var errBody struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil {
		if s, ok := errBody.Detail.(string); ok {
			remote.Detail = strings.TrimSpace(s)
		}
	}
	return remote
}

// envelope is the {code, message, data} wrapper some deployments use.
type envelope struct {
	Code    *json.Number    `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// unwrapEnvelope returns the data member of a response envelope, or raw
// unchanged when the body is not an envelope. A non-zero envelope code is
// a failure even under a 2xx status.
func unwrapEnvelope(status int, raw []byte) ([]byte, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return raw, nil
	}
	if _, ok := members["data"]; !ok {
		return raw, nil
	}
	if _, ok := members["code"]; !ok {
		return raw, nil
	}

	var env envelope
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil || env.Code == nil {
		return raw, nil
	}
	code, err := env.Code.Int64()
	if err != nil {
		return raw, nil
	}
	if code != 0 {
		return nil, &domain.RemoteError{StatusCode: status, Detail: env.Message, Body: raw}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, errors.New("empty data in response envelope")
	}
	return env.Data, nil
}
