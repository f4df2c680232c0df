package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/core/ports/driven"
	"github.com/custodia-labs/gemauth/internal/core/ports/driving"
	"github.com/custodia-labs/gemauth/internal/logger"
)

// Ensure OAuthFlow implements the interface.
var _ driving.OAuthFlow = (*OAuthFlow)(nil)

// MessageResolver turns a message key into user-facing text.
type MessageResolver func(key domain.MessageKey) string

// Notifier receives user-facing error messages as they are produced.
type Notifier func(message string)

// OAuthFlow is the Gemini OAuth flow controller. It validates inputs,
// calls the admin backend and keeps the transient UI state.
//
// The mutex only makes field access race-free. Overlapping calls are not
// serialized: the later call's writes win.
type OAuthFlow struct {
	backend driven.GeminiOAuthBackend
	resolve MessageResolver
	notify  Notifier

	mu    sync.RWMutex
	state domain.FlowState
}

// NewOAuthFlow creates a flow controller. A nil resolver renders message
// keys verbatim.
func NewOAuthFlow(backend driven.GeminiOAuthBackend, resolve MessageResolver) *OAuthFlow {
	if resolve == nil {
		resolve = func(key domain.MessageKey) string { return string(key) }
	}
	return &OAuthFlow{
		backend: backend,
		resolve: resolve,
	}
}

// SetNotifier registers a callback for user-facing errors.
func (f *OAuthFlow) SetNotifier(n Notifier) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notify = n
}

// Reset restores every state field to its default.
func (f *OAuthFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = domain.FlowState{}
}

// StartFlow requests a Gemini authorization URL from the backend.
// proxyID is sent only when it is non-nil and non-zero.
func (f *OAuthFlow) StartFlow(ctx context.Context, proxyID *int64, redirectURI string) bool {
	f.mu.Lock()
	f.state.Loading = true
	f.state.AuthURL = ""
	f.state.SessionID = ""
	f.state.State = ""
	f.state.Error = ""
	f.mu.Unlock()
	defer f.setLoading(false)

	redirectURI = strings.TrimSpace(redirectURI)
	if redirectURI == "" {
		f.fail(f.resolve(domain.MsgMissingRedirectURI))
		return false
	}

	req := domain.AuthorizationRequest{
		RedirectURI: redirectURI,
		ProxyID:     domain.ProxyIDOrNil(proxyID),
	}

	if f.backend == nil {
		logger.Warn("gemini oauth: no backend configured")
		f.fail(f.resolve(domain.MsgFailedToGenerateURL))
		return false
	}

	logger.Debug("gemini oauth: requesting auth url (redirect_uri=%s)", redirectURI)
	result, err := f.backend.RequestAuthorizationURL(ctx, req)
	if err != nil {
		logger.Debug("gemini oauth: auth url request failed: %v", err)
		f.fail(f.remoteMessage(err, domain.MsgFailedToGenerateURL))
		return false
	}

	f.mu.Lock()
	f.state.AuthURL = result.AuthURL
	f.state.SessionID = result.SessionID
	f.state.State = result.State
	f.mu.Unlock()

	return true
}

// FinishFlow exchanges an authorization code for provider tokens.
// Session and state are passed through; the backend validates them.
func (f *OAuthFlow) FinishFlow(ctx context.Context, params domain.FinishParams) domain.TokenPayload {
	code := strings.TrimSpace(params.Code)
	redirectURI := strings.TrimSpace(params.RedirectURI)
	if code == "" || strings.TrimSpace(params.SessionID) == "" ||
		strings.TrimSpace(params.State) == "" || redirectURI == "" {
		f.mu.Lock()
		f.state.Error = f.resolve(domain.MsgMissingExchangeParams)
		f.state.Loading = false
		f.mu.Unlock()
		return nil
	}

	f.mu.Lock()
	f.state.Loading = true
	f.state.Error = ""
	f.mu.Unlock()
	defer f.setLoading(false)

	req := domain.ExchangeRequest{
		SessionID:   params.SessionID,
		State:       params.State,
		Code:        code,
		RedirectURI: redirectURI,
		ProxyID:     domain.ProxyIDOrNil(params.ProxyID),
	}

	if f.backend == nil {
		logger.Warn("gemini oauth: no backend configured")
		f.fail(f.resolve(domain.MsgFailedToExchangeCode))
		return nil
	}

	logger.Debug("gemini oauth: exchanging code (session_id=%s)", params.SessionID)
	payload, err := f.backend.ExchangeAuthorizationCode(ctx, req)
	if err != nil {
		logger.Debug("gemini oauth: code exchange failed: %v", err)
		f.fail(f.remoteMessage(err, domain.MsgFailedToExchangeCode))
		return nil
	}
	if payload == nil {
		payload = domain.TokenPayload{}
	}
	return payload
}

// Normalize reshapes a token payload into a Credential.
func (f *OAuthFlow) Normalize(payload domain.TokenPayload) domain.Credential {
	return domain.NormalizeCredential(payload)
}

// AuthURL returns the provider authorization URL from the last StartFlow.
func (f *OAuthFlow) AuthURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state.AuthURL
}

// SessionID returns the backend session id from the last StartFlow.
func (f *OAuthFlow) SessionID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state.SessionID
}

// State returns the OAuth state parameter from the last StartFlow.
func (f *OAuthFlow) State() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state.State
}

// Loading reports whether a backend call is in flight.
func (f *OAuthFlow) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state.Loading
}

// Error returns the last user-facing error message.
func (f *OAuthFlow) Error() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state.Error
}

// Snapshot returns all state fields at once.
func (f *OAuthFlow) Snapshot() domain.FlowState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

func (f *OAuthFlow) setLoading(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Loading = v
}

// fail records msg as the current error and notifies.
func (f *OAuthFlow) fail(msg string) {
	f.mu.Lock()
	f.state.Error = msg
	n := f.notify
	f.mu.Unlock()

	if n != nil {
		n(msg)
	}
}

// remoteMessage prefers the backend's detail over the generic message.
func (f *OAuthFlow) remoteMessage(err error, fallback domain.MessageKey) string {
	if detail := domain.ErrorDetail(err); detail != "" {
		return detail
	}
	return f.resolve(fallback)
}
