package domain

// AuthorizationRequest asks the admin backend for a Gemini authorization URL.
// ProxyID is omitted from the wire body when nil.
type AuthorizationRequest struct {
	RedirectURI string `json:"redirect_uri"`
	ProxyID     *int64 `json:"proxy_id,omitempty"`
}

// AuthorizationURL is the backend's answer to an AuthorizationRequest.
// SessionID and State must be echoed back in the ExchangeRequest.
type AuthorizationURL struct {
	AuthURL   string `json:"auth_url"`
	SessionID string `json:"session_id"`
	State     string `json:"state"`
}

// ExchangeRequest trades an authorization code for provider tokens.
type ExchangeRequest struct {
	SessionID   string `json:"session_id"`
	State       string `json:"state"`
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
	ProxyID     *int64 `json:"proxy_id,omitempty"`
}

// FinishParams are the caller-supplied inputs to the exchange step.
type FinishParams struct {
	Code        string
	SessionID   string
	State       string
	RedirectURI string
	ProxyID     *int64
}

// TokenPayload is the open token mapping returned by the exchange endpoint.
// Unknown fields are kept untouched.
type TokenPayload map[string]any

// String returns the value under key if it is a string.
func (p TokenPayload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Has reports whether key is present in the payload.
func (p TokenPayload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// FlowState is a snapshot of the flow controller's transient state.
type FlowState struct {
	AuthURL   string `json:"auth_url"`
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Loading   bool   `json:"loading"`
	Error     string `json:"error,omitempty"`
}

// ProxyIDOrNil returns nil for a nil or zero proxy id, otherwise id unchanged.
func ProxyIDOrNil(id *int64) *int64 {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}
