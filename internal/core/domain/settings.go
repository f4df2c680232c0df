package domain

import "time"

// Configuration keys, in the dot-notation used by the config store.
const (
	KeyBackendBaseURL    = "backend.base_url"
	KeyBackendAdminToken = "backend.admin_token"
	KeyBackendTimeout    = "backend.timeout_seconds"
	KeyBackendRate       = "backend.rate_per_second"
	KeyBackendBurst      = "backend.burst"
	KeyOAuthRedirectURI  = "oauth.redirect_uri"
	KeyOAuthCallbackPort = "oauth.callback_port"
	KeyOAuthProxyID      = "oauth.proxy_id"
	KeyUILanguage        = "ui.language"
)

// SecretKeys lists configuration keys whose values are masked on display.
var SecretKeys = map[string]bool{
	KeyBackendAdminToken: true,
}

// Default setting values.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultRatePerSecond = 5.0
	DefaultBurst         = 5
	DefaultLanguage      = "en"
	// DefaultCallbackPortStart and DefaultCallbackPortEnd bound the
	// loopback port search when no callback port is configured.
	DefaultCallbackPortStart = 8085
	DefaultCallbackPortEnd   = 8095
)

// Settings is the resolved gemauth configuration.
type Settings struct {
	Backend BackendSettings
	OAuth   OAuthSettings
	UI      UISettings
}

// BackendSettings configures the admin API client.
type BackendSettings struct {
	BaseURL       string
	AdminToken    string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

// OAuthSettings holds defaults for the Gemini OAuth flow.
type OAuthSettings struct {
	RedirectURI  string
	CallbackPort int
	ProxyID      *int64
}

// UISettings holds presentation preferences.
type UISettings struct {
	Language string
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() Settings {
	return Settings{
		Backend: BackendSettings{
			Timeout:       DefaultTimeout,
			RatePerSecond: DefaultRatePerSecond,
			Burst:         DefaultBurst,
		},
		UI: UISettings{Language: DefaultLanguage},
	}
}

// BackendConfigured returns true if an admin backend base URL is set.
func (s Settings) BackendConfigured() bool {
	return s.Backend.BaseURL != ""
}
