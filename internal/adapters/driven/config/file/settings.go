package file

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/core/ports/driven"
)

// envOverrides holds environment values that take precedence over the file.
type envOverrides struct {
	BaseURL     string        `env:"GEMAUTH_BASE_URL"`
	AdminToken  string        `env:"GEMAUTH_ADMIN_TOKEN"`
	RedirectURI string        `env:"GEMAUTH_REDIRECT_URI"`
	ProxyID     int64         `env:"GEMAUTH_PROXY_ID"`
	Language    string        `env:"GEMAUTH_LANGUAGE"`
	Timeout     time.Duration `env:"GEMAUTH_TIMEOUT"`
}

// LoadSettings resolves settings from defaults, the config store and the
// process environment, in increasing order of precedence.
func LoadSettings(store driven.ConfigStore) (domain.Settings, error) {
	return loadSettings(store, env.Options{})
}

func loadSettings(store driven.ConfigStore, opts env.Options) (domain.Settings, error) {
	s := domain.DefaultSettings()

	if store != nil {
		applyStore(&s, store)
	}

	var overrides envOverrides
	if err := env.ParseWithOptions(&overrides, opts); err != nil {
		return s, fmt.Errorf("parse env: %w", err)
	}
	applyEnv(&s, overrides)

	return s, nil
}

func applyStore(s *domain.Settings, store driven.ConfigStore) {
	if v := store.GetString(domain.KeyBackendBaseURL); v != "" {
		s.Backend.BaseURL = v
	}
	if v := store.GetString(domain.KeyBackendAdminToken); v != "" {
		s.Backend.AdminToken = v
	}
	if v := store.GetInt(domain.KeyBackendTimeout); v > 0 {
		s.Backend.Timeout = time.Duration(v) * time.Second
	}
	if v := store.GetFloat(domain.KeyBackendRate); v > 0 {
		s.Backend.RatePerSecond = v
	}
	if v := store.GetInt(domain.KeyBackendBurst); v > 0 {
		s.Backend.Burst = v
	}
	if v := store.GetString(domain.KeyOAuthRedirectURI); v != "" {
		s.OAuth.RedirectURI = v
	}
	if v := store.GetInt(domain.KeyOAuthCallbackPort); v > 0 {
		s.OAuth.CallbackPort = v
	}
	if v := int64(store.GetInt(domain.KeyOAuthProxyID)); v != 0 {
		s.OAuth.ProxyID = &v
	}
	if v := store.GetString(domain.KeyUILanguage); v != "" {
		s.UI.Language = v
	}
}

func applyEnv(s *domain.Settings, o envOverrides) {
	if o.BaseURL != "" {
		s.Backend.BaseURL = o.BaseURL
	}
	if o.AdminToken != "" {
		s.Backend.AdminToken = o.AdminToken
	}
	if o.RedirectURI != "" {
		s.OAuth.RedirectURI = o.RedirectURI
	}
	if o.ProxyID != 0 {
		id := o.ProxyID
		s.OAuth.ProxyID = &id
	}
	if o.Language != "" {
		s.UI.Language = o.Language
	}
	if o.Timeout > 0 {
		s.Backend.Timeout = o.Timeout
	}
}

// ParseValue converts a command-line string into the most specific TOML
// value: integer, float, boolean, or string.
func ParseValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(trimmed); err == nil {
		return b
	}
	return raw
}
