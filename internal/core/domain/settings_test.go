package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, DefaultTimeout, s.Backend.Timeout)
	assert.Equal(t, DefaultRatePerSecond, s.Backend.RatePerSecond)
	assert.Equal(t, DefaultBurst, s.Backend.Burst)
	assert.Equal(t, DefaultLanguage, s.UI.Language)
	assert.Empty(t, s.OAuth.RedirectURI)
	assert.Nil(t, s.OAuth.ProxyID)
	assert.False(t, s.BackendConfigured())
}

func TestSettings_BackendConfigured(t *testing.T) {
	s := DefaultSettings()
	s.Backend.BaseURL = "https://admin.example.com"

	assert.True(t, s.BackendConfigured())
}

func TestSecretKeys(t *testing.T) {
	assert.True(t, SecretKeys[KeyBackendAdminToken])
	assert.False(t, SecretKeys[KeyBackendBaseURL])
}
