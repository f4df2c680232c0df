package cli

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

func seedCredential(t *testing.T, s *Services, id, label string) {
	t.Helper()
	proxy := int64(2)
	err := s.Credentials.Save(context.Background(), domain.StoredCredential{
		ID:      id,
		Label:   label,
		ProxyID: &proxy,
		Credential: domain.Credential{
			AccessToken:  "ya29.secret-access",
			RefreshToken: "1//secret-refresh",
			TokenType:    "Bearer",
			ExpiresAt:    "4102444800",
			ProjectID:    "proj-1",
		},
	})
	require.NoError(t, err)
}

func TestCredentialsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(credentialsCmd.Commands()))
	for _, c := range credentialsCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"list", "show", "remove", "inspect"}, names)
}

func TestCredentialsList_Empty(t *testing.T) {
	out, err := runCmd(t, newTestServices(okBackend()), "credentials", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No credentials stored")
}

func TestCredentialsList_Table(t *testing.T) {
	s := newTestServices(okBackend())
	seedCredential(t, s, "cred-1", "work")

	out, err := runCmd(t, s, "creds", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "cred-1")
	assert.Contains(t, out, "work")
	assert.Contains(t, out, "2100-01-01T00:00:00Z")
	assert.Contains(t, out, "yes")
	assert.NotContains(t, out, "secret-access")
}

func TestCredentialsShow_RedactsByDefault(t *testing.T) {
	s := newTestServices(okBackend())
	seedCredential(t, s, "cred-1", "work")

	out, err := runCmd(t, s, "credentials", "show", "cred-1")

	require.NoError(t, err)
	assert.Contains(t, out, "ya29****")
	assert.Contains(t, out, "proj-1")
	assert.NotContains(t, out, "secret-access")
	assert.NotContains(t, out, "secret-refresh")
}

func TestCredentialsShow_JSONWithSecrets(t *testing.T) {
	s := newTestServices(okBackend())
	seedCredential(t, s, "cred-1", "work")

	out, err := runCmd(t, s, "credentials", "show", "cred-1", "--json", "--show-secrets")

	require.NoError(t, err)
	var got domain.StoredCredential
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ya29.secret-access", got.Credential.AccessToken)
	assert.Equal(t, "1//secret-refresh", got.Credential.RefreshToken)
	require.NotNil(t, got.ProxyID)
	assert.Equal(t, int64(2), *got.ProxyID)
}

func TestCredentialsShow_NotFound(t *testing.T) {
	_, err := runCmd(t, newTestServices(okBackend()), "credentials", "show", "missing")

	require.Error(t, err)
	assert.Equal(t, "credential missing not found", err.Error())
}

func TestCredentialsRemove(t *testing.T) {
	s := newTestServices(okBackend())
	seedCredential(t, s, "cred-1", "work")

	out, err := runCmd(t, s, "credentials", "rm", "cred-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Removed credential cred-1")
	_, err = s.Credentials.Get(context.Background(), "cred-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCredentialsInspect(t *testing.T) {
	s := newTestServices(okBackend())
	seedCredential(t, s, "cred-1", "work")

	out, err := runCmd(t, s, "credentials", "inspect", "cred-1")

	require.NoError(t, err)
	var info domain.TokenInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "admin@example.com", info.Email)
	assert.True(t, info.LocallyValid)
}

func TestCredentialsInspect_IssuerError(t *testing.T) {
	s := newTestServices(okBackend())
	s.Credentials = &failingCredentials{err: errors.New("issuer unreachable")}

	_, err := runCmd(t, s, "credentials", "inspect", "cred-1")

	require.Error(t, err)
	assert.Equal(t, "issuer unreachable", err.Error())
}

func TestCredentialsCmd_StorageNotConfigured(t *testing.T) {
	s := newTestServices(okBackend())
	s.Credentials = nil

	_, err := runCmd(t, s, "credentials", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential storage not configured")
}

func TestExpiryLabel(t *testing.T) {
	past := time.Now().Add(-time.Hour).Unix()

	assert.Equal(t, "-", expiryLabel(domain.Credential{}))
	assert.Equal(t, "soon", expiryLabel(domain.Credential{ExpiresAt: "soon"}))
	assert.Contains(t, expiryLabel(domain.Credential{ExpiresAt: strconv.FormatInt(past, 10)}), "(expired)")
}

// failingCredentials is a driving.CredentialsService that always fails.
type failingCredentials struct {
	err error
}

func (f *failingCredentials) Save(context.Context, domain.StoredCredential) error { return f.err }

func (f *failingCredentials) Get(context.Context, string) (*domain.StoredCredential, error) {
	return nil, f.err
}

func (f *failingCredentials) List(context.Context) ([]domain.StoredCredential, error) {
	return nil, f.err
}

func (f *failingCredentials) Delete(context.Context, string) error { return f.err }

func (f *failingCredentials) Inspect(context.Context, string) (*domain.TokenInfo, error) {
	return nil, f.err
}
