package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"login", "oauth", "credentials", "config", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "config-dir", "base-url", "ephemeral"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestLoadServices_BootstrapsOnce(t *testing.T) {
	originalSvc, originalBootstrap := svc, bootstrap
	t.Cleanup(func() { svc, bootstrap = originalSvc, originalBootstrap })

	calls := 0
	built := newTestServices(okBackend())
	svc = nil
	bootstrap = func(GlobalOptions) (*Services, error) {
		calls++
		return built, nil
	}

	first, err := loadServices()
	require.NoError(t, err)
	second, err := loadServices()
	require.NoError(t, err)

	assert.Same(t, built, first)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestLoadServices_BootstrapError(t *testing.T) {
	originalSvc, originalBootstrap := svc, bootstrap
	t.Cleanup(func() { svc, bootstrap = originalSvc, originalBootstrap })

	svc = nil
	bootstrap = func(GlobalOptions) (*Services, error) {
		return nil, errors.New("open database: locked")
	}

	_, err := loadServices()
	require.Error(t, err)
	assert.Equal(t, "open database: locked", err.Error())
	assert.Nil(t, svc)
}

func TestLoadServices_NotConfigured(t *testing.T) {
	_, err := runCmd(t, nil, "credentials", "list")

	require.Error(t, err)
	assert.Equal(t, "services not configured", err.Error())
}

func TestClose_CallsServicesClose(t *testing.T) {
	originalSvc := svc
	t.Cleanup(func() { svc = originalSvc })

	closed := false
	svc = &Services{Close: func() error {
		closed = true
		return nil
	}}

	require.NoError(t, Close())
	assert.True(t, closed)
}

func TestClose_NoServices(t *testing.T) {
	originalSvc := svc
	t.Cleanup(func() { svc = originalSvc })
	svc = nil

	assert.NoError(t, Close())
}

func TestBackendServices_MissingFlow(t *testing.T) {
	s := newTestServices(okBackend())
	s.NewFlow = nil

	_, err := runCmd(t, s, "oauth", "auth-url", "--redirect-uri", "https://console.example.com/cb")

	require.Error(t, err)
	assert.Equal(t, "oauth flow not configured", err.Error())
}

func TestGlobalFlags_ReachBootstrap(t *testing.T) {
	originalSvc, originalBootstrap := svc, bootstrap
	t.Cleanup(func() {
		svc, bootstrap = originalSvc, originalBootstrap
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	var got GlobalOptions
	svc = nil
	bootstrap = func(opts GlobalOptions) (*Services, error) {
		got = opts
		return newTestServices(okBackend()), nil
	}
	resetFlags(rootCmd)
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"--ephemeral", "--base-url", "https://flag.example.com", "config", "path"})

	require.NoError(t, rootCmd.Execute())
	assert.True(t, got.Ephemeral)
	assert.Equal(t, "https://flag.example.com", got.BaseURL)
}
