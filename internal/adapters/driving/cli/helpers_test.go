package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/gemauth/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/core/ports/driving"
	"github.com/custodia-labs/gemauth/internal/core/services"
)

// mockBackend is a mock implementation of driven.GeminiOAuthBackend.
type mockBackend struct {
	mu       sync.Mutex
	authURL  *domain.AuthorizationURL
	authErr  error
	payload  domain.TokenPayload
	exchErr  error
	authReqs []domain.AuthorizationRequest
	exchReqs []domain.ExchangeRequest
}

func (m *mockBackend) RequestAuthorizationURL(
	_ context.Context, req domain.AuthorizationRequest,
) (*domain.AuthorizationURL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authReqs = append(m.authReqs, req)
	return m.authURL, m.authErr
}

func (m *mockBackend) ExchangeAuthorizationCode(
	_ context.Context, req domain.ExchangeRequest,
) (domain.TokenPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchReqs = append(m.exchReqs, req)
	return m.payload, m.exchErr
}

func (m *mockBackend) exchanges() []domain.ExchangeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ExchangeRequest(nil), m.exchReqs...)
}

func okBackend() *mockBackend {
	return &mockBackend{
		authURL: &domain.AuthorizationURL{
			AuthURL:   "https://accounts.google.com/o/oauth2/auth?state=st-1",
			SessionID: "sess-1",
			State:     "st-1",
		},
		payload: domain.TokenPayload{
			"access_token":  "ya29.access-token-value",
			"refresh_token": "1//refresh-token-value",
			"token_type":    "Bearer",
			"expires_at":    4102444800.9,
			"scope":         "https://www.googleapis.com/auth/cloud-platform",
			"project_id":    "proj-1",
			"extra":         "kept",
		},
	}
}

// stubInspector is a driven.TokenInspector returning a fixed answer.
type stubInspector struct {
	info *domain.TokenInfo
	err  error
}

func (s *stubInspector) Inspect(_ context.Context, cred domain.Credential) (*domain.TokenInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	info := *s.info
	info.LocallyValid = !cred.IsExpired()
	return &info, nil
}

// newTestServices wires real services over in-memory stores.
func newTestServices(backend *mockBackend) *Services {
	settings := domain.DefaultSettings()
	settings.Backend.BaseURL = "https://admin.example.com/api/v1"

	return &Services{
		NewFlow: func() driving.OAuthFlow {
			return services.NewOAuthFlow(backend, nil)
		},
		Credentials: services.NewCredentialsService(
			memory.NewCredentialsStore(),
			&stubInspector{info: &domain.TokenInfo{Email: "admin@example.com", ExpiresIn: 3599}},
		),
		Config:   memory.NewConfigStore(nil),
		Settings: settings,
	}
}

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, s *Services, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := runCmdIO(t, s, "", args...)
	return stdout, err
}

// runCmdIO executes the root command with stdin and returns stdout and stderr.
func runCmdIO(t *testing.T, s *Services, stdin string, args ...string) (string, string, error) {
	t.Helper()

	originalSvc, originalBootstrap := svc, bootstrap
	svc, bootstrap = s, nil
	t.Cleanup(func() {
		svc, bootstrap = originalSvc, originalBootstrap
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	resetFlags(rootCmd)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag in the tree to its default, since cobra
// keeps parsed values between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}
