// Package cli provides the cobra command tree for gemauth.
package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/core/ports/driven"
	"github.com/custodia-labs/gemauth/internal/core/ports/driving"
	"github.com/custodia-labs/gemauth/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	Verbose   bool
	ConfigDir string
	BaseURL   string
	Ephemeral bool
}

// Services holds everything the commands need, built once per process.
type Services struct {
	// NewFlow creates an independent OAuth flow controller.
	NewFlow driving.OAuthFlowFactory

	// Credentials manages stored credentials.
	Credentials driving.CredentialsService

	// Config is the configuration store behind Settings.
	Config driven.ConfigStore

	// Settings is the resolved configuration.
	Settings domain.Settings

	// Watch reloads the configuration on file changes. Optional.
	Watch func(ctx context.Context, onChange func()) error

	// Reload rebuilds settings-dependent services. Optional.
	Reload func() error

	// OpenBrowser launches a URL. Optional.
	OpenBrowser func(url string) error

	// Close releases resources. Optional.
	Close func() error
}

var (
	globalOpts GlobalOptions

	bootstrap func(GlobalOptions) (*Services, error)
	svc       *Services
	svcMu     sync.Mutex
)

var rootCmd = &cobra.Command{
	Use:   "gemauth",
	Short: "Gemini OAuth administration client",
	Long: `gemauth drives the Gemini OAuth authorization-code flow against an
admin backend and manages the resulting credentials.

Configure the backend once:
  gemauth config set backend.base_url https://admin.example.com/api/v1
  gemauth config set backend.admin_token

Then log in:
  gemauth login`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(globalOpts.Verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&globalOpts.ConfigDir, "config-dir", "", "Configuration directory (default ~/.gemauth)")
	flags.StringVar(&globalOpts.BaseURL, "base-url", "", "Admin backend base URL (overrides config)")
	flags.BoolVar(&globalOpts.Ephemeral, "ephemeral", false, "Keep configuration and credentials in memory only")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that builds services on first use.
func SetBootstrap(fn func(GlobalOptions) (*Services, error)) {
	bootstrap = fn
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Close releases the services built during Execute, if any.
func Close() error {
	svcMu.Lock()
	defer svcMu.Unlock()
	if svc == nil || svc.Close == nil {
		return nil
	}
	return svc.Close()
}

// loadServices returns the process services, building them on first use.
func loadServices() (*Services, error) {
	svcMu.Lock()
	defer svcMu.Unlock()

	if svc != nil {
		return svc, nil
	}
	if bootstrap == nil {
		return nil, errors.New("services not configured")
	}

	built, err := bootstrap(globalOpts)
	if err != nil {
		return nil, err
	}
	svc = built
	return svc, nil
}

// backendServices returns services after checking the backend is configured.
func backendServices() (*Services, error) {
	s, err := loadServices()
	if err != nil {
		return nil, err
	}
	if s.NewFlow == nil {
		return nil, errors.New("oauth flow not configured")
	}
	if !s.Settings.BackendConfigured() {
		return nil, errors.New("admin backend not configured: run 'gemauth config set " +
			domain.KeyBackendBaseURL + " <url>' or set GEMAUTH_BASE_URL")
	}
	return s, nil
}

// proxyIDFlag returns the --proxy-id value, falling back to the configured
// default when the flag was not given. Zero means no proxy.
func proxyIDFlag(cmd *cobra.Command, s *Services) (*int64, error) {
	if !cmd.Flags().Changed("proxy-id") {
		return domain.ProxyIDOrNil(s.Settings.OAuth.ProxyID), nil
	}
	id, err := cmd.Flags().GetInt64("proxy-id")
	if err != nil {
		return nil, err
	}
	return domain.ProxyIDOrNil(&id), nil
}
