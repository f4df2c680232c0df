package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/gemauth/internal/adapters/driven/config/file"
	"github.com/custodia-labs/gemauth/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change gemauth configuration",
	Long: `View and change gemauth configuration.

Keys use dot notation:
  backend.base_url         Admin backend base URL
  backend.admin_token      Admin API bearer token
  backend.timeout_seconds  Request timeout
  backend.rate_per_second  Client-side request rate limit
  backend.burst            Rate limit burst
  oauth.redirect_uri       Default redirect URI (enables paste mode)
  oauth.callback_port      Loopback port for the redirect catcher
  oauth.proxy_id           Default backend proxy id
  ui.language              Message language (en, zh-CN)

Environment variables (GEMAUTH_BASE_URL, GEMAUTH_ADMIN_TOKEN, ...) take
precedence over the file.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Secret keys such as backend.admin_token
may omit the value to be prompted for it without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configuration values",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

// configReveal is a flag for get and list.
var configReveal bool

func init() {
	configGetCmd.Flags().BoolVar(&configReveal, "reveal", false, "Print secret values unmasked")
	configListCmd.Flags().BoolVar(&configReveal, "reveal", false, "Print secret values unmasked")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func configServices() (*Services, error) {
	s, err := loadServices()
	if err != nil {
		return nil, err
	}
	if s.Config == nil {
		return nil, errors.New("configuration store not configured")
	}
	return s, nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	s, err := configServices()
	if err != nil {
		return err
	}

	key := args[0]
	value, ok := s.Config.Get(key)
	if !ok {
		return fmt.Errorf("%s is not set", key)
	}
	cmd.Println(displayValue(key, value))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	s, err := configServices()
	if err != nil {
		return err
	}

	key := args[0]
	var value any
	switch {
	case len(args) == 2 && domain.SecretKeys[key]:
		value = args[1]
	case len(args) == 2:
		value = file.ParseValue(args[1])
	case domain.SecretKeys[key]:
		cmd.PrintErrf("Enter %s: ", key)
		secret, err := readSecret(cmd.InOrStdin())
		cmd.PrintErrln()
		if err != nil {
			return fmt.Errorf("reading %s: %w", key, err)
		}
		if secret == "" {
			return fmt.Errorf("%s cannot be empty", key)
		}
		value = secret
	default:
		return fmt.Errorf("a value is required for %s", key)
	}

	if err := s.Config.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if err := reloadServices(s); err != nil {
		return err
	}

	cmd.Printf("Set %s = %s\n", key, displayValue(key, value))
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	s, err := configServices()
	if err != nil {
		return err
	}

	key := args[0]
	if _, ok := s.Config.Get(key); !ok {
		return fmt.Errorf("%s is not set", key)
	}
	if err := s.Config.Delete(key); err != nil {
		return fmt.Errorf("failed to unset %s: %w", key, err)
	}
	if err := reloadServices(s); err != nil {
		return err
	}

	cmd.Printf("Unset %s\n", key)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	s, err := configServices()
	if err != nil {
		return err
	}

	keys := s.Config.Keys()
	if len(keys) == 0 {
		cmd.Println("No configuration set.")
		return nil
	}
	for _, key := range keys {
		value, _ := s.Config.Get(key)
		cmd.Printf("%s = %s\n", key, displayValue(key, value))
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	s, err := configServices()
	if err != nil {
		return err
	}

	if s.Config.Path() == "" {
		cmd.Println("(in memory)")
		return nil
	}
	cmd.Println(s.Config.Path())
	return nil
}

func reloadServices(s *Services) error {
	if s.Reload == nil {
		return nil
	}
	if err := s.Reload(); err != nil {
		return fmt.Errorf("saved, but the new configuration is invalid: %w", err)
	}
	return nil
}

func displayValue(key string, value any) string {
	text := fmt.Sprint(value)
	if domain.SecretKeys[key] && !configReveal {
		return maskSecret(text)
	}
	return text
}

// readSecret reads a line without echo when in is a terminal.
func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
