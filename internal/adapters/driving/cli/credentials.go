package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/logger"
)

var credentialsCmd = &cobra.Command{
	Use:     "credentials",
	Aliases: []string{"creds"},
	Short:   "Manage stored Gemini credentials",
	Long:    `List, show, inspect, or remove credentials saved by login and oauth exchange.`,
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credentials",
	Args:  cobra.NoArgs,
	RunE:  runCredentialsList,
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show [credential-id]",
	Short: "Show a stored credential",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredentialsShow,
}

var credentialsRemoveCmd = &cobra.Command{
	Use:     "remove [credential-id]",
	Aliases: []string{"rm"},
	Short:   "Remove a stored credential",
	Args:    cobra.ExactArgs(1),
	RunE:    runCredentialsRemove,
}

var credentialsInspectCmd = &cobra.Command{
	Use:   "inspect [credential-id]",
	Short: "Ask the token issuer about a stored credential",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredentialsInspect,
}

// Flags for credentials commands.
var (
	credentialsJSON        bool
	credentialsShowSecrets bool
)

func init() {
	credentialsShowCmd.Flags().BoolVar(&credentialsJSON, "json", false, "Output as JSON")
	credentialsShowCmd.Flags().BoolVar(&credentialsShowSecrets, "show-secrets", false, "Print tokens unredacted")

	credentialsCmd.AddCommand(credentialsListCmd)
	credentialsCmd.AddCommand(credentialsShowCmd)
	credentialsCmd.AddCommand(credentialsRemoveCmd)
	credentialsCmd.AddCommand(credentialsInspectCmd)
	rootCmd.AddCommand(credentialsCmd)
}

func credentialServices() (*Services, error) {
	s, err := loadServices()
	if err != nil {
		return nil, err
	}
	if s.Credentials == nil {
		return nil, errors.New("credential storage not configured")
	}
	return s, nil
}

func runCredentialsList(cmd *cobra.Command, _ []string) error {
	s, err := credentialServices()
	if err != nil {
		return err
	}

	creds, err := s.Credentials.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list credentials: %w", err)
	}

	if len(creds) == 0 {
		cmd.Println("No credentials stored. Run 'gemauth login' to add one.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tPROXY\tEXPIRES\tREFRESH")
	for i := range creds {
		c := &creds[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.ID, orDash(c.Label), proxyLabel(c.ProxyID), expiryLabel(c.Credential), yesNo(c.Credential.HasRefreshToken()))
	}
	return w.Flush()
}

func runCredentialsShow(cmd *cobra.Command, args []string) error {
	s, err := credentialServices()
	if err != nil {
		return err
	}

	stored, err := s.Credentials.Get(cmd.Context(), args[0])
	if err != nil {
		return credentialError(args[0], err)
	}

	out := *stored
	if !credentialsShowSecrets {
		out.Credential.AccessToken = logger.Redact(out.Credential.AccessToken)
		if out.Credential.RefreshToken != "" {
			out.Credential.RefreshToken = logger.Redact(out.Credential.RefreshToken)
		}
	}

	if credentialsJSON {
		return writeJSON(cmd, out)
	}

	cmd.Printf("ID:      %s\n", out.ID)
	cmd.Printf("Label:   %s\n", orDash(out.Label))
	cmd.Printf("Proxy:   %s\n", proxyLabel(out.ProxyID))
	cmd.Printf("Created: %s\n", out.CreatedAt.Format(time.RFC3339))
	cmd.Printf("Updated: %s\n", out.UpdatedAt.Format(time.RFC3339))
	cmd.Println()
	cmd.Printf("Access token:  %s\n", out.Credential.AccessToken)
	cmd.Printf("Refresh token: %s\n", orDash(out.Credential.RefreshToken))
	cmd.Printf("Token type:    %s\n", orDash(out.Credential.TokenType))
	cmd.Printf("Expires:       %s\n", expiryLabel(out.Credential))
	cmd.Printf("Scope:         %s\n", orDash(out.Credential.Scope))
	cmd.Printf("Project:       %s\n", orDash(out.Credential.ProjectID))
	return nil
}

func runCredentialsRemove(cmd *cobra.Command, args []string) error {
	s, err := credentialServices()
	if err != nil {
		return err
	}

	if err := s.Credentials.Delete(cmd.Context(), args[0]); err != nil {
		return credentialError(args[0], err)
	}
	cmd.Printf("Removed credential %s\n", args[0])
	return nil
}

func runCredentialsInspect(cmd *cobra.Command, args []string) error {
	s, err := credentialServices()
	if err != nil {
		return err
	}

	info, err := s.Credentials.Inspect(cmd.Context(), args[0])
	if err != nil {
		return credentialError(args[0], err)
	}
	return writeJSON(cmd, info)
}

func credentialError(id string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("credential %s not found", id)
	}
	return err
}

func proxyLabel(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

func expiryLabel(c domain.Credential) string {
	expiry, ok := c.ExpiryTime()
	if !ok {
		return orDash(c.ExpiresAt)
	}
	label := expiry.UTC().Format(time.RFC3339)
	if c.IsExpired() {
		label += " (expired)"
	}
	return label
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
