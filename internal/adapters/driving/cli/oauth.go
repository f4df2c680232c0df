package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

var oauthCmd = &cobra.Command{
	Use:   "oauth",
	Short: "Run individual steps of the Gemini OAuth flow",
	Long: `Run the two steps of the Gemini authorization-code flow separately.

Examples:
  # Step 1: request an authorization URL
  gemauth oauth auth-url --redirect-uri https://console.example.com/oauth/callback

  # Step 2: exchange the code returned on the redirect
  gemauth oauth exchange --session-id S --state T --code C \
    --redirect-uri https://console.example.com/oauth/callback --save`,
}

var oauthAuthURLCmd = &cobra.Command{
	Use:   "auth-url",
	Short: "Request a Gemini authorization URL",
	Args:  cobra.NoArgs,
	RunE:  runOAuthAuthURL,
}

var oauthExchangeCmd = &cobra.Command{
	Use:   "exchange",
	Short: "Exchange an authorization code for tokens",
	Long: `Exchange an authorization code for Gemini tokens and print the
normalized credential as JSON. Use --raw to print the backend payload as-is.`,
	Args: cobra.NoArgs,
	RunE: runOAuthExchange,
}

// Flags for oauth commands.
var (
	oauthRedirectURI string
	oauthJSON        bool

	exchangeSessionID string
	exchangeState     string
	exchangeCode      string
	exchangeSave      bool
	exchangeLabel     string
	exchangeRaw       bool
)

func init() {
	oauthAuthURLCmd.Flags().StringVar(
		&oauthRedirectURI, "redirect-uri", "", "Redirect URI (default from oauth.redirect_uri)")
	oauthAuthURLCmd.Flags().Int64("proxy-id", 0, "Backend proxy id (0 = none)")
	oauthAuthURLCmd.Flags().BoolVar(&oauthJSON, "json", false, "Output as JSON")

	oauthExchangeCmd.Flags().StringVar(&exchangeSessionID, "session-id", "", "Session id from auth-url")
	oauthExchangeCmd.Flags().StringVar(&exchangeState, "state", "", "State from auth-url")
	oauthExchangeCmd.Flags().StringVar(&exchangeCode, "code", "", "Authorization code from the redirect")
	oauthExchangeCmd.Flags().StringVar(
		&oauthRedirectURI, "redirect-uri", "", "Redirect URI used for auth-url (default from oauth.redirect_uri)")
	oauthExchangeCmd.Flags().Int64("proxy-id", 0, "Backend proxy id (0 = none)")
	oauthExchangeCmd.Flags().BoolVar(&exchangeSave, "save", false, "Store the normalized credential")
	oauthExchangeCmd.Flags().StringVar(&exchangeLabel, "label", "", "Label for the stored credential")
	oauthExchangeCmd.Flags().BoolVar(&exchangeRaw, "raw", false, "Print the raw token payload")

	oauthCmd.AddCommand(oauthAuthURLCmd)
	oauthCmd.AddCommand(oauthExchangeCmd)
	rootCmd.AddCommand(oauthCmd)
}

func runOAuthAuthURL(cmd *cobra.Command, _ []string) error {
	s, err := backendServices()
	if err != nil {
		return err
	}

	proxyID, err := proxyIDFlag(cmd, s)
	if err != nil {
		return err
	}

	redirectURI := oauthRedirectURI
	if redirectURI == "" {
		redirectURI = s.Settings.OAuth.RedirectURI
	}

	flow := s.NewFlow()
	if !flow.StartFlow(cmd.Context(), proxyID, redirectURI) {
		return errors.New(flow.Error())
	}

	result := domain.AuthorizationURL{
		AuthURL:   flow.AuthURL(),
		SessionID: flow.SessionID(),
		State:     flow.State(),
	}

	if oauthJSON {
		return writeJSON(cmd, result)
	}

	cmd.Printf("Authorization URL:\n  %s\n\n", result.AuthURL)
	cmd.Printf("Session ID: %s\n", result.SessionID)
	cmd.Printf("State:      %s\n", result.State)
	return nil
}

func runOAuthExchange(cmd *cobra.Command, _ []string) error {
	s, err := backendServices()
	if err != nil {
		return err
	}

	proxyID, err := proxyIDFlag(cmd, s)
	if err != nil {
		return err
	}

	redirectURI := oauthRedirectURI
	if redirectURI == "" {
		redirectURI = s.Settings.OAuth.RedirectURI
	}

	flow := s.NewFlow()
	payload := flow.FinishFlow(cmd.Context(), domain.FinishParams{
		Code:        exchangeCode,
		SessionID:   exchangeSessionID,
		State:       exchangeState,
		RedirectURI: redirectURI,
		ProxyID:     proxyID,
	})
	if payload == nil {
		return errors.New(flow.Error())
	}

	cred := flow.Normalize(payload)

	var saveErr error
	if exchangeSave {
		var id string
		if id, saveErr = saveCredential(cmd, s, cred, exchangeLabel, proxyID); saveErr == nil {
			cmd.PrintErrf("Saved credential %s\n", id)
		}
	}

	var out any = cred
	if exchangeRaw {
		out = payload
	}
	if err := writeJSON(cmd, out); err != nil {
		return err
	}
	return saveErr
}

// saveCredential stores cred under a new id and returns the id.
func saveCredential(
	cmd *cobra.Command, s *Services, cred domain.Credential, label string, proxyID *int64,
) (string, error) {
	if s.Credentials == nil {
		return "", errors.New("credential storage not configured")
	}

	now := time.Now().UTC()
	stored := domain.StoredCredential{
		ID:         uuid.New().String(),
		Label:      strings.TrimSpace(label),
		ProxyID:    proxyID,
		Credential: cred,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Credentials.Save(cmd.Context(), stored); err != nil {
		return "", fmt.Errorf("failed to save credential: %w", err)
	}
	return stored.ID, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
