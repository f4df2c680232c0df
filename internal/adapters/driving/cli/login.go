package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/gemauth/internal/adapters/driving/oauth"
	"github.com/custodia-labs/gemauth/internal/adapters/driving/tui"
	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/core/ports/driving"
	"github.com/custodia-labs/gemauth/internal/logger"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize a Gemini account end to end",
	Long: `Run the whole Gemini authorization-code flow.

Without a configured redirect URI, gemauth listens on a loopback port,
opens the authorization URL in the browser, and catches the redirect.

With --redirect-uri (or oauth.redirect_uri) set, gemauth prints the URL and
asks you to paste the code or the full redirect URL.

Use --tui for an interactive terminal view of the paste flow.

Examples:
  gemauth login
  gemauth login --proxy-id 3 --label work
  gemauth login --redirect-uri https://console.example.com/oauth/callback --tui`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// Flags for login.
var (
	loginRedirectURI string
	loginNoBrowser   bool
	loginTUI         bool
	loginTimeout     time.Duration
	loginLabel       string
	loginNoSave      bool
)

func init() {
	loginCmd.Flags().StringVar(&loginRedirectURI, "redirect-uri", "",
		"Redirect URI for paste mode (default from oauth.redirect_uri)")
	loginCmd.Flags().Int64("proxy-id", 0, "Backend proxy id (0 = none)")
	loginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "Print the URL instead of opening a browser")
	loginCmd.Flags().BoolVar(&loginTUI, "tui", false, "Use the interactive terminal view")
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "How long to wait for authorization")
	loginCmd.Flags().StringVar(&loginLabel, "label", "", "Label for the stored credential")
	loginCmd.Flags().BoolVar(&loginNoSave, "no-save", false, "Print the credential without storing it")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	s, err := backendServices()
	if err != nil {
		return err
	}

	proxyID, err := proxyIDFlag(cmd, s)
	if err != nil {
		return err
	}

	redirectURI := loginRedirectURI
	if redirectURI == "" {
		redirectURI = s.Settings.OAuth.RedirectURI
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	if loginTUI {
		return runLoginTUI(ctx, cmd, s, redirectURI, proxyID)
	}

	flow := s.NewFlow()
	var code string
	if redirectURI != "" {
		code, err = loginPaste(ctx, cmd, s, flow, redirectURI, proxyID)
	} else {
		code, redirectURI, err = loginCallback(ctx, cmd, s, flow, proxyID)
	}
	if err != nil {
		return err
	}

	logger.Debug("exchanging authorization code for session %s", flow.SessionID())
	payload := flow.FinishFlow(ctx, domain.FinishParams{
		Code:        code,
		SessionID:   flow.SessionID(),
		State:       flow.State(),
		RedirectURI: redirectURI,
		ProxyID:     proxyID,
	})
	if payload == nil {
		return errors.New(flow.Error())
	}

	cred := flow.Normalize(payload)
	return finishLogin(cmd, s, cred, proxyID)
}

// loginCallback runs the flow with a loopback redirect catcher and returns
// the code and the redirect URI it used.
func loginCallback(
	ctx context.Context, cmd *cobra.Command, s *Services, flow driving.OAuthFlow, proxyID *int64,
) (string, string, error) {
	port := s.Settings.OAuth.CallbackPort
	if port == 0 {
		var err error
		port, err = oauth.FindAvailablePort(domain.DefaultCallbackPortStart, domain.DefaultCallbackPortEnd)
		if err != nil {
			return "", "", err
		}
	}

	server := oauth.NewCallbackServer(port)
	if err := server.Start(); err != nil {
		return "", "", err
	}
	defer func() {
		if err := server.Stop(); err != nil {
			logger.Warn("stopping callback server: %v", err)
		}
	}()

	redirectURI := server.RedirectURI()
	if !flow.StartFlow(ctx, proxyID, redirectURI) {
		return "", "", errors.New(flow.Error())
	}
	server.Expect(flow.State())

	presentAuthURL(cmd, s, flow.AuthURL())
	cmd.PrintErrln("Waiting for authorization...")

	res, err := server.Wait(ctx)
	if err != nil {
		return "", "", err
	}
	return res.Code, redirectURI, nil
}

// loginPaste runs the flow with a user-supplied redirect URI and reads the
// code from stdin.
func loginPaste(
	ctx context.Context, cmd *cobra.Command, s *Services, flow driving.OAuthFlow,
	redirectURI string, proxyID *int64,
) (string, error) {
	if !flow.StartFlow(ctx, proxyID, redirectURI) {
		return "", errors.New(flow.Error())
	}

	presentAuthURL(cmd, s, flow.AuthURL())
	cmd.PrintErr("Paste the authorization code or the full redirect URL: ")

	lines := make(chan string, 1)
	go func() {
		reader := bufio.NewReader(cmd.InOrStdin())
		line, _ := reader.ReadString('\n')
		lines <- line
	}()

	var line string
	select {
	case line = <-lines:
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization code: %w", ctx.Err())
	}

	res, err := oauth.ParseCallbackInput(line)
	if err != nil {
		return "", err
	}
	if res.State != "" && res.State != flow.State() {
		return "", fmt.Errorf("%w: the pasted redirect belongs to a different login attempt", oauth.ErrStateMismatch)
	}
	return res.Code, nil
}

func presentAuthURL(cmd *cobra.Command, s *Services, authURL string) {
	cmd.PrintErrf("Open this URL to authorize access:\n\n  %s\n\n", authURL)
	if loginNoBrowser || s.OpenBrowser == nil {
		return
	}
	if err := s.OpenBrowser(authURL); err != nil {
		logger.Warn("could not open browser: %v", err)
	}
}

func finishLogin(cmd *cobra.Command, s *Services, cred domain.Credential, proxyID *int64) error {
	if loginNoSave || s.Credentials == nil {
		return writeJSON(cmd, cred)
	}

	id, err := saveCredential(cmd, s, cred, loginLabel, proxyID)
	if err != nil {
		// the code is spent; print the credential so it is not lost
		if werr := writeJSON(cmd, cred); werr != nil {
			return errors.Join(err, werr)
		}
		return err
	}
	cmd.Printf("Saved credential %s\n", id)
	printCredentialSummary(cmd, cred)
	return nil
}

func runLoginTUI(
	ctx context.Context, cmd *cobra.Command, s *Services, redirectURI string, proxyID *int64,
) error {
	if redirectURI == "" {
		return fmt.Errorf("--tui needs a redirect URI (pass --redirect-uri or set %s): %w",
			domain.KeyOAuthRedirectURI, domain.ErrMissingRedirectURI)
	}

	ports := &tui.Ports{Flow: s.NewFlow()}
	if !loginNoSave {
		ports.Credentials = s.Credentials
	}

	opts := tui.Options{RedirectURI: redirectURI, ProxyID: proxyID, Label: loginLabel}
	if !loginNoBrowser {
		opts.OpenBrowser = s.OpenBrowser
	}

	app, err := tui.NewApp(ports, opts)
	if err != nil {
		return err
	}
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithContext(ctx), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if app.Credential() != nil && app.SavedID() == "" {
		if err := writeJSON(cmd, app.Credential()); err != nil {
			return err
		}
	}
	if app.Err() != "" {
		return errors.New(app.Err())
	}
	if app.Credential() == nil {
		return errors.New("login cancelled")
	}
	return nil
}

func printCredentialSummary(cmd *cobra.Command, cred domain.Credential) {
	cmd.Printf("  Access token:  %s\n", logger.Redact(cred.AccessToken))
	cmd.Printf("  Refresh token: %t\n", cred.HasRefreshToken())
	if expiry, ok := cred.ExpiryTime(); ok {
		cmd.Printf("  Expires:       %s\n", expiry.UTC().Format(time.RFC3339))
	} else if cred.ExpiresAt != "" {
		cmd.Printf("  Expires:       %s\n", cred.ExpiresAt)
	}
	if cred.ProjectID != "" {
		cmd.Printf("  Project:       %s\n", cred.ProjectID)
	}
	if cred.Scope != "" {
		cmd.Printf("  Scope:         %s\n", strings.TrimSpace(cred.Scope))
	}
}
