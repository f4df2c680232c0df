// Package oauth provides the loopback redirect catcher and browser utilities
// used by the interactive login.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/gemauth/internal/logger"
)

// CallbackPath is the path the provider redirects to.
const CallbackPath = "/callback"

// ErrStateMismatch is returned when the redirect carries a state other than
// the one the backend issued.
var ErrStateMismatch = errors.New("state mismatch")

// CallbackResult is what the provider sent back on the redirect.
type CallbackResult struct {
	Code  string
	State string
}

// CallbackServer handles OAuth redirect callbacks.
// It starts a local HTTP server to receive the authorization code.
//
// The redirect URI must be known before the backend issues a state, so the
// server starts without one and Expect is called once the state is known.
// Redirects arriving before Expect are rejected.
type CallbackServer struct {
	mu            sync.Mutex
	port          int
	expectedState string
	resultChan    chan CallbackResult
	errChan       chan error
	server        *http.Server
	listener      net.Listener
}

// NewCallbackServer creates a new OAuth callback server.
// If port is 0, a random available port will be chosen on Start.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:       port,
		resultChan: make(chan CallbackResult, 1),
		errChan:    make(chan error, 1),
	}
}

// Start starts the callback server on the configured port.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	// Store the actual port (important when port was 0)
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.sendErr(err)
		}
	}()

	logger.Debug("callback server listening on %s", s.redirectURI())
	return nil
}

// Expect sets the state the redirect must carry.
func (s *CallbackServer) Expect(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expectedState = state
}

// handleCallback processes the OAuth callback request.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if errParam := query.Get("error"); errParam != "" {
		errDesc := query.Get("error_description")
		s.sendErr(fmt.Errorf("oauth error: %s - %s", errParam, errDesc))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, resultHTML("Authorization failed", errDesc))
		return
	}

	s.mu.Lock()
	expected := s.expectedState
	s.mu.Unlock()

	state := query.Get("state")
	if expected == "" || state != expected {
		s.sendErr(fmt.Errorf("%w: got %q", ErrStateMismatch, state))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, resultHTML("Authorization failed", "Invalid state parameter."))
		return
	}

	code := query.Get("code")
	if code == "" {
		s.sendErr(errors.New("no authorization code received"))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, resultHTML("Authorization failed", "No code received."))
		return
	}

	select {
	case s.resultChan <- CallbackResult{Code: code, State: state}:
	default:
	}

	_, _ = fmt.Fprint(w, resultHTML("Authorization successful",
		"You can close this window and return to the terminal."))
}

// sendErr reports the first error without blocking the handler.
func (s *CallbackServer) sendErr(err error) {
	select {
	case s.errChan <- err:
	default:
	}
}

// Wait blocks until a redirect is received or ctx ends.
func (s *CallbackServer) Wait(ctx context.Context) (CallbackResult, error) {
	select {
	case res := <-s.resultChan:
		return res, nil
	case err := <-s.errChan:
		return CallbackResult{}, err
	case <-ctx.Done():
		return CallbackResult{}, fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
	}
}

// Stop shuts down the callback server.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Port returns the port the server is listening on.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// RedirectURI returns the redirect URI for this callback server.
func (s *CallbackServer) RedirectURI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redirectURI()
}

func (s *CallbackServer) redirectURI() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, CallbackPath)
}

func resultHTML(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>gemauth</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; display: flex;
               justify-content: center; align-items: center; height: 100vh; margin: 0; background: #FAFAFA; }
        .card { text-align: center; background: white; padding: 48px 64px; border-radius: 16px;
                border: 1px solid #C7C8CC; }
        h1 { color: #1A73E8; margin: 0 0 8px 0; font-size: 24px; }
        p { color: #5F6368; margin: 0; font-size: 16px; }
    </style>
</head>
<body>
    <div class="card">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}

// ParseCallbackInput accepts what a user pastes after authorizing: either the
// bare code, or the full redirect URL (or just its query string). The state
// is empty when the input does not carry one.
func ParseCallbackInput(input string) (CallbackResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return CallbackResult{}, errors.New("empty input")
	}

	if !strings.Contains(input, "code=") {
		return CallbackResult{Code: input}, nil
	}

	raw := input
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return CallbackResult{}, fmt.Errorf("parse redirect: %w", err)
	}
	if e := values.Get("error"); e != "" {
		return CallbackResult{}, fmt.Errorf("oauth error: %s", e)
	}

	code := values.Get("code")
	if code == "" {
		return CallbackResult{}, errors.New("redirect carries no code")
	}
	return CallbackResult{Code: code, State: values.Get("state")}, nil
}

// OpenBrowser opens the default browser to the given URL.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// FindAvailablePort finds an available port in the given range.
func FindAvailablePort(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}
