package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/gemauth/internal/adapters/driving/oauth"
	"github.com/custodia-labs/gemauth/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/gemauth/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/gemauth/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/gemauth/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/gemauth/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/logger"
)

// App is the login model following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	opts  Options
	ctx   context.Context

	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model
	input   *input.CodeInput
	status  *status.Bar

	phase status.State
	// startFailed distinguishes a failed StartFlow from a failed exchange,
	// so retry knows whether the authorization URL is still usable.
	startFailed bool

	flowState  domain.FlowState
	credential *domain.Credential
	savedID    string
	errMsg     string
	notice     string

	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new login model.
func NewApp(ports *Ports, opts Options) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingFlow)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(s.Theme().Primary)

	return &App{
		ports:   ports,
		opts:    opts,
		ctx:     context.Background(),
		styles:  s,
		keymap:  km,
		spinner: sp,
		input:   input.NewCodeInput(s),
		status:  status.NewBar(s, km),
		phase:   status.StateStarting,
	}, nil
}

// WithContext sets the context for backend calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("gemauth - Gemini login"),
		a.spinner.Tick,
		a.startFlow(),
	)
}

func (a *App) startFlow() tea.Cmd {
	flow := a.ports.Flow
	ctx, proxyID, redirectURI := a.ctx, a.opts.ProxyID, a.opts.RedirectURI
	return func() tea.Msg {
		ok := flow.StartFlow(ctx, proxyID, redirectURI)
		return messages.FlowStarted{OK: ok, State: flow.Snapshot()}
	}
}

func (a *App) finishFlow(code string) tea.Cmd {
	flow := a.ports.Flow
	ctx := a.ctx
	params := domain.FinishParams{
		Code:        code,
		SessionID:   a.flowState.SessionID,
		State:       a.flowState.State,
		RedirectURI: a.opts.RedirectURI,
		ProxyID:     a.opts.ProxyID,
	}
	return func() tea.Msg {
		payload := flow.FinishFlow(ctx, params)
		if payload == nil {
			return messages.FlowFinished{Err: flow.Error()}
		}
		return messages.FlowFinished{Payload: payload}
	}
}

func (a *App) saveCredential(cred domain.Credential) tea.Cmd {
	svc := a.ports.Credentials
	ctx := a.ctx
	now := time.Now().UTC()
	stored := domain.StoredCredential{
		ID:         uuid.New().String(),
		Label:      a.opts.Label,
		ProxyID:    domain.ProxyIDOrNil(a.opts.ProxyID),
		Credential: cred,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return func() tea.Msg {
		if err := svc.Save(ctx, stored); err != nil {
			return messages.CredentialSaved{Err: err}
		}
		return messages.CredentialSaved{ID: stored.ID}
	}
}

func (a *App) openBrowser() tea.Cmd {
	open := a.opts.OpenBrowser
	url := a.flowState.AuthURL
	return func() tea.Msg {
		return messages.BrowserOpened{Err: open(url)}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		if a.busy() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case messages.FlowStarted:
		a.flowState = msg.State
		if !msg.OK {
			a.fail(msg.State.Error, true)
			return a, nil
		}
		a.setPhase(status.StateAwaiting)
		return a, a.input.Init()

	case messages.FlowFinished:
		if msg.Payload == nil {
			a.fail(msg.Err, false)
			return a, nil
		}
		cred := a.ports.Flow.Normalize(msg.Payload)
		a.credential = &cred
		if a.ports.Credentials == nil {
			a.setPhase(status.StateDone)
			return a, tea.Quit
		}
		return a, a.saveCredential(cred)

	case messages.CredentialSaved:
		if msg.Err != nil {
			a.fail(fmt.Sprintf("saving credential: %v", msg.Err), false)
			return a, nil
		}
		a.savedID = msg.ID
		a.setPhase(status.StateDone)
		return a, tea.Quit

	case messages.BrowserOpened:
		if msg.Err != nil {
			a.notice = fmt.Sprintf("could not open browser: %v", msg.Err)
		} else {
			a.notice = "Opened in browser."
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keymap.Matches(keyStr, a.keymap.Quit) {
		return a, tea.Quit
	}

	switch a.phase {
	case status.StateAwaiting:
		switch {
		case keymap.Matches(keyStr, a.keymap.Submit):
			return a, a.submit()
		case keymap.Matches(keyStr, a.keymap.Open) && a.opts.OpenBrowser != nil:
			return a, a.openBrowser()
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd

	case status.StateError:
		if keymap.Matches(keyStr, a.keymap.Retry) {
			return a, a.retry()
		}
	}

	return a, nil
}

// submit validates the pasted input and starts the exchange.
func (a *App) submit() tea.Cmd {
	res, err := oauth.ParseCallbackInput(a.input.Value())
	if err != nil {
		a.notice = err.Error()
		return nil
	}
	if res.State != "" && res.State != a.flowState.State {
		a.notice = "the pasted redirect belongs to a different login attempt"
		return nil
	}

	a.notice = ""
	a.setPhase(status.StateExchanging)
	return tea.Batch(a.spinner.Tick, a.finishFlow(res.Code))
}

func (a *App) retry() tea.Cmd {
	a.errMsg = ""
	a.notice = ""
	a.status.SetMessage("")
	if a.credential != nil && a.savedID == "" && a.ports.Credentials != nil {
		// the exchange already succeeded; only the save is retried
		a.setPhase(status.StateExchanging)
		return tea.Batch(a.spinner.Tick, a.saveCredential(*a.credential))
	}
	if a.startFailed {
		a.ports.Flow.Reset()
		a.flowState = domain.FlowState{}
		a.setPhase(status.StateStarting)
		return tea.Batch(a.spinner.Tick, a.startFlow())
	}
	a.input.Reset()
	a.setPhase(status.StateAwaiting)
	return a.input.Init()
}

func (a *App) fail(msg string, duringStart bool) {
	logger.Warn("login failed: %s", msg)
	a.errMsg = msg
	a.startFailed = duringStart
	a.status.SetMessage(msg)
	a.setPhase(status.StateError)
}

func (a *App) setPhase(p status.State) {
	a.phase = p
	a.status.SetState(p)
}

func (a *App) busy() bool {
	return a.phase == status.StateStarting || a.phase == status.StateExchanging
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("Gemini OAuth login"))
	b.WriteString("\n\n")

	switch a.phase {
	case status.StateStarting:
		b.WriteString(a.spinner.View() + " Requesting authorization URL...\n")

	case status.StateAwaiting:
		b.WriteString(a.styles.Normal.Render("Open this URL and authorize access:"))
		b.WriteString("\n\n")
		b.WriteString(a.styles.Link.Render(a.flowState.AuthURL))
		b.WriteString("\n\n")
		b.WriteString(a.input.View())
		b.WriteString("\n")

	case status.StateExchanging:
		b.WriteString(a.spinner.View() + " Exchanging authorization code...\n")

	case status.StateDone:
		b.WriteString(a.styles.Success.Render("Authorization complete."))
		b.WriteString("\n\n")
		b.WriteString(a.renderCredential())

	case status.StateError:
		b.WriteString(a.styles.Error.Render(a.errMsg))
		b.WriteString("\n")
	}

	if a.notice != "" {
		b.WriteString("\n" + a.styles.Warning.Render(a.notice) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(a.status.View())
	return b.String()
}

func (a *App) renderCredential() string {
	if a.credential == nil {
		return ""
	}
	c := a.credential
	rows := [][2]string{
		{"Access token", logger.Redact(c.AccessToken)},
		{"Refresh", fmt.Sprintf("%t", c.HasRefreshToken())},
		{"Expires at", c.ExpiresAt},
		{"Token type", c.TokenType},
		{"Scope", c.Scope},
		{"Project", c.ProjectID},
	}
	if a.savedID != "" {
		rows = append(rows, [2]string{"Saved as", a.savedID})
	}

	var b strings.Builder
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		b.WriteString(a.styles.Label.Render(r[0]) + " " + a.styles.Normal.Render(r[1]) + "\n")
	}
	return b.String()
}

// SetDimensions updates the terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.status.SetWidth(width)
	a.input.SetWidth(width)
}

// Phase returns the current login phase.
func (a *App) Phase() status.State {
	return a.phase
}

// Credential returns the normalized credential once the exchange succeeded.
func (a *App) Credential() *domain.Credential {
	return a.credential
}

// SavedID returns the stored credential id, if it was saved.
func (a *App) SavedID() string {
	return a.savedID
}

// Err returns the last error message.
func (a *App) Err() string {
	return a.errMsg
}

// FlowState returns the last observed flow state.
func (a *App) FlowState() domain.FlowState {
	return a.flowState
}
