// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/gemauth/internal/adapters/driving/tui/styles"
)

// CodeInput wraps a bubbles textinput for pasting the authorization code
// or the full redirect URL.
type CodeInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewCodeInput creates a new code input component.
func NewCodeInput(s *styles.Styles) *CodeInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Paste the code or the redirect URL..."
	ti.Focus()
	ti.CharLimit = 2048
	ti.Width = 60

	return &CodeInput{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init initialises the input.
func (c *CodeInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (c *CodeInput) Update(msg tea.Msg) (*CodeInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the input.
func (c *CodeInput) View() string {
	label := c.styles.Title.Render("Code: ")
	field := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (c *CodeInput) Value() string {
	return c.textinput.Value()
}

// SetValue sets the input value.
func (c *CodeInput) SetValue(value string) {
	c.textinput.SetValue(value)
}

// Focused returns whether the input is focused.
func (c *CodeInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the width of the input.
func (c *CodeInput) SetWidth(width int) {
	c.width = width
	inputWidth := width - 12
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *CodeInput) Width() int {
	return c.width
}

// Reset clears the input.
func (c *CodeInput) Reset() {
	c.textinput.Reset()
}
