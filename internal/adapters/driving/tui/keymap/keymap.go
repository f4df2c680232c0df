// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the login view.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Submit sends the pasted authorization code.
	Submit key.Binding

	// Retry restarts the flow after a failure.
	Retry key.Binding

	// Open launches the authorization URL in the browser.
	Open key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit code"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Open: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "open browser"),
		),
	}
}

// AwaitingCodeHelp returns keybindings shown while waiting for the code.
func (k *KeyMap) AwaitingCodeHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Open, k.Quit}
}

// FailedHelp returns keybindings shown after a failure.
func (k *KeyMap) FailedHelp() []key.Binding {
	return []key.Binding{k.Retry, k.Quit}
}

// ShortHelp returns the minimal keybindings.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
