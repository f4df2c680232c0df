package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gemauth/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/gemauth/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateStarting, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())
	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_ViewPerState(t *testing.T) {
	tests := []struct {
		state    State
		message  string
		contains []string
	}{
		{StateStarting, "", []string{"Requesting authorization URL", "esc: quit"}},
		{StateAwaiting, "", []string{"Waiting for authorization code", "enter: submit code", "ctrl+o: open browser"}},
		{StateExchanging, "", []string{"Exchanging code"}},
		{StateDone, "", []string{"Done"}},
		{StateError, "backend unavailable", []string{"Error: backend unavailable", "r: retry"}},
		{StateError, "", []string{"Error"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestStatusBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(5)

	assert.NotEmpty(t, bar.View())
}

func TestStatusBar_FitsOnOneLine(t *testing.T) {
	for _, width := range []int{120, 200} {
		bar := NewBar(nil, nil)
		bar.SetWidth(width)
		bar.SetState(StateAwaiting)

		view := bar.View()

		assert.NotContains(t, view, "\n", "width %d", width)
		assert.Equal(t, width, lipgloss.Width(view), "width %d", width)
	}
}
