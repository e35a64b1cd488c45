package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(m tea.Model, keys ...tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(k)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelectModel_Navigation(t *testing.T) {
	m := NewSelectModel("Select an option", []string{"Create", "Prepare", "Quit"})

	got, _ := press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, got.(SelectModel).cursor)

	// Wraps past the end.
	got, _ = press(got, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, got.(SelectModel).cursor)

	// Wraps before the start.
	got, _ = press(got, runes("k"))
	assert.Equal(t, 2, got.(SelectModel).cursor)

	got, cmd := press(got, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, 2, got.(SelectModel).Choice())
	assert.False(t, got.(SelectModel).Cancelled())
}

func TestSelectModel_Cancel(t *testing.T) {
	m := NewSelectModel("Pick", []string{"a"})
	got, cmd := press(m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.True(t, got.(SelectModel).Cancelled())
	assert.Equal(t, -1, got.(SelectModel).Choice())
}

func TestSelectModel_View(t *testing.T) {
	view := NewSelectModel("Pick a config", []string{"a.json", "b.json"}).View()
	assert.True(t, strings.Contains(view, "Pick a config"))
	assert.True(t, strings.Contains(view, "> a.json"))
	assert.True(t, strings.Contains(view, "  b.json"))
}

func TestMultiSelectModel_Toggle(t *testing.T) {
	m := NewMultiSelectModel("Tags", []string{"penguin", "turtle", "seal"}, []string{"penguin", "seal"})
	assert.Equal(t, []string{"penguin", "seal"}, m.Selected())

	// Uncheck penguin, check turtle.
	got, _ := press(m, runes(" "), tea.KeyMsg{Type: tea.KeyDown}, runes(" "))
	assert.Equal(t, []string{"turtle", "seal"}, got.(MultiSelectModel).Selected())

	// "a" checks everything when something is unchecked, then clears.
	got, _ = press(got, runes("a"))
	assert.Equal(t, []string{"penguin", "turtle", "seal"}, got.(MultiSelectModel).Selected())
	got, _ = press(got, runes("a"))
	assert.Empty(t, got.(MultiSelectModel).Selected())

	got, cmd := press(got, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, got.(MultiSelectModel).Cancelled())
}

func TestMultiSelectModel_View(t *testing.T) {
	view := NewMultiSelectModel("Tags", []string{"a", "b"}, []string{"b"}).View()
	assert.True(t, strings.Contains(view, "> [ ] a"))
	assert.True(t, strings.Contains(view, "[x] b"))
}

func TestPromptModel_DefaultAndValue(t *testing.T) {
	m := NewPromptModel("Enter train ratio (0 to 1)", "0.8")
	assert.Equal(t, "0.8", m.Value())

	got, _ := press(m, runes("0"), runes("."), runes("7"))
	assert.Equal(t, "0.7", got.(PromptModel).Value())

	got, cmd := press(got, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, got.(PromptModel).Cancelled())
}

func TestPromptModel_Cancel(t *testing.T) {
	got, _ := press(NewPromptModel("Name", "new_config"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, got.(PromptModel).Cancelled())
}
