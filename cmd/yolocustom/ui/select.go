package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// SelectModel picks one entry from a list.
type SelectModel struct {
	title     string
	choices   []string
	cursor    int
	chosen    int
	cancelled bool
	styles    Styles
}

// NewSelectModel creates a single choice list.
func NewSelectModel(title string, choices []string) SelectModel {
	return SelectModel{
		title:   title,
		choices: choices,
		chosen:  -1,
		styles:  DefaultStyles(),
	}
}

// Init initializes the model.
func (m SelectModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses.
func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.choices) - 1
		}
	case "down", "j", "tab":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}
	case "enter":
		if len(m.choices) > 0 {
			m.chosen = m.cursor
			return m, tea.Quit
		}
	case "esc", "q", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the list.
func (m SelectModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("? "+m.title) + "\n")
	for i, choice := range m.choices {
		if i == m.cursor {
			b.WriteString(m.styles.Cursor.Render("> "+choice) + "\n")
			continue
		}
		b.WriteString(m.styles.Item.Render("  "+choice) + "\n")
	}
	b.WriteString(m.styles.Help.Render("↑/↓ move • enter select • esc cancel") + "\n")
	return b.String()
}

// Choice returns the selected index, or -1.
func (m SelectModel) Choice() int {
	return m.chosen
}

// Cancelled reports whether the user backed out.
func (m SelectModel) Cancelled() bool {
	return m.cancelled
}

// Select shows choices and returns the index picked by the user.
func Select(title string, choices []string) (int, error) {
	if len(choices) == 0 {
		return -1, fmt.Errorf("no choices for %q", title)
	}
	final, err := tea.NewProgram(NewSelectModel(title, choices)).Run()
	if err != nil {
		return -1, err
	}
	m := final.(SelectModel)
	if m.Cancelled() || m.Choice() < 0 {
		return -1, ErrCancelled
	}
	return m.Choice(), nil
}
