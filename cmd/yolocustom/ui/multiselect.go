package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// MultiSelectModel is a checkbox list.
type MultiSelectModel struct {
	title     string
	choices   []string
	checked   []bool
	cursor    int
	done      bool
	cancelled bool
	styles    Styles
}

// NewMultiSelectModel creates a checkbox list. Choices listed in defaults
// start checked.
func NewMultiSelectModel(title string, choices, defaults []string) MultiSelectModel {
	on := make(map[string]bool, len(defaults))
	for _, d := range defaults {
		on[d] = true
	}
	checked := make([]bool, len(choices))
	for i, c := range choices {
		checked[i] = on[c]
	}
	return MultiSelectModel{
		title:   title,
		choices: choices,
		checked: checked,
		styles:  DefaultStyles(),
	}
}

// Init initializes the model.
func (m MultiSelectModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses.
func (m MultiSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case " ", "x":
		if len(m.checked) > 0 {
			m.checked[m.cursor] = !m.checked[m.cursor]
		}
	case "a":
		all := true
		for _, c := range m.checked {
			all = all && c
		}
		for i := range m.checked {
			m.checked[i] = !all
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the checkboxes.
func (m MultiSelectModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("? "+m.title) + "\n")
	for i, choice := range m.choices {
		box := "[ ]"
		if m.checked[i] {
			box = "[x]"
		}
		line := box + " " + choice
		switch {
		case i == m.cursor:
			b.WriteString(m.styles.Cursor.Render("> "+line) + "\n")
		case m.checked[i]:
			b.WriteString(m.styles.Selected.Render("  "+line) + "\n")
		default:
			b.WriteString(m.styles.Item.Render("  "+line) + "\n")
		}
	}
	b.WriteString(m.styles.Help.Render("space toggle • a all • enter confirm • esc cancel") + "\n")
	return b.String()
}

// Selected returns the checked choices in list order.
func (m MultiSelectModel) Selected() []string {
	var out []string
	for i, c := range m.choices {
		if m.checked[i] {
			out = append(out, c)
		}
	}
	return out
}

// Cancelled reports whether the user backed out.
func (m MultiSelectModel) Cancelled() bool {
	return m.cancelled
}

// MultiSelect shows a checkbox list and returns the checked choices.
func MultiSelect(title string, choices, defaults []string) ([]string, error) {
	final, err := tea.NewProgram(NewMultiSelectModel(title, choices, defaults)).Run()
	if err != nil {
		return nil, err
	}
	m := final.(MultiSelectModel)
	if m.Cancelled() {
		return nil, ErrCancelled
	}
	return m.Selected(), nil
}
