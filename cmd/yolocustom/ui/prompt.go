package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PromptModel reads one line of text.
type PromptModel struct {
	title     string
	def       string
	input     textinput.Model
	done      bool
	cancelled bool
	styles    Styles
}

// NewPromptModel creates a text prompt. An empty answer yields def.
func NewPromptModel(title, def string) PromptModel {
	ti := textinput.New()
	ti.Placeholder = def
	ti.Prompt = "> "
	ti.Focus()
	return PromptModel{
		title:  title,
		def:    def,
		input:  ti,
		styles: DefaultStyles(),
	}
}

// Init initializes the model.
func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses.
func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt.
func (m PromptModel) View() string {
	title := "? " + m.title
	if m.def != "" {
		title += " (" + m.def + ")"
	}
	return m.styles.Title.Render(title) + "\n" + m.input.View() + "\n"
}

// Value returns the answer, falling back to the default.
func (m PromptModel) Value() string {
	v := strings.TrimSpace(m.input.Value())
	if v == "" {
		return m.def
	}
	return v
}

// Cancelled reports whether the user backed out.
func (m PromptModel) Cancelled() bool {
	return m.cancelled
}

// Prompt asks for a line of text.
func Prompt(title, def string) (string, error) {
	final, err := tea.NewProgram(NewPromptModel(title, def)).Run()
	if err != nil {
		return "", err
	}
	m := final.(PromptModel)
	if m.Cancelled() {
		return "", ErrCancelled
	}
	return m.Value(), nil
}
