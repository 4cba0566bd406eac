package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep asks for one value. Secret values are masked.
type InputStep struct {
	input    textinput.Model
	title    string
	optional bool
	err      error
	apply    func(state *InstallState, value string)
	skip     func(state *InstallState) bool
}

type inputOption func(*InputStep)

func secret() inputOption {
	return func(s *InputStep) {
		s.input.EchoMode = textinput.EchoPassword
		s.input.EchoCharacter = '•'
	}
}

func optional() inputOption {
	return func(s *InputStep) { s.optional = true }
}

func skipWhen(fn func(*InstallState) bool) inputOption {
	return func(s *InputStep) { s.skip = fn }
}

func NewInputStep(title, placeholder string, apply func(*InstallState, string), opts ...inputOption) Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 48
	ti.Placeholder = placeholder

	s := &InputStep{input: ti, title: title, apply: apply}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.skip != nil && s.skip(state) {
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		value := strings.TrimSpace(s.input.Value())
		if value == "" && !s.optional {
			s.err = fmt.Errorf("%s is required", s.title)
			return s, nil
		}
		s.apply(state, value)
		return nil, nil
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	hint := ""
	if s.optional {
		hint = " (optional, press Enter to skip)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Enter your %s%s:\n\n%s\n\n", s.title, hint, s.input.View())
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	b.WriteString("(press enter to confirm)\n")
	return b.String()
}
