package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type choice struct {
	id    string
	title string
}

// ChoiceStep picks one option with the arrow keys.
type ChoiceStep struct {
	prompt  string
	choices []choice
	cursor  int
	apply   func(state *InstallState, id string)
}

func NewChoiceStep(prompt string, choices []choice, apply func(*InstallState, string)) Step {
	return &ChoiceStep{prompt: prompt, choices: choices, apply: apply}
}

func NewStoreStep() Step {
	return NewChoiceStep("Where should conversations be remembered?", []choice{
		{id: "notion", title: "Notion database"},
		{id: "sqlite", title: "Local SQLite file"},
	}, func(state *InstallState, id string) {
		state.Env.StoreBackend = id
	})
}

func NewTelegramStep() Step {
	return NewChoiceStep("Also answer on Telegram?", []choice{
		{id: "no", title: "No, LINE only"},
		{id: "yes", title: "Yes, add a Telegram bot"},
	}, func(state *InstallState, id string) {
		state.Env.EnableTelegram = id == "yes"
	})
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.choices)-1 {
			s.cursor++
		}
	case "enter":
		s.apply(state, s.choices[s.cursor].id)
		return nil, nil
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.prompt + "\n\n")
	for i, c := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", c.title)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", c.title)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
