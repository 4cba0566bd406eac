package installer

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep fills in derived values before the file is written.
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	finalize(&state.Env)
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}

func finalize(env *EnvFile) {
	env.PublicBaseURL = strings.TrimRight(env.PublicBaseURL, "/")
	if env.StoreBackend == "" {
		env.StoreBackend = "notion"
	}
	if env.StoreBackend != "notion" {
		env.NotionAPIKey, env.NotionDatabaseID = "", ""
	}
	if env.TelegramToken == "" {
		env.EnableTelegram = false
		env.TelegramOwnerID = ""
	}
}
