package installer

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	selStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Step is one screen of the setup wizard. Returning a nil Step from Update
// moves the wizard on.
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd)
	View(state *InstallState) string
}

func notNotion(state *InstallState) bool { return state.Env.StoreBackend != "notion" }
func noTelegram(state *InstallState) bool { return !state.Env.EnableTelegram }

func getSteps() []Step {
	return []Step{
		NewInputStep("LINE Channel Secret", "32 hex characters",
			func(s *InstallState, v string) { s.Env.LineChannelSecret = v }, secret()),
		NewInputStep("LINE Channel Access Token", "long-lived token",
			func(s *InstallState, v string) { s.Env.LineAccessToken = v }, secret()),
		NewInputStep("Gemini API Key", "AIza...",
			func(s *InstallState, v string) { s.Env.GeminiAPIKey = v }, secret()),
		NewInputStep("Gemini model", "gemini-flash-latest",
			func(s *InstallState, v string) { s.Env.GeminiModel = v }, optional()),
		NewInputStep("public base URL", "https://your-bot.ngrok-free.dev",
			func(s *InstallState, v string) { s.Env.PublicBaseURL = v }),
		NewStoreStep(),
		NewInputStep("Notion integration token", "secret_... or ntn_...",
			func(s *InstallState, v string) { s.Env.NotionAPIKey = v }, secret(), skipWhen(notNotion)),
		NewInputStep("Notion database ID", "32 hex characters",
			func(s *InstallState, v string) { s.Env.NotionDatabaseID = v }, skipWhen(notNotion)),
		NewTelegramStep(),
		NewInputStep("Telegram Bot Token", "123456789:ABCDEF...",
			func(s *InstallState, v string) { s.Env.TelegramToken = v }, secret(), skipWhen(noTelegram)),
		NewInputStep("Telegram User ID (owner)", "123456789",
			func(s *InstallState, v string) { s.Env.TelegramOwnerID = v }, optional(), skipWhen(noTelegram)),
		NewFinalizationStep(),
		NewSaveEnvStep(),
		NewInitializeFilesStep(),
	}
}

// nextMsg nudges a freshly entered step so skipped steps can hand over at once.
type nextMsg struct{}

type model struct {
	steps       []Step
	currentStep int
	state       *InstallState
	quitting    bool
	width       int
	height      int
}

func initialModel(runtimePath string) model {
	return model{
		steps: getSteps(),
		state: NewInstallState(runtimePath),
	}
}

func (m model) Init() tea.Cmd {
	if len(m.steps) > 0 && m.steps[0] != nil {
		return m.steps[0].Init()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	nextStep, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width, m.height)
	if nextStep == nil {
		m.currentStep++
		if m.currentStep >= len(m.steps) {
			return m, tea.Quit
		}
		return m, tea.Batch(m.steps[m.currentStep].Init(), func() tea.Msg { return nextMsg{} })
	}

	if nextStep != m.steps[m.currentStep] {
		m.steps[m.currentStep] = nextStep
	}
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return "Setup cancelled.\n"
	}
	if m.currentStep >= len(m.steps) {
		return "Configuration complete!\n"
	}
	header := titleStyle.Render("Setting up IdeaPartner 💡") +
		itemStyle.Render(fmt.Sprintf("(%d/%d)", m.currentStep+1, len(m.steps)))
	return header + "\n\n" + m.steps[m.currentStep].View(m.state)
}

// RunWizard starts the TUI and returns the collected state once every step ran.
func RunWizard(runtimePath string) (*InstallState, error) {
	p := tea.NewProgram(initialModel(runtimePath), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	finalModel := m.(model)
	if finalModel.quitting {
		return nil, fmt.Errorf("setup interrupted")
	}
	return finalModel.state, nil
}
