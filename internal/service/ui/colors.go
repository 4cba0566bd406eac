package ui

import "github.com/charmbracelet/lipgloss"

// ANSI colors only, so the help output reads on light and dark terminals.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	DescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	FlagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	// OKStyle and FailStyle mark check results in the store-check command.
	OKStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	FailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)
