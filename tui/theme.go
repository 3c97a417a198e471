package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style
	Card     lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Badge    lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true),
		Subtitle: lipgloss.NewStyle().Faint(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Card: lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
		Label:   lipgloss.NewStyle().Bold(true).Width(24),
		Focused: lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Badge: lipgloss.NewStyle().
			Padding(0, 1).
			Background(lipgloss.Color("63")).
			Foreground(lipgloss.Color("231")),
	}
}
