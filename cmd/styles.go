package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6C63FF"))
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2EC4B6"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	goodStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2ECC71"))
	badStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
)

func labelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", keyStyle.Render(fmt.Sprintf("%-12s", label+":")), value)
}

func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}
