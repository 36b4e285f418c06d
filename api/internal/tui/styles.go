package tui

import "github.com/charmbracelet/lipgloss"

// Палитра Catppuccin.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#e64553", Dark: "#f38ba8"}). // Red
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#dc8a78", Dark: "#f2cdcd"}). // Rosewater
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#ea76cb", Dark: "#f5c2e7"}). // Pink
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#dc8a78", Dark: "#f2cdcd"}). // Rosewater
			Padding(0, 1)

	toggleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4c4f69", Dark: "#cdd6f4"}). // Text
			PaddingLeft(2)

	toggleCursorStyle = toggleStyle.
				Foreground(lipgloss.AdaptiveColor{Light: "#7287fd", Dark: "#b4befe"}). // Lavender
				Bold(true)

	responseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4c4f69", Dark: "#cdd6f4"}). // Text
			Padding(0, 2)

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"}). // Red
			Padding(0, 2)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#7287fd", Dark: "#b4befe"}). // Lavender
			Bold(true).
			PaddingLeft(1).
			PaddingRight(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#eff1f5", Dark: "#cdd6f4"}).
			Background(lipgloss.AdaptiveColor{Light: "#e64553", Dark: "#d20f39"}).
			Bold(true).
			Padding(0, 1)
)
