package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#c4b5fd"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	playingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ade80"))

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#d4a844"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8b5cf6"))

	headItemStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#e4e4ec"))

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9aa0ae"))

	captionBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3a3a4a")).
			Padding(1, 2)

	wordSungStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ade80"))

	wordUnsungStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f87171"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#d4a844"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))
)
