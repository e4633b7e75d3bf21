package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#C0392B")
	colorMuted   = lipgloss.Color("#7F8C8D")
	colorSuccess = lipgloss.Color("#27AE60")
	colorWhite   = lipgloss.Color("#FFFFFF")

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(1, 2)

	displayStyle = lipgloss.NewStyle().
			Width(20).
			Align(lipgloss.Right).
			Bold(true).
			Foreground(colorWhite)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Padding(1, 4)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().Foreground(colorPrimary)

	statusDot = lipgloss.NewStyle().Foreground(colorSuccess).Render("●")

	sosButtonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorPrimary).
			Padding(1, 4)

	countdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(lipgloss.Color("#1A0000")).
			Padding(1, 6).
			Align(lipgloss.Center)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginTop(1)
)
