package tui

import "github.com/charmbracelet/lipgloss"

var (
	playerColor  = lipgloss.Color("#1C83E1")
	bankerColor  = lipgloss.Color("#FF4B4B")
	tieColor     = lipgloss.Color("#28A745")
	neutralColor = lipgloss.Color("#555555")
	mutedColor   = lipgloss.Color("#626262")
	accentColor  = lipgloss.Color("#00FFCC")
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	AxisBoxStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Align(lipgloss.Center).
			Padding(1, 2)

	MetricStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1).
			Align(lipgloss.Center)

	RoundInfoStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	PlayerBeadStyle = lipgloss.NewStyle().Foreground(playerColor).Bold(true)
	BankerBeadStyle = lipgloss.NewStyle().Foreground(bankerColor).Bold(true)
	TieBeadStyle    = lipgloss.NewStyle().Foreground(tieColor).Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)
