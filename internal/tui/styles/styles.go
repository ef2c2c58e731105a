package styles

import "github.com/charmbracelet/lipgloss"

// Colors - a pleasant color palette
var (
	// Primary colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Accent    = lipgloss.Color("#F59E0B") // Amber

	// Status colors
	Success = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red
	Info    = lipgloss.Color("#3B82F6") // Blue

	// Neutral colors
	Border    = lipgloss.Color("#4B5563") // Light gray
	Text      = lipgloss.Color("#F9FAFB") // White
	TextMuted = lipgloss.Color("#9CA3AF") // Gray
	TextDim   = lipgloss.Color("#6B7280") // Darker gray
)

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextMuted)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Highlight = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Score = lipgloss.NewStyle().
		Bold(true).
		Foreground(Success)

	Countdown = lipgloss.NewStyle().
			Bold(true).
			Foreground(Accent)

	CountdownLow = lipgloss.NewStyle().
			Bold(true).
			Foreground(Error)

	Correct = lipgloss.NewStyle().
		Bold(true).
		Foreground(Success)

	Revealed = lipgloss.NewStyle().
			Bold(true).
			Foreground(Info)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)

// Border styles
var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	FocusedPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)
)
