package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	bodyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	coinStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	bannerStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("208")).
			Padding(0, 1)
)

// SetColorProfile switches every style to p. Use termenv.Ascii when output
// is not a terminal.
func SetColorProfile(p termenv.Profile) {
	lipgloss.SetColorProfile(p)
}

func HEADER(s string) string {
	return headerStyle.Render(s)
}

func BODY(s string) string {
	return bodyStyle.Render(s)
}

func COINS(s string) string {
	return coinStyle.Render(s)
}

func MUTED(s string) string {
	return mutedStyle.Render(s)
}

func SUCCESS(s string) string {
	return successStyle.Render(s)
}

func ERROR(s string) string {
	return errorStyle.Render(s)
}

// BANNER boxes a multi-line celebration message.
func BANNER(s string) string {
	return bannerStyle.Render(s)
}
