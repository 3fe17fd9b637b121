// Package styles centralises the lipgloss palette shared by the logger and
// the CLI's ANSI rendering.
package styles

import "github.com/charmbracelet/lipgloss"

const (
	Primary   = "#7D56F4"
	Success   = "#04B575"
	Warning   = "#FFA500"
	Error     = "#FF6B6B"
	Info      = "#00CED1"
	TextMuted = "#626262"
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color(Primary)).Padding(0, 1)

	LogDebugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Info))
	LogInfoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(Success))
	LogWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(Warning)).Bold(true)
	LogErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Error)).Bold(true)
	MutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(TextMuted)).Italic(true)

	StatusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color(TextMuted)).Padding(0, 1)
)

// RGBStyle builds a lipgloss style from an 8-bit RGB triple, for rendering
// a theme.RGBA-styled span in cmd/tmview's bubbletea viewport.
func RGBStyle(r, g, b uint8, bold, italic, underline bool) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(hex(r, g, b)))
	if bold {
		s = s.Bold(true)
	}
	if italic {
		s = s.Italic(true)
	}
	if underline {
		s = s.Underline(true)
	}
	return s
}

func hex(r, g, b uint8) string {
	const hextable = "0123456789abcdef"
	buf := [7]byte{'#'}
	buf[1], buf[2] = hextable[r>>4], hextable[r&0xf]
	buf[3], buf[4] = hextable[g>>4], hextable[g&0xf]
	buf[5], buf[6] = hextable[b>>4], hextable[b&0xf]
	return string(buf[:])
}
