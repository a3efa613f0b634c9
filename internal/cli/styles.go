// Package cli renders analysis reports and messages for the terminal.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#D7263D")
	warnColor    = lipgloss.Color("#F4A259")
	okColor      = lipgloss.Color("#5B8E7D")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warnColor).
			MarginTop(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(18)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	MomentStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

// riskStyle colors a risk value by its band.
func riskStyle(risk int) lipgloss.Style {
	switch {
	case risk >= 70:
		return lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	case risk >= 40:
		return lipgloss.NewStyle().Foreground(warnColor)
	default:
		return lipgloss.NewStyle().Foreground(okColor)
	}
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer, version string) {
	fmt.Fprintln(w, TitleStyle.Render("attnrisk"))
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
}

// PrintError prints an error message.
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), message)
}
