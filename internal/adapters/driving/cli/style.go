package cli

import (
	"html"
	"io"
	"os"
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// theme is the colour palette of styled output.
type theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

func defaultTheme() theme {
	return theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Success:   lipgloss.Color("#A6E3A1"), // Green
		Warning:   lipgloss.Color("#F9E2AF"), // Yellow
		Error:     lipgloss.Color("#F38BA8"), // Red
	}
}

// styles holds the lipgloss styles of terminal output.
// Every style is a no-op when output is not a terminal.
type styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Danger   lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return &styles{
			Title:    plain,
			Subtitle: plain,
			Label:    plain,
			Muted:    plain,
			Success:  plain,
			Warning:  plain,
			Danger:   plain,
		}
	}

	t := defaultTheme()
	return &styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary),

		Label: lipgloss.NewStyle().
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(t.Muted),

		Success: lipgloss.NewStyle().
			Foreground(t.Success),

		Warning: lipgloss.NewStyle().
			Foreground(t.Warning),

		Danger: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Error),
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var markupTag = regexp.MustCompile(`<[^>]*>`)

// plainText strips annotation markup for terminal display.
func plainText(s string) string {
	return html.UnescapeString(markupTag.ReplaceAllString(s, ""))
}
