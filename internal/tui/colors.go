package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ConfigureColors picks the lipgloss colour profile for out. Colour is
// disabled when out is not a terminal or NO_COLOR is set.
func ConfigureColors(out io.Writer) {
	if os.Getenv("NO_COLOR") != "" || !isTerminal(out) {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.NewOutput(out).EnvColorProfile())
}

// IsInteractive reports whether both stdin and stdout are terminals, so
// prompting the user is possible
func IsInteractive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(w interface{}) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ColorBranchName renders a branch name, highlighting the current branch
func ColorBranchName(name string, isCurrent bool) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	if isCurrent {
		style = style.Bold(true)
	}
	return style.Render(name)
}
