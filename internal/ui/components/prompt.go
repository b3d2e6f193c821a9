package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/duscan/internal/ui/style"
)

// NewPathInput creates the path prompt input.
func NewPathInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "."
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Width = 44
	return ti
}

// RenderPrompt renders the path prompt overlay shown between scans.
func RenderPrompt(theme style.Theme, input textinput.Model, statusMsg string, width, height int) string {
	boxWidth := 56
	if boxWidth > width-4 {
		boxWidth = width - 4
	}

	var lines []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		Render("  duscan")
	lines = append(lines, title)
	lines = append(lines, "")

	ask := lipgloss.NewStyle().
		Foreground(theme.TextSecondary).
		Render("  Directory to analyze (enter for current, q to quit):")
	lines = append(lines, ask)
	lines = append(lines, "  "+input.View())

	if statusMsg != "" {
		lines = append(lines, "")
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(theme.Warning).Render(statusMsg))
	}

	content := strings.Join(lines, "\n")

	box := theme.ModalStyle.
		Width(boxWidth).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
