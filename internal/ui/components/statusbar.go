package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/duscan/internal/format"
	"github.com/sadopc/duscan/internal/ui/style"
)

// StatusInfo holds the current state for the status bar.
type StatusInfo struct {
	FileCount int
	DirCount  int
	TotalSize uint64
	Skipped   int
	StatusMsg string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(theme style.Theme, info StatusInfo, width int) string {
	if info.StatusMsg != "" {
		msgLine := " " + lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).Render(info.StatusMsg)
		return theme.StatusBarStyle.Width(width).Render(msgLine)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%s files", format.Count(int64(info.FileCount))))
	parts = append(parts, fmt.Sprintf("%s dirs", format.Count(int64(info.DirCount))))
	parts = append(parts, format.Size(info.TotalSize))

	if info.Skipped > 0 {
		skipped := lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true).
			Render(fmt.Sprintf("! %d skipped", info.Skipped))
		parts = append(parts, skipped)
	}

	left := " " + strings.Join(parts, " | ")

	hints := []struct{ key, desc string }{
		{"?", "help"},
		{"E", "export"},
		{"n", "new scan"},
		{"q", "quit"},
	}

	var rightParts []string
	for _, h := range hints {
		k := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(h.key)
		d := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(" " + h.desc)
		rightParts = append(rightParts, k+d)
	}
	right := strings.Join(rightParts, "  ") + " "

	leftW := lipgloss.Width(left)
	rightW := lipgloss.Width(right)
	gap := width - leftW - rightW
	if gap < 1 {
		gap = 1
	}

	line := left + strings.Repeat(" ", gap) + right
	return theme.StatusBarStyle.Width(width).Render(line)
}

// RenderTabBar renders the view mode tab bar.
func RenderTabBar(theme style.Theme, activeView int, width int) string {
	tabs := []string{"Directories", "Files", "File Types", "System"}

	var tabLine []string
	for i, tab := range tabs {
		label := fmt.Sprintf(" %d %s ", i+1, tab)
		if i == activeView {
			tabLine = append(tabLine, theme.TabActiveStyle.Render(label))
		} else {
			tabLine = append(tabLine, theme.TabInactiveStyle.Render(label))
		}
	}

	left := " " + strings.Join(tabLine, " ")

	leftW := lipgloss.Width(left)
	gap := width - leftW
	if gap < 1 {
		gap = 1
	}

	line := left + strings.Repeat(" ", gap)
	return lipgloss.NewStyle().
		Foreground(theme.TextSecondary).
		Background(theme.BgLight).
		Width(width).
		Render(line)
}
