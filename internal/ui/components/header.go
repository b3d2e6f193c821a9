package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/duscan/internal/format"
	"github.com/sadopc/duscan/internal/scan"
	"github.com/sadopc/duscan/internal/ui/style"
)

// RenderHeader renders the top header bar with the scanned root and totals.
func RenderHeader(theme style.Theme, res *scan.Result, width int) string {
	if res == nil || width < 10 {
		return ""
	}

	titleStr := " duscan"
	titleStyled := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(titleStr)

	stats := fmt.Sprintf("%s files  %s ",
		format.Count(int64(res.FileCount())),
		format.Size(res.TotalSize),
	)
	statsStyled := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(stats)

	titleW := lipgloss.Width(titleStyled)
	statsW := lipgloss.Width(statsStyled)

	// Path gets whatever space remains
	pathMaxW := width - titleW - statsW - 3
	pathStr := res.Root
	if pathMaxW > 5 {
		pathStr = format.Truncate(pathStr, pathMaxW)
	} else {
		pathStr = ""
	}

	pathStyled := lipgloss.NewStyle().Foreground(theme.TextPrimary).Render("  " + pathStr)
	pathW := lipgloss.Width(pathStyled)

	gap := width - titleW - pathW - statsW
	if gap < 1 {
		gap = 1
	}

	line := titleStyled + pathStyled + strings.Repeat(" ", gap) + statsStyled
	return theme.HeaderStyle.Width(width).Render(line)
}
