package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/duscan/internal/format"
	"github.com/sadopc/duscan/internal/report"
	"github.com/sadopc/duscan/internal/ui/style"
)

// RenderExtTable renders the file type distribution view. Each row is
// colored by its category and carries a share bar.
func RenderExtTable(theme style.Theme, rows []report.ExtRow, offset int, layout style.Layout) string {
	width := layout.ContentWidth()
	height := layout.ContentHeight()

	if len(rows) == 0 {
		return emptyView(theme, "(no files found)", height)
	}

	extW := 14
	countW := 10
	sizeW := 12
	barW := width - extW - countW - sizeW - 12
	if barW < 10 {
		barW = 10
	}
	if barW > 30 {
		barW = 30
	}

	var lines []string

	hdrStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.TextPrimary)
	header := fmt.Sprintf("  %-*s %*s %*s  %s",
		extW, "Extension",
		countW, "Files",
		sizeW, "Size",
		"Share",
	)
	lines = append(lines, hdrStyle.Render(header))

	sep := lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  " + strings.Repeat("-", maxInt(width-4, 0)))
	lines = append(lines, sep)

	offset = clampOffset(offset, len(rows), height-2)
	for i := offset; i < len(rows) && len(lines) < height; i++ {
		r := rows[i]
		cat := report.Classify(r.Ext)
		catColor := lipgloss.Color(report.CategoryColor(cat))

		ext := lipgloss.NewStyle().Foreground(catColor).Bold(true).Width(extW).Render(r.Ext)
		count := lipgloss.NewStyle().Foreground(theme.TextSecondary).Width(countW).Align(lipgloss.Right).Render(format.Count(int64(r.Count)))
		size := lipgloss.NewStyle().Foreground(theme.TextSecondary).Width(sizeW).Align(lipgloss.Right).Render(format.Size(r.Size))

		bar := renderShareBar(barW, r.Percent/100, catColor, theme.TextMuted)
		pctStr := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(fmt.Sprintf(" %5.1f%%", r.Percent))

		lines = append(lines, fmt.Sprintf("  %s %s %s  %s%s", ext, count, size, bar, pctStr))
	}

	return padLines(lines, height)
}

func renderShareBar(width int, ratio float64, color, dimColor lipgloss.Color) string {
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}

	var buf strings.Builder
	filledStyle := lipgloss.NewStyle().Foreground(color)
	dimStyle := lipgloss.NewStyle().Foreground(dimColor)

	for i := 0; i < filled; i++ {
		buf.WriteString(filledStyle.Render("="))
	}
	for i := filled; i < width; i++ {
		buf.WriteString(dimStyle.Render("-"))
	}
	return buf.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
