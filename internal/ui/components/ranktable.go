package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/duscan/internal/format"
	"github.com/sadopc/duscan/internal/report"
	"github.com/sadopc/duscan/internal/scan"
	"github.com/sadopc/duscan/internal/ui/style"
)

// RenderDirTable renders the ranked directory view. Rows beyond the
// visible window are reached by scrolling via offset.
func RenderDirTable(theme style.Theme, rows []report.DirRow, total uint64, offset int, layout style.Layout) string {
	height := layout.ContentHeight()
	if len(rows) == 0 {
		return emptyView(theme, "(no directories found)", height)
	}

	lines := make([]string, 0, height)
	lines = append(lines, tableTitle(theme, "Top directories by direct contents"))

	offset = clampOffset(offset, len(rows), height-1)
	for i := offset; i < len(rows) && len(lines) < height; i++ {
		r := rows[i]
		ratio := format.Percent(r.Size, total) / 100
		lines = append(lines, rankRow(theme, layout, i+1, ratio, r.Size, r.Path, theme.DirName))
	}

	return padLines(lines, height)
}

// RenderFileTable renders the ranked file view.
func RenderFileTable(theme style.Theme, files []scan.FileEntry, total uint64, offset int, layout style.Layout) string {
	height := layout.ContentHeight()
	if len(files) == 0 {
		return emptyView(theme, "(no files found)", height)
	}

	lines := make([]string, 0, height)
	lines = append(lines, tableTitle(theme, "Top files by size"))

	offset = clampOffset(offset, len(files), height-1)
	for i := offset; i < len(files) && len(lines) < height; i++ {
		f := files[i]
		ratio := format.Percent(f.Size, total) / 100
		lines = append(lines, rankRow(theme, layout, i+1, ratio, f.Size, f.Path, theme.FileName))
	}

	return padLines(lines, height)
}

func rankRow(theme style.Theme, layout style.Layout, rank int, ratio float64, size uint64, path string, nameStyle lipgloss.Style) string {
	rankStr := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(fmt.Sprintf("%3d)", rank))
	pct := theme.PercentText.Render(fmt.Sprintf("%.1f%%", ratio*100))
	bar := theme.BarGradient(layout.BarWidth(), ratio)
	name := nameStyle.Render(format.Truncate(path, layout.PathWidth()))
	sizeStr := theme.SizeText.Width(10).Render(format.Size(size))

	return fmt.Sprintf("%s %s [%s] %s %s", rankStr, pct, bar, name, sizeStr)
}

func tableTitle(theme style.Theme, title string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.TextPrimary).
		Render("  " + title)
}

func emptyView(theme style.Theme, msg string, height int) string {
	lines := []string{lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  " + msg)}
	return padLines(lines, height)
}

func clampOffset(offset, rows, visible int) int {
	if visible < 1 {
		visible = 1
	}
	maxOffset := rows - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

func padLines(lines []string, height int) string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines[:height], "\n")
}
