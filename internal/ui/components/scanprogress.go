package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/duscan/internal/format"
	"github.com/sadopc/duscan/internal/scan"
	"github.com/sadopc/duscan/internal/ui/style"
)

// RenderScanProgress renders the scanning progress overlay.
func RenderScanProgress(theme style.Theme, progress scan.Progress, path string, width, height int) string {
	boxWidth := 50
	if boxWidth > width-4 {
		boxWidth = width - 4
	}

	var lines []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		Render("  Scanning " + format.Truncate(path, boxWidth-14) + "...")

	lines = append(lines, title)
	lines = append(lines, "")

	filesLine := fmt.Sprintf("  Files:  %s", format.Count(progress.FilesScanned))
	dirsLine := fmt.Sprintf("  Dirs:   %s", format.Count(progress.DirsScanned))
	sizeLine := fmt.Sprintf("  Size:   %s", format.Size(uint64(max(progress.BytesFound, 0))))
	speedLine := fmt.Sprintf("  Speed:  %s items/s", format.Count(int64(progress.ItemsPerSecond())))

	statStyle := lipgloss.NewStyle().Foreground(theme.TextSecondary)
	lines = append(lines, statStyle.Render(filesLine))
	lines = append(lines, statStyle.Render(dirsLine))
	lines = append(lines, statStyle.Render(sizeLine))
	lines = append(lines, statStyle.Render(speedLine))

	if progress.Errors > 0 {
		errLine := fmt.Sprintf("  Errors: %d", progress.Errors)
		lines = append(lines, theme.ErrorText.Render(errLine))
	}

	lines = append(lines, "")

	elapsed := fmt.Sprintf("  Elapsed: %.1fs", progress.Duration.Seconds())
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render(elapsed))
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  Press q to cancel"))

	content := strings.Join(lines, "\n")

	box := theme.ModalStyle.
		Width(boxWidth).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func max(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
