package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/duscan/internal/format"
	"github.com/sadopc/duscan/internal/sysinfo"
	"github.com/sadopc/duscan/internal/ui/style"
)

// RenderSystem renders the host and volume overview.
func RenderSystem(theme style.Theme, info *sysinfo.Info, layout style.Layout) string {
	height := layout.ContentHeight()
	if info == nil {
		return emptyView(theme, "(collecting system information...)", height)
	}

	labelStyle := lipgloss.NewStyle().Foreground(theme.TextMuted).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(theme.TextSecondary)

	var lines []string
	lines = append(lines, tableTitle(theme, "System"))
	lines = append(lines, "  "+labelStyle.Render("Hostname")+valueStyle.Render(info.Hostname))
	lines = append(lines, "  "+labelStyle.Render("Platform")+valueStyle.Render(fmt.Sprintf("%s (%s)", info.Platform, info.OS)))
	if info.KernelVersion != "" {
		lines = append(lines, "  "+labelStyle.Render("Kernel")+valueStyle.Render(info.KernelVersion))
	}
	if info.UptimeSecs > 0 {
		up := time.Duration(info.UptimeSecs) * time.Second
		lines = append(lines, "  "+labelStyle.Render("Uptime")+valueStyle.Render(up.String()))
	}
	if info.MemoryTotal > 0 {
		mem := fmt.Sprintf("%s used of %s", format.Size(info.MemoryUsed), format.Size(info.MemoryTotal))
		lines = append(lines, "  "+labelStyle.Render("Memory")+valueStyle.Render(mem))
	}

	lines = append(lines, "")
	lines = append(lines, tableTitle(theme, "Volumes"))

	barW := 24
	for _, v := range info.Volumes {
		if len(lines) >= height-1 {
			break
		}
		ratio := v.UsedPercent / 100
		bar := theme.BarGradient(barW, ratio)
		mount := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Width(20).Render(format.Truncate(v.Mount, 20))
		detail := lipgloss.NewStyle().Foreground(theme.TextSecondary).Render(
			fmt.Sprintf(" %s free of %s (%s)", format.Size(v.Free), format.Size(v.Total), v.Fstype))
		pct := theme.PercentText.Render(fmt.Sprintf("%.1f%%", v.UsedPercent))

		lines = append(lines, fmt.Sprintf("  %s [%s] %s%s", mount, bar, pct, detail))
	}

	if info.VolumeErrors > 0 {
		lines = append(lines, theme.ErrorText.Render(
			fmt.Sprintf("  (%d volume(s) could not be read)", info.VolumeErrors)))
	}

	return padLines(lines, height)
}
