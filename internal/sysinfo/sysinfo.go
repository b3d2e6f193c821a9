// Package sysinfo collects host and volume information for the
// system view and the headless report footer.
package sysinfo

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/sadopc/duscan/internal/format"
)

// VolumeUsage describes one mounted filesystem.
type VolumeUsage struct {
	Mount       string
	Fstype      string
	Total       uint64
	Used        uint64
	Free        uint64
	UsedPercent float64
}

// Info is a snapshot of the host and its mounted volumes.
type Info struct {
	Hostname      string
	OS            string
	Platform      string
	KernelVersion string
	UptimeSecs    uint64
	MemoryTotal   uint64
	MemoryUsed    uint64
	Volumes       []VolumeUsage
	// VolumeErrors counts partitions whose usage could not be read.
	VolumeErrors int
}

// Collect gathers host identity, memory, and per-volume usage.
// Individual volumes that fail to stat are skipped and counted in
// VolumeErrors; only a total failure to enumerate partitions or
// identify the host is an error.
func Collect(ctx context.Context) (*Info, error) {
	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading host info: %w", err)
	}

	info := &Info{
		Hostname:      hi.Hostname,
		OS:            hi.OS,
		Platform:      hi.Platform,
		KernelVersion: hi.KernelVersion,
		UptimeSecs:    hi.Uptime,
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.MemoryTotal = vm.Total
		info.MemoryUsed = vm.Used
	}

	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}
	for _, p := range parts {
		u, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			info.VolumeErrors++
			continue
		}
		info.Volumes = append(info.Volumes, VolumeUsage{
			Mount:       p.Mountpoint,
			Fstype:      p.Fstype,
			Total:       u.Total,
			Used:        u.Used,
			Free:        u.Free,
			UsedPercent: u.UsedPercent,
		})
	}

	return info, nil
}

// VolumeFor returns the usage of the filesystem holding path.
func VolumeFor(ctx context.Context, path string) (*VolumeUsage, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading disk usage for %s: %w", path, err)
	}
	return &VolumeUsage{
		Mount:       u.Path,
		Fstype:      u.Fstype,
		Total:       u.Total,
		Used:        u.Used,
		Free:        u.Free,
		UsedPercent: u.UsedPercent,
	}, nil
}

// Render writes the plain-text system information block.
func Render(w io.Writer, info *Info) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "System information:\n")
	fmt.Fprintf(tw, "Hostname:\t%s\n", info.Hostname)
	fmt.Fprintf(tw, "Platform:\t%s (%s)\n", info.Platform, info.OS)
	if info.KernelVersion != "" {
		fmt.Fprintf(tw, "Kernel:\t%s\n", info.KernelVersion)
	}
	if info.MemoryTotal > 0 {
		fmt.Fprintf(tw, "Memory:\t%s used of %s\n",
			format.Size(info.MemoryUsed), format.Size(info.MemoryTotal))
	}

	fmt.Fprintf(tw, "\nMounted volumes:\n")
	for _, v := range info.Volumes {
		fmt.Fprintf(tw, "%s\t%s\ttotal %s\tused %s\tfree %s\t%.1f%%\n",
			v.Mount, v.Fstype,
			format.Size(v.Total), format.Size(v.Used), format.Size(v.Free),
			v.UsedPercent)
	}
	if info.VolumeErrors > 0 {
		fmt.Fprintf(tw, "(%d volume(s) could not be read)\n", info.VolumeErrors)
	}

	return tw.Flush()
}
