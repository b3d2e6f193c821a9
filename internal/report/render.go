package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/sadopc/duscan/internal/format"
	"github.com/sadopc/duscan/internal/scan"
)

const tabSpacing = 2

// Render writes the plain-text report for one scan: total, top
// directories (direct sizes), top files, extension distribution, and
// summary statistics. topN limits the directory and file sections;
// the extension table always shows DefaultTopExtensions rows.
func Render(w io.Writer, res *scan.Result, topN int) error {
	if topN <= 0 {
		topN = DefaultTopN
	}

	tw := tabwriter.NewWriter(w, 0, 4, tabSpacing, ' ', 0)

	fmt.Fprintf(tw, "Disk usage report for %s\n", res.Root)
	fmt.Fprintf(tw, "Total size:\t%s\n", format.Size(res.TotalSize))

	dirs := TopDirs(res, topN)
	fmt.Fprintf(tw, "\nTop %d directories (direct contents):\n", len(dirs))
	for i, d := range dirs {
		fmt.Fprintf(tw, "%3d)\t%s\t%s\n", i+1, format.Size(d.Size), d.Path)
	}

	files := TopFiles(res, topN)
	fmt.Fprintf(tw, "\nTop %d files:\n", len(files))
	for i, f := range files {
		fmt.Fprintf(tw, "%3d)\t%s\t%s\n", i+1, format.Size(f.Size), f.Path)
	}

	exts := Extensions(res, DefaultTopExtensions)
	fmt.Fprintf(tw, "\nFile type distribution:\n")
	for _, e := range exts {
		fmt.Fprintf(tw, "%s:\t%s\t(%s files)\t%.1f%%\n",
			e.Ext, format.Size(e.Size), humanize.Comma(int64(e.Count)), e.Percent)
	}

	sum := Summarize(res)
	fmt.Fprintf(tw, "\nTotal files:\t%s\n", humanize.Comma(int64(sum.FileCount)))
	fmt.Fprintf(tw, "Total directories:\t%s\n", humanize.Comma(int64(sum.DirCount)))
	if sum.FileCount > 0 {
		fmt.Fprintf(tw, "Average file size:\t%s\n", format.Size(sum.AvgFileSize))
	}

	if sum.Skipped > 0 {
		fmt.Fprintf(tw, "\nWarning: %d unreadable subtree(s) skipped:\n", sum.Skipped)
		for _, p := range res.Skipped {
			fmt.Fprintf(tw, "  - %s\n", p)
		}
	}

	return tw.Flush()
}
