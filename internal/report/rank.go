package report

import (
	"sort"

	"github.com/maruel/natural"
	"github.com/sadopc/duscan/internal/scan"
)

// Default row counts, matching the report layout.
const (
	DefaultTopN          = 20
	DefaultTopExtensions = 15
)

// DirRow is one ranked directory with its direct size.
type DirRow struct {
	Path string
	Size uint64
}

// ExtRow is one row of the extension distribution table.
type ExtRow struct {
	Ext     string
	Size    uint64
	Count   uint64
	Percent float64
}

// Summary holds the aggregate statistics of one scan.
type Summary struct {
	Root        string
	TotalSize   uint64
	FileCount   int
	DirCount    int
	AvgFileSize uint64
	Skipped     int
}

// TopDirs ranks descendant directories by direct size, descending.
// Equal sizes fall back to natural path order so output is stable
// even though DirSizes is a map.
func TopDirs(res *scan.Result, n int) []DirRow {
	rows := make([]DirRow, 0, len(res.DirSizes))
	for path, size := range res.DirSizes {
		rows = append(rows, DirRow{Path: path, Size: size})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Size != rows[j].Size {
			return rows[i].Size > rows[j].Size
		}
		return natural.Less(rows[i].Path, rows[j].Path)
	})
	return trimDirs(rows, n)
}

// TopFiles ranks files by size, descending. The sort is stable, so
// equal-sized files keep their traversal order.
func TopFiles(res *scan.Result, n int) []scan.FileEntry {
	rows := make([]scan.FileEntry, len(res.Files))
	copy(rows, res.Files)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Size > rows[j].Size
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Extensions builds the extension distribution, descending by total
// size with natural key order breaking ties. Percent is zero when the
// scan found nothing.
func Extensions(res *scan.Result, n int) []ExtRow {
	if n <= 0 {
		n = DefaultTopExtensions
	}

	rows := make([]ExtRow, 0, len(res.Extensions))
	for ext, st := range res.Extensions {
		pct := 0.0
		if res.TotalSize > 0 {
			pct = 100 * float64(st.Size) / float64(res.TotalSize)
		}
		rows = append(rows, ExtRow{Ext: ext, Size: st.Size, Count: st.Count, Percent: pct})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Size != rows[j].Size {
			return rows[i].Size > rows[j].Size
		}
		return natural.Less(rows[i].Ext, rows[j].Ext)
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Summarize derives the summary statistics block.
func Summarize(res *scan.Result) Summary {
	s := Summary{
		Root:      res.Root,
		TotalSize: res.TotalSize,
		FileCount: res.FileCount(),
		DirCount:  res.DirCount(),
		Skipped:   len(res.Skipped),
	}
	if s.FileCount > 0 {
		s.AvgFileSize = res.TotalSize / uint64(s.FileCount)
	}
	return s
}

func trimDirs(rows []DirRow, n int) []DirRow {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
