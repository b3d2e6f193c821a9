package scan

import (
	"path/filepath"
	"strings"
	"sync"
)

// NoExtension is the bucket key for files without an extension.
const NoExtension = "no_extension"

// FileEntry records one file found during a scan.
type FileEntry struct {
	Path string `json:"path"`
	Size uint64 `json:"size"`
}

// ExtStat holds the running totals for one extension bucket.
type ExtStat struct {
	Size  uint64 `json:"size"`
	Count uint64 `json:"count"`
}

// Result is the aggregate of a single traversal. TotalSize always
// equals the sum over Files and the sum over Extensions; DirSizes maps
// each strict-descendant directory to the size of the files directly
// inside it (the root itself is never a key). A Result is built once
// per scan and not mutated afterwards.
type Result struct {
	Root       string             `json:"root"`
	TotalSize  uint64             `json:"total_size"`
	Files      []FileEntry        `json:"files"`
	DirSizes   map[string]uint64  `json:"dir_sizes"`
	Extensions map[string]ExtStat `json:"extensions"`
	// Skipped lists subtrees that could not be entered. Their contents
	// contribute nothing; the scan itself still succeeds.
	Skipped    []string `json:"skipped,omitempty"`
	ErrorCount uint64   `json:"error_count"`
}

// FileCount returns the number of files recorded.
func (r *Result) FileCount() int { return len(r.Files) }

// DirCount returns the number of descendant directories recorded.
func (r *Result) DirCount() int { return len(r.DirSizes) }

// ExtensionKey derives the extension bucket for a file name: the
// lower-cased extension including the leading dot, or NoExtension when
// the name has none. Pure dotfiles like ".bashrc" have no extension.
func ExtensionKey(name string) string {
	base := filepath.Base(name)
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" || ext == strings.ToLower(base) {
		return NoExtension
	}
	return ext
}

// Accumulator collects scan data from concurrent directory workers.
// All methods are safe for concurrent use; workers share one
// accumulator guarded by a mutex rather than mutating globals.
type Accumulator struct {
	mu  sync.Mutex
	res Result
}

// NewAccumulator creates an empty accumulator for a scan rooted at root.
func NewAccumulator(root string) *Accumulator {
	return &Accumulator{
		res: Result{
			Root:       root,
			DirSizes:   make(map[string]uint64),
			Extensions: make(map[string]ExtStat),
		},
	}
}

// AddFile records one file and feeds the total and extension buckets.
func (a *Accumulator) AddFile(path string, size uint64) {
	key := ExtensionKey(path)

	a.mu.Lock()
	a.res.TotalSize += size
	a.res.Files = append(a.res.Files, FileEntry{Path: path, Size: size})
	st := a.res.Extensions[key]
	st.Size += size
	st.Count++
	a.res.Extensions[key] = st
	a.mu.Unlock()
}

// AddDir records the direct size of a visited directory. The scan root
// itself is ignored: only strict descendants appear in DirSizes.
func (a *Accumulator) AddDir(path string, direct uint64) {
	a.mu.Lock()
	if path != a.res.Root {
		a.res.DirSizes[path] = direct
	}
	a.mu.Unlock()
}

// Skip records a subtree that could not be entered.
func (a *Accumulator) Skip(path string) {
	a.mu.Lock()
	a.res.Skipped = append(a.res.Skipped, path)
	a.res.ErrorCount++
	a.mu.Unlock()
}

// AddError counts a recoverable per-entry failure (vanished file,
// broken symlink) without recording anything else.
func (a *Accumulator) AddError() {
	a.mu.Lock()
	a.res.ErrorCount++
	a.mu.Unlock()
}

// Result returns the accumulated data. Call only after all workers
// have joined; the returned value must not be mutated.
func (a *Accumulator) Result() *Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return &a.res
}
