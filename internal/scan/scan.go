package scan

import (
	"context"
	"errors"
)

// Sentinel errors returned when the scan root is unusable. Both are
// fatal to the scan request but never to the surrounding loop.
var (
	ErrNotFound     = errors.New("path does not exist")
	ErrNotDirectory = errors.New("path is not a directory")
)

// Options configures the scanner behavior.
type Options struct {
	// ShowHidden includes hidden files/directories (starting with .)
	ShowHidden bool
	// ExcludePatterns is a list of directory names to skip
	ExcludePatterns []string
	// DisableGC disables garbage collection during scan for speed
	DisableGC bool
	// Concurrency overrides the default semaphore count (0 = auto)
	Concurrency int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		ShowHidden:      true,
		ExcludePatterns: []string{},
		DisableGC:       false,
		Concurrency:     0,
	}
}

// Scanner is the interface for directory scanning.
type Scanner interface {
	// Scan walks the tree under path once and returns the aggregated
	// Result. Progress updates are sent on the progress channel.
	Scan(ctx context.Context, path string, opts Options, progress chan<- Progress) (*Result, error)
}
