package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ParallelScanner implements Scanner with goroutine-per-directory
// parallelism. Every worker writes into one shared Accumulator, so the
// merge is commutative and the final Result does not depend on
// traversal order.
type ParallelScanner struct{}

// NewParallelScanner creates a new parallel scanner.
func NewParallelScanner() *ParallelScanner {
	return &ParallelScanner{}
}

func (s *ParallelScanner) Scan(ctx context.Context, path string, opts Options, progress chan<- Progress) (*Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	// Use Stat (not Lstat) so symlinked roots like /tmp -> /private/tmp work
	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, absPath)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absPath)
	}
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	}

	// Optionally disable GC during scan
	if opts.DisableGC {
		oldGC := debug.SetGCPercent(-1)
		defer debug.SetGCPercent(oldGC)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0) * 3
	}
	sem := make(chan struct{}, concurrency)

	excludeSet := make(map[string]bool, len(opts.ExcludePatterns))
	for _, p := range opts.ExcludePatterns {
		excludeSet[p] = true
	}

	acc := NewAccumulator(absPath)

	// Progress tracking
	var filesScanned, dirsScanned, bytesFound, errCount atomic.Int64
	startTime := time.Now()

	snapshot := func(done bool) Progress {
		return Progress{
			FilesScanned: filesScanned.Load(),
			DirsScanned:  dirsScanned.Load(),
			BytesFound:   bytesFound.Load(),
			Errors:       errCount.Load(),
			Done:         done,
			StartTime:    startTime,
			Duration:     time.Since(startTime),
		}
	}

	// Progress reporter goroutine
	var progressWg sync.WaitGroup
	progressDone := make(chan struct{})
	if progress != nil {
		progressWg.Add(1)
		go func() {
			defer progressWg.Done()
			ticker := time.NewTicker(50 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					select {
					case progress <- snapshot(false):
					default:
						// Drop if channel full
					}
				case <-progressDone:
					return
				}
			}
		}()
	}

	// Track visited directories by canonical path to avoid cycles.
	var visitedDirs sync.Map
	visitedDirs.Store(absPath, true)

	var wg sync.WaitGroup
	s.scanDir(ctx, absPath, acc, opts, sem, &wg, &filesScanned, &dirsScanned, &bytesFound, &errCount, excludeSet, &visitedDirs)
	wg.Wait()

	if progress != nil {
		close(progressDone)
		progressWg.Wait()
		select {
		case progress <- snapshot(true):
		default:
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return acc.Result(), nil
}

func (s *ParallelScanner) scanDir(
	ctx context.Context,
	dirPath string,
	acc *Accumulator,
	opts Options,
	sem chan struct{},
	wg *sync.WaitGroup,
	filesScanned, dirsScanned, bytesFound, errCount *atomic.Int64,
	excludeSet map[string]bool,
	visitedDirs *sync.Map,
) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		// Unreadable subtree: record it and move on; siblings still scan.
		acc.Skip(dirPath)
		errCount.Add(1)
		return
	}

	dirsScanned.Add(1)

	// Run subdirectory scans with bounded goroutines.
	// If all workers are busy, scan synchronously in the current goroutine
	// instead of spawning blocked goroutines.
	spawnScan := func(path string) {
		select {
		case sem <- struct{}{}:
			wg.Add(1)
			go func(p string) {
				defer wg.Done()
				defer func() { <-sem }()
				s.scanDir(ctx, p, acc, opts, sem, wg, filesScanned, dirsScanned, bytesFound, errCount, excludeSet, visitedDirs)
			}(path)
		default:
			s.scanDir(ctx, path, acc, opts, sem, wg, filesScanned, dirsScanned, bytesFound, errCount, excludeSet, visitedDirs)
		}
	}

	var direct uint64

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		name := entry.Name()

		if !opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if excludeSet[name] {
			continue
		}

		fullPath := filepath.Join(dirPath, name)

		if entry.IsDir() {
			// Dedup by canonical path so bind mounts and symlinked
			// parents cannot make the walk revisit a subtree.
			visitKey := fullPath
			if resolved, err := filepath.EvalSymlinks(fullPath); err == nil {
				visitKey = resolved
			}
			if _, loaded := visitedDirs.LoadOrStore(visitKey, true); loaded {
				continue
			}
			spawnScan(fullPath)
			continue
		}

		info, err := statEntry(fullPath, entry)
		if err != nil {
			// Vanished mid-scan or broken symlink: recoverable, skip it.
			acc.AddError()
			errCount.Add(1)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		size := uint64(info.Size())
		direct += size
		acc.AddFile(fullPath, size)
		filesScanned.Add(1)
		bytesFound.Add(info.Size())
	}

	acc.AddDir(dirPath, direct)
}
