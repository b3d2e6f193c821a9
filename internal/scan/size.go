package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// statEntry resolves the size metadata for a directory entry. Symlinks
// are followed so that a link to a file counts its target's size; a
// broken link surfaces as an error the caller treats as recoverable.
func statEntry(fullPath string, entry fs.DirEntry) (fs.FileInfo, error) {
	if entry.Type()&fs.ModeSymlink != 0 {
		return os.Stat(fullPath)
	}
	return entry.Info()
}

func validateDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}
	return nil
}

// DirectSize returns the sum of sizes of files immediately inside path.
// It never recurses: subdirectory contents are not counted. Entries
// that fail to stat are skipped.
func DirectSize(path string) (uint64, error) {
	if err := validateDir(path); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, err
	}

	var total uint64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := statEntry(filepath.Join(path, entry.Name()), entry)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		total += uint64(info.Size())
	}
	return total, nil
}

// RecursiveDirSize returns the sum of sizes of all files at or below
// path. Unreadable subtrees and entries that fail to stat contribute
// zero, matching the scanner's skip policy.
func RecursiveDirSize(ctx context.Context, path string) (uint64, error) {
	if err := validateDir(path); err != nil {
		return 0, err
	}

	var total uint64
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission denied on a subtree: skip it, keep walking siblings.
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}
		info, err := statEntry(p, d)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		total += uint64(info.Size())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
