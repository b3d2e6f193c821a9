package ops

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sadopc/duscan/internal/scan"
)

// document is the on-disk export format: a small header identifying
// the producer, plus the scan result verbatim.
type document struct {
	Progname  string       `json:"progname"`
	Progver   string       `json:"progver"`
	Timestamp int64        `json:"timestamp"`
	Result    *scan.Result `json:"result"`
}

// ExportJSON writes the scan result as JSON. For file targets (not
// stdout), writes to a temp file first and atomically renames on
// success, so a partial file is never left behind on error.
func ExportJSON(res *scan.Result, path string, version string) (retErr error) {
	if path == "-" {
		return exportToWriter(res, os.Stdout, version)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".duscan-export-*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create export file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := exportToWriter(res, tmp, version); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		// On Windows, Rename cannot replace an existing destination.
		if runtime.GOOS != "windows" {
			return err
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("cannot replace export file %s: %w", path, err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			return err
		}
	}
	return nil
}

func exportToWriter(res *scan.Result, out io.Writer, version string) error {
	if version == "" {
		version = "dev"
	}
	doc := document{
		Progname:  "duscan",
		Progver:   version,
		Timestamp: time.Now().Unix(),
		Result:    res,
	}

	bw := bufio.NewWriterSize(out, 64*1024)
	enc := json.NewEncoder(bw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return bw.Flush()
}
