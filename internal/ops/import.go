package ops

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sadopc/duscan/internal/scan"
)

// ImportJSON reads a previously exported scan result and validates
// its internal consistency before handing it back.
func ImportJSON(path string) (*scan.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open import file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if doc.Progname != "duscan" {
		return nil, fmt.Errorf("not a duscan export (progname %q)", doc.Progname)
	}
	if doc.Result == nil {
		return nil, fmt.Errorf("export has no result")
	}

	res := doc.Result
	if res.DirSizes == nil {
		res.DirSizes = make(map[string]uint64)
	}
	if res.Extensions == nil {
		res.Extensions = make(map[string]scan.ExtStat)
	}
	if err := validate(res); err != nil {
		return nil, fmt.Errorf("corrupt export: %w", err)
	}
	return res, nil
}

// validate checks the size accounting an honest export satisfies: the
// total matches both the per-file sum and the per-extension sum.
func validate(res *scan.Result) error {
	var fileSum uint64
	for _, f := range res.Files {
		fileSum += f.Size
	}
	if fileSum != res.TotalSize {
		return fmt.Errorf("file sizes sum to %d, total is %d", fileSum, res.TotalSize)
	}

	var extSum uint64
	for _, st := range res.Extensions {
		extSum += st.Size
	}
	if extSum != res.TotalSize {
		return fmt.Errorf("extension sizes sum to %d, total is %d", extSum, res.TotalSize)
	}

	return nil
}
