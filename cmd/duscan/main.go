package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/duscan/internal/ops"
	"github.com/sadopc/duscan/internal/remote"
	"github.com/sadopc/duscan/internal/report"
	"github.com/sadopc/duscan/internal/scan"
	"github.com/sadopc/duscan/internal/sysinfo"
	"github.com/sadopc/duscan/internal/ui"
)

var (
	version = "dev"
)

const defaultSSHPort = 22

type scanTarget struct {
	Remote         bool
	LocalPath      string
	SSHDestination string
	RemotePath     string
}

func main() {
	// Flags
	reportMode := flag.Bool("report", false, "Print a plain-text report instead of the TUI")
	exportPath := flag.String("export", "", "Export scan results to JSON file (headless mode, use '-' for stdout)")
	importPath := flag.String("import", "", "Import and view scan results from JSON file")
	topN := flag.Int("top", report.DefaultTopN, "Number of rows in the directory and file rankings")
	showHidden := flag.Bool("hidden", true, "Include hidden files and directories")
	noHidden := flag.Bool("no-hidden", false, "Skip hidden files and directories")
	showVersion := flag.Bool("version", false, "Show version")
	disableGC := flag.Bool("no-gc", false, "Disable GC during scan (faster but uses more memory)")
	exclude := flag.String("exclude", "", "Comma-separated list of directory names to exclude")
	concurrency := flag.Int("j", 0, "Max concurrent directory scans (0 = auto: 3x CPU cores)")
	sshPort := flag.Int("ssh-port", defaultSSHPort, "SSH port for remote scans")
	sshBatch := flag.Bool("ssh-batch", false, "Disable SSH password prompts (key/agent auth only)")
	sshTimeout := flag.Int("ssh-timeout", 15, "SSH connection timeout in seconds")
	sshScanTimeout := flag.Int("ssh-scan-timeout", 0, "SSH scan timeout in seconds (0 = no limit)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "duscan - Disk usage analyzer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: duscan [options] [path|user@host [remote-path]]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  duscan                          Prompt for a directory to analyze\n")
		fmt.Fprintf(os.Stderr, "  duscan /home                    Scan /home\n")
		fmt.Fprintf(os.Stderr, "  duscan --report /home           Print a text report for /home\n")
		fmt.Fprintf(os.Stderr, "  duscan --report --top 30 /var   Report with 30-row rankings\n")
		fmt.Fprintf(os.Stderr, "  duscan --export scan.json .     Export scan to JSON\n")
		fmt.Fprintf(os.Stderr, "  duscan --import scan.json       View an exported scan\n")
		fmt.Fprintf(os.Stderr, "  duscan user@192.168.1.10        Scan remote home directory over SSH\n")
		fmt.Fprintf(os.Stderr, "  duscan --ssh-port 2222 user@host /var/log\n")
		fmt.Fprintf(os.Stderr, "  duscan -j 8 /home               Scan with 8 concurrent workers\n")
	}

	flag.Parse()

	// Detect conflicting --hidden / --no-hidden flags
	hiddenSet, noHiddenSet := false, false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "hidden" {
			hiddenSet = true
		}
		if f.Name == "no-hidden" {
			noHiddenSet = true
		}
	})
	if hiddenSet && noHiddenSet {
		fmt.Fprintf(os.Stderr, "Error: --hidden and --no-hidden cannot be used together\n")
		os.Exit(1)
	}

	if *showVersion {
		fmt.Printf("duscan %s\n", version)
		os.Exit(0)
	}

	if *sshPort < 1 || *sshPort > 65535 {
		fmt.Fprintf(os.Stderr, "Error: ssh-port must be between 1 and 65535\n")
		os.Exit(1)
	}
	if *topN < 1 {
		fmt.Fprintf(os.Stderr, "Error: --top must be >= 1\n")
		os.Exit(1)
	}

	// Import mode
	if *importPath != "" {
		if flag.NArg() > 0 {
			fmt.Fprintf(os.Stderr, "Error: --import cannot be used with scan targets\n")
			os.Exit(1)
		}
		if err := runImport(*importPath, *exportPath, *reportMode, *topN); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Build scan options
	opts := scan.DefaultOptions()
	opts.ShowHidden = *showHidden
	if *noHidden {
		opts.ShowHidden = false
	}
	opts.DisableGC = *disableGC
	if *concurrency < 0 {
		fmt.Fprintf(os.Stderr, "Error: concurrency (-j) must be >= 0\n")
		os.Exit(1)
	}
	opts.Concurrency = *concurrency

	if *exclude != "" {
		for _, e := range splitComma(*exclude) {
			if e != "" {
				opts.ExcludePatterns = append(opts.ExcludePatterns, e)
			}
		}
	}

	target, err := resolveScanTarget(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var scanner scan.Scanner
	scanPath := ""
	if target.Remote {
		cfg := remote.Config{
			Target:    target.SSHDestination,
			Port:      *sshPort,
			BatchMode: *sshBatch,
			Timeout:   time.Duration(*sshTimeout) * time.Second,
		}
		if *sshScanTimeout > 0 {
			cfg.ScanTimeout = time.Duration(*sshScanTimeout) * time.Second
		}
		scanner = remote.NewSFTPScanner(cfg)
		scanPath = target.RemotePath
	} else {
		scanner = scan.NewParallelScanner()
		if target.LocalPath != "" {
			abs, err := filepath.Abs(target.LocalPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			scanPath = abs
		}
	}

	// Headless modes
	if *reportMode || *exportPath != "" {
		if scanPath == "" {
			scanPath = "."
		}
		if err := runHeadless(scanner, scanPath, target, opts, *reportMode, *exportPath, *topN); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Interactive TUI mode
	app := ui.NewApp(scanner, opts, scanPath)
	app.Version = version
	app.TopN = *topN

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := app.FatalError(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Goodbye!")
}

// runImport re-exports or renders a previous scan without touching the
// filesystem tree it describes.
func runImport(importPath, exportPath string, reportMode bool, topN int) error {
	if exportPath != "" || reportMode {
		res, err := ops.ImportJSON(importPath)
		if err != nil {
			return fmt.Errorf("importing: %w", err)
		}
		if reportMode {
			if err := report.Render(os.Stdout, res, topN); err != nil {
				return err
			}
		}
		if exportPath != "" {
			if err := ops.ExportJSON(res, exportPath, version); err != nil {
				return fmt.Errorf("exporting: %w", err)
			}
			if exportPath != "-" {
				fmt.Printf("Exported to %s\n", exportPath)
			}
		}
		return nil
	}

	app := ui.NewAppFromImport(importPath)
	app.Version = version
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	if err := app.FatalError(); err != nil {
		return err
	}
	fmt.Println("Goodbye!")
	return nil
}

// runHeadless scans once and writes the report and/or export, with no TUI.
func runHeadless(scanner scan.Scanner, scanPath string, target scanTarget, opts scan.Options, reportMode bool, exportPath string, topN int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	label := scanPath
	if target.Remote {
		label = target.SSHDestination + ":" + scanPath
	}

	progressCh := make(chan scan.Progress, 10)
	var progressWg sync.WaitGroup
	progressWg.Add(1)
	go func() {
		defer progressWg.Done()
		for p := range progressCh {
			fmt.Fprintf(os.Stderr, "\rScanning %s: %d files, %d dirs, %d errors...",
				label, p.FilesScanned, p.DirsScanned, p.Errors)
		}
		fmt.Fprintln(os.Stderr)
	}()

	res, err := scanner.Scan(ctx, scanPath, opts, progressCh)
	close(progressCh)
	progressWg.Wait()
	if err != nil {
		return err
	}

	if reportMode {
		if err := report.Render(os.Stdout, res, topN); err != nil {
			return err
		}
		// The system block is informational; a collection failure
		// should not fail the report.
		if info, err := sysinfo.Collect(ctx); err == nil {
			fmt.Println()
			if err := sysinfo.Render(os.Stdout, info); err != nil {
				return err
			}
		}
	}

	if exportPath != "" {
		if err := ops.ExportJSON(res, exportPath, version); err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		if exportPath != "-" {
			fmt.Printf("Exported to %s\n", exportPath)
		}
	}

	return nil
}

func resolveScanTarget(args []string) (scanTarget, error) {
	if len(args) == 0 {
		return scanTarget{}, nil
	}

	first := args[0]
	if pathExists(first) {
		if len(args) > 1 {
			return scanTarget{}, fmt.Errorf("too many positional arguments for local scan")
		}
		return scanTarget{LocalPath: first}, nil
	}

	if isRemote, err := validateRemoteTarget(first); isRemote {
		if err != nil {
			return scanTarget{}, err
		}
		if len(args) > 2 {
			return scanTarget{}, fmt.Errorf("too many positional arguments for remote scan")
		}

		remotePath := "."
		if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
			remotePath = args[1]
		}

		return scanTarget{
			Remote:         true,
			SSHDestination: first,
			RemotePath:     remotePath,
		}, nil
	}

	if len(args) > 1 {
		return scanTarget{}, fmt.Errorf("too many positional arguments")
	}

	return scanTarget{LocalPath: first}, nil
}

func validateRemoteTarget(raw string) (bool, error) {
	if strings.ContainsAny(raw, `/\\`) {
		return false, nil
	}
	if strings.Count(raw, "@") != 1 {
		return false, nil
	}

	user, host, _ := strings.Cut(raw, "@")
	if user == "" || host == "" {
		return true, fmt.Errorf("invalid remote target %q: expected user@host", raw)
	}
	if strings.HasPrefix(user, "-") || strings.HasPrefix(host, "-") {
		return true, fmt.Errorf("invalid remote target %q", raw)
	}
	if strings.ContainsAny(user, " \t\n\r") || strings.ContainsAny(host, " \t\n\r") {
		return true, fmt.Errorf("invalid remote target %q: spaces are not allowed", raw)
	}
	if strings.HasPrefix(host, "[") {
		end := strings.Index(host, "]")
		if end == -1 {
			return true, fmt.Errorf("invalid remote target %q: malformed bracketed host", raw)
		}
		if end == 1 {
			return true, fmt.Errorf("invalid remote target %q: empty host", raw)
		}
		if end != len(host)-1 {
			rest := host[end+1:]
			if strings.HasPrefix(rest, ":") && isAllDigits(rest[1:]) {
				return true, fmt.Errorf("remote target %q must not include :port; use --ssh-port", raw)
			}
			return true, fmt.Errorf("invalid remote target %q: malformed bracketed host", raw)
		}
	} else if strings.Contains(host, "]") {
		return true, fmt.Errorf("invalid remote target %q: malformed bracketed host", raw)
	}
	if looksLikeHostPort(host) {
		return true, fmt.Errorf("remote target %q must not include :port; use --ssh-port", raw)
	}

	return true, nil
}

func looksLikeHostPort(host string) bool {
	if strings.Count(host, ":") != 1 {
		return false
	}
	_, port, ok := strings.Cut(host, ":")
	if !ok {
		return false
	}
	return isAllDigits(port)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func splitComma(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
