package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/duscan/internal/ops"
	"github.com/sadopc/duscan/internal/report"
	"github.com/sadopc/duscan/internal/scan"
	"github.com/sadopc/duscan/internal/sysinfo"
	"github.com/sadopc/duscan/internal/ui/components"
	"github.com/sadopc/duscan/internal/ui/style"
)

// ViewMode represents the current report view.
type ViewMode int

const (
	ViewDirs ViewMode = iota
	ViewFiles
	ViewTypes
	ViewSystem
)

// AppState represents the application state.
type AppState int

const (
	StatePrompt AppState = iota
	StateScanning
	StateReport
	StateHelp
)

// ScanDoneMsg is sent when a scan or import completes.
type ScanDoneMsg struct {
	Res *scan.Result
	Err error
}

// SysInfoMsg carries the host snapshot collected after a scan.
type SysInfoMsg struct {
	Info *sysinfo.Info
	Err  error
}

// ExportDoneMsg is sent when export completes.
type ExportDoneMsg struct {
	Path string
	Err  error
}

type tickMsg time.Time

// App is the root Bubble Tea model. It loops between the path prompt,
// the scan overlay, and the report until the user quits.
type App struct {
	Scanner     scan.Scanner
	ScanOptions scan.Options
	InitialPath string
	ImportPath  string
	ExportPath  string
	Version     string
	TopN        int

	state    AppState
	viewMode ViewMode
	width    int
	height   int

	input    textinput.Model
	scanPath string

	res   *scan.Result
	dirs  []report.DirRow
	files []scan.FileEntry
	exts  []report.ExtRow
	sys   *sysinfo.Info

	offset int

	scanProgress   scan.Progress
	progressMu     sync.Mutex
	latestProgress scan.Progress
	scanCancel     context.CancelFunc
	scanCancelMu   sync.Mutex

	theme  style.Theme
	keys   KeyMap
	layout style.Layout

	statusMsg string
	fatalErr  error
}

func (a *App) setScanCancel(cancel context.CancelFunc) {
	a.scanCancelMu.Lock()
	a.scanCancel = cancel
	a.scanCancelMu.Unlock()
}

func (a *App) callScanCancel() {
	a.scanCancelMu.Lock()
	if a.scanCancel != nil {
		a.scanCancel()
	}
	a.scanCancelMu.Unlock()
}

// NewApp creates a new App model. scanner decides whether the walk is
// local or remote; initialPath, when non-empty, skips the first prompt.
func NewApp(scanner scan.Scanner, opts scan.Options, initialPath string) *App {
	return &App{
		Scanner:     scanner,
		ScanOptions: opts,
		InitialPath: initialPath,
		state:       StatePrompt,
		viewMode:    ViewDirs,
		input:       components.NewPathInput(),
		theme:       style.DefaultTheme(),
		keys:        DefaultKeyMap(),
	}
}

// NewAppFromImport creates an App that loads a previous export instead
// of scanning.
func NewAppFromImport(importPath string) *App {
	return &App{
		ImportPath: importPath,
		state:      StateScanning,
		viewMode:   ViewDirs,
		input:      components.NewPathInput(),
		theme:      style.DefaultTheme(),
		keys:       DefaultKeyMap(),
	}
}

func (a *App) Init() tea.Cmd {
	if a.ImportPath != "" {
		return a.importCmd()
	}
	if a.InitialPath != "" {
		return a.startScan(a.InitialPath)
	}
	a.input.Focus()
	return textinput.Blink
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout = style.NewLayout(msg.Width, msg.Height)
		return a, nil

	case ScanDoneMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, context.Canceled) {
				return a, a.toPrompt("Scan canceled")
			}
			if a.ImportPath != "" {
				// Nothing to fall back to when the import itself is broken.
				a.fatalErr = msg.Err
				return a, tea.Quit
			}
			return a, a.toPrompt(fmt.Sprintf("Error: %v", msg.Err))
		}
		a.setResult(msg.Res)
		return a, tea.Batch(tea.ClearScreen, a.sysInfoCmd())

	case SysInfoMsg:
		if msg.Err == nil {
			a.sys = msg.Info
		}
		return a, nil

	case tickMsg:
		if a.state == StateScanning {
			a.progressMu.Lock()
			a.scanProgress = a.latestProgress
			a.progressMu.Unlock()
			return a, a.tickCmd()
		}
		return a, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			a.statusMsg = fmt.Sprintf("Export failed: %v", msg.Err)
		} else {
			a.statusMsg = fmt.Sprintf("Exported to %s", msg.Path)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		a.callScanCancel()
		return a, tea.Quit
	}

	switch a.state {
	case StatePrompt:
		return a.handlePromptKey(msg)

	case StateScanning:
		if key.Matches(msg, a.keys.Quit) || msg.String() == "esc" {
			// Cancel only this scan; ScanDoneMsg routes back to the prompt.
			a.callScanCancel()
		}
		return a, nil

	case StateHelp:
		if key.Matches(msg, a.keys.Help) || msg.String() == "esc" {
			a.state = StateReport
			return a, tea.ClearScreen
		}
		return a, nil

	case StateReport:
		return a.handleReportKey(msg)
	}

	return a, nil
}

func (a *App) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return a, tea.Quit
	case "enter":
		value := strings.TrimSpace(a.input.Value())
		if value == "q" || value == "quit" {
			return a, tea.Quit
		}
		if value == "" {
			value = "."
		}
		a.input.Blur()
		return a, a.startScan(value)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleReportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.statusMsg = ""
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.state = StateHelp
		return a, tea.ClearScreen

	case key.Matches(msg, a.keys.Up):
		a.moveOffset(-1)
	case key.Matches(msg, a.keys.Down):
		a.moveOffset(1)
	case key.Matches(msg, a.keys.PageUp):
		a.moveOffset(-a.layout.ContentHeight())
	case key.Matches(msg, a.keys.PageDown):
		a.moveOffset(a.layout.ContentHeight())

	case key.Matches(msg, a.keys.ViewDirs):
		a.switchView(ViewDirs)
		return a, tea.ClearScreen
	case key.Matches(msg, a.keys.ViewFiles):
		a.switchView(ViewFiles)
		return a, tea.ClearScreen
	case key.Matches(msg, a.keys.ViewTypes):
		a.switchView(ViewTypes)
		return a, tea.ClearScreen
	case key.Matches(msg, a.keys.ViewSystem):
		a.switchView(ViewSystem)
		return a, tea.ClearScreen
	case key.Matches(msg, a.keys.NextView):
		a.switchView((a.viewMode + 1) % 4)
		return a, tea.ClearScreen

	case key.Matches(msg, a.keys.Export):
		return a, a.exportCmd()

	case key.Matches(msg, a.keys.Rescan):
		if a.scanPath != "" {
			return a, a.startScan(a.scanPath)
		}

	case key.Matches(msg, a.keys.NewScan):
		return a, a.toPrompt("")
	}

	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	switch a.state {
	case StatePrompt:
		return components.RenderPrompt(a.theme, a.input, a.statusMsg, a.width, a.height)

	case StateScanning:
		return components.RenderScanProgress(a.theme, a.scanProgress, a.scanPath, a.width, a.height)

	case StateHelp:
		return components.RenderHelp(a.theme, a.width, a.height)

	case StateReport:
		return a.renderReport()
	}

	return ""
}

func (a *App) renderReport() string {
	header := components.RenderHeader(a.theme, a.res, a.width)
	tabBar := components.RenderTabBar(a.theme, int(a.viewMode), a.width)

	var content string
	switch a.viewMode {
	case ViewDirs:
		content = components.RenderDirTable(a.theme, a.dirs, a.res.TotalSize, a.offset, a.layout)
	case ViewFiles:
		content = components.RenderFileTable(a.theme, a.files, a.res.TotalSize, a.offset, a.layout)
	case ViewTypes:
		content = components.RenderExtTable(a.theme, a.exts, a.offset, a.layout)
	case ViewSystem:
		content = components.RenderSystem(a.theme, a.sys, a.layout)
	}

	statusInfo := components.StatusInfo{
		FileCount: a.res.FileCount(),
		DirCount:  a.res.DirCount(),
		TotalSize: a.res.TotalSize,
		Skipped:   len(a.res.Skipped),
		StatusMsg: a.statusMsg,
	}
	statusBar := components.RenderStatusBar(a.theme, statusInfo, a.width)

	return header + "\n" + tabBar + "\n" + content + "\n" + statusBar
}

func (a *App) setResult(res *scan.Result) {
	a.res = res
	a.dirs = report.TopDirs(res, 0)
	a.files = report.TopFiles(res, 0)
	a.exts = report.Extensions(res, len(res.Extensions))
	a.sys = nil
	a.state = StateReport
	a.viewMode = ViewDirs
	a.offset = 0
	if len(res.Skipped) > 0 {
		a.statusMsg = fmt.Sprintf("%d unreadable subtree(s) skipped", len(res.Skipped))
	}
}

func (a *App) switchView(v ViewMode) {
	a.viewMode = v
	a.offset = 0
}

func (a *App) moveOffset(delta int) {
	a.offset += delta
	if a.offset < 0 {
		a.offset = 0
	}
	var rows int
	switch a.viewMode {
	case ViewDirs:
		rows = len(a.dirs)
	case ViewFiles:
		rows = len(a.files)
	case ViewTypes:
		rows = len(a.exts)
	}
	if a.offset >= rows {
		a.offset = rows - 1
	}
	if a.offset < 0 {
		a.offset = 0
	}
}

func (a *App) toPrompt(status string) tea.Cmd {
	a.state = StatePrompt
	a.statusMsg = status
	a.input.SetValue("")
	a.input.Focus()
	return tea.Batch(tea.ClearScreen, textinput.Blink)
}

// startScan kicks off a scan of path plus the progress ticker.
func (a *App) startScan(path string) tea.Cmd {
	a.scanPath = path
	a.state = StateScanning
	a.statusMsg = ""
	a.progressMu.Lock()
	a.latestProgress = scan.Progress{}
	a.progressMu.Unlock()
	a.scanProgress = scan.Progress{}
	return tea.Batch(a.scanCmd(path), a.tickCmd())
}

// scanCmd runs the scan in a background goroutine. Progress is
// communicated via a.latestProgress (mutex-protected).
func (a *App) scanCmd(path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		a.setScanCancel(cancel)

		progressCh := make(chan scan.Progress, 10)

		// Relay progress updates to shared state (read by tickMsg handler)
		go func() {
			for p := range progressCh {
				a.progressMu.Lock()
				a.latestProgress = p
				a.progressMu.Unlock()
			}
		}()

		s := a.Scanner
		if s == nil {
			s = scan.NewParallelScanner()
		}
		res, err := s.Scan(ctx, path, a.ScanOptions, progressCh)
		close(progressCh)

		return ScanDoneMsg{Res: res, Err: err}
	}
}

func (a *App) importCmd() tea.Cmd {
	return func() tea.Msg {
		res, err := ops.ImportJSON(a.ImportPath)
		return ScanDoneMsg{Res: res, Err: err}
	}
}

func (a *App) sysInfoCmd() tea.Cmd {
	return func() tea.Msg {
		info, err := sysinfo.Collect(context.Background())
		return SysInfoMsg{Info: info, Err: err}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) exportCmd() tea.Cmd {
	if a.res == nil {
		return nil
	}

	exportPath := a.ExportPath
	if exportPath == "" {
		exportPath = "duscan-export.json"
	}

	res := a.res
	version := a.Version
	return func() tea.Msg {
		err := ops.ExportJSON(res, exportPath, version)
		return ExportDoneMsg{Path: exportPath, Err: err}
	}
}

// FatalError returns a fatal import error, if any.
func (a *App) FatalError() error { return a.fatalErr }
