package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/duscan/internal/scan"
)

func reportResult() *scan.Result {
	return &scan.Result{
		Root:      "/data",
		TotalSize: 10,
		Files:     []scan.FileEntry{{Path: "/data/a.txt", Size: 10}},
		DirSizes:  map[string]uint64{"/data/sub": 0},
		Extensions: map[string]scan.ExtStat{
			".txt": {Size: 10, Count: 1},
		},
	}
}

func TestApp_ScanDoneShowsReport(t *testing.T) {
	app := NewApp(nil, scan.DefaultOptions(), "/data")

	_, cmd := app.Update(ScanDoneMsg{Res: reportResult()})
	if app.state != StateReport {
		t.Fatalf("expected report state, got %v", app.state)
	}
	if len(app.dirs) != 1 || len(app.files) != 1 || len(app.exts) != 1 {
		t.Fatalf("rankings not populated: %d dirs, %d files, %d exts",
			len(app.dirs), len(app.files), len(app.exts))
	}
	if cmd == nil {
		t.Fatal("expected follow-up command after scan completes")
	}
}

func TestApp_ScanErrorReturnsToPrompt(t *testing.T) {
	app := NewApp(nil, scan.DefaultOptions(), "/data")

	_, _ = app.Update(ScanDoneMsg{Err: errors.New("scan failed")})
	if app.state != StatePrompt {
		t.Fatalf("expected prompt state after scan error, got %v", app.state)
	}
	if app.statusMsg == "" {
		t.Fatal("expected error message on prompt")
	}
	if app.FatalError() != nil {
		t.Fatalf("scan errors are recoverable, got fatal %v", app.FatalError())
	}
}

func TestApp_ImportErrorIsFatal(t *testing.T) {
	app := NewAppFromImport("/tmp/broken.json")
	importErr := errors.New("corrupt export")

	_, cmd := app.Update(ScanDoneMsg{Err: importErr})
	if !errors.Is(app.FatalError(), importErr) {
		t.Fatalf("expected fatal error %v, got %v", importErr, app.FatalError())
	}
	if cmd == nil {
		t.Fatal("expected quit command on import error")
	}
	msg := cmd()
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg, got %T", msg)
	}
}

func TestApp_ExportDoneSetsStatus(t *testing.T) {
	app := NewApp(nil, scan.DefaultOptions(), "")

	_, _ = app.Update(ExportDoneMsg{Path: "out.json"})
	if app.FatalError() != nil {
		t.Fatalf("expected nil fatal error, got %v", app.FatalError())
	}
	if app.statusMsg == "" {
		t.Fatal("expected status message to be set for successful export")
	}
}

func TestApp_ViewSwitchingResetsOffset(t *testing.T) {
	app := NewApp(nil, scan.DefaultOptions(), "/data")
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	app.Update(ScanDoneMsg{Res: reportResult()})
	app.statusMsg = ""

	app.offset = 3
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if app.viewMode != ViewFiles {
		t.Fatalf("expected files view, got %v", app.viewMode)
	}
	if app.offset != 0 {
		t.Fatalf("expected offset reset on view switch, got %d", app.offset)
	}

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if app.viewMode != ViewTypes {
		t.Fatalf("expected tab to advance view, got %v", app.viewMode)
	}
}

func TestApp_PromptQuitsOnQ(t *testing.T) {
	app := NewApp(nil, scan.DefaultOptions(), "")
	app.Init()
	app.input.SetValue("q")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg when prompt receives q")
	}
}

func TestApp_PromptStartsScanOnPath(t *testing.T) {
	app := NewApp(nil, scan.DefaultOptions(), "")
	app.Init()
	app.input.SetValue("")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if app.state != StateScanning {
		t.Fatalf("expected scanning state, got %v", app.state)
	}
	if app.scanPath != "." {
		t.Fatalf("expected empty input to scan the current directory, got %q", app.scanPath)
	}
	if cmd == nil {
		t.Fatal("expected scan command")
	}
}
