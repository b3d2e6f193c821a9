package components

import (
	"testing"

	"github.com/sadopc/duscan/internal/report"
	"github.com/sadopc/duscan/internal/scan"
	"github.com/sadopc/duscan/internal/sysinfo"
	"github.com/sadopc/duscan/internal/ui/style"
)

func TestRenderHelp_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	for _, w := range []int{0, 1, 2, 5} {
		t.Run("", func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("RenderHelp panicked at width=%d: %v", w, r)
				}
			}()
			RenderHelp(theme, w, 10)
		})
	}
}

func TestRenderScanProgress_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	p := scan.Progress{}
	for _, w := range []int{0, 1, 2, 5} {
		t.Run("", func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("RenderScanProgress panicked at width=%d: %v", w, r)
				}
			}()
			RenderScanProgress(theme, p, "/tmp", w, 10)
		})
	}
}

func TestRenderPrompt_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	input := NewPathInput()
	for _, w := range []int{0, 1, 2, 5} {
		t.Run("", func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("RenderPrompt panicked at width=%d: %v", w, r)
				}
			}()
			RenderPrompt(theme, input, "status", w, 10)
		})
	}
}

func TestRenderTables_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	dirs := []report.DirRow{{Path: "/data/a", Size: 10}}
	files := []scan.FileEntry{{Path: "/data/a/x.txt", Size: 10}}
	exts := []report.ExtRow{{Ext: ".txt", Size: 10, Count: 1, Percent: 100}}
	sys := &sysinfo.Info{
		Hostname: "box",
		Volumes:  []sysinfo.VolumeUsage{{Mount: "/", Fstype: "ext4", Total: 100, Used: 50, Free: 50, UsedPercent: 50}},
	}

	for _, w := range []int{0, 1, 5, 30, 120} {
		layout := style.NewLayout(w, 10)
		t.Run("", func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("table render panicked at width=%d: %v", w, r)
				}
			}()
			RenderDirTable(theme, dirs, 10, 0, layout)
			RenderFileTable(theme, files, 10, 0, layout)
			RenderExtTable(theme, exts, 0, layout)
			RenderSystem(theme, sys, layout)
			RenderSystem(theme, nil, layout)
		})
	}
}

func TestRenderTables_Empty(t *testing.T) {
	theme := style.DefaultTheme()
	layout := style.NewLayout(80, 24)

	if got := RenderDirTable(theme, nil, 0, 0, layout); got == "" {
		t.Fatal("expected placeholder output for empty dir table")
	}
	if got := RenderFileTable(theme, nil, 0, 0, layout); got == "" {
		t.Fatal("expected placeholder output for empty file table")
	}
	if got := RenderExtTable(theme, nil, 0, layout); got == "" {
		t.Fatal("expected placeholder output for empty extension table")
	}
}

func TestClampOffset(t *testing.T) {
	tests := []struct {
		offset, rows, visible int
		want                  int
	}{
		{0, 10, 5, 0},
		{3, 10, 5, 3},
		{9, 10, 5, 5},
		{-2, 10, 5, 0},
		{5, 3, 5, 0},
		{1, 10, 0, 9},
	}

	for _, tt := range tests {
		if got := clampOffset(tt.offset, tt.rows, tt.visible); got != tt.want {
			t.Errorf("clampOffset(%d, %d, %d) = %d, want %d", tt.offset, tt.rows, tt.visible, got, tt.want)
		}
	}
}
