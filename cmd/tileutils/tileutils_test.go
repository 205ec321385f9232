package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"tilekit/internal/palette"
	"tilekit/internal/terrain"
)

func TestDeduceFormat(t *testing.T) {
	tests := []struct {
		format, path, want string
	}{
		{"", "sheet.PNG", "png"},
		{"", "clear1.tem", "tem"},
		{"", "clear1.des", "tem"},
		{"png", "out.bin", "png"},
	}
	for _, tt := range tests {
		if got := deduceFormat(tt.format, tt.path); got != tt.want {
			t.Errorf("deduceFormat(%q, %q) = %q, want %q", tt.format, tt.path, got, tt.want)
		}
	}
}

func TestCellStrip(t *testing.T) {
	bmp := &terrain.Bitmap{Cells: [][]byte{
		bytes.Repeat([]byte{5}, terrain.CellBytes),
		nil,
		bytes.Repeat([]byte{9}, terrain.CellBytes),
	}}
	strip := cellStrip(bmp, palette.Grayscale())

	if strip.Bounds().Dx() != 72 || strip.Bounds().Dy() != 24 {
		t.Fatalf("unexpected bounds %v", strip.Bounds())
	}
	for _, tt := range []struct{ x, want int }{{0, 5}, {30, 0}, {71, 9}} {
		if got := strip.ColorIndexAt(tt.x, 23); int(got) != tt.want {
			t.Errorf("ColorIndexAt(%d, 23) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestAssetFlagsOpen(t *testing.T) {
	dir := t.TempDir()
	rules := "General: {Name: Temperate, Palette: temperat}\nTerrain: {}\nTemplates: {}\n"
	if err := os.WriteFile(filepath.Join(dir, "temperat.yaml"), []byte(rules), 0o644); err != nil {
		t.Fatalf("Failed to write tile set: %v", err)
	}

	a := assetFlags{
		configPath:  filepath.Join(dir, "missing.yaml"),
		tilesetPath: filepath.Join(dir, "temperat.yaml"),
		mounts:      dir,
	}
	cfg, ts, files, err := a.open()
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer files.Close()

	if ts.Name() != "Temperate" {
		t.Errorf("unexpected tile set %q", ts.Name())
	}
	if cfg.GetWorkers() != 1 {
		t.Errorf("expected default workers, got %d", cfg.GetWorkers())
	}

	// No palette file in the mount: grayscale fallback.
	if pal := findPalette(cfg, ts, files); len(pal) != palette.Size {
		t.Errorf("expected fallback palette, got %d entries", len(pal))
	}

	if _, _, _, err := (&assetFlags{configPath: a.configPath}).open(); err == nil {
		t.Error("expected error without a tile set path")
	}
}
