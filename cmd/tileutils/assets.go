package main

import (
	"errors"
	"flag"
	"image/color"
	"io/fs"
	"log"
	"strings"

	"tilekit/internal/config"
	"tilekit/internal/document"
	"tilekit/internal/filesystem"
	"tilekit/internal/palette"
	"tilekit/internal/tileset"
)

// assetFlags are shared by every command that opens a tile set.
type assetFlags struct {
	configPath  string
	tilesetPath string
	mounts      string
}

func (a *assetFlags) register(f *flag.FlagSet) {
	f.StringVar(&a.configPath, "c", "config.yaml", "Config file path (optional)")
	f.StringVar(&a.tilesetPath, "t", "", "Tile set file path (overrides config)")
	f.StringVar(&a.mounts, "m", "", "Comma-separated asset mounts (overrides config)")
}

func (a *assetFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(a.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return &config.Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// open loads the config, the tile set document and the asset mounts. The
// returned file system must be closed.
func (a *assetFlags) open() (*config.Config, *tileset.TileSet, *filesystem.FileSystem, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if a.tilesetPath != "" {
		cfg.Assets.TileSet = a.tilesetPath
	}
	if a.mounts != "" {
		cfg.Assets.Mounts = document.SplitList(a.mounts)
	}
	if cfg.Assets.TileSet == "" {
		return nil, nil, nil, errors.New("no tile set given: use -t or set assets.tileset")
	}

	ts, err := tileset.Load(cfg.Assets.TileSet)
	if err != nil {
		return nil, nil, nil, err
	}

	files := filesystem.New()
	for _, m := range cfg.GetMounts() {
		if err := files.MountPath(m); err != nil {
			files.Close()
			return nil, nil, nil, err
		}
	}
	return cfg, ts, files, nil
}

// findPalette loads the tile set's palette, falling back to grayscale.
func findPalette(cfg *config.Config, ts *tileset.TileSet, files *filesystem.FileSystem) color.Palette {
	pal, err := palette.Find(files, ts.Palette(), cfg.GetPaletteExt())
	if err != nil {
		log.Printf("Warning: Failed to load palette %q: %v", ts.Palette(), err)
		return palette.Grayscale()
	}
	return pal
}

func deduceFormat(format, filePath string) string {
	if format != "" {
		return format
	}
	if strings.HasSuffix(strings.ToLower(filePath), ".png") {
		return "png"
	}
	return "tem"
}
