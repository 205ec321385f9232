package main

import (
	"context"
	"flag"
	"image/png"
	"log"
	"os"

	"github.com/google/subcommands"

	"tilekit/internal/graphics"
	"tilekit/internal/tileset"
)

type sheetCmd struct {
	assets     assetFlags
	outputPath string
	scale      int
}

func (c *sheetCmd) Name() string     { return "sheet" }
func (c *sheetCmd) Synopsis() string { return "render every template into one labelled PNG" }
func (c *sheetCmd) Usage() string {
	return "tileutils sheet -o <path> [-t <path>] [-s <scale>]\n"
}
func (c *sheetCmd) SetFlags(f *flag.FlagSet) {
	c.assets.register(f)
	f.StringVar(&c.outputPath, "o", "", "Output PNG path")
	f.IntVar(&c.scale, "s", 0, "Scale factor (default from config)")
}

func (c *sheetCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.outputPath == "" {
		log.Println("missing output path (-o)")
		return subcommands.ExitUsageError
	}

	cfg, ts, files, err := c.assets.open()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer files.Close()

	if err := ts.LoadTiles(files, tileset.WithWorkers(cfg.GetWorkers())); err != nil {
		log.Printf("Warning: %v (unloaded templates use placeholder tiles)", err)
	}

	scale := c.scale
	if scale <= 0 {
		scale = cfg.GetSheetScale()
	}
	sheet := graphics.Sheet(ts, findPalette(cfg, ts, files), scale)

	out, err := os.Create(c.outputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer out.Close()

	if err := png.Encode(out, sheet); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
