package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	"github.com/google/subcommands"

	"tilekit/internal/graphics"
	"tilekit/internal/palette"
	"tilekit/internal/terrain"
)

type convertCmd struct {
	inputPath    string
	outputFormat string
	outputPath   string
	palettePath  string
}

func (c *convertCmd) Name() string     { return "convert" }
func (c *convertCmd) Synopsis() string { return "convert between paletted PNG sheets and template files" }
func (c *convertCmd) Usage() string {
	return "tileutils convert -i <path> -o <path> [-of <format>] [-p <palette>]\n"
}
func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input path (PNG or template)")
	f.StringVar(&c.outputPath, "o", "", "Output path")
	f.StringVar(&c.outputFormat, "of", "", "Output format (png, tem)")
	f.StringVar(&c.palettePath, "p", "", "Palette for PNG output (default grayscale)")
}

func (c *convertCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.inputPath == "" || c.outputPath == "" {
		log.Println("missing input (-i) or output (-o) path")
		return subcommands.ExitUsageError
	}

	in, err := os.Open(c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	bmp, err := terrain.Decode(in)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	out, err := os.Create(c.outputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer out.Close()

	switch deduceFormat(c.outputFormat, c.outputPath) {
	case "tem":
		err = terrain.Encode(out, bmp)
	case "png":
		var pal color.Palette
		if pal, err = c.loadPalette(); err == nil {
			err = png.Encode(out, cellStrip(bmp, pal))
		}
	default:
		err = fmt.Errorf("invalid output format: %q", c.outputFormat)
	}
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%d cells written to %s\n", bmp.Len(), c.outputPath)
	return subcommands.ExitSuccess
}

func (c *convertCmd) loadPalette() (color.Palette, error) {
	if c.palettePath == "" {
		return palette.Grayscale(), nil
	}
	f, err := os.Open(c.palettePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return palette.Load(f)
}

// cellStrip lays the cells out in one row. Empty cells stay at index 0.
func cellStrip(bmp *terrain.Bitmap, pal color.Palette) *image.Paletted {
	strip := image.NewPaletted(image.Rect(0, 0, max(bmp.Len(), 1)*terrain.TileSize, terrain.TileSize), pal)
	for i, pix := range bmp.Cells {
		cell := graphics.CellImage(pix, pal)
		if cell == nil {
			continue
		}
		r := image.Rect(i*terrain.TileSize, 0, (i+1)*terrain.TileSize, terrain.TileSize)
		for y := 0; y < terrain.TileSize; y++ {
			copy(strip.Pix[strip.PixOffset(r.Min.X, y):], cell.Pix[y*cell.Stride:y*cell.Stride+terrain.TileSize])
		}
	}
	return strip
}
