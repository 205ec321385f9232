// Package graphics turns tile set bitmaps into images for inspection.
package graphics

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"tilekit/internal/terrain"
	"tilekit/internal/tileset"
)

const (
	sheetPadding = 4
	labelWidth   = 120
	labelHeight  = 13
)

var (
	sheetBackground = color.RGBA{32, 32, 40, 255}
	labelColor      = color.RGBA{220, 220, 220, 255}
)

// CellImage wraps the bytes of one cell as a TileSize square image. It
// returns nil when pix is not a whole cell.
func CellImage(pix []byte, pal color.Palette) *image.Paletted {
	if len(pix) != terrain.CellBytes {
		return nil
	}
	img := image.NewPaletted(image.Rect(0, 0, terrain.TileSize, terrain.TileSize), pal)
	copy(img.Pix, pix)
	return img
}

// TemplateImage lays the cells of t out Size.X wide. Cells come from
// GetBytes, so a template without a bitmap is drawn with placeholder tiles
// and cells the bitmap lacks stay at palette index 0.
func TemplateImage(ts *tileset.TileSet, t tileset.TileTemplate, pal color.Palette) *image.Paletted {
	cols, rows := max(t.Size.X, 1), max(t.Size.Y, 1)
	img := image.NewPaletted(image.Rect(0, 0, cols*terrain.TileSize, rows*terrain.TileSize), pal)

	for i := 0; i < cols*rows && i < 256; i++ {
		pix := ts.GetBytes(tileset.TileReference{Type: t.ID, Index: byte(i)})
		if len(pix) != terrain.CellBytes {
			continue
		}
		x0 := (i % cols) * terrain.TileSize
		y0 := (i / cols) * terrain.TileSize
		for y := 0; y < terrain.TileSize; y++ {
			off := img.PixOffset(x0, y0+y)
			copy(img.Pix[off:off+terrain.TileSize], pix[y*terrain.TileSize:(y+1)*terrain.TileSize])
		}
	}
	return img
}

// Sheet draws every template in id order, one per row, scaled by scale with
// nearest-neighbour sampling and labelled with its id and image name.
func Sheet(ts *tileset.TileSet, pal color.Palette, scale int) *image.RGBA {
	scale = max(scale, 1)
	templates := ts.Templates()

	width := labelWidth
	height := sheetPadding
	images := make([]*image.Paletted, len(templates))
	for i, t := range templates {
		images[i] = TemplateImage(ts, t, pal)
		b := images[i].Bounds()
		width = max(width, labelWidth+b.Dx()*scale+sheetPadding)
		height += max(b.Dy()*scale, labelHeight) + sheetPadding
	}

	sheet := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(sheetBackground), image.Point{}, draw.Src)

	y := sheetPadding
	for i, t := range templates {
		b := images[i].Bounds()
		dst := image.Rect(labelWidth, y, labelWidth+b.Dx()*scale, y+b.Dy()*scale)
		draw.NearestNeighbor.Scale(sheet, dst, images[i], b, draw.Over, nil)
		drawLabel(sheet, sheetPadding, y+labelHeight-2, fmt.Sprintf("%d %s", t.ID, t.Image))
		y += max(b.Dy()*scale, labelHeight) + sheetPadding
	}
	return sheet
}

func drawLabel(dst draw.Image, x, baseline int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

// TerrainLegend returns one line per terrain type, in document order, naming
// the flags that are set.
func TerrainLegend(ts *tileset.TileSet) []string {
	types := ts.TerrainTypes()
	lines := make([]string, 0, len(types))
	for _, tt := range types {
		var flags []string
		if tt.Buildable {
			flags = append(flags, "buildable")
		}
		if tt.IsWater {
			flags = append(flags, "water")
		}
		if tt.AcceptSmudge {
			flags = append(flags, "smudge")
		}
		if len(flags) == 0 {
			flags = append(flags, "-")
		}
		lines = append(lines, tt.Type+": "+strings.Join(flags, "/"))
	}
	return lines
}
