// Package palette loads the 256 color palettes that tile bitmaps index into.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"io"
)

// Size is the number of entries in a palette file.
const Size = 256

var ErrInvalidPalette = errors.New("invalid palette")

// Load reads a VGA palette: 256 RGB triplets with 6-bit components. Entry 0
// is treated as transparent.
func Load(r io.Reader) (color.Palette, error) {
	raw := make([]byte, Size*3)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPalette, err)
	}

	pal := make(color.Palette, Size)
	for i := 0; i < Size; i++ {
		pal[i] = color.RGBA{
			R: expand(raw[i*3]),
			G: expand(raw[i*3+1]),
			B: expand(raw[i*3+2]),
			A: 255,
		}
	}
	pal[0] = color.RGBA{}
	return pal, nil
}

// Opener resolves a base name against candidate extensions.
type Opener interface {
	OpenWithExts(name string, exts ...string) (io.ReadCloser, error)
}

// Find loads the palette called name, trying exts in order.
func Find(files Opener, name string, exts ...string) (color.Palette, error) {
	rc, err := files.OpenWithExts(name, exts...)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Load(rc)
}

// Grayscale is the fallback palette used when a tile set's palette is missing.
func Grayscale() color.Palette {
	pal := make(color.Palette, Size)
	for i := range pal {
		pal[i] = color.RGBA{R: uint8(i), G: uint8(i), B: uint8(i), A: 255}
	}
	pal[0] = color.RGBA{}
	return pal
}

// expand scales a 6-bit VGA component to 8 bits.
func expand(c byte) uint8 {
	c &= 0x3F
	return c<<2 | c>>4
}
