// Package terrain decodes tile template images into per-cell pixel data.
//
// Two encodings are understood: the C&C / Red Alert template format and
// paletted PNG sheets cut into TileSize squares. In both cases a cell's bytes
// are raw palette indices, TileSize*TileSize of them.
package terrain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
)

// TileSize is the edge length of a single cell in pixels.
const TileSize = 24

// CellBytes is the length of one decoded cell.
const CellBytes = TileSize * TileSize

// emptyCell marks an index entry with no image.
const emptyCell = 0xFF

var (
	ErrInvalidTemplate = errors.New("invalid template data")
	ErrNotPaletted     = errors.New("png is not paletted")
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Bitmap is a decoded template: one entry per cell, nil for empty cells.
type Bitmap struct {
	Width  int
	Height int
	Cells  [][]byte
}

// Cell returns the pixel bytes of cell index, or nil when the template has no
// image for it.
func (b *Bitmap) Cell(index byte) []byte {
	if int(index) >= len(b.Cells) {
		return nil
	}
	return b.Cells[index]
}

// Len returns the number of cells, empty ones included.
func (b *Bitmap) Len() int {
	return len(b.Cells)
}

// cncHeader is the 32 byte header of C&C templates.
type cncHeader struct {
	Width      uint16
	Height     uint16
	NumTiles   uint16
	Zero1      uint16
	Size       uint32
	ImgStart   uint32
	Zero2      uint32
	ID1        uint16 // 0xFFFF for C&C
	ID2        uint16
	IndexEnd   int32
	IndexStart int32
}

// raHeader is the 40 byte header of Red Alert templates.
type raHeader struct {
	Width      uint16
	Height     uint16
	NumTiles   uint16
	Zero1      uint16
	XDim       uint16
	YDim       uint16
	FileSize   uint32
	ImgStart   uint32
	Zero2      uint32
	Zero3      uint32
	IndexEnd   int32
	Zero4      uint32
	IndexStart int32
}

const cncMarker = 0xFFFF

// Decode reads a whole template stream and splits it into cells.
func Decode(r io.Reader) (*Bitmap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	if bytes.HasPrefix(data, pngMagic) {
		return decodePNG(data)
	}
	return decodeTemplate(data)
}

func decodeTemplate(data []byte) (*Bitmap, error) {
	var hdr cncHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrInvalidTemplate, err)
	}
	if hdr.Width != TileSize || hdr.Height != TileSize {
		return nil, fmt.Errorf("%w: %dx%d cells, want %dx%d", ErrInvalidTemplate, hdr.Width, hdr.Height, TileSize, TileSize)
	}

	imgStart, indexStart, indexEnd := int64(hdr.ImgStart), int64(hdr.IndexStart), int64(hdr.IndexEnd)
	if hdr.ID1 != cncMarker {
		var ra raHeader
		if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &ra); err != nil {
			return nil, fmt.Errorf("%w: short header: %v", ErrInvalidTemplate, err)
		}
		imgStart, indexStart, indexEnd = int64(ra.ImgStart), int64(ra.IndexStart), int64(ra.IndexEnd)
	}

	size := int64(len(data))
	if indexStart < 0 || indexEnd < indexStart || indexEnd > size {
		return nil, fmt.Errorf("%w: index range %d..%d outside %d bytes", ErrInvalidTemplate, indexStart, indexEnd, size)
	}

	index := data[indexStart:indexEnd]
	bmp := &Bitmap{Width: TileSize, Height: TileSize, Cells: make([][]byte, len(index))}
	for i, b := range index {
		if b == emptyCell {
			continue
		}
		off := imgStart + int64(b)*CellBytes
		if off < 0 || off+CellBytes > size {
			return nil, fmt.Errorf("%w: cell %d image %d outside %d bytes", ErrInvalidTemplate, i, b, size)
		}
		cell := make([]byte, CellBytes)
		copy(cell, data[off:off+CellBytes])
		bmp.Cells[i] = cell
	}
	return bmp, nil
}

func decodePNG(data []byte) (*Bitmap, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode png: %w", err)
	}
	p, ok := img.(*image.Paletted)
	if !ok {
		return nil, ErrNotPaletted
	}

	b := p.Bounds()
	if b.Dx()%TileSize != 0 || b.Dy()%TileSize != 0 {
		return nil, fmt.Errorf("%w: %dx%d is not a multiple of %d", ErrInvalidTemplate, b.Dx(), b.Dy(), TileSize)
	}
	cols, rows := b.Dx()/TileSize, b.Dy()/TileSize
	if cols*rows > 256 {
		return nil, fmt.Errorf("%w: %d cells, at most 256 allowed", ErrInvalidTemplate, cols*rows)
	}

	bmp := &Bitmap{Width: TileSize, Height: TileSize, Cells: make([][]byte, 0, cols*rows)}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cell := make([]byte, 0, CellBytes)
			for y := 0; y < TileSize; y++ {
				start := p.PixOffset(b.Min.X+col*TileSize, b.Min.Y+row*TileSize+y)
				cell = append(cell, p.Pix[start:start+TileSize]...)
			}
			bmp.Cells = append(bmp.Cells, cell)
		}
	}
	return bmp, nil
}

// Encode writes b in the C&C template format. Nil cells are written as
// empty index entries.
func Encode(w io.Writer, b *Bitmap) error {
	if len(b.Cells) > 256 {
		return fmt.Errorf("%w: %d cells, at most 256 allowed", ErrInvalidTemplate, len(b.Cells))
	}

	index := make([]byte, len(b.Cells))
	var images [][]byte
	for i, cell := range b.Cells {
		if cell == nil {
			index[i] = emptyCell
			continue
		}
		if len(cell) != CellBytes {
			return fmt.Errorf("%w: cell %d has %d bytes, want %d", ErrInvalidTemplate, i, len(cell), CellBytes)
		}
		if len(images) == emptyCell {
			return fmt.Errorf("%w: more than %d images", ErrInvalidTemplate, emptyCell)
		}
		index[i] = byte(len(images))
		images = append(images, cell)
	}

	const headerSize = 32
	imgStart := uint32(headerSize)
	indexStart := imgStart + uint32(len(images)*CellBytes)
	indexEnd := indexStart + uint32(len(index))

	hdr := cncHeader{
		Width:      TileSize,
		Height:     TileSize,
		NumTiles:   uint16(len(b.Cells)),
		Size:       indexEnd,
		ImgStart:   imgStart,
		ID1:        cncMarker,
		ID2:        0x0D1A,
		IndexEnd:   int32(indexEnd),
		IndexStart: int32(indexStart),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	for _, img := range images {
		if _, err := w.Write(img); err != nil {
			return err
		}
	}
	_, err := w.Write(index)
	return err
}
