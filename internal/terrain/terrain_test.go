package terrain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func filledCell(v byte) []byte {
	return bytes.Repeat([]byte{v}, CellBytes)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := &Bitmap{
		Width:  TileSize,
		Height: TileSize,
		Cells:  [][]byte{filledCell(1), nil, filledCell(7), filledCell(9)},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, want); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bitmap mismatch (-want +got):\n%s", diff)
	}

	if c := got.Cell(1); c != nil {
		t.Errorf("expected empty cell 1 to be nil, got %d bytes", len(c))
	}
	if c := got.Cell(200); c != nil {
		t.Errorf("expected out-of-range cell to be nil, got %d bytes", len(c))
	}
	if got.Len() != 4 {
		t.Errorf("expected 4 cells, got %d", got.Len())
	}
}

func TestDecodeRedAlertHeader(t *testing.T) {
	hdr := raHeader{
		Width:      TileSize,
		Height:     TileSize,
		NumTiles:   2,
		XDim:       2,
		YDim:       1,
		ImgStart:   40,
		IndexStart: 40 + 2*CellBytes,
		IndexEnd:   40 + 2*CellBytes + 3,
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		t.Fatalf("write header: %v", err)
	}
	buf.Write(filledCell(0x11))
	buf.Write(filledCell(0x22))
	buf.Write([]byte{1, emptyCell, 0})

	bmp, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff([][]byte{filledCell(0x22), nil, filledCell(0x11)}, bmp.Cells); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsBadTemplates(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "short", data: []byte{24, 0}},
		{name: "wrong cell size", data: func() []byte {
			var buf bytes.Buffer
			binary.Write(&buf, binary.LittleEndian, cncHeader{Width: 32, Height: 32, ID1: cncMarker})
			return buf.Bytes()
		}()},
		{name: "index past end", data: func() []byte {
			var buf bytes.Buffer
			binary.Write(&buf, binary.LittleEndian, cncHeader{Width: 24, Height: 24, ID1: cncMarker, IndexStart: 32, IndexEnd: 64})
			return buf.Bytes()
		}()},
		{name: "image past end", data: func() []byte {
			var buf bytes.Buffer
			binary.Write(&buf, binary.LittleEndian, cncHeader{Width: 24, Height: 24, ID1: cncMarker, ImgStart: 32, IndexStart: 32, IndexEnd: 33})
			buf.WriteByte(0)
			return buf.Bytes()
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(bytes.NewReader(tt.data)); !errors.Is(err, ErrInvalidTemplate) {
				t.Errorf("expected ErrInvalidTemplate, got %v", err)
			}
		})
	}
}

func TestDecodePalettedPNG(t *testing.T) {
	pal := color.Palette{color.Black, color.White, color.RGBA{255, 0, 0, 255}}
	img := image.NewPaletted(image.Rect(0, 0, 2*TileSize, TileSize), pal)
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			img.SetColorIndex(x, y, 1)
			img.SetColorIndex(TileSize+x, y, 2)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}

	bmp, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff([][]byte{filledCell(1), filledCell(2)}, bmp.Cells); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePNGErrors(t *testing.T) {
	var rgba bytes.Buffer
	if err := png.Encode(&rgba, image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	if _, err := Decode(&rgba); !errors.Is(err, ErrNotPaletted) {
		t.Errorf("expected ErrNotPaletted, got %v", err)
	}

	var odd bytes.Buffer
	pal := color.Palette{color.Black, color.White}
	if err := png.Encode(&odd, image.NewPaletted(image.Rect(0, 0, 30, TileSize), pal)); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	if _, err := Decode(&odd); !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("expected ErrInvalidTemplate for odd width, got %v", err)
	}
}

func TestEncodeRejectsShortCell(t *testing.T) {
	err := Encode(&bytes.Buffer{}, &Bitmap{Cells: [][]byte{{1, 2, 3}}})
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("expected ErrInvalidTemplate, got %v", err)
	}
}
