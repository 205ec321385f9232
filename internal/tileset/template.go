package tileset

import (
	"fmt"
	"image"
	"sort"
	"strconv"

	"tilekit/internal/document"
)

// TileTemplate is a group of cells cut from one image, with the terrain type
// of every classified cell.
type TileTemplate struct {
	ID      uint16
	Image   string
	Size    image.Point
	PickAny bool

	tiles map[byte]string
}

// TileCell is one classified cell of a template.
type TileCell struct {
	Index   byte
	Terrain string
}

// NewTileTemplate binds Id, Image, Size and PickAny, then reads the Tiles
// sub-section. Other keys are ignored. Tiles must be present even when empty.
func NewTileTemplate(n *document.Node) (TileTemplate, error) {
	var (
		t   TileTemplate
		err error
	)
	if t.ID, err = n.Uint16("Id", 0); err != nil {
		return TileTemplate{}, fmt.Errorf("template %s: %w", n.Key, err)
	}
	t.Image = n.String("Image", "")
	if t.Size, err = n.Point("Size", image.Point{}); err != nil {
		return TileTemplate{}, fmt.Errorf("template %s: %w", n.Key, err)
	}
	if t.PickAny, err = n.Bool("PickAny", false); err != nil {
		return TileTemplate{}, fmt.Errorf("template %s: %w", n.Key, err)
	}

	section, err := n.Section("Tiles")
	if err != nil {
		return TileTemplate{}, err
	}

	t.tiles = make(map[byte]string, len(section.Nodes))
	for _, c := range section.Nodes {
		index, err := strconv.ParseUint(c.Key, 10, 8)
		if err != nil {
			return TileTemplate{}, fmt.Errorf("template %s: %w", n.Key,
				&document.FieldError{Key: "Tiles." + c.Key, Value: c.Key, Err: err})
		}
		if _, exists := t.tiles[byte(index)]; exists {
			return TileTemplate{}, fmt.Errorf("template %s: %w: cell %d", n.Key, ErrDuplicateKey, index)
		}
		t.tiles[byte(index)] = c.Value
	}
	return t, nil
}

// TerrainAt returns the terrain type of cell, if the template classifies it.
func (t TileTemplate) TerrainAt(cell byte) (string, bool) {
	terrain, ok := t.tiles[cell]
	return terrain, ok
}

// Cells returns the classified cells in index order.
func (t TileTemplate) Cells() []TileCell {
	cells := make([]TileCell, 0, len(t.tiles))
	for index, terrain := range t.tiles {
		cells = append(cells, TileCell{Index: index, Terrain: terrain})
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Index < cells[j].Index })
	return cells
}

// CellCount returns the number of cells the template's footprint covers.
func (t TileTemplate) CellCount() int {
	return t.Size.X * t.Size.Y
}
