package tileset

import "fmt"

// TileReference names one concrete tile: a template id and a cell index
// inside that template.
type TileReference struct {
	Type  uint16
	Index byte
}

func (r TileReference) String() string {
	return fmt.Sprintf("%d:%d", r.Type, r.Index)
}
