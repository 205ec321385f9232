package tileset

import (
	"fmt"
	"image/color"

	"tilekit/internal/document"
)

// TerrainTypeInfo is one terrain classification and its gameplay flags.
type TerrainTypeInfo struct {
	Type         string
	Buildable    bool
	AcceptSmudge bool
	IsWater      bool
	Color        color.RGBA
}

// NewTerrainTypeInfo binds a terrain entry. Buildable and AcceptSmudge
// default to true, IsWater to false and Color to zero. Type is required
// because it keys the terrain catalog.
func NewTerrainTypeInfo(n *document.Node) (TerrainTypeInfo, error) {
	info := TerrainTypeInfo{Buildable: true, AcceptSmudge: true}

	var err error
	if info.Type, err = n.RequiredString("Type"); err != nil {
		return TerrainTypeInfo{}, err
	}
	if info.Buildable, err = n.Bool("Buildable", info.Buildable); err != nil {
		return TerrainTypeInfo{}, fmt.Errorf("terrain %s: %w", info.Type, err)
	}
	if info.AcceptSmudge, err = n.Bool("AcceptSmudge", info.AcceptSmudge); err != nil {
		return TerrainTypeInfo{}, fmt.Errorf("terrain %s: %w", info.Type, err)
	}
	if info.IsWater, err = n.Bool("IsWater", info.IsWater); err != nil {
		return TerrainTypeInfo{}, fmt.Errorf("terrain %s: %w", info.Type, err)
	}
	if info.Color, err = n.Color("Color", info.Color); err != nil {
		return TerrainTypeInfo{}, fmt.Errorf("terrain %s: %w", info.Type, err)
	}
	return info, nil
}

// Save writes every field back, defaults included, in the shape
// NewTerrainTypeInfo reads.
func (t TerrainTypeInfo) Save() *document.Node {
	return document.NewNode("TerrainType@"+t.Type).
		Set("Type", t.Type).
		Set("Buildable", document.FormatBool(t.Buildable)).
		Set("AcceptSmudge", document.FormatBool(t.AcceptSmudge)).
		Set("IsWater", document.FormatBool(t.IsWater)).
		Set("Color", document.FormatColor(t.Color))
}
