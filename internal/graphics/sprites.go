package graphics

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"tilekit/internal/terrain"
	"tilekit/internal/tileset"
)

// SpriteManager turns templates into ebiten images for the viewer.
type SpriteManager struct {
	tileset *tileset.TileSet
	palette color.Palette
	sprites map[uint16]*ebiten.Image
}

func NewSpriteManager(ts *tileset.TileSet, pal color.Palette) *SpriteManager {
	return &SpriteManager{
		tileset: ts,
		palette: pal,
		sprites: make(map[uint16]*ebiten.Image),
	}
}

func (sm *SpriteManager) createPlaceholder() *ebiten.Image {
	img := ebiten.NewImage(terrain.TileSize, terrain.TileSize)
	img.Fill(color.RGBA{128, 128, 128, 255}) // Gray for unknown
	return img
}

// GetSprite returns the image of template id. Only templates whose bitmap is
// loaded are cached, so a later LoadTiles replaces the placeholder art.
func (sm *SpriteManager) GetSprite(id uint16) *ebiten.Image {
	if sprite, exists := sm.sprites[id]; exists {
		return sprite
	}

	t, ok := sm.tileset.Template(id)
	if !ok {
		return sm.createPlaceholder()
	}

	sprite := ebiten.NewImageFromImage(TemplateImage(sm.tileset, t, sm.palette))
	if sm.tileset.Loaded(id) {
		sm.sprites[id] = sprite
	}
	return sprite
}
