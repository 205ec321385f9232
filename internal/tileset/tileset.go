// Package tileset loads tile set definitions: the terrain catalog, the tile
// templates, and the template bitmaps the renderer draws from.
//
// Catalogs are built once by New and never change afterwards. Bitmaps are
// filled in separately by LoadTiles. GetTerrainType rejects an unknown
// template; GetBytes on an unloaded template and GetTerrainType on an
// unmapped cell fall back to defaults instead.
package tileset

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"tilekit/internal/document"
	"tilekit/internal/terrain"
)

// DefaultTerrainType is reported for template cells with no terrain entry.
const DefaultTerrainType = "Clear"

// placeholderFill is the palette index of the missing-tile placeholder.
const placeholderFill = 0x36

var (
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrTemplateNotFound = errors.New("template not found")
)

// TileSet is a loaded tile set definition.
type TileSet struct {
	name       string
	id         string
	palette    string
	extensions []string

	terrain      map[string]TerrainTypeInfo
	terrainOrder []string

	templates     map[uint16]TileTemplate
	templateOrder []uint16

	bitmaps *bitmapCache
}

// Load parses the tile set document at path.
func Load(path string) (*TileSet, error) {
	doc, err := document.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(doc)
}

// LoadFS parses the tile set document stored under name in fsys.
func LoadFS(fsys fs.FS, name string) (*TileSet, error) {
	doc, err := document.ReadFS(fsys, name)
	if err != nil {
		return nil, err
	}
	return New(doc)
}

// New builds a tile set from the General, Terrain and Templates sections, in
// that order. Any error leaves nothing behind: the result is either complete
// or nil.
func New(doc *document.Document) (*TileSet, error) {
	general, err := doc.Section("General")
	if err != nil {
		return nil, err
	}

	ts := &TileSet{
		name:       general.String("Name", ""),
		id:         general.String("Id", ""),
		palette:    general.String("Palette", ""),
		extensions: general.StringList("Extensions", nil),
		terrain:    make(map[string]TerrainTypeInfo),
		templates:  make(map[uint16]TileTemplate),
		bitmaps:    newBitmapCache(),
	}

	terrainSection, err := doc.Section("Terrain")
	if err != nil {
		return nil, err
	}
	for _, n := range terrainSection.Nodes {
		info, err := NewTerrainTypeInfo(n)
		if err != nil {
			return nil, fmt.Errorf("failed to load terrain: %w", err)
		}
		if _, exists := ts.terrain[info.Type]; exists {
			return nil, fmt.Errorf("failed to load terrain: %w: type %q", ErrDuplicateKey, info.Type)
		}
		ts.terrain[info.Type] = info
		ts.terrainOrder = append(ts.terrainOrder, info.Type)
	}

	templateSection, err := doc.Section("Templates")
	if err != nil {
		return nil, err
	}
	for _, n := range templateSection.Nodes {
		t, err := NewTileTemplate(n)
		if err != nil {
			return nil, fmt.Errorf("failed to load templates: %w", err)
		}
		if _, exists := ts.templates[t.ID]; exists {
			return nil, fmt.Errorf("failed to load templates: %w: id %d", ErrDuplicateKey, t.ID)
		}
		ts.templates[t.ID] = t
		ts.templateOrder = append(ts.templateOrder, t.ID)
	}
	sort.Slice(ts.templateOrder, func(i, j int) bool { return ts.templateOrder[i] < ts.templateOrder[j] })

	return ts, nil
}

// Name returns the display name of the tile set.
func (ts *TileSet) Name() string { return ts.name }

// ID returns the tile set identifier maps refer to.
func (ts *TileSet) ID() string { return ts.id }

// Palette returns the base name of the palette the bitmaps index into.
func (ts *TileSet) Palette() string { return ts.palette }

// Extensions returns the candidate image extensions in lookup order.
func (ts *TileSet) Extensions() []string {
	return append([]string(nil), ts.extensions...)
}

// TerrainType returns the terrain entry called name.
func (ts *TileSet) TerrainType(name string) (TerrainTypeInfo, bool) {
	info, ok := ts.terrain[name]
	return info, ok
}

// TerrainTypes returns the terrain entries in document order.
func (ts *TileSet) TerrainTypes() []TerrainTypeInfo {
	out := make([]TerrainTypeInfo, 0, len(ts.terrainOrder))
	for _, name := range ts.terrainOrder {
		out = append(out, ts.terrain[name])
	}
	return out
}

// TerrainCount returns the number of terrain entries.
func (ts *TileSet) TerrainCount() int { return len(ts.terrain) }

// Template returns the template with the given id.
func (ts *TileSet) Template(id uint16) (TileTemplate, bool) {
	t, ok := ts.templates[id]
	return t, ok
}

// Templates returns all templates ordered by id.
func (ts *TileSet) Templates() []TileTemplate {
	out := make([]TileTemplate, 0, len(ts.templateOrder))
	for _, id := range ts.templateOrder {
		out = append(out, ts.templates[id])
	}
	return out
}

// TemplateCount returns the number of templates.
func (ts *TileSet) TemplateCount() int { return len(ts.templates) }

// Loaded reports whether the bitmap of template id is cached.
func (ts *TileSet) Loaded(id uint16) bool {
	_, ok := ts.bitmaps.get(id)
	return ok
}

// LoadedCount returns the number of cached bitmaps.
func (ts *TileSet) LoadedCount() int {
	return ts.bitmaps.size()
}

// GetBytes returns the pixel bytes of r. A template without a cached bitmap
// yields a placeholder tile instead of an error. For a cached template the
// result is whatever terrain.Bitmap.Cell returns, nil for a cell it lacks.
// The returned slice must not be modified.
func (ts *TileSet) GetBytes(r TileReference) []byte {
	if bmp, ok := ts.bitmaps.get(r.Type); ok {
		return bmp.Cell(r.Index)
	}
	return missingTile()
}

// GetTerrainType returns the terrain type of r. Unknown templates are an
// error; cells the template does not classify are DefaultTerrainType.
func (ts *TileSet) GetTerrainType(r TileReference) (string, error) {
	t, ok := ts.templates[r.Type]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrTemplateNotFound, r.Type)
	}
	if tt, ok := t.TerrainAt(r.Index); ok {
		return tt, nil
	}
	return DefaultTerrainType, nil
}

func missingTile() []byte {
	tile := make([]byte, terrain.CellBytes)
	for i := range tile {
		tile[i] = placeholderFill
	}
	return tile
}
