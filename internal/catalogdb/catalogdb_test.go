package catalogdb

import (
	"bytes"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilekit/internal/document"
	"tilekit/internal/filesystem"
	"tilekit/internal/terrain"
	"tilekit/internal/tileset"
)

const rules = `General:
  Name: Snow
  Id: SNOW
  Palette: snow
  Extensions: .sno, .tem
Terrain:
  TerrainType@Clear: {Type: Clear, Color: "200, 200, 220"}
  TerrainType@Water: {Type: Water, IsWater: True, Buildable: False}
Templates:
  Template@1:
    Id: 1
    Image: ice
    Size: 2,1
    Tiles:
      1: Water
  Template@7:
    Id: 7
    Image: missing
    Size: 1,1
    Tiles: {}
`

func newTileSet(t *testing.T) *tileset.TileSet {
	t.Helper()
	doc, err := document.Parse([]byte(rules))
	require.NoError(t, err)
	ts, err := tileset.New(doc)
	require.NoError(t, err)

	var ice bytes.Buffer
	require.NoError(t, terrain.Encode(&ice, &terrain.Bitmap{Cells: [][]byte{
		bytes.Repeat([]byte{3}, terrain.CellBytes),
		bytes.Repeat([]byte{4}, terrain.CellBytes),
	}}))
	files := filesystem.New(fstest.MapFS{"ice.sno": {Data: ice.Bytes()}})

	// Template 7 has no image; template 1 is loaded before the failure.
	err = ts.LoadTiles(files)
	require.ErrorIs(t, err, filesystem.ErrNotFound)
	require.True(t, ts.Loaded(1))
	return ts
}

func TestWriteTileSet(t *testing.T) {
	ts := newTileSet(t)
	path := filepath.Join(t.TempDir(), "snow.db")

	w, err := NewWriter(path, WithMetadata(map[string]string{"source": "test"}))
	require.NoError(t, err)
	require.NoError(t, w.WriteTileSet(ts))
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	metadata, err := r.ReadMetadata()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"source":     "test",
		"name":       "Snow",
		"id":         "SNOW",
		"palette":    "snow",
		"extensions": ".sno,.tem",
	}, metadata)

	terrainRows, templateRows, cellRows, err := r.Counts()
	require.NoError(t, err)
	assert.Equal(t, 2, terrainRows)
	assert.Equal(t, 2, templateRows)
	assert.Equal(t, 3, cellRows)

	terrainType, data, err := r.ReadCell(tileset.TileReference{Type: 1, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, "Clear", terrainType)
	assert.Equal(t, bytes.Repeat([]byte{3}, terrain.CellBytes), data)

	terrainType, data, err = r.ReadCell(tileset.TileReference{Type: 1, Index: 1})
	require.NoError(t, err)
	assert.Equal(t, "Water", terrainType)
	assert.Equal(t, bytes.Repeat([]byte{4}, terrain.CellBytes), data)

	// Unloaded templates are stored with the placeholder tile.
	terrainType, data, err = r.ReadCell(tileset.TileReference{Type: 7, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, "Clear", terrainType)
	assert.Equal(t, bytes.Repeat([]byte{0x36}, terrain.CellBytes), data)

	_, _, err = r.ReadCell(tileset.TileReference{Type: 9, Index: 0})
	assert.ErrorIs(t, err, ErrCellNotFound)
}

func TestWriteCellNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cells.db")
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteCell(tileset.TileReference{Type: 2, Index: 4}, "Clear", nil))
	require.NoError(t, w.Close())

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	terrainType, data, err := r.ReadCell(tileset.TileReference{Type: 2, Index: 4})
	require.NoError(t, err)
	assert.Equal(t, "Clear", terrainType)
	assert.Nil(t, data)
}

func TestFinalizeRejectsDuplicateCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.db")
	w, err := NewWriter(path)
	require.NoError(t, err)
	defer w.Close()

	ref := tileset.TileReference{Type: 1, Index: 0}
	require.NoError(t, w.WriteCell(ref, "Clear", nil))
	require.NoError(t, w.WriteCell(ref, "Water", nil))
	assert.Error(t, w.Finalize())
}

func TestNewWriterExistingCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = NewWriter(path)
	assert.Error(t, err, "tables already exist")
}
