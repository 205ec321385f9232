// Package catalogdb stores tile set catalogs in SQLite databases.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this package.
package catalogdb

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tilekit/internal/document"
	"tilekit/internal/tileset"
)

// Writer writes one tile set catalog into a new database file.
type Writer struct {
	db           *sql.DB
	terrainStmt  *sql.Stmt
	templateStmt *sql.Stmt
	cellStmt     *sql.Stmt
	logger       *slog.Logger
}

type writerConfig struct {
	Metadata map[string]string
	Logger   *slog.Logger
}

type WriterOption func(*writerConfig)

// WithMetadata adds rows to the metadata table on top of the tile set's own.
func WithMetadata(metadata map[string]string) WriterOption {
	return func(c *writerConfig) { c.Metadata = metadata }
}

func WithLogger(logger *slog.Logger) WriterOption {
	return func(c *writerConfig) { c.Logger = logger }
}

// NewWriter creates the catalog tables in filePath and prepares the insert
// statements.
func NewWriter(filePath string, opts ...WriterOption) (*Writer, error) {
	config := writerConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	var err error
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	_, err = db.Exec(`
		CREATE TABLE metadata (name TEXT, value TEXT);
		CREATE TABLE terrain (
			type TEXT PRIMARY KEY,
			buildable INTEGER,
			accept_smudge INTEGER,
			is_water INTEGER,
			color TEXT
		);
		CREATE TABLE templates (
			id INTEGER PRIMARY KEY,
			image TEXT,
			width INTEGER,
			height INTEGER,
			pick_any INTEGER
		);
		CREATE TABLE cells (
			template_id INTEGER,
			cell_index INTEGER,
			terrain TEXT,
			cell_data BLOB
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog tables: %w", err)
	}

	for k, v := range config.Metadata {
		_, err = db.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", k, v)
		if err != nil {
			return nil, err
		}
	}

	w := &Writer{db: db, logger: config.Logger}
	if w.terrainStmt, err = db.Prepare("INSERT INTO terrain (type, buildable, accept_smudge, is_water, color) VALUES (?, ?, ?, ?, ?)"); err != nil {
		return nil, err
	}
	if w.templateStmt, err = db.Prepare("INSERT INTO templates (id, image, width, height, pick_any) VALUES (?, ?, ?, ?, ?)"); err != nil {
		w.terrainStmt.Close()
		return nil, err
	}
	if w.cellStmt, err = db.Prepare("INSERT INTO cells (template_id, cell_index, terrain, cell_data) VALUES (?, ?, ?, ?)"); err != nil {
		w.terrainStmt.Close()
		w.templateStmt.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) Close() error {
	return errors.Join(w.terrainStmt.Close(), w.templateStmt.Close(), w.cellStmt.Close(), w.db.Close())
}

func (w *Writer) WriteMetadata(name, value string) error {
	_, err := w.db.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", name, value)
	return err
}

func (w *Writer) WriteTerrain(info tileset.TerrainTypeInfo) error {
	_, err := w.terrainStmt.Exec(info.Type, info.Buildable, info.AcceptSmudge, info.IsWater, document.FormatColor(info.Color))
	return err
}

func (w *Writer) WriteTemplate(t tileset.TileTemplate) error {
	_, err := w.templateStmt.Exec(t.ID, t.Image, t.Size.X, t.Size.Y, t.PickAny)
	return err
}

// WriteCell stores one cell. A nil cellData is stored as NULL.
func (w *Writer) WriteCell(ref tileset.TileReference, terrainType string, cellData []byte) error {
	var data any
	if cellData != nil {
		data = cellData
	}
	_, err := w.cellStmt.Exec(ref.Type, ref.Index, terrainType, data)
	return err
}

// WriteTileSet stores the general fields, every terrain type, every template
// and every cell of each template's footprint. Cell bytes come from GetBytes,
// so templates without a loaded bitmap are stored with placeholder bytes.
func (w *Writer) WriteTileSet(ts *tileset.TileSet) error {
	general := []struct{ name, value string }{
		{"name", ts.Name()},
		{"id", ts.ID()},
		{"palette", ts.Palette()},
		{"extensions", strings.Join(ts.Extensions(), ",")},
	}
	for _, m := range general {
		if err := w.WriteMetadata(m.name, m.value); err != nil {
			return err
		}
	}

	for _, info := range ts.TerrainTypes() {
		if err := w.WriteTerrain(info); err != nil {
			return fmt.Errorf("terrain %s: %w", info.Type, err)
		}
	}

	cells := 0
	for _, t := range ts.Templates() {
		if err := w.WriteTemplate(t); err != nil {
			return fmt.Errorf("template %d: %w", t.ID, err)
		}
		for i := 0; i < t.CellCount() && i < 256; i++ {
			ref := tileset.TileReference{Type: t.ID, Index: byte(i)}
			terrainType, err := ts.GetTerrainType(ref)
			if err != nil {
				return err
			}
			if err := w.WriteCell(ref, terrainType, ts.GetBytes(ref)); err != nil {
				return fmt.Errorf("cell %s: %w", ref, err)
			}
			cells++
		}
	}

	w.logger.Debug("catalogdb: tile set written", "terrain", ts.TerrainCount(), "templates", ts.TemplateCount(), "cells", cells)
	return nil
}

func (w *Writer) Finalize() error {
	w.logger.Debug("catalogdb: creating index")
	_, err := w.db.Exec("CREATE UNIQUE INDEX cells_by_template ON cells (template_id, cell_index)")
	w.logger.Debug("catalogdb: done!")
	return err
}
