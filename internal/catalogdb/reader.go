package catalogdb

import (
	"database/sql"
	"errors"
	"fmt"

	"tilekit/internal/tileset"
)

// ErrCellNotFound is returned by ReadCell for a cell that was never written.
var ErrCellNotFound = errors.New("cell not found")

// Reader reads catalogs written by Writer.
type Reader struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// NewReader opens the catalog at filePath read-only.
//
// The returned Reader must be closed after use to release database resources.
func NewReader(filePath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}

	stmt, err := db.Prepare("SELECT terrain, cell_data FROM cells WHERE template_id = ? AND cell_index = ?")
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Reader{db: db, stmt: stmt}, nil
}

func (r *Reader) Close() error {
	return errors.Join(r.stmt.Close(), r.db.Close())
}

func (r *Reader) ReadMetadata() (map[string]string, error) {
	metadata := make(map[string]string)

	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metadata[name] = value
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return metadata, nil
}

// ReadCell returns the terrain type and bytes stored for ref.
func (r *Reader) ReadCell(ref tileset.TileReference) (string, []byte, error) {
	var (
		terrainType string
		cellData    []byte
	)
	if err := r.stmt.QueryRow(ref.Type, ref.Index).Scan(&terrainType, &cellData); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, fmt.Errorf("%w: %s", ErrCellNotFound, ref)
		}
		return "", nil, err
	}
	return terrainType, cellData, nil
}

// Counts returns the number of terrain, template and cell rows.
func (r *Reader) Counts() (terrain, templates, cells int, err error) {
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"terrain", &terrain},
		{"templates", &templates},
		{"cells", &cells},
	} {
		if err = r.db.QueryRow("SELECT COUNT(*) FROM " + q.table).Scan(q.dst); err != nil {
			return 0, 0, 0, err
		}
	}
	return terrain, templates, cells, nil
}
