package retro

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SceneDB caches encoded tile sheets keyed by the SHA-1 of the source image
// and the color map preset it was converted with
type SceneDB struct {
	db *sql.DB
}

// NewSceneDB opens or creates the database in file
func NewSceneDB(file string) (*SceneDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS sheet (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, preset TEXT NOT NULL, data BLOB NOT NULL, UNIQUE(sha1, preset))"); err != nil {
		db.Close()
		return nil, err
	}

	return &SceneDB{
		db: db,
	}, nil
}

// Close closes the database
func (db *SceneDB) Close() error {
	return db.db.Close()
}

// Find returns the cached sheet for the image with the given hash, or nil
// if there isn't one
func (db *SceneDB) Find(sha1, preset string) ([]byte, error) {
	var data []byte
	switch err := db.db.QueryRow("SELECT data FROM sheet WHERE sha1 = ? AND preset = ?", sha1, preset).Scan(&data); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return data, nil
	default:
		return nil, err
	}
}

// Store caches a sheet, replacing any existing one for the same image and
// preset
func (db *SceneDB) Store(sha1, preset string, data []byte) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO sheet (sha1, preset, data) VALUES (?, ?, ?)", sha1, preset, data); err != nil {
		return err
	}
	return nil
}

// Len returns the number of cached sheets
func (db *SceneDB) Len() (int, error) {
	var n int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM sheet").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
