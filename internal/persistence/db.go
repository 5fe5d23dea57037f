// Package persistence provides SQLite-based storage for generated maps.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexmap/internal/world"
)

// ErrMapNotFound is returned when no stored map has the requested ID.
var ErrMapNotFound = errors.New("map not found")

// MetaLastMapID is the meta key updated by every SaveMap.
const MetaLastMapID = "last_map_id"

// DB wraps a SQLite connection for map persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS maps (
		id TEXT PRIMARY KEY,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		preset TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tiles (
		map_id TEXT NOT NULL REFERENCES maps(id),
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		elevation INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		player_spawn INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (map_id, q, r)
	);

	CREATE TABLE IF NOT EXISTS map_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tiles_spawn ON tiles(map_id, player_spawn);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// MapSummary describes a stored map without its tiles.
type MapSummary struct {
	ID        string    `db:"id" json:"id"`
	Width     int       `db:"width" json:"width"`
	Height    int       `db:"height" json:"height"`
	Seed      int64     `db:"seed" json:"seed"`
	Preset    string    `db:"preset" json:"preset"`
	Tiles     int       `db:"tiles" json:"tiles"`
	CreatedAt time.Time `db:"-" json:"created_at"`
	Created   int64     `db:"created_at" json:"-"`
}

type tileRow struct {
	Q           int `db:"q"`
	R           int `db:"r"`
	Elevation   int `db:"elevation"`
	Terrain     int `db:"terrain"`
	PlayerSpawn int `db:"player_spawn"`
}

// SaveMap stores m under a fresh ID and returns it.
func (db *DB) SaveMap(m *world.MapData) (string, error) {
	if m == nil {
		return "", errors.New("save map: nil map")
	}
	id := uuid.NewString()

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO maps (id, width, height, seed, preset, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, m.Width, m.Height, m.Seed, m.Preset, time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert map: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO tiles
		(map_id, q, r, elevation, terrain, player_spawn)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, t := range m.Tiles {
		_, err := stmt.Exec(id, t.Coord.Q, t.Coord.R, t.Elevation, int(t.Terrain), t.PlayerSpawn)
		if err != nil {
			return "", fmt.Errorf("insert tile %s: %w", t.Coord, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO map_meta (key, value) VALUES (?, ?)",
		MetaLastMapID, id,
	); err != nil {
		return "", fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("map saved", "id", id, "width", m.Width, "height", m.Height, "tiles", len(m.Tiles))
	return id, nil
}

// LoadMap reads the map stored under id, tiles in row-major order.
func (db *DB) LoadMap(id string) (*world.MapData, error) {
	var summary MapSummary
	err := db.conn.Get(&summary,
		"SELECT id, width, height, seed, preset, created_at, 0 AS tiles FROM maps WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrMapNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var rows []tileRow
	err = db.conn.Select(&rows,
		"SELECT q, r, elevation, terrain, player_spawn FROM tiles WHERE map_id = ? ORDER BY r, q", id)
	if err != nil {
		return nil, fmt.Errorf("load tiles: %w", err)
	}

	m := &world.MapData{
		Width:  summary.Width,
		Height: summary.Height,
		Seed:   summary.Seed,
		Preset: summary.Preset,
		Tiles:  make([]world.Tile, len(rows)),
	}
	for i, row := range rows {
		m.Tiles[i] = world.Tile{
			Coord:       world.HexCoord{Q: row.Q, R: row.R},
			Elevation:   row.Elevation,
			Terrain:     world.Terrain(row.Terrain),
			PlayerSpawn: row.PlayerSpawn,
		}
	}
	return m, nil
}

// ListMaps returns up to limit stored maps, newest first.
func (db *DB) ListMaps(limit int) ([]MapSummary, error) {
	var maps []MapSummary
	err := db.conn.Select(&maps, `SELECT m.id, m.width, m.height, m.seed, m.preset, m.created_at,
		(SELECT COUNT(*) FROM tiles t WHERE t.map_id = m.id) AS tiles
		FROM maps m ORDER BY m.rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	for i := range maps {
		maps[i].CreatedAt = time.Unix(maps[i].Created, 0).UTC()
	}
	return maps, nil
}

// DeleteMap removes a stored map and its tiles.
func (db *DB) DeleteMap(id string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tiles WHERE map_id = ?", id); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM maps WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrMapNotFound, id)
	}
	return tx.Commit()
}

// SaveMeta stores a key-value pair in map metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO map_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM map_meta WHERE key = ?", key)
	return value, err
}
