// Package world provides the hex grid, terrain, and tile data structures.
// Uses axial coordinates (q, r) on a rectangular map that wraps horizontally:
// q is taken modulo the map width, r is bounded by the poles.
package world

import (
	"fmt"
	"strings"
)

// HexCoord represents a position on the hex grid using axial coordinates.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

func (h HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// Elevation bounds shared by every tile.
const (
	MinElevation = 0
	MaxElevation = 4
)

// ClampElevation forces e into [MinElevation, MaxElevation].
func ClampElevation(e int) int {
	return Clamp(e, MinElevation, MaxElevation)
}

// Clamp forces v into [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WrapQ maps any column index onto [0, width). Returns 0 for a degenerate width.
func WrapQ(q, width int) int {
	if width <= 0 {
		return 0
	}
	q %= width
	if q < 0 {
		q += width
	}
	return q
}

// Direction indexes the six neighbor slots returned by Neighbors.
type Direction int

const (
	DirNorth Direction = iota
	DirNorthEast
	DirSouthEast
	DirSouth
	DirSouthWest
	DirNorthWest
)

// neighborOffsets holds the four offset tables, indexed [r&1][q&1]. Columns
// pair up, even q with the odd column east of it, and each cell shares a row
// with its partner. On that side the second diagonal leans up on even rows
// and down on odd rows; the far side reaches one row up and one row down.
// Every table is the mirror of the tables it points into, so adjacency is
// mutual whenever the width is even.
var neighborOffsets = [2][2][6]HexCoord{
	// even r
	{
		// even q
		{
			DirNorth:     {Q: 0, R: -1},
			DirNorthEast: {Q: 1, R: -1},
			DirSouthEast: {Q: 1, R: 0},
			DirSouth:     {Q: 0, R: 1},
			DirSouthWest: {Q: -1, R: 1},
			DirNorthWest: {Q: -1, R: -1},
		},
		// odd q
		{
			DirNorth:     {Q: 0, R: -1},
			DirNorthEast: {Q: 1, R: -1},
			DirSouthEast: {Q: 1, R: 1},
			DirSouth:     {Q: 0, R: 1},
			DirSouthWest: {Q: -1, R: 0},
			DirNorthWest: {Q: -1, R: -1},
		},
	},
	// odd r
	{
		// even q
		{
			DirNorth:     {Q: 0, R: -1},
			DirNorthEast: {Q: 1, R: 0},
			DirSouthEast: {Q: 1, R: 1},
			DirSouth:     {Q: 0, R: 1},
			DirSouthWest: {Q: -1, R: 1},
			DirNorthWest: {Q: -1, R: -1},
		},
		// odd q
		{
			DirNorth:     {Q: 0, R: -1},
			DirNorthEast: {Q: 1, R: -1},
			DirSouthEast: {Q: 1, R: 1},
			DirSouth:     {Q: 0, R: 1},
			DirSouthWest: {Q: -1, R: 1},
			DirNorthWest: {Q: -1, R: 0},
		},
	},
}

// Neighbor is one adjacency slot. OK is false when the slot lies past a pole.
type Neighbor struct {
	Coord HexCoord
	OK    bool
}

// Neighbors returns the six neighbor slots of (q, r) on a width x height map.
// Columns wrap around; rows outside [0, height) come back with OK == false.
// The input q is normalized first, so q and q+width yield identical slots.
func Neighbors(q, r, width, height int) [6]Neighbor {
	var result [6]Neighbor
	if width <= 0 || height <= 0 {
		return result
	}
	q = WrapQ(q, width)
	for i, off := range neighborOffsets[r&1][q&1] {
		nr := r + off.R
		if nr < 0 || nr >= height {
			continue
		}
		result[i] = Neighbor{
			Coord: HexCoord{Q: WrapQ(q+off.Q, width), R: nr},
			OK:    true,
		}
	}
	return result
}

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainIcecap    Terrain = iota // Polar barrier, impassable
	TerrainOcean                    // Sea level water
	TerrainGrassland                // Default continental fill
	TerrainDesert                   // Dry equatorial land
	TerrainTundra                   // Cold land near the ice shelves
)

var terrainNames = [...]string{
	TerrainIcecap:    "Icecap",
	TerrainOcean:     "Ocean",
	TerrainGrassland: "Grassland",
	TerrainDesert:    "Desert",
	TerrainTundra:    "Tundra",
}

// AllTerrains lists every terrain in declaration order.
var AllTerrains = []Terrain{TerrainIcecap, TerrainOcean, TerrainGrassland, TerrainDesert, TerrainTundra}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "Unknown"
}

func (t Terrain) String() string {
	return TerrainName(t)
}

// ParseTerrain resolves a terrain name, case-insensitively.
func ParseTerrain(name string) (Terrain, error) {
	for _, t := range AllTerrains {
		if strings.EqualFold(TerrainName(t), strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown terrain %q", name)
}

// MarshalText encodes terrain by name so JSON payloads stay readable.
func (t Terrain) MarshalText() ([]byte, error) {
	if int(t) >= len(terrainNames) {
		return nil, fmt.Errorf("unknown terrain %d", t)
	}
	return []byte(TerrainName(t)), nil
}

func (t *Terrain) UnmarshalText(b []byte) error {
	parsed, err := ParseTerrain(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Walkable reports whether a player may start on this terrain.
func (t Terrain) Walkable() bool {
	return t == TerrainGrassland || t == TerrainDesert
}

// Tile is a single generated cell of the map.
type Tile struct {
	Coord     HexCoord `json:"coord"`
	Elevation int      `json:"elevation"` // MinElevation..MaxElevation
	Terrain   Terrain  `json:"terrain"`

	// 1-based player index when this tile is a starting location, 0 otherwise.
	PlayerSpawn int `json:"player_spawn,omitempty"`
}

// IsSpawn reports whether a player starts on this tile.
func (t *Tile) IsSpawn() bool {
	return t.PlayerSpawn > 0
}
