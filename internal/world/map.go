package world

import (
	"fmt"
	"sort"
)

// MapData is a finished, flattened map: every generated tile in row-major order.
type MapData struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Seed   int64  `json:"seed"`
	Preset string `json:"preset,omitempty"`
	Tiles  []Tile `json:"tiles"`
}

// Get returns the tile at the given coordinate, or nil if none was generated.
// q wraps around the map width like every other coordinate lookup.
func (m *MapData) Get(q, r int) *Tile {
	if m.Width <= 0 || r < 0 || r >= m.Height {
		return nil
	}
	q = WrapQ(q, m.Width)

	// Complete maps are dense and row-major, so try the direct slot first.
	if idx := r*m.Width + q; idx < len(m.Tiles) {
		if t := &m.Tiles[idx]; t.Coord.Q == q && t.Coord.R == r {
			return t
		}
	}
	for i := range m.Tiles {
		if m.Tiles[i].Coord.Q == q && m.Tiles[i].Coord.R == r {
			return &m.Tiles[i]
		}
	}
	return nil
}

// Spawns maps each 1-based player index to its starting coordinate.
func (m *MapData) Spawns() map[int]HexCoord {
	spawns := make(map[int]HexCoord)
	for _, t := range m.Tiles {
		if t.IsSpawn() {
			spawns[t.PlayerSpawn] = t.Coord
		}
	}
	return spawns
}

// SpawnPlayers returns the player indices that have a spawn, ascending.
func (m *MapData) SpawnPlayers() []int {
	var players []int
	for p := range m.Spawns() {
		players = append(players, p)
	}
	sort.Ints(players)
	return players
}

// TileCount returns the number of generated tiles.
func (m *MapData) TileCount() int {
	return len(m.Tiles)
}

// String returns a summary of the map.
func (m *MapData) String() string {
	return fmt.Sprintf("Map(%dx%d, seed=%d, tiles=%d)", m.Width, m.Height, m.Seed, m.TileCount())
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *MapData) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range m.Tiles {
		counts[t.Terrain]++
	}
	return counts
}
