// Package mapgen is the multi-pass terrain pipeline. A Generator resolves a
// preset into an ordered list of passes, runs them against a fresh Context,
// and flattens the result into a world.MapData.
package mapgen

import (
	"math/rand"

	"github.com/talgya/hexmap/internal/world"
)

// Context is the grid-in-progress for one generation run. It is owned by a
// single Generator call and never shared; passes mutate it one at a time.
//
// Every coordinate-taking method wraps q around the width, so callers never
// pre-wrap. Rows outside [0, height) are never an error: reads return nil and
// writes are no-ops.
type Context struct {
	width  int
	height int
	seed   int64
	rng    *rand.Rand
	grid   []*world.Tile // row-major, nil = unset
}

// NewContext allocates an empty width x height grid whose random source is
// seeded from seed.
func NewContext(width, height int, seed int64) *Context {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Context{
		width:  width,
		height: height,
		seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
		grid:   make([]*world.Tile, width*height),
	}
}

func (c *Context) Width() int  { return c.width }
func (c *Context) Height() int { return c.height }
func (c *Context) Seed() int64 { return c.seed }

// Rand is the run's only random source. Passes must draw from it, never from
// the global generator, so a seed reproduces the whole map.
func (c *Context) Rand() *rand.Rand { return c.rng }

func (c *Context) index(q, r int) (int, bool) {
	if c.width == 0 || r < 0 || r >= c.height {
		return 0, false
	}
	return r*c.width + world.WrapQ(q, c.width), true
}

// Tile returns the tile at (q, r), or nil if the slot is unset or r is off the map.
// The returned pointer is the stored tile; passes that are allowed to rewrite
// settled terrain mutate it in place.
func (c *Context) Tile(q, r int) *world.Tile {
	idx, ok := c.index(q, r)
	if !ok {
		return nil
	}
	return c.grid[idx]
}

// SetTile stores t at (q, r), overwriting anything already there. The stored
// copy carries the normalized coordinate. Returns false if r is off the map.
func (c *Context) SetTile(q, r int, t world.Tile) bool {
	idx, ok := c.index(q, r)
	if !ok {
		return false
	}
	t.Coord = world.HexCoord{Q: world.WrapQ(q, c.width), R: r}
	t.Elevation = world.ClampElevation(t.Elevation)
	c.grid[idx] = &t
	return true
}

// CreateTile builds a tile value for (q, r) without touching the grid.
func (c *Context) CreateTile(q, r, elevation int, terrain world.Terrain) world.Tile {
	return world.Tile{
		Coord:     world.HexCoord{Q: world.WrapQ(q, c.width), R: r},
		Elevation: world.ClampElevation(elevation),
		Terrain:   terrain,
	}
}

// IsTileSet reports whether (q, r) holds a tile.
func (c *Context) IsTileSet(q, r int) bool {
	return c.Tile(q, r) != nil
}

// Neighbors returns the six neighboring tiles of (q, r) in world.Direction
// order. Slots past a pole or not yet generated are nil.
func (c *Context) Neighbors(q, r int) [6]*world.Tile {
	var tiles [6]*world.Tile
	for i, n := range world.Neighbors(q, r, c.width, c.height) {
		if n.OK {
			tiles[i] = c.Tile(n.Coord.Q, n.Coord.R)
		}
	}
	return tiles
}

// AdjacentElevations holds the elevations of the west (q-1, r) and north
// (q, r-1) neighbors, the two already visited by a row-major fill.
type AdjacentElevations struct {
	West, North       int
	HasWest, HasNorth bool
}

// AdjacentElevations looks up the west and north neighbor elevations of (q, r).
func (c *Context) AdjacentElevations(q, r int) AdjacentElevations {
	var adj AdjacentElevations
	if w := c.Tile(q-1, r); w != nil {
		adj.West, adj.HasWest = w.Elevation, true
	}
	if n := c.Tile(q, r-1); n != nil {
		adj.North, adj.HasNorth = n.Elevation, true
	}
	return adj
}

// CountTiles scans the whole grid and counts set tiles matching match.
// A nil match counts every set tile.
func (c *Context) CountTiles(match func(*world.Tile) bool) int {
	n := 0
	for _, t := range c.grid {
		if t != nil && (match == nil || match(t)) {
			n++
		}
	}
	return n
}

// Tiles flattens the grid row-major, skipping unset slots.
func (c *Context) Tiles() []world.Tile {
	tiles := make([]world.Tile, 0, len(c.grid))
	for _, t := range c.grid {
		if t != nil {
			tiles = append(tiles, *t)
		}
	}
	return tiles
}
