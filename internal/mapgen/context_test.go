package mapgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexmap/internal/world"
)

func TestContextSetAndGetWrap(t *testing.T) {
	ctx := NewContext(6, 4, 1)
	assert.Nil(t, ctx.Tile(1, 1))
	assert.False(t, ctx.IsTileSet(1, 1))

	ok := ctx.SetTile(7, 1, world.Tile{Elevation: 3, Terrain: world.TerrainOcean})
	require.True(t, ok)

	got := ctx.Tile(1, 1)
	require.NotNil(t, got)
	assert.Equal(t, world.HexCoord{Q: 1, R: 1}, got.Coord)
	assert.Same(t, got, ctx.Tile(-5, 1))
	assert.Same(t, got, ctx.Tile(13, 1))
	assert.True(t, ctx.IsTileSet(7, 1))

	// Overwrite is legal.
	ctx.SetTile(1, 1, world.Tile{Elevation: 1, Terrain: world.TerrainGrassland})
	assert.Equal(t, world.TerrainGrassland, ctx.Tile(1, 1).Terrain)
}

func TestContextOutOfRangeIsNoop(t *testing.T) {
	ctx := NewContext(5, 3, 1)
	assert.False(t, ctx.SetTile(0, -1, world.Tile{}))
	assert.False(t, ctx.SetTile(0, 3, world.Tile{}))
	assert.Nil(t, ctx.Tile(0, -1))
	assert.Nil(t, ctx.Tile(0, 99))
	assert.False(t, ctx.IsTileSet(2, 3))
	assert.Equal(t, 0, ctx.CountTiles(nil))

	empty := NewContext(0, 0, 1)
	assert.Nil(t, empty.Tile(0, 0))
	assert.False(t, empty.SetTile(0, 0, world.Tile{}))
	assert.Empty(t, empty.Tiles())
	assert.Equal(t, [6]*world.Tile{}, empty.Neighbors(0, 0))
}

func TestContextSetTileClampsElevation(t *testing.T) {
	ctx := NewContext(3, 3, 1)
	ctx.SetTile(0, 0, world.Tile{Elevation: 11})
	ctx.SetTile(1, 0, world.Tile{Elevation: -2})
	assert.Equal(t, world.MaxElevation, ctx.Tile(0, 0).Elevation)
	assert.Equal(t, world.MinElevation, ctx.Tile(1, 0).Elevation)
}

func TestContextCreateTileHasNoSideEffects(t *testing.T) {
	ctx := NewContext(6, 4, 1)
	tile := ctx.CreateTile(-1, 2, 9, world.TerrainIcecap)
	assert.Equal(t, world.Tile{
		Coord:     world.HexCoord{Q: 5, R: 2},
		Elevation: world.MaxElevation,
		Terrain:   world.TerrainIcecap,
	}, tile)
	assert.Equal(t, 0, ctx.CountTiles(nil))
}

func TestContextNeighbors(t *testing.T) {
	ctx := NewContext(6, 4, 1)
	for r := 0; r < 4; r++ {
		for q := 0; q < 6; q++ {
			ctx.SetTile(q, r, ctx.CreateTile(q, r, r, world.TerrainGrassland))
		}
	}

	top := ctx.Neighbors(2, 0)
	assert.Nil(t, top[world.DirNorth])
	assert.Nil(t, top[world.DirNorthEast])
	assert.Nil(t, top[world.DirNorthWest])
	require.NotNil(t, top[world.DirSouth])
	assert.Equal(t, world.HexCoord{Q: 2, R: 1}, top[world.DirSouth].Coord)

	assert.Equal(t, ctx.Neighbors(1, 2), ctx.Neighbors(7, 2))
	assert.Equal(t, ctx.Neighbors(1, 2), ctx.Neighbors(-5, 2))
}

func TestContextAdjacentElevations(t *testing.T) {
	ctx := NewContext(4, 4, 1)
	assert.Equal(t, AdjacentElevations{}, ctx.AdjacentElevations(1, 1))

	ctx.SetTile(0, 1, world.Tile{Elevation: 1})
	adj := ctx.AdjacentElevations(1, 1)
	assert.True(t, adj.HasWest)
	assert.False(t, adj.HasNorth)
	assert.Equal(t, 1, adj.West)

	ctx.SetTile(1, 0, world.Tile{Elevation: 4})
	adj = ctx.AdjacentElevations(1, 1)
	assert.Equal(t, AdjacentElevations{West: 1, North: 4, HasWest: true, HasNorth: true}, adj)

	// West of column 0 wraps to the last column.
	ctx.SetTile(3, 2, world.Tile{Elevation: 2})
	adj = ctx.AdjacentElevations(0, 2)
	assert.True(t, adj.HasWest)
	assert.Equal(t, 2, adj.West)

	// North of row 0 is past the pole.
	assert.False(t, ctx.AdjacentElevations(2, 0).HasNorth)
}

func TestContextCountTilesAndFlatten(t *testing.T) {
	ctx := NewContext(3, 2, 1)
	ctx.SetTile(2, 1, world.Tile{Terrain: world.TerrainOcean})
	ctx.SetTile(0, 0, world.Tile{Terrain: world.TerrainGrassland})
	ctx.SetTile(1, 1, world.Tile{Terrain: world.TerrainOcean})

	assert.Equal(t, 3, ctx.CountTiles(nil))
	assert.Equal(t, 2, ctx.CountTiles(func(t *world.Tile) bool { return t.Terrain == world.TerrainOcean }))

	tiles := ctx.Tiles()
	require.Len(t, tiles, 3)
	assert.Equal(t, world.HexCoord{Q: 0, R: 0}, tiles[0].Coord)
	assert.Equal(t, world.HexCoord{Q: 1, R: 1}, tiles[1].Coord)
	assert.Equal(t, world.HexCoord{Q: 2, R: 1}, tiles[2].Coord)
}

func TestBaseElevation(t *testing.T) {
	ctx := NewContext(4, 4, 1)
	assert.Equal(t, 2, baseElevation(ctx, 1, 1, 2))

	ctx.SetTile(1, 0, world.Tile{Elevation: 4})
	assert.Equal(t, 4, baseElevation(ctx, 1, 1, 2))

	ctx.SetTile(0, 1, world.Tile{Elevation: 1})
	assert.Equal(t, 3, baseElevation(ctx, 1, 1, 2))

	ctx.SetTile(0, 2, world.Tile{Elevation: 0})
	assert.Equal(t, 0, baseElevation(ctx, 1, 2, 3))
}

func TestVaryElevation(t *testing.T) {
	rng := NewContext(1, 1, 5).Rand()
	assert.Equal(t, 4, varyElevation(rng, 7, 0))

	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		e := varyElevation(rng, 2, 1)
		assert.GreaterOrEqual(t, e, 1)
		assert.LessOrEqual(t, e, 3)
		seen[e] = true
	}
	assert.Len(t, seen, 3)

	for i := 0; i < 200; i++ {
		e := varyElevation(rng, 4, 2)
		assert.GreaterOrEqual(t, e, 2)
		assert.LessOrEqual(t, e, world.MaxElevation)
	}
}
