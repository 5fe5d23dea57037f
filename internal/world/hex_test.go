package world

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapQ(t *testing.T) {
	assert.Equal(t, 0, WrapQ(0, 10))
	assert.Equal(t, 9, WrapQ(-1, 10))
	assert.Equal(t, 0, WrapQ(10, 10))
	assert.Equal(t, 3, WrapQ(23, 10))
	assert.Equal(t, 7, WrapQ(-13, 10))
	assert.Equal(t, 0, WrapQ(5, 0))
}

func TestNeighborsInterior(t *testing.T) {
	evenRowEvenCol := Neighbors(4, 4, 10, 10)
	assert.Equal(t, [6]Neighbor{
		{Coord: HexCoord{Q: 4, R: 3}, OK: true},
		{Coord: HexCoord{Q: 5, R: 3}, OK: true},
		{Coord: HexCoord{Q: 5, R: 4}, OK: true},
		{Coord: HexCoord{Q: 4, R: 5}, OK: true},
		{Coord: HexCoord{Q: 3, R: 5}, OK: true},
		{Coord: HexCoord{Q: 3, R: 3}, OK: true},
	}, evenRowEvenCol)

	evenRowOddCol := Neighbors(5, 4, 10, 10)
	assert.Equal(t, [6]Neighbor{
		{Coord: HexCoord{Q: 5, R: 3}, OK: true},
		{Coord: HexCoord{Q: 6, R: 3}, OK: true},
		{Coord: HexCoord{Q: 6, R: 5}, OK: true},
		{Coord: HexCoord{Q: 5, R: 5}, OK: true},
		{Coord: HexCoord{Q: 4, R: 4}, OK: true},
		{Coord: HexCoord{Q: 4, R: 3}, OK: true},
	}, evenRowOddCol)

	oddRowEvenCol := Neighbors(4, 5, 10, 10)
	assert.Equal(t, [6]Neighbor{
		{Coord: HexCoord{Q: 4, R: 4}, OK: true},
		{Coord: HexCoord{Q: 5, R: 5}, OK: true},
		{Coord: HexCoord{Q: 5, R: 6}, OK: true},
		{Coord: HexCoord{Q: 4, R: 6}, OK: true},
		{Coord: HexCoord{Q: 3, R: 6}, OK: true},
		{Coord: HexCoord{Q: 3, R: 4}, OK: true},
	}, oddRowEvenCol)

	oddRowOddCol := Neighbors(5, 5, 10, 10)
	assert.Equal(t, [6]Neighbor{
		{Coord: HexCoord{Q: 5, R: 4}, OK: true},
		{Coord: HexCoord{Q: 6, R: 4}, OK: true},
		{Coord: HexCoord{Q: 6, R: 6}, OK: true},
		{Coord: HexCoord{Q: 5, R: 6}, OK: true},
		{Coord: HexCoord{Q: 4, R: 6}, OK: true},
		{Coord: HexCoord{Q: 4, R: 5}, OK: true},
	}, oddRowOddCol)
}

// offsets returns the slots of (q, r) relative to (q, r).
func offsets(q, r, width, height int) [6]HexCoord {
	var out [6]HexCoord
	for i, n := range Neighbors(q, r, width, height) {
		out[i] = HexCoord{Q: n.Coord.Q - q, R: n.Coord.R - r}
	}
	return out
}

func TestNeighborsDependOnRowAndColumnParity(t *testing.T) {
	tables := map[[2]int][6]HexCoord{}
	for _, c := range [][2]int{{2, 2}, {3, 2}, {2, 3}, {3, 3}} {
		tables[[2]int{c[1] & 1, c[0] & 1}] = offsets(c[0], c[1], 10, 10)
	}
	require.Len(t, tables, 4)

	seen := map[[6]HexCoord]bool{}
	for _, tbl := range tables {
		seen[tbl] = true
	}
	assert.Len(t, seen, 4, "each (r, q) parity pair has its own table")

	assert.NotEqual(t, offsets(2, 2, 10, 10), offsets(2, 3, 10, 10))
	assert.NotEqual(t, offsets(3, 2, 10, 10), offsets(3, 3, 10, 10))

	// The pattern repeats with period two on both axes.
	assert.Equal(t, offsets(2, 2, 10, 10), offsets(6, 4, 10, 10))
	assert.Equal(t, offsets(3, 3, 10, 10), offsets(7, 7, 10, 10))
}

func TestNeighborsWrapHorizontally(t *testing.T) {
	width, height := 8, 6
	for r := 0; r < height; r++ {
		for q := 0; q < width; q++ {
			base := Neighbors(q, r, width, height)
			assert.Equal(t, base, Neighbors(q+width, r, width, height), "q=%d r=%d", q, r)
			assert.Equal(t, base, Neighbors(q-width, r, width, height), "q=%d r=%d", q, r)
			assert.Equal(t, base, Neighbors(q+3*width, r, width, height), "q=%d r=%d", q, r)
			for _, n := range base {
				if !n.OK {
					continue
				}
				assert.GreaterOrEqual(t, n.Coord.Q, 0)
				assert.Less(t, n.Coord.Q, width)
			}
		}
	}

	west := Neighbors(0, 3, width, height)
	assert.Equal(t, HexCoord{Q: width - 1, R: 4}, west[DirSouthWest].Coord)
	assert.Equal(t, HexCoord{Q: width - 1, R: 2}, west[DirNorthWest].Coord)
	east := Neighbors(width-1, 3, width, height)
	assert.Equal(t, HexCoord{Q: 0, R: 2}, east[DirNorthEast].Coord)
	assert.Equal(t, HexCoord{Q: 0, R: 4}, east[DirSouthEast].Coord)
}

func TestNeighborsClampAtPoles(t *testing.T) {
	top := Neighbors(2, 0, 6, 4)
	assert.False(t, top[DirNorth].OK)
	assert.False(t, top[DirNorthEast].OK)
	assert.False(t, top[DirNorthWest].OK)
	assert.True(t, top[DirSouth].OK)

	bottom := Neighbors(3, 3, 6, 4)
	assert.False(t, bottom[DirSouth].OK)
	assert.False(t, bottom[DirSouthEast].OK)
	assert.False(t, bottom[DirSouthWest].OK)
	assert.True(t, bottom[DirNorth].OK)

	outside := Neighbors(1, -5, 6, 4)
	for _, n := range outside {
		assert.False(t, n.OK)
	}
}

func TestNeighborsSymmetricOnEvenWidth(t *testing.T) {
	width, height := 10, 7
	for r := 0; r < height; r++ {
		for q := 0; q < width; q++ {
			for _, n := range Neighbors(q, r, width, height) {
				if !n.OK {
					continue
				}
				back := false
				for _, m := range Neighbors(n.Coord.Q, n.Coord.R, width, height) {
					if m.OK && m.Coord == (HexCoord{Q: q, R: r}) {
						back = true
					}
				}
				assert.True(t, back, "(%d,%d) -> %v is one-way", q, r, n.Coord)
			}
		}
	}
}

func TestNeighborsDegenerate(t *testing.T) {
	assert.Equal(t, [6]Neighbor{}, Neighbors(0, 0, 0, 5))
	assert.Equal(t, [6]Neighbor{}, Neighbors(0, 0, 5, 0))
}

func TestClampElevation(t *testing.T) {
	assert.Equal(t, 0, ClampElevation(-3))
	assert.Equal(t, 4, ClampElevation(9))
	assert.Equal(t, 2, ClampElevation(2))
}

func TestTerrainText(t *testing.T) {
	for _, terrain := range AllTerrains {
		b, err := terrain.MarshalText()
		require.NoError(t, err)
		var back Terrain
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, terrain, back)
	}

	parsed, err := ParseTerrain(" grassland ")
	require.NoError(t, err)
	assert.Equal(t, TerrainGrassland, parsed)

	_, err = ParseTerrain("lava")
	assert.Error(t, err)
	assert.Equal(t, "Unknown", TerrainName(Terrain(42)))
}

func TestWalkable(t *testing.T) {
	assert.True(t, TerrainGrassland.Walkable())
	assert.True(t, TerrainDesert.Walkable())
	assert.False(t, TerrainOcean.Walkable())
	assert.False(t, TerrainIcecap.Walkable())
	assert.False(t, TerrainTundra.Walkable())
}

func TestMapDataLookups(t *testing.T) {
	m := &MapData{Width: 3, Height: 2}
	for r := 0; r < 2; r++ {
		for q := 0; q < 3; q++ {
			m.Tiles = append(m.Tiles, Tile{Coord: HexCoord{Q: q, R: r}, Terrain: TerrainGrassland, Elevation: 2})
		}
	}
	m.Tiles[4].PlayerSpawn = 2
	m.Tiles[0].PlayerSpawn = 1

	require.NotNil(t, m.Get(1, 1))
	assert.Equal(t, 2, m.Get(1, 1).PlayerSpawn)
	assert.Equal(t, m.Get(2, 0), m.Get(-1, 0))
	assert.Nil(t, m.Get(0, 2))
	assert.Equal(t, map[int]HexCoord{1: {Q: 0, R: 0}, 2: {Q: 1, R: 1}}, m.Spawns())
	assert.Equal(t, []int{1, 2}, m.SpawnPlayers())
	assert.Equal(t, map[Terrain]int{TerrainGrassland: 6}, TerrainCounts(m))

	raw, err := json.Marshal(m.Tiles[4])
	require.NoError(t, err)
	assert.JSONEq(t, `{"coord":{"q":1,"r":1},"elevation":2,"terrain":"Grassland","player_spawn":2}`, string(raw))
}
