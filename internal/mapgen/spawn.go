package mapgen

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hexmap/internal/world"
)

// SpawnAllocationParams configures player spawn placement.
type SpawnAllocationParams struct {
	PlayerCount int `yaml:"playerCount"`
	// "top", "middle" (default), "bottom", or an explicit row, clamped onto the map.
	PreferredY RowSpec `yaml:"preferredY"`
}

func DefaultSpawnAllocationParams() SpawnAllocationParams {
	return SpawnAllocationParams{PlayerCount: 2, PreferredY: "middle"}
}

// SpawnAllocationPass picks one starting tile per player, spread evenly
// across the map width. Player i of n aims at column width*(i+1)/(n+1) on
// the preferred row, then searches outward in square rings for the first
// walkable tile nobody else starts on. If the search runs past half the
// larger map dimension, the raw target is used whatever its terrain (or,
// if another player already holds it, the nearest tile nobody holds).
//
// It tags tiles that earlier passes already settled, so it must run last.
type SpawnAllocationPass struct{}

func (SpawnAllocationPass) Name() string { return PassSpawnAllocation }

func (p SpawnAllocationPass) Execute(ctx *Context, cfg PassConfig) Result {
	params := DefaultSpawnAllocationParams()
	if err := decodeParams(cfg.Parameters, &params); err != nil {
		return failed(p.Name(), "%v", err)
	}
	if params.PlayerCount < 0 {
		return failed(p.Name(), "playerCount %d is negative", params.PlayerCount)
	}

	w, h := ctx.Width(), ctx.Height()
	targetR := preferredRow(params.PreferredY, h)
	maxRadius := max(w, h) / 2

	fallbacks := 0
	for i := 0; i < params.PlayerCount; i++ {
		targetQ := w * (i + 1) / (params.PlayerCount + 1)

		q, r, ok := findTile(ctx, targetQ, targetR, maxRadius, walkableFree)
		if !ok {
			fallbacks++
			// Raw target, or the nearest untaken tile if another player has it.
			q, r, ok = findTile(ctx, targetQ, targetR, max(w, h), free)
			if !ok {
				return failed(p.Name(), "player %d: no free tile near (%d,%d)", i+1, targetQ, targetR)
			}
			slog.Debug("no walkable spawn tile, using fallback", "player", i+1, "q", q, "r", r)
		}

		t := ctx.Tile(q, r)
		t.PlayerSpawn = i + 1
	}

	return succeeded(p.Name(), params.PlayerCount, fmt.Sprintf("%d fallback", fallbacks))
}

// preferredRow resolves the spawn row. Unrecognized specs mean the middle row.
func preferredRow(spec RowSpec, height int) int {
	if height <= 0 {
		return 0
	}
	r, err := spec.Resolve(height)
	if err != nil {
		r = height / 2
	}
	return world.Clamp(r, 0, height-1)
}

func free(t *world.Tile) bool {
	return t != nil && !t.IsSpawn()
}

func walkableFree(t *world.Tile) bool {
	return free(t) && t.Terrain.Walkable()
}

// findTile searches square rings of growing radius around (q, r) for a
// tile accepted by match. Within a ring, offsets are visited dq-major and
// the first match wins.
func findTile(ctx *Context, q, r, maxRadius int, match func(*world.Tile) bool) (int, int, bool) {
	for radius := 0; radius <= maxRadius; radius++ {
		for dq := -radius; dq <= radius; dq++ {
			for dr := -radius; dr <= radius; dr++ {
				if abs(dq) != radius && abs(dr) != radius {
					continue
				}
				if t := ctx.Tile(q+dq, r+dr); match(t) {
					return t.Coord.Q, t.Coord.R, true
				}
			}
		}
	}
	return 0, 0, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
