package mapgen

import (
	"fmt"

	"github.com/talgya/hexmap/internal/world"
)

// IceCapParams configures polar ice growth.
type IceCapParams struct {
	// Rows from each pole that are always solid ice at maximum elevation.
	GuaranteedRows int `yaml:"guaranteedRows"`

	// Chance that a candidate tile freezes, one entry per row past the
	// guaranteed band. Rows beyond the list never freeze.
	GrowthChances []float64 `yaml:"growthChances"`

	// Bounds for grown (non-guaranteed) ice.
	ElevationRange `yaml:",inline"`
}

// DefaultIceCapParams returns the ragged-shelf defaults: two solid rows,
// then 60%, 25% and 3.5% growth.
func DefaultIceCapParams() IceCapParams {
	return IceCapParams{
		GuaranteedRows: 2,
		GrowthChances:  []float64{0.60, 0.25, 0.035},
		ElevationRange: ElevationRange{MinElevation: 2, MaxElevation: world.MaxElevation},
	}
}

func (p IceCapParams) validate() error {
	if p.GuaranteedRows < 0 {
		return fmt.Errorf("guaranteedRows %d is negative", p.GuaranteedRows)
	}
	for i, c := range p.GrowthChances {
		if c < 0 || c > 1 {
			return fmt.Errorf("growthChances[%d] = %v outside [0,1]", i, c)
		}
	}
	return p.ElevationRange.validate()
}

// IceCapPass grows ice shelves inward from both poles. The outermost rows
// are a guaranteed impassable barrier; past them each row is a candidate
// band where a tile freezes only if it touches ice already placed and wins
// a roll whose odds shrink with depth. The result is a ragged shelf rather
// than a straight edge.
type IceCapPass struct{}

func (IceCapPass) Name() string { return PassIceCap }

func (p IceCapPass) Execute(ctx *Context, cfg PassConfig) Result {
	params := DefaultIceCapParams()
	if err := decodeParams(cfg.Parameters, &params); err != nil {
		return failed(p.Name(), "%v", err)
	}
	if err := params.validate(); err != nil {
		return failed(p.Name(), "%v", err)
	}

	rng := ctx.Rand()
	modified := 0

	for depth := 0; depth < params.GuaranteedRows; depth++ {
		for _, r := range poleRows(depth, ctx.Height()) {
			for q := 0; q < ctx.Width(); q++ {
				if shouldSkipTile(ctx.Tile(q, r)) {
					continue
				}
				ctx.SetTile(q, r, ctx.CreateTile(q, r, world.MaxElevation, world.TerrainIcecap))
				modified++
			}
		}
	}

	grown := 0
	for i, chance := range params.GrowthChances {
		depth := params.GuaranteedRows + i
		for _, r := range poleRows(depth, ctx.Height()) {
			for q := 0; q < ctx.Width(); q++ {
				if shouldSkipTile(ctx.Tile(q, r)) {
					continue
				}
				peak, ok := highestIceNeighbor(ctx, q, r)
				if !ok || rng.Float64() >= chance {
					continue
				}
				// Ice never climbs above its neighbors and tends to thin out.
				elev := params.clamp(peak - rng.Intn(2))
				ctx.SetTile(q, r, ctx.CreateTile(q, r, elev, world.TerrainIcecap))
				modified++
				grown++
			}
		}
	}

	return succeeded(p.Name(), modified, fmt.Sprintf("%d grown", grown))
}

// poleRows returns the rows at the given depth from the top and bottom
// edges, top first, without duplicates or off-map rows.
func poleRows(depth, height int) []int {
	if depth < 0 || depth >= height {
		return nil
	}
	top, bottom := depth, height-1-depth
	if top == bottom {
		return []int{top}
	}
	return []int{top, bottom}
}

// highestIceNeighbor returns the highest elevation among ice tiles adjacent
// to (q, r); ok is false when none is adjacent.
func highestIceNeighbor(ctx *Context, q, r int) (peak int, ok bool) {
	for _, n := range ctx.Neighbors(q, r) {
		if n == nil || n.Terrain != world.TerrainIcecap {
			continue
		}
		if !ok || n.Elevation > peak {
			peak, ok = n.Elevation, true
		}
	}
	return peak, ok
}

// IceCapWallParams configures wall balancing.
type IceCapWallParams struct {
	// Elevation forced onto the innermost ice tile of each column.
	TargetElevation int `yaml:"targetElevation"`

	// Rows at each pole the walk never enters. Match the ice cap's
	// guaranteedRows to keep the solid band at full height.
	ProtectedRows int `yaml:"protectedRows"`
}

func DefaultIceCapWallParams() IceCapWallParams {
	return IceCapWallParams{TargetElevation: 2, ProtectedRows: 2}
}

// IceCapWallPass gives every column a climbable ice profile. Scanning out
// from the map's vertical center toward each pole, the first ice tile is
// set to the target elevation and each further ice tile is nudged so that
// consecutive ice tiles differ by at most one. The walk stops at the first
// non-ice tile or at the protected polar band, which keeps its elevation.
// Must run after IceCapPass; it rewrites settled elevations.
type IceCapWallPass struct{}

func (IceCapWallPass) Name() string { return PassIceCapWall }

func (p IceCapWallPass) Execute(ctx *Context, cfg PassConfig) Result {
	params := DefaultIceCapWallParams()
	if err := decodeParams(cfg.Parameters, &params); err != nil {
		return failed(p.Name(), "%v", err)
	}
	if params.TargetElevation < world.MinElevation || params.TargetElevation > world.MaxElevation {
		return failed(p.Name(), "targetElevation %d outside [%d,%d]",
			params.TargetElevation, world.MinElevation, world.MaxElevation)
	}
	if params.ProtectedRows < 0 {
		return failed(p.Name(), "protectedRows %d is negative", params.ProtectedRows)
	}

	center := ctx.Height() / 2
	modified := 0
	for q := 0; q < ctx.Width(); q++ {
		modified += balanceColumn(ctx, q, center-1, -1, params.TargetElevation, params.ProtectedRows)
		modified += balanceColumn(ctx, q, center, 1, params.TargetElevation, params.ProtectedRows)
	}
	return succeeded(p.Name(), modified, "")
}

// balanceColumn walks column q from row start in steps of step (±1), staying
// out of the protected rows at either pole, and returns the number of tiles
// whose elevation changed.
func balanceColumn(ctx *Context, q, start, step, target, protected int) int {
	inRange := func(r int) bool { return r >= protected && r < ctx.Height()-protected }
	isIce := func(t *world.Tile) bool { return t != nil && t.Terrain == world.TerrainIcecap }

	r := start
	for inRange(r) && !isIce(ctx.Tile(q, r)) {
		r += step
	}
	if !inRange(r) {
		return 0
	}

	changed := 0
	first := ctx.Tile(q, r)
	if first.Elevation != target {
		first.Elevation = target
		changed++
	}

	prev := target
	for r += step; inRange(r); r += step {
		t := ctx.Tile(q, r)
		if !isIce(t) {
			break
		}
		elev := world.Clamp(t.Elevation, prev-1, prev+1)
		if elev != t.Elevation {
			t.Elevation = elev
			changed++
		}
		prev = elev
	}
	return changed
}
