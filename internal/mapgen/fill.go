package mapgen

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/hexmap/internal/world"
)

// OceanBandParams configures the ocean band pass.
type OceanBandParams struct {
	// Rows to flood. Literal indices or "height-N" expressions.
	Rows []RowSpec `yaml:"rows"`
	// Elevation of every placed ocean tile.
	Elevation int `yaml:"elevation"`
}

func DefaultOceanBandParams() OceanBandParams {
	return OceanBandParams{Elevation: world.MinElevation}
}

// OceanBandPass floods whole rows with sea-level water. Rows given as
// "height-N" are anchored to the southern edge, so a band keeps its place
// relative to the ice shelf whatever the map size. Tiles already set by an
// earlier pass are left alone.
type OceanBandPass struct{}

func (OceanBandPass) Name() string { return PassOceanBand }

func (p OceanBandPass) Execute(ctx *Context, cfg PassConfig) Result {
	params := DefaultOceanBandParams()
	if err := decodeParams(cfg.Parameters, &params); err != nil {
		return failed(p.Name(), "%v", err)
	}

	rows, err := resolveRows(params.Rows, ctx.Height())
	if err != nil {
		return failed(p.Name(), "%v", err)
	}

	modified := 0
	for _, r := range rows {
		for q := 0; q < ctx.Width(); q++ {
			if shouldSkipTile(ctx.Tile(q, r)) {
				continue
			}
			ctx.SetTile(q, r, ctx.CreateTile(q, r, params.Elevation, world.TerrainOcean))
			modified++
		}
	}
	return succeeded(p.Name(), modified, fmt.Sprintf("rows %v", rows))
}

// resolveRows resolves specs against height, dropping off-map rows and
// duplicates. The result is sorted.
func resolveRows(specs []RowSpec, height int) ([]int, error) {
	seen := make(map[int]bool)
	var rows []int
	for _, spec := range specs {
		r, err := spec.Resolve(height)
		if err != nil {
			return nil, err
		}
		if r < 0 || r >= height {
			slog.Debug("ocean row off map", "spec", string(spec), "row", r, "height", height)
			continue
		}
		if !seen[r] {
			seen[r] = true
			rows = append(rows, r)
		}
	}
	sort.Ints(rows)
	return rows, nil
}

// GrasslandFillParams configures the terminal fill.
type GrasslandFillParams struct {
	ElevationRange   `yaml:",inline"`
	DefaultElevation int `yaml:"defaultElevation"`
	Variation        int `yaml:"variation"`
}

func DefaultGrasslandFillParams() GrasslandFillParams {
	return GrasslandFillParams{
		ElevationRange:   ElevationRange{MinElevation: 1, MaxElevation: 3},
		DefaultElevation: 2,
		Variation:        1,
	}
}

// GrasslandFillPass fills every tile still unset with grassland. Run last
// among the classification passes, it covers all remaining interior land.
type GrasslandFillPass struct{}

func (GrasslandFillPass) Name() string { return PassGrasslandFill }

func (p GrasslandFillPass) Execute(ctx *Context, cfg PassConfig) Result {
	params := DefaultGrasslandFillParams()
	if err := decodeParams(cfg.Parameters, &params); err != nil {
		return failed(p.Name(), "%v", err)
	}
	if err := params.validate(); err != nil {
		return failed(p.Name(), "%v", err)
	}
	if params.Variation < 0 {
		return failed(p.Name(), "variation %d is negative", params.Variation)
	}

	rng := ctx.Rand()
	modified := 0
	for r := 0; r < ctx.Height(); r++ {
		for q := 0; q < ctx.Width(); q++ {
			if shouldSkipTile(ctx.Tile(q, r)) {
				continue
			}
			base := baseElevation(ctx, q, r, params.DefaultElevation)
			elev := params.clamp(varyElevation(rng, base, params.Variation))
			ctx.SetTile(q, r, ctx.CreateTile(q, r, elev, world.TerrainGrassland))
			modified++
		}
	}
	return succeeded(p.Name(), modified, "")
}
