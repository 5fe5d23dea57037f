package mapgen

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexmap/internal/world"
)

// ClimateParams configures climate classification.
type ClimateParams struct {
	// Noise sampling frequency in tiles.
	Frequency float64 `yaml:"frequency"`
	// Tiles whose jittered latitude (0 at the equator, 1 at the poles)
	// reaches this become tundra.
	TundraLatitude float64 `yaml:"tundraLatitude"`
	// Desert only forms within this latitude of the equator...
	DesertLatitude float64 `yaml:"desertLatitude"`
	// ...and where the dryness noise reaches this threshold.
	DesertThreshold float64 `yaml:"desertThreshold"`

	ElevationRange   `yaml:",inline"`
	DefaultElevation int `yaml:"defaultElevation"`
	Variation        int `yaml:"variation"`
}

func DefaultClimateParams() ClimateParams {
	return ClimateParams{
		Frequency:        0.18,
		TundraLatitude:   0.62,
		DesertLatitude:   0.35,
		DesertThreshold:  0.58,
		ElevationRange:   ElevationRange{MinElevation: 1, MaxElevation: 3},
		DefaultElevation: 2,
		Variation:        1,
	}
}

func (p ClimateParams) validate() error {
	if p.Frequency <= 0 {
		return fmt.Errorf("frequency %v must be positive", p.Frequency)
	}
	if p.Variation < 0 {
		return fmt.Errorf("variation %d is negative", p.Variation)
	}
	return p.ElevationRange.validate()
}

// ClimatePass classifies unset land by latitude and simplex noise: cold
// bands next to the ice shelves become tundra, dry pockets near the equator
// become desert. Everything else is left for the grassland fill.
//
// Noise is sampled on a cylinder so the east and west map edges line up.
type ClimatePass struct{}

func (ClimatePass) Name() string { return PassClimate }

func (p ClimatePass) Execute(ctx *Context, cfg PassConfig) Result {
	params := DefaultClimateParams()
	if err := decodeParams(cfg.Parameters, &params); err != nil {
		return failed(p.Name(), "%v", err)
	}
	if err := params.validate(); err != nil {
		return failed(p.Name(), "%v", err)
	}

	// Independent layers, offset from the run seed.
	tempNoise := opensimplex.NewNormalized(ctx.Seed() + 1)
	dryNoise := opensimplex.NewNormalized(ctx.Seed() + 2)
	rng := ctx.Rand()

	w, h := ctx.Width(), ctx.Height()
	radius := float64(w) / (2 * math.Pi)
	equator := float64(h-1) / 2

	tundra, desert := 0, 0
	for r := 0; r < h; r++ {
		lat := 0.0
		if equator > 0 {
			lat = math.Abs(float64(r)-equator) / equator
		}
		for q := 0; q < w; q++ {
			if shouldSkipTile(ctx.Tile(q, r)) {
				continue
			}
			angle := 2 * math.Pi * float64(q) / float64(w)
			x := math.Cos(angle) * radius * params.Frequency
			y := math.Sin(angle) * radius * params.Frequency
			z := float64(r) * params.Frequency

			var terrain world.Terrain
			switch {
			case lat+(tempNoise.Eval3(x, y, z)-0.5)*0.3 >= params.TundraLatitude:
				terrain = world.TerrainTundra
				tundra++
			case lat <= params.DesertLatitude && dryNoise.Eval3(x, y, z) >= params.DesertThreshold:
				terrain = world.TerrainDesert
				desert++
			default:
				continue
			}

			base := baseElevation(ctx, q, r, params.DefaultElevation)
			elev := params.clamp(varyElevation(rng, base, params.Variation))
			ctx.SetTile(q, r, ctx.CreateTile(q, r, elev, terrain))
		}
	}
	return succeeded(p.Name(), tundra+desert, fmt.Sprintf("%d tundra, %d desert", tundra, desert))
}
