package mapgen

import (
	"fmt"
	"math/rand"

	"github.com/talgya/hexmap/internal/world"
)

// Built-in pass names, used for registry lookup and preset entries.
const (
	PassIceCap          = "iceCap"
	PassIceCapWall      = "iceCapWall"
	PassClimate         = "climate"
	PassOceanBand       = "oceanBand"
	PassGrasslandFill   = "grasslandFill"
	PassSpawnAllocation = "spawnAllocation"
)

// Pass is one named step of terrain synthesis. Execute mutates ctx and
// reports what it did; a Result with Success == false aborts the run.
type Pass interface {
	Name() string
	Execute(ctx *Context, cfg PassConfig) Result
}

// PassConfig is one entry of a pipeline. Order in the pipeline is execution order.
type PassConfig struct {
	Name       string         `yaml:"name" json:"name"`
	Enabled    bool           `yaml:"enabled" json:"enabled"`
	Parameters map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// Clone deep-copies the config so presets are never mutated through a copy.
func (p PassConfig) Clone() PassConfig {
	out := p
	if p.Parameters != nil {
		out.Parameters = cloneValue(p.Parameters).(map[string]any)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		s := make([]any, len(v))
		for i, val := range v {
			s[i] = cloneValue(val)
		}
		return s
	default:
		return v
	}
}

// Result is the audit record of one pass execution.
type Result struct {
	Pass          string `json:"pass"`
	Success       bool   `json:"success"`
	TilesModified int    `json:"tiles_modified"`
	Message       string `json:"message"`
}

// succeeded builds the standard success record.
func succeeded(pass string, modified int, detail string) Result {
	msg := fmt.Sprintf("%s: modified %d tiles", pass, modified)
	if detail != "" {
		msg += " (" + detail + ")"
	}
	return Result{Pass: pass, Success: true, TilesModified: modified, Message: msg}
}

// failed builds the standard failure record.
func failed(pass string, format string, args ...any) Result {
	return Result{Pass: pass, Message: fmt.Sprintf("%s: %s", pass, fmt.Sprintf(format, args...))}
}

// shouldSkipTile is the default fill-only-empty discipline.
func shouldSkipTile(t *world.Tile) bool {
	return t != nil
}

// baseElevation averages the west and north neighbor elevations (rounding
// half up), falls back to whichever one exists, and then to def. Filling
// row-major with this gives smooth gradients without a smoothing pass.
func baseElevation(ctx *Context, q, r, def int) int {
	adj := ctx.AdjacentElevations(q, r)
	switch {
	case adj.HasWest && adj.HasNorth:
		return (adj.West + adj.North + 1) / 2
	case adj.HasWest:
		return adj.West
	case adj.HasNorth:
		return adj.North
	default:
		return def
	}
}

// varyElevation adds a uniform offset in [-variation, +variation] and clamps
// to the world elevation range.
func varyElevation(rng *rand.Rand, base, variation int) int {
	if variation <= 0 {
		return world.ClampElevation(base)
	}
	return world.ClampElevation(base + rng.Intn(2*variation+1) - variation)
}

// ElevationRange is embedded (inline) by parameter structs that bound elevations.
type ElevationRange struct {
	MinElevation int `yaml:"minElevation"`
	MaxElevation int `yaml:"maxElevation"`
}

func (e ElevationRange) validate() error {
	if e.MinElevation < world.MinElevation || e.MaxElevation > world.MaxElevation {
		return fmt.Errorf("elevation range [%d,%d] outside [%d,%d]",
			e.MinElevation, e.MaxElevation, world.MinElevation, world.MaxElevation)
	}
	if e.MinElevation > e.MaxElevation {
		return fmt.Errorf("minElevation %d above maxElevation %d", e.MinElevation, e.MaxElevation)
	}
	return nil
}

func (e ElevationRange) clamp(v int) int {
	return world.Clamp(v, e.MinElevation, e.MaxElevation)
}
