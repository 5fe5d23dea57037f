package mapgen

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/talgya/hexmap/internal/entropy"
	"github.com/talgya/hexmap/internal/world"
)

var (
	// ErrInvalidDimensions is returned for a width or height below one, or a
	// grid larger than MaxGridTiles.
	ErrInvalidDimensions = errors.New("invalid map dimensions")
	// ErrGeneratorSpent is returned when a Generator is run a second time.
	ErrGeneratorSpent = errors.New("generator already used")
	// ErrMissingPasses matches any *MissingPassesError.
	ErrMissingPasses = errors.New("unregistered passes")
	// ErrPassFailed matches any *PassFailedError.
	ErrPassFailed = errors.New("pass failed")
)

// MaxGridTiles caps width*height for a single generation run.
const MaxGridTiles = 1 << 26

// checkDimensions rejects non-positive sides and grids over MaxGridTiles.
// The product is never computed before the bound is known to hold.
func checkDimensions(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > MaxGridTiles/height {
		return fmt.Errorf("%w: %dx%d exceeds %d tiles", ErrInvalidDimensions, width, height, MaxGridTiles)
	}
	return nil
}

// MissingPassesError is a configuration error: the pipeline names passes the
// registry does not know. It lists every missing name, not just the first.
type MissingPassesError struct {
	Names []string
}

func (e *MissingPassesError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingPasses, strings.Join(e.Names, ", "))
}

func (e *MissingPassesError) Unwrap() error { return ErrMissingPasses }

// PassFailedError carries the message of the pass that aborted a run.
type PassFailedError struct {
	Pass    string
	Message string
}

func (e *PassFailedError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrPassFailed, e.Pass, e.Message)
}

func (e *PassFailedError) Unwrap() error { return ErrPassFailed }

// Options are the inputs of one generation request.
type Options struct {
	Width  int
	Height int
	Preset string // blank selects DefaultPreset
	Seed   string // blank draws a random seed
	// Overrides the spawn pass's playerCount when positive.
	PlayerCount int
}

// GenerationConfig is a fully resolved request: dimensions, seed and the
// ordered pipeline. Pass order is execution order.
type GenerationConfig struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Seed   int64        `json:"seed"`
	Preset string       `json:"preset,omitempty"`
	Passes []PassConfig `json:"passes"`
}

// EnabledPasses returns the enabled entries in order.
func (c GenerationConfig) EnabledPasses() []PassConfig {
	var enabled []PassConfig
	for _, p := range c.Passes {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// BuildConfig resolves opts against book (the default book when nil).
func BuildConfig(opts Options, book *PresetBook) (GenerationConfig, error) {
	if err := checkDimensions(opts.Width, opts.Height); err != nil {
		return GenerationConfig{}, err
	}
	if book == nil {
		book = DefaultPresetBook()
	}
	preset, err := book.Lookup(opts.Preset)
	if err != nil {
		return GenerationConfig{}, err
	}

	cfg := GenerationConfig{
		Width:  opts.Width,
		Height: opts.Height,
		Seed:   entropy.Resolve(opts.Seed),
		Preset: PresetKey(preset.Name),
		Passes: preset.Passes,
	}
	if opts.PlayerCount > 0 {
		cfg.SetPlayerCount(opts.PlayerCount)
	}
	return cfg, nil
}

// SetPlayerCount patches the spawn pass's playerCount. It reports false if
// the pipeline has no spawn pass.
func (c *GenerationConfig) SetPlayerCount(n int) bool {
	for i := range c.Passes {
		if c.Passes[i].Name != PassSpawnAllocation {
			continue
		}
		if c.Passes[i].Parameters == nil {
			c.Passes[i].Parameters = make(map[string]any)
		}
		c.Passes[i].Parameters["playerCount"] = n
		return true
	}
	slog.Debug("player count ignored, pipeline has no spawn pass", "players", n)
	return false
}

// Report is the detailed outcome of a generation.
type Report struct {
	Map                *world.MapData `json:"map"`
	Results            []Result       `json:"results"`
	TotalTilesModified int            `json:"total_tiles_modified"`
	Elapsed            time.Duration  `json:"elapsed_ns"`
}

// Generator runs one configured pipeline exactly once.
type Generator struct {
	cfg      GenerationConfig
	registry *Registry
	spent    bool
}

// NewGenerator resolves opts against the default presets and registry.
func NewGenerator(opts Options) (*Generator, error) {
	cfg, err := BuildConfig(opts, nil)
	if err != nil {
		return nil, err
	}
	return NewGeneratorWithConfig(cfg, nil)
}

// NewGeneratorWithConfig wraps an already resolved config. A nil registry
// selects DefaultRegistry.
func NewGeneratorWithConfig(cfg GenerationConfig, registry *Registry) (*Generator, error) {
	if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	passes := make([]PassConfig, len(cfg.Passes))
	for i, p := range cfg.Passes {
		passes[i] = p.Clone()
	}
	cfg.Passes = passes
	return &Generator{cfg: cfg, registry: registry}, nil
}

// Config returns a copy of the resolved configuration.
func (g *Generator) Config() GenerationConfig {
	cfg := g.cfg
	cfg.Passes = make([]PassConfig, len(g.cfg.Passes))
	for i, p := range g.cfg.Passes {
		cfg.Passes[i] = p.Clone()
	}
	return cfg
}

// Generate runs the pipeline and returns the flattened map.
func (g *Generator) Generate() (*world.MapData, error) {
	report, err := g.GenerateDetailed()
	if err != nil {
		return nil, err
	}
	return report.Map, nil
}

// GenerateDetailed runs the pipeline and returns the map with the per-pass
// audit trail. TotalTilesModified sums the per-pass counts, so a tile touched
// by two passes counts twice. On any failure no map is returned.
func (g *Generator) GenerateDetailed() (*Report, error) {
	if g.spent {
		return nil, ErrGeneratorSpent
	}
	g.spent = true

	start := time.Now()
	enabled := g.cfg.EnabledPasses()

	names := make([]string, len(enabled))
	for i, p := range enabled {
		names[i] = p.Name
	}
	if v := g.registry.Validate(names); !v.Valid {
		return nil, &MissingPassesError{Names: v.Missing}
	}

	ctx := NewContext(g.cfg.Width, g.cfg.Height, g.cfg.Seed)
	report := &Report{Results: make([]Result, 0, len(enabled))}

	for _, pc := range enabled {
		pass, _ := g.registry.Pass(pc.Name)
		res := pass.Execute(ctx, pc)
		if res.Pass == "" {
			res.Pass = pc.Name
		}
		report.Results = append(report.Results, res)
		if !res.Success {
			slog.Warn("generation aborted", "pass", pc.Name, "message", res.Message)
			return nil, &PassFailedError{Pass: pc.Name, Message: res.Message}
		}
		report.TotalTilesModified += res.TilesModified
		slog.Debug("pass complete", "pass", pc.Name, "tiles", res.TilesModified, "message", res.Message)
	}

	report.Map = &world.MapData{
		Width:  g.cfg.Width,
		Height: g.cfg.Height,
		Seed:   g.cfg.Seed,
		Preset: g.cfg.Preset,
		Tiles:  ctx.Tiles(),
	}
	report.Elapsed = time.Since(start)

	slog.Info("map generated",
		"width", g.cfg.Width,
		"height", g.cfg.Height,
		"preset", g.cfg.Preset,
		"seed", g.cfg.Seed,
		"tiles", report.Map.TileCount(),
		"elapsed", report.Elapsed,
	)
	return report, nil
}
