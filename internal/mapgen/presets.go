package mapgen

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Built-in preset keys.
const (
	PresetBasicWorld  = "BASIC_WORLD"
	PresetOceanWorld  = "OCEAN_WORLD"
	PresetVariedWorld = "VARIED_WORLD"
)

// DefaultPreset is used when no preset name is given.
const DefaultPreset = PresetBasicWorld

// ErrUnknownPreset is returned for a preset name that is not in the book.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named, ordered pipeline with default parameters.
type Preset struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Passes      []PassConfig `yaml:"passes" json:"passes"`
}

// Clone deep-copies the preset, parameters included.
func (p Preset) Clone() Preset {
	out := p
	out.Passes = make([]PassConfig, len(p.Passes))
	for i, pc := range p.Passes {
		out.Passes[i] = pc.Clone()
	}
	return out
}

// PresetKey normalizes a display name to its lookup key:
// "Basic World", "basic-world" and "BASIC_WORLD" are the same preset.
func PresetKey(name string) string {
	key := strings.ToUpper(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(key)
}

func builtinPresets() []Preset {
	return []Preset{
		{
			Name:        PresetBasicWorld,
			Description: "Polar ice, two ocean channels inside the shelves, grassland interior.",
			Passes: []PassConfig{
				{Name: PassIceCap, Enabled: true},
				{Name: PassIceCapWall, Enabled: false},
				{Name: PassOceanBand, Enabled: true, Parameters: map[string]any{
					"rows":      []any{5, "height-6"},
					"elevation": 0,
				}},
				{Name: PassGrasslandFill, Enabled: true},
				{Name: PassSpawnAllocation, Enabled: true, Parameters: map[string]any{
					"playerCount": 2,
					"preferredY":  "middle",
				}},
			},
		},
		{
			Name:        PresetOceanWorld,
			Description: "Balanced ice walls and wide ocean bands splitting the land into strips.",
			Passes: []PassConfig{
				{Name: PassIceCap, Enabled: true},
				{Name: PassIceCapWall, Enabled: true, Parameters: map[string]any{
					"targetElevation": 2,
				}},
				{Name: PassOceanBand, Enabled: true, Parameters: map[string]any{
					"rows":      []any{5, "top", "middle", "bottom", "height-6"},
					"elevation": 0,
				}},
				{Name: PassGrasslandFill, Enabled: true},
				{Name: PassSpawnAllocation, Enabled: true, Parameters: map[string]any{
					"playerCount": 2,
					"preferredY":  "middle",
				}},
			},
		},
		{
			Name:        PresetVariedWorld,
			Description: "Ice walls, an equatorial sea, tundra and desert climate bands.",
			Passes: []PassConfig{
				{Name: PassIceCap, Enabled: true},
				{Name: PassIceCapWall, Enabled: true},
				{Name: PassOceanBand, Enabled: true, Parameters: map[string]any{
					"rows": []any{"middle"},
				}},
				{Name: PassClimate, Enabled: true},
				{Name: PassGrasslandFill, Enabled: true},
				{Name: PassSpawnAllocation, Enabled: true, Parameters: map[string]any{
					"playerCount": 2,
					"preferredY":  "top",
				}},
			},
		},
	}
}

// PresetBook is a catalog of presets keyed by PresetKey. It starts with the
// built-ins; files loaded later add presets or replace ones of the same name.
type PresetBook struct {
	mu      sync.RWMutex
	presets map[string]Preset
}

// NewPresetBook returns a book holding the built-in presets.
func NewPresetBook() *PresetBook {
	b := &PresetBook{presets: make(map[string]Preset)}
	for _, p := range builtinPresets() {
		b.presets[PresetKey(p.Name)] = p
	}
	return b
}

var (
	defaultBook     *PresetBook
	defaultBookOnce sync.Once
)

// DefaultPresetBook returns the process-wide book of built-in presets.
func DefaultPresetBook() *PresetBook {
	defaultBookOnce.Do(func() { defaultBook = NewPresetBook() })
	return defaultBook
}

// LookupPreset finds a preset in the default book.
func LookupPreset(name string) (Preset, error) {
	return DefaultPresetBook().Lookup(name)
}

// PresetNames returns the keys of every preset in the default book.
func PresetNames() []string {
	return DefaultPresetBook().Names()
}

// Lookup returns a deep copy of the named preset. A blank name selects DefaultPreset.
func (b *PresetBook) Lookup(name string) (Preset, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultPreset
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.presets[PresetKey(name)]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p.Clone(), nil
}

// Names returns the keys of every preset, sorted.
func (b *PresetBook) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.presets))
	for key := range b.presets {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// Add stores a copy of p under its key.
func (b *PresetBook) Add(p Preset) error {
	if PresetKey(p.Name) == "" {
		return errors.New("preset has no name")
	}
	if len(p.Passes) == 0 {
		return fmt.Errorf("preset %q has no passes", p.Name)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presets[PresetKey(p.Name)] = p.Clone()
	return nil
}

//go:embed presets.schema.json
var presetSchemaJSON string

var presetSchema = func() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("presets.schema.json", strings.NewReader(presetSchemaJSON)); err != nil {
		panic(err)
	}
	return c.MustCompile("presets.schema.json")
}()

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// Load parses a YAML preset document, validates it against the preset
// schema, and adds every preset in it. Nothing is added if any check fails.
func (b *PresetBook) Load(raw []byte) ([]string, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("presets: %w", err)
	}
	if err := presetSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("presets: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("presets: %w", err)
	}

	names := make([]string, 0, len(file.Presets))
	for _, p := range file.Presets {
		key := PresetKey(p.Name)
		if key == "" {
			return nil, errors.New("presets: preset has a blank name")
		}
		names = append(names, key)
	}
	for _, p := range file.Presets {
		if err := b.Add(p); err != nil {
			return nil, fmt.Errorf("presets: %w", err)
		}
	}
	return names, nil
}

// LoadFile reads and loads a YAML preset file.
func (b *PresetBook) LoadFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return b.Load(raw)
}
