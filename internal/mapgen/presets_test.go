package mapgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetKey(t *testing.T) {
	assert.Equal(t, "BASIC_WORLD", PresetKey("Basic World"))
	assert.Equal(t, "BASIC_WORLD", PresetKey("basic-world"))
	assert.Equal(t, "VARIED_WORLD", PresetKey("  varied_world "))
	assert.Equal(t, "", PresetKey("   "))
}

func TestBuiltinPresets(t *testing.T) {
	book := NewPresetBook()
	assert.Equal(t, []string{PresetBasicWorld, PresetOceanWorld, PresetVariedWorld}, book.Names())
	assert.Equal(t, book.Names(), PresetNames())

	registry := DefaultRegistry()
	for _, name := range book.Names() {
		p, err := book.Lookup(name)
		require.NoError(t, err)
		names := make([]string, len(p.Passes))
		for i, pc := range p.Passes {
			names[i] = pc.Name
		}
		assert.True(t, registry.Validate(names).Valid, name)
		assert.Equal(t, PassSpawnAllocation, names[len(names)-1], name)
	}
}

func TestPresetLookup(t *testing.T) {
	book := NewPresetBook()

	p, err := book.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPreset, p.Name)

	p, err = book.Lookup("ocean world")
	require.NoError(t, err)
	assert.Equal(t, PresetOceanWorld, p.Name)

	_, err = book.Lookup("lava world")
	assert.ErrorIs(t, err, ErrUnknownPreset)

	_, err = LookupPreset("varied-world")
	assert.NoError(t, err)
}

func TestPresetLookupReturnsCopy(t *testing.T) {
	book := NewPresetBook()
	p, err := book.Lookup(PresetBasicWorld)
	require.NoError(t, err)

	ocean := p.Passes[2]
	require.Equal(t, PassOceanBand, ocean.Name)
	ocean.Parameters["rows"].([]any)[0] = 99
	ocean.Parameters["elevation"] = 3
	p.Passes[0].Enabled = false

	again, err := book.Lookup(PresetBasicWorld)
	require.NoError(t, err)
	assert.Equal(t, 5, again.Passes[2].Parameters["rows"].([]any)[0])
	assert.Equal(t, 0, again.Passes[2].Parameters["elevation"])
	assert.True(t, again.Passes[0].Enabled)
}

func TestPresetAdd(t *testing.T) {
	book := NewPresetBook()
	assert.Error(t, book.Add(Preset{Name: " "}))
	assert.Error(t, book.Add(Preset{Name: "empty"}))

	require.NoError(t, book.Add(Preset{
		Name:   "Flat Land",
		Passes: []PassConfig{{Name: PassGrasslandFill, Enabled: true}},
	}))
	p, err := book.Lookup("FLAT_LAND")
	require.NoError(t, err)
	assert.Len(t, p.Passes, 1)
}

const islandPresets = `
presets:
  - name: Island World
    description: one equatorial channel
    passes:
      - name: iceCap
        enabled: true
        parameters:
          growthChances: [0.5]
      - name: oceanBand
        enabled: true
        parameters:
          rows: [3, height-4]
      - name: grasslandFill
        enabled: true
      - name: spawnAllocation
        enabled: true
  - name: BASIC_WORLD
    passes:
      - name: grasslandFill
        enabled: true
`

func TestPresetLoad(t *testing.T) {
	book := NewPresetBook()
	names, err := book.Load([]byte(islandPresets))
	require.NoError(t, err)
	assert.Equal(t, []string{"ISLAND_WORLD", PresetBasicWorld}, names)

	p, err := book.Lookup("island world")
	require.NoError(t, err)
	require.Len(t, p.Passes, 4)
	assert.Equal(t, []any{3, "height-4"}, p.Passes[1].Parameters["rows"])

	// Loaded presets replace built-ins of the same name.
	basic, err := book.Lookup(PresetBasicWorld)
	require.NoError(t, err)
	assert.Len(t, basic.Passes, 1)

	// The shared default book is untouched.
	basic, err = LookupPreset(PresetBasicWorld)
	require.NoError(t, err)
	assert.Len(t, basic.Passes, 5)
}

func TestPresetLoadRejectsBadDocuments(t *testing.T) {
	docs := map[string]string{
		"not yaml":        "presets: [",
		"no presets key":  "maps: []",
		"no passes":       "presets:\n  - name: x\n",
		"empty passes":    "presets:\n  - name: x\n    passes: []\n",
		"unknown field":   "presets:\n  - name: x\n    colour: red\n    passes:\n      - {name: iceCap, enabled: true}\n",
		"enabled missing": "presets:\n  - name: x\n    passes:\n      - {name: iceCap}\n",
		"enabled type":    "presets:\n  - name: x\n    passes:\n      - {name: iceCap, enabled: maybe}\n",
		"blank name":      "presets:\n  - name: ok\n    passes:\n      - {name: iceCap, enabled: true}\n  - name: '  '\n    passes:\n      - {name: iceCap, enabled: true}\n",
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			book := NewPresetBook()
			_, err := book.Load([]byte(doc))
			assert.Error(t, err)
			assert.Len(t, book.Names(), 3)
		})
	}
}

func TestPresetLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(islandPresets), 0o644))

	book := NewPresetBook()
	names, err := book.LoadFile(path)
	require.NoError(t, err)
	assert.Contains(t, names, "ISLAND_WORLD")

	_, err = book.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
