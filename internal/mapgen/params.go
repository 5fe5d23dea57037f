package mapgen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// decodeParams merges raw over out, which the caller pre-fills with the
// pass defaults. Keys absent from raw keep their default; unknown keys are
// rejected so a typo in a preset surfaces as a pass failure.
func decodeParams(raw map[string]any, out any) error {
	if len(raw) == 0 {
		return nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode parameters: %w", err)
	}
	return nil
}

// RowSpec names a map row. It is either a literal index ("5" or 5), an
// expression anchored to the southern edge ("height-3"), or one of the
// anchors "top", "middle" and "bottom" (20%, 50% and 80% of the height).
type RowSpec string

// Row returns the RowSpec for a literal row index.
func Row(n int) RowSpec {
	return RowSpec(strconv.Itoa(n))
}

// Resolve turns the spec into a row index for a map of the given height.
// The result is not clamped; callers decide what an off-map row means.
func (s RowSpec) Resolve(height int) (int, error) {
	raw := strings.ToLower(strings.ReplaceAll(string(s), " ", ""))
	switch raw {
	case "":
		return 0, fmt.Errorf("empty row spec")
	case "top":
		return height * 20 / 100, nil
	case "middle":
		return height / 2, nil
	case "bottom":
		return height * 80 / 100, nil
	case "height":
		return height, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	if rest, ok := strings.CutPrefix(raw, "height-"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return 0, fmt.Errorf("row spec %q: bad offset: %w", string(s), err)
		}
		return height - n, nil
	}
	return 0, fmt.Errorf("row spec %q: want an integer, \"height-N\", top, middle or bottom", string(s))
}

// UnmarshalYAML accepts both integer and string scalars.
func (s *RowSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: row spec must be a scalar", node.Line)
	}
	*s = RowSpec(strings.TrimSpace(node.Value))
	return nil
}

// MarshalYAML writes literal rows back as integers.
func (s RowSpec) MarshalYAML() (any, error) {
	if n, err := strconv.Atoi(string(s)); err == nil {
		return n, nil
	}
	return string(s), nil
}
