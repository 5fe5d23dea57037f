package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedFromString(t *testing.T) {
	seed, ok := SeedFromString("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), seed)

	seed, ok = SeedFromString("  -7 ")
	assert.True(t, ok)
	assert.Equal(t, int64(-7), seed)

	a, ok := SeedFromString("glacier")
	assert.True(t, ok)
	b, _ := SeedFromString("glacier")
	c, _ := SeedFromString("Glacier")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	_, ok = SeedFromString("   ")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, int64(1234), Resolve("1234"))
	assert.GreaterOrEqual(t, Resolve(""), int64(0))
}

func TestRandomSeedsDiffer(t *testing.T) {
	a, b := RandomSeed(), RandomSeed()
	assert.GreaterOrEqual(t, a, int64(0))
	assert.GreaterOrEqual(t, b, int64(0))
	assert.NotEqual(t, a, b)
}
