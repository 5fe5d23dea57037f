// Package entropy turns user-facing seed strings into generator seeds.
// When no seed is given, a fresh one is drawn from crypto/rand so the
// resulting map can still be reproduced from the recorded value.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"hash/fnv"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// SeedFromString maps a seed string to a generator seed. Integer strings are
// used verbatim so "42" reproduces seed 42; anything else is hashed.
// ok is false for an empty or blank string.
func SeedFromString(s string) (seed int64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64()), true
}

// Resolve returns the seed for s, or a random seed if s is blank.
func Resolve(s string) int64 {
	if seed, ok := SeedFromString(s); ok {
		return seed
	}
	return RandomSeed()
}

// RandomSeed draws a seed from crypto/rand.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; the clock is still unique per call site.
		slog.Debug("crypto/rand seed failed", "error", err)
		return time.Now().UnixNano()
	}
	// Keep seeds non-negative so they print and parse back cleanly.
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}
