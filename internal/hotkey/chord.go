// Package hotkey owns the global hotkey slots and the capture flow that
// rebinds them. A slot maps a named action to a Chord; the Facility that
// actually recognizes chords is pluggable (the hook-based Matcher or the OS
// hotkey backend in hotkey/system).
package hotkey

import (
	"sort"
	"strings"

	"github.com/Guliveer/lafms/internal/input"
)

// UnboundLabel is shown for a slot with no chord.
const UnboundLabel = "unbound"

// PromptLabel is shown while a capture session waits for the first key.
const PromptLabel = "press a key combination"

// Chord is a set of canonical key names pressed together. The zero value is
// the empty chord.
type Chord struct {
	keys []string
}

// NewChord builds a chord from key names. Invalid names and duplicates are
// skipped.
func NewChord(names ...string) Chord {
	var c Chord
	for _, n := range names {
		c.Add(n)
	}
	return c
}

// ParseChord parses a chord ID such as "ctrl+shift+s". Empty and invalid
// parts are skipped, so ParseChord("") is the empty chord.
func ParseChord(id string) Chord {
	if strings.TrimSpace(id) == "" {
		return Chord{}
	}
	return NewChord(strings.Split(id, "+")...)
}

// Add inserts name into the chord. It reports whether the chord changed.
func (c *Chord) Add(name string) bool {
	key, ok := input.CanonicalKey(name)
	if !ok || c.Has(key) {
		return false
	}
	c.keys = append(c.keys, key)
	return true
}

// Has reports whether the canonical key is part of the chord.
func (c Chord) Has(key string) bool {
	for _, k := range c.keys {
		if k == key {
			return true
		}
	}
	return false
}

// Len is the number of keys.
func (c Chord) Len() int { return len(c.keys) }

// IsEmpty reports whether the chord has no keys.
func (c Chord) IsEmpty() bool { return len(c.keys) == 0 }

// Keys returns the keys in canonical order.
func (c Chord) Keys() []string {
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := modifierRank(keys[i]), modifierRank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// ID is the canonical identifier: modifiers first (ctrl, alt, shift,
// windows), then the remaining keys sorted, joined with "+". Two chords with
// the same keys have the same ID regardless of press order.
func (c Chord) ID() string {
	return strings.Join(c.Keys(), "+")
}

// Equal reports whether both chords hold the same keys.
func (c Chord) Equal(o Chord) bool { return c.ID() == o.ID() }

func (c Chord) String() string { return Label(c) }

// Label is the display label of c: its ID, or UnboundLabel when empty.
func Label(c Chord) string {
	if c.IsEmpty() {
		return UnboundLabel
	}
	return c.ID()
}

func modifierRank(key string) int {
	switch {
	case strings.Contains(key, "ctrl") || strings.Contains(key, "control"):
		return 0
	case strings.Contains(key, "alt") || strings.Contains(key, "option"):
		return 1
	case strings.Contains(key, "shift"):
		return 2
	case strings.Contains(key, "windows") || strings.Contains(key, "cmd") ||
		strings.Contains(key, "command") || strings.Contains(key, "super") || key == "win":
		return 3
	default:
		return 4
	}
}
