package ir

import (
	"slices"
	"unicode/utf16"
)

// CanonValue is a sealed interface over the value shapes that may appear
// in canonical JSON. Only CanonString, CanonInt, CanonUint, CanonBool,
// CanonArray, and CanonObject implement it. There is no float form:
// floats are forbidden in content-addressed input because their textual
// rendering is not portable across platforms.
type CanonValue interface {
	canonValue() // sealed
}

// CanonString is a string value.
type CanonString string

func (CanonString) canonValue() {}

// CanonInt is a signed integer value.
type CanonInt int64

func (CanonInt) canonValue() {}

// CanonUint is an unsigned integer value. Resource bounds use the full
// uint64 range, so they cannot ride on CanonInt.
type CanonUint uint64

func (CanonUint) canonValue() {}

// CanonBool is a boolean value.
type CanonBool bool

func (CanonBool) canonValue() {}

// CanonArray is an ordered sequence of values.
type CanonArray []CanonValue

func (CanonArray) canonValue() {}

// CanonObject maps string keys to values. Use SortedKeys for
// deterministic iteration.
type CanonObject map[string]CanonValue

func (CanonObject) canonValue() {}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code
// units). Go's sort.Strings compares UTF-8 bytes, which produces a
// different order for strings containing supplementary-plane runes.
func (obj CanonObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units as required
// by RFC 8785. utf16.Encode handles surrogate pairs correctly.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
