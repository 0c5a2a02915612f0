package ctypes

import (
	"strings"
	"unicode"

	"github.com/refaktor/sobind/digraphutils"
)

// qualifiers carry no layout information and are dropped by [Normalize].
var qualifiers = map[string]bool{
	"const":         true,
	"volatile":      true,
	"restrict":      true,
	"__restrict":    true,
	"__restrict__":  true,
	"register":      true,
	"extern":        true,
	"static":        true,
	"inline":        true,
	"__inline":      true,
	"__inline__":    true,
	"__extension__": true,
	// tag keywords: "struct Foo" and "enum Foo" are looked up as "Foo"
	"struct": true,
	"enum":   true,
}

// Normalize canonicalizes a C type spelling: qualifiers and struct/enum
// tags are removed, whitespace is collapsed, a redundant "signed" is
// dropped (it only matters for "signed char") and all pointer stars are
// moved to the end.
func Normalize(raw string) string {
	stars := strings.Count(raw, "*")
	var words []string
	for _, w := range strings.FieldsFunc(raw, func(r rune) bool { return unicode.IsSpace(r) || r == '*' }) {
		if !qualifiers[w] {
			words = append(words, w)
		}
	}
	if len(words) != 2 || words[0] != "signed" || words[1] != "char" {
		kept := words[:0]
		for _, w := range words {
			if w != "signed" {
				kept = append(kept, w)
			}
		}
		if len(kept) == 0 && len(words) > 0 {
			kept = append(kept, "int")
		}
		words = kept
	}
	return strings.Join(words, " ") + strings.Repeat("*", stars)
}

// SplitPointer splits trailing pointer stars (with any whitespace between
// them) from t, returning the trimmed base and the number of stars.
func SplitPointer(t string) (base string, stars int) {
	end := len(t)
	for end > 0 {
		c := t[end-1]
		if c == '*' {
			stars++
		} else if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			break
		}
		end--
	}
	return strings.TrimSpace(t[:end]), stars
}

// Typedefs is a read-only typedef map from new name to target type string.
type Typedefs interface {
	Get(name string) (string, bool)
}

// CycleError is returned by [Resolve] for a self-referential typedef chain.
type CycleError = digraphutils.CycleError[string]

// Resolve resolves a raw C type string to a Go type string.
//
// The base name is followed through typedefs until it is no longer a
// typedef name, then mapped through the basic table. Names neither
// typedefs nor basic are opaque and passed through unchanged. Stars of the
// input and of every typedef on the way are kept. A cyclic chain stops
// with a [*CycleError] and the partially resolved type.
func Resolve(raw string, typedefs Typedefs) (string, error) {
	base, stars := SplitPointer(Normalize(raw))
	chain, err := digraphutils.Follow(base, func(name string) (string, bool) {
		v, ok := typedefs.Get(name)
		if !ok {
			return "", false
		}
		b, s := SplitPointer(v)
		stars += s
		return b, true
	})
	base = chain[len(chain)-1]
	if err != nil {
		return base + strings.Repeat("*", stars), err
	}
	if t, ok := Basic(base); ok {
		base = t
	}
	return base + strings.Repeat("*", stars), nil
}
