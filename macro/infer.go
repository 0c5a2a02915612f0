package macro

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/refaktor/sobind/ctypes"
)

var (
	intLitRe   = regexp.MustCompile(`^[+-]?(?:0[xX][0-9a-fA-F]+|0[0-7]*|[1-9][0-9]*)$`)
	floatLitRe = regexp.MustCompile(`^[+-]?(?:(?:[0-9]+\.[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?|[0-9]+[eE][+-]?[0-9]+)$`)
)

// Infer determines the Go type of a macro value. It returns the type and
// the literal to emit, which is value without C suffix and enclosing
// parentheses.
//
// Classification order: integer literal, float literal exactly
// representable as float32, other float literal, string literal,
// character literal, suffixed numeric literal (f, ll, ull/llu/ul/lu, u, l).
func Infer(value string) (typ, literal string, ok bool) {
	v := unparen(strings.TrimSpace(value))
	if v == "" {
		return "", "", false
	}
	if t, ok := intType(v); ok {
		return t, v, true
	}
	if floatLitRe.MatchString(v) {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", "", false
		}
		if float64(float32(d)) == d {
			return ctypes.Float32, v, true
		}
		return ctypes.Float64, v, true
	}
	switch v[0] {
	case '"':
		if _, err := strconv.Unquote(v); err != nil {
			return "", "", false
		}
		return ctypes.String, v, true
	case '\'':
		if _, err := strconv.Unquote(v); err != nil {
			return "", "", false
		}
		return ctypes.Rune, v, true
	}
	return inferSuffixed(v)
}

// intType classifies an unsuffixed integer literal as int32, widening to
// int64 and then uint64 when it does not fit.
func intType(v string) (string, bool) {
	if !intLitRe.MatchString(v) {
		return "", false
	}
	if _, err := strconv.ParseInt(v, 0, 32); err == nil {
		return ctypes.Int32, true
	}
	if _, err := strconv.ParseInt(v, 0, 64); err == nil {
		return ctypes.Int64, true
	}
	if _, err := strconv.ParseUint(strings.TrimPrefix(v, "+"), 0, 64); err == nil {
		return ctypes.Uint64, true
	}
	return "", false
}

// inferSuffixed tries the C literal suffixes, longest first, so that hex
// digits are not mistaken for a suffix ("0xFFu").
func inferSuffixed(v string) (typ, literal string, ok bool) {
	for n := min(3, len(v)-1); n >= 1; n-- {
		suffix, rest := v[len(v)-n:], v[:len(v)-n]
		if !isLetters(suffix) {
			continue
		}
		isInt := intLitRe.MatchString(rest)
		isFloat := floatLitRe.MatchString(rest)
		switch strings.ToLower(suffix) {
		case "f":
			if !isFloat && !(isInt && !strings.ContainsAny(rest, "xX")) {
				continue
			}
			if f, err := strconv.ParseFloat(rest, 32); err == nil && !math.IsInf(f, 0) {
				return ctypes.Float32, rest, true
			}
		case "ll":
			if _, err := strconv.ParseInt(rest, 0, 64); isInt && err == nil {
				return ctypes.Int64, rest, true
			}
		case "ull", "llu", "ul", "lu":
			if _, err := strconv.ParseUint(strings.TrimPrefix(rest, "+"), 0, 64); isInt && err == nil {
				return ctypes.Uint64, rest, true
			}
		case "u":
			if _, err := strconv.ParseUint(strings.TrimPrefix(rest, "+"), 0, 32); isInt && err == nil {
				return ctypes.Uint32, rest, true
			}
		case "l":
			if strings.Contains(rest, ".") {
				if _, err := strconv.ParseFloat(rest, 64); isFloat && err == nil {
					return ctypes.Float64, rest, true
				}
			} else if _, err := strconv.ParseInt(rest, 0, 64); isInt && err == nil {
				return ctypes.Int64, rest, true
			}
		}
	}
	return "", "", false
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// unparen removes one pair of parentheses enclosing all of v.
func unparen(v string) string {
	if len(v) < 2 || v[0] != '(' || v[len(v)-1] != ')' {
		return v
	}
	depth := 0
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(v)-1 {
				return v // "(a) + (b)"
			}
		}
	}
	return strings.TrimSpace(v[1 : len(v)-1])
}
