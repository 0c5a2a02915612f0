// Package textutils holds the text cleanup shared by the header scanners.
package textutils

import (
	"bytes"
	"slices"
	"strings"
)

var asciiSpace = [256]bool{'\t': true, '\n': true, '\v': true, '\f': true, '\r': true, ' ': true}

// Prepends indent nIndent times to each line beginning in s,
// except for empty lines.
func IndentString(s string, indent string, nIndent int) string {
	b := []byte(s)

	var res strings.Builder
	{
		nBOL := bytes.Count(b, []byte{'\n'}) + 1
		upperBound := len(s) + nBOL*nIndent*len(indent) // doesn't consider the fact that empty lines are ignored
		res.Grow(upperBound)
	}

	start := 0
	end := 0
	for start < len(b) {
		hitNewline := false
		end = bytes.Index(b[start:], []byte{'\n'})
		if end == -1 {
			end = len(b)
		} else {
			hitNewline = true
			end += start + 1 // adjust to offset and include "\n"
		}
		line := b[start:end]
		if slices.ContainsFunc(line, func(b byte) bool { return !asciiSpace[b] }) {
			for range nIndent {
				res.WriteString(indent)
			}
			res.Write(line)
		} else if hitNewline {
			res.WriteByte('\n')
		}
		start = end
	}

	return res.String()
}

// StripComments removes C block and line comments from s. Block comments
// become a single space, line comments are cut up to (not including) the
// newline. Comment markers inside string and character literals are kept.
func StripComments(s string) string {
	var res strings.Builder
	res.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			end := literalEnd(s, i)
			res.WriteString(s[i:end])
			i = end - 1
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end == -1 {
				return res.String()
			}
			// keep line numbers stable for the line-anchored macro patterns
			res.WriteString(strings.Repeat("\n", strings.Count(s[i:i+2+end], "\n")))
			res.WriteByte(' ')
			i += 2 + end + 1
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			end := strings.IndexByte(s[i:], '\n')
			if end == -1 {
				return res.String()
			}
			i += end - 1
		default:
			res.WriteByte(c)
		}
	}

	return res.String()
}

// literalEnd returns the index just past the string or character literal
// starting at s[start]. An unterminated literal ends at the line end.
func literalEnd(s string, start int) int {
	quote := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		case '\n':
			return i
		}
	}
	return len(s)
}

// JoinContinuations splices lines ending in a backslash with the next line.
func JoinContinuations(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\\\n", " ")
}

// CollapseSpace replaces every run of whitespace with a single space and
// trims both ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripCalls removes every occurrence of keyword followed by a balanced
// parenthesized group, e.g. `__attribute__ ((nonnull (1)))`. Occurrences
// of keyword without a following group are removed as well.
func StripCalls(s, keyword string) string {
	var res strings.Builder
	for {
		idx := indexWord(s, keyword)
		if idx == -1 {
			res.WriteString(s)
			return res.String()
		}
		res.WriteString(s[:idx])
		rest := s[idx+len(keyword):]
		trimmed := strings.TrimLeft(rest, " \t\n\r")
		if !strings.HasPrefix(trimmed, "(") {
			res.WriteByte(' ')
			s = rest
			continue
		}
		depth := 0
		end := len(trimmed)
		for i := 0; i < len(trimmed); i++ {
			if trimmed[i] == '(' {
				depth++
			} else if trimmed[i] == ')' {
				depth--
				if depth == 0 {
					end = i + 1
					break
				}
			}
		}
		res.WriteByte(' ')
		s = trimmed[end:]
	}
}

// indexWord is like [strings.Index], but only matches word at identifier
// boundaries.
func indexWord(s, word string) int {
	off := 0
	for {
		idx := strings.Index(s[off:], word)
		if idx == -1 {
			return -1
		}
		idx += off
		before := idx == 0 || !isIdentByte(s[idx-1])
		after := idx+len(word) >= len(s) || !isIdentByte(s[idx+len(word)])
		if before && after {
			return idx
		}
		off = idx + len(word)
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
