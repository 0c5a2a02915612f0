package emitter

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/tools/imports"
)

// CodeBuilder accumulates Go source line by line.
//
// The zero value is ready to use.
type CodeBuilder struct {
	// Indent is the indentation level (indentation is tabs).
	Indent int

	b strings.Builder
}

// Write appends s as is.
func (w *CodeBuilder) Write(s string) {
	w.b.WriteString(s)
}

// Linef writes a single line, prepended by the current indentation.
// An empty format writes an empty line.
//
// Takes format and args like [fmt.Printf].
func (w *CodeBuilder) Linef(format string, args ...any) {
	if format != "" {
		w.b.WriteString(strings.Repeat("\t", w.Indent))
		fmt.Fprintf(&w.b, format, args...)
	}
	w.b.WriteByte('\n')
}

// Block writes open, the lines written by body one level deeper, and
// close.
func (w *CodeBuilder) Block(open, close string, body func()) {
	w.Linef("%v", open)
	w.Indent++
	body()
	w.Indent--
	w.Linef("%v", close)
}

// String returns the current code without applying any formatting.
func (w *CodeBuilder) String() string {
	return w.b.String()
}

// FmtString formats the current code as Go source code.
// Imports are sorted and grouped, but never added or removed.
func (w *CodeBuilder) FmtString() (string, error) {
	code, err := imports.Process("", []byte(w.String()), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return "", err
	}
	return string(code), nil
}

// SaveToFile formats the current code and writes it to outFile.
//
// A formatting error is returned in fmtErr; the unformatted code is
// written instead. A file IO error is returned in err.
func (w *CodeBuilder) SaveToFile(outFile string) (fmtErr error, err error) {
	code, err := w.FmtString()
	if err != nil {
		fmtErr = err
		code = w.String()
	}
	if err := os.WriteFile(outFile, []byte(code), 0666); err != nil {
		return nil, err
	}
	return fmtErr, nil
}
