// Package config holds the generator options, layered from an optional
// TOML file, SOBIND_* environment variables and command line flags.
package config

import (
	"bytes"
	"errors"
	"os"
	"regexp"
	"strconv"

	"dario.cat/mergo"
	"github.com/pelletier/go-toml/v2"
)

// Rule selects function symbols by name and changes how they are bound.
//
// Example:
//
//	[[rule]]
//	select.name = 'foo_(.*)'
//	action.rename = 'Foo\1'
type Rule struct {
	Select struct {
		// Name must match the whole symbol name (or the name given by an
		// earlier rule). Capture groups are available as \1 to \9.
		Name *regexp.Regexp `toml:"name"`
	} `toml:"select"`
	Actions struct {
		Include  *bool  `toml:"include"`
		Rename   string `toml:"rename"`
		ToCasing string `toml:"to-casing"`
	} `toml:"action"`
}

// File is the content of a config file.
type File struct {
	Imports []string `toml:"imports"`
	Rules   []Rule   `toml:"rule"`
}

type Error struct {
	filePath string
	err      error  // short, single-line error
	str      string // full, multi-line error string, or err string, if none
}

// Error returns a short error message.
func (e *Error) Error() string {
	return e.filePath + ": " + e.err.Error()
}

// String returns the full multi-line error string.
func (e *Error) String() string {
	if e.str != "" {
		return "Error in file " + strconv.Quote(e.filePath) + ":\n" + e.str
	} else {
		return e.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.err
}

// LoadFile reads a config file. Imported files are loaded recursively and
// their rules run after the rules of the importing file.
func LoadFile(path string) (_ *File, err error) {
	defer func() {
		if err != nil {
			if cErr := (&Error{}); errors.As(err, &cErr) {
				return
			}
			if tErr := (&toml.DecodeError{}); errors.As(err, &tErr) {
				err = &Error{filePath: path, err: err, str: tErr.String()}
			} else if tErr := (&toml.StrictMissingError{}); errors.As(err, &tErr) {
				err = &Error{filePath: path, err: err, str: tErr.String()}
			} else {
				err = &Error{filePath: path, err: err}
			}
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f := &File{}
	err = toml.NewDecoder(bytes.NewReader(data)).
		DisallowUnknownFields().
		Decode(f)
	if err != nil {
		return nil, err
	}

	var imported []*File // collect imported files first so their imports don't leak into ours
	for _, imp := range f.Imports {
		newF, err := LoadFile(imp)
		if err != nil {
			return nil, err
		}
		imported = append(imported, newF)
	}
	for _, newF := range imported {
		if err := mergo.Merge(f, newF, mergo.WithAppendSlice); err != nil {
			return nil, err
		}
	}

	return f, nil
}
