package config

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFlagsWin(t *testing.T) {
	require := require.New(t)
	o, err := Parse([]string{"--lib", "flag.so", "--headers", "a.h,b.h,a.h"}, map[string]string{
		"SOBIND_LIB":          "env.so",
		"SOBIND_HEADERS":      "env.h",
		"SOBIND_PREPROCESSED": "x.i,y.i",
		"SOBIND_LOG_LEVEL":    "debug",
		"SOBIND_NO_FORMAT":    "true",
	})
	require.NoError(err)
	require.Equal("flag.so", o.Lib)
	require.Equal([]string{"a.h", "b.h"}, o.Headers)
	require.Equal([]string{"x.i", "y.i"}, o.Preprocessed)
	require.Equal("debug", o.LogLevel)
	require.True(o.NoFormat)
	require.Equal(".", o.Out)
	require.False(o.Help)
}

func TestParseHelp(t *testing.T) {
	require := require.New(t)
	o, err := Parse([]string{"-h"}, map[string]string{})
	require.NoError(err)
	require.True(o.Help)

	_, err = Parse([]string{"--bogus"}, map[string]string{})
	require.Error(err)
	_, err = Parse([]string{"stray"}, map[string]string{})
	require.ErrorContains(err, "unexpected argument")
}

func TestParseConfig(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "sobind.toml", "[[rule]]\nselect.name = 'x'\naction.rename = 'Y'\n")
	o, err := Parse(nil, map[string]string{"SOBIND_CONFIG": path})
	require.NoError(err)
	require.Len(o.Rules(), 1)

	_, err = Parse([]string{"--config", filepath.Join(dir, "missing.toml")}, map[string]string{})
	var cErr *Error
	require.ErrorAs(err, &cErr)
}

func TestValidate(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	lib := writeFile(t, dir, "libx.so", "")
	h := writeFile(t, dir, "x.h", "")

	o := &Options{LogLevel: "info"}
	err := o.Validate()
	require.ErrorContains(err, "missing --lib")
	require.ErrorContains(err, "missing --headers")
	require.ErrorContains(err, "missing --preprocessed")

	o = &Options{Lib: lib, Headers: []string{h}, Preprocessed: []string{h}, LogLevel: "info"}
	require.NoError(o.Validate())

	o.Preprocessed = []string{filepath.Join(dir, "nope.i")}
	require.ErrorContains(o.Validate(), "nope.i")

	o.Preprocessed = []string{dir}
	require.ErrorContains(o.Validate(), "is a directory")

	o.Preprocessed = []string{h}
	o.LogLevel = "loud"
	require.ErrorContains(o.Validate(), "invalid log level")
}

func TestUsage(t *testing.T) {
	require := require.New(t)
	var buf bytes.Buffer
	Usage(&buf, "sobind")
	require.Contains(buf.String(), "--preprocessed")
	require.Contains(buf.String(), "SOBIND_LOG_LEVEL")
}
