package sobind

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMainHelp(t *testing.T) {
	require := require.New(t)
	var stdout, stderr bytes.Buffer
	code := Main(context.Background(), []string{"--help"}, map[string]string{}, &stdout, &stderr)
	require.Equal(0, code)
	require.Contains(stdout.String(), "--preprocessed")
	require.Empty(stderr.String())
}

func TestMainInvalidArgs(t *testing.T) {
	require := require.New(t)
	var stdout, stderr bytes.Buffer
	code := Main(context.Background(), nil, map[string]string{}, &stdout, &stderr)
	require.Equal(1, code)
	require.Contains(stdout.String(), "missing --lib")
	require.Contains(stdout.String(), "--help")

	stdout.Reset()
	code = Main(context.Background(), []string{"--lib", "does-not-exist.so", "--headers", "x.h", "--preprocessed", "x.i"},
		map[string]string{}, &stdout, &stderr)
	require.Equal(1, code)
	require.Contains(stdout.String(), "does-not-exist.so")

	stdout.Reset()
	code = Main(context.Background(), nil, map[string]string{"SOBIND_CONFIG": "does-not-exist.toml"}, &stdout, &stderr)
	require.Equal(1, code)
	require.Contains(stdout.String(), "does-not-exist.toml")
}

func TestMainRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	require := require.New(t)
	testdata := filepath.Join("pipeline", "testdata")
	symbols, err := filepath.Abs(filepath.Join(testdata, "basic.symbols"))
	require.NoError(err)
	dir := t.TempDir()
	readelf := filepath.Join(dir, "readelf")
	require.NoError(os.WriteFile(readelf, []byte("#!/bin/sh\ncat '"+symbols+"'\n"), 0755))

	var stdout, stderr bytes.Buffer
	code := Main(context.Background(), []string{
		"--lib", symbols,
		"--headers", filepath.Join(testdata, "basic.h"),
		"--preprocessed", filepath.Join(testdata, "basic.pre.h"),
		"--out", dir,
	}, map[string]string{"SOBIND_READELF": readelf}, &stdout, &stderr)
	require.Equal(0, code, stderr.String())
	require.Contains(stdout.String(), "==Binding stats==")
	require.Contains(stdout.String(), "4/6")
	require.Contains(stdout.String(), "==Diagnostics==")
	require.Contains(stdout.String(), filepath.Join(dir, "basic", "basic.go"))
	require.FileExists(filepath.Join(dir, "basic", "basic.go"))
	require.Contains(stderr.String(), "wrote")
}
