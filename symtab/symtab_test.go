package symtab

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleOutput = `
Symbol table '.dynsym' contains 7 entries:
   Num:    Value          Size Type    Bind   Vis      Ndx Name
     0: 0000000000000000     0 NOTYPE  LOCAL  DEFAULT  UND
     1: 0000000000000000     0 FUNC    GLOBAL DEFAULT  UND free@GLIBC_2.2.5 (2)
     2: 0000000000000000     0 NOTYPE  WEAK   DEFAULT  UND __gmon_start__
     3: 0000000000001139    22 FUNC    GLOBAL DEFAULT   14 bar@@LIBFOO_1.0
     4: 000000000000114f   0x1a0 FUNC    GLOBAL DEFAULT   14 big
     5: 0000000000004010     4 OBJECT  GLOBAL DEFAULT   23 counter
     6: 0000000000001200    10 FUNC    WEAK   DEFAULT   14 weak_fn
	 7:   0000000000001139    22   FUNC   GLOBAL   DEFAULT   14   bar@LIBFOO_0.9
`

func TestParse(t *testing.T) {
	require := require.New(t)

	entries, err := Parse(strings.NewReader(sampleOutput))
	require.NoError(err)
	require.Len(entries, 7)

	require.Equal(Entry{
		Index:      3,
		Value:      0x1139,
		Size:       22,
		Type:       "FUNC",
		Bind:       "GLOBAL",
		Visibility: "DEFAULT",
		Section:    "14",
		Name:       "bar",
		Version:    "LIBFOO_1.0",
	}, entries[2])
	require.Equal("free", entries[0].Name)
	require.Equal("GLIBC_2.2.5", entries[0].Version)
	require.Equal(uint64(0x1a0), entries[3].Size)
	require.Equal("bar", entries[6].Name)
	require.Equal("LIBFOO_0.9", entries[6].Version)
}

func TestExported(t *testing.T) {
	require := require.New(t)

	entries, err := Parse(strings.NewReader(sampleOutput))
	require.NoError(err)

	var names []string
	for _, e := range Exported(entries) {
		names = append(names, e.Name)
	}
	// free is undefined, counter is no function, weak_fn is weak,
	// the second bar is a duplicate.
	require.Equal([]string{"bar", "big"}, names)
}

func TestParseLineRejects(t *testing.T) {
	for _, line := range []string{
		"",
		"Symbol table '.dynsym' contains 7 entries:",
		"   Num:    Value          Size Type    Bind   Vis      Ndx Name",
		"     0: 0000000000000000     0 NOTYPE  LOCAL  DEFAULT  UND",
		"     x: 0000000000000000     0 FUNC    GLOBAL DEFAULT  14 nope",
	} {
		_, ok := ParseLine(line)
		require.False(t, ok, "ParseLine(%q)", line)
	}
}

func TestListerFakeReadelf(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	require := require.New(t)

	dir := t.TempDir()
	script := filepath.Join(dir, "readelf")
	require.NoError(os.WriteFile(script, []byte("#!/bin/sh\ncat <<'EOF'\n"+sampleOutput+"EOF\n"), 0755))

	l := &Lister{Readelf: script}
	entries, err := l.List(context.Background(), "libfoo.so")
	require.NoError(err)
	require.Len(entries, 7)
}

func TestListerFailure(t *testing.T) {
	require := require.New(t)

	l := &Lister{Readelf: filepath.Join(t.TempDir(), "no-such-readelf")}
	entries, err := l.List(context.Background(), "libfoo.so")
	require.Error(err)
	require.Empty(entries)
	require.Equal([]string{"--dyn-syms", "--wide", "libfoo.so"}, l.Args("libfoo.so"))
}
