package ctypes

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type typedefMap map[string]string

func (m typedefMap) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func TestNormalize(t *testing.T) {
	for _, tt := range []struct {
		in, want string
	}{
		{"int", "int"},
		{"  unsigned   int ", "unsigned int"},
		{"const char *", "char*"},
		{"char * const * restrict", "char**"},
		{"struct Foo*", "Foo*"},
		{"const struct Foo * *", "Foo**"},
		{"enum Color", "Color"},
		{"signed char", "signed char"},
		{"signed int", "int"},
		{"signed long long", "long long"},
		{"signed", "int"},
		{"unsigned", "unsigned"},
		{"union Value", "union Value"},
		{"volatile long double", "long double"},
	} {
		require.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestSplitPointer(t *testing.T) {
	require := require.New(t)

	base, stars := SplitPointer("char * *")
	require.Equal("char", base)
	require.Equal(2, stars)

	base, stars = SplitPointer("uint32")
	require.Equal("uint32", base)
	require.Equal(0, stars)

	base, stars = SplitPointer("Foo***")
	require.Equal("Foo", base)
	require.Equal(3, stars)
}

func TestResolveBasic(t *testing.T) {
	for _, tt := range []struct {
		in, want string
	}{
		{"int", "int32"},
		{"unsigned int", "uint32"},
		{"unsigned char*", "uint8*"},
		{"const char *", "int8*"},
		{"signed char", "int8"},
		{"float", "float32"},
		{"double**", "float64**"},
		{"size_t", "uint64"},
		{"void*", "void*"},
		{"_Bool", "bool"},
		{"struct Point*", "Point*"},
		{"Opaque", "Opaque"},
	} {
		got, err := Resolve(tt.in, typedefMap{})
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "Resolve(%q)", tt.in)
	}
}

func TestResolveTypedefChain(t *testing.T) {
	require := require.New(t)

	// t0 -> t1 -> ... -> tN -> "uint32" (already basic-converted)
	const n = 12
	typedefs := typedefMap{}
	for i := range n {
		typedefs[fmt.Sprintf("t%d", i)] = fmt.Sprintf("t%d", i+1)
	}
	typedefs[fmt.Sprintf("t%d", n)] = "uint32"

	for stars := range 4 {
		got, err := Resolve("t0"+strings.Repeat("*", stars), typedefs)
		require.NoError(err)
		base, gotStars := SplitPointer(got)

		// unwind by hand
		want := "t0"
		for {
			next, ok := typedefs[want]
			if !ok {
				break
			}
			want = next
		}
		require.Equal(want, base)
		require.Equal(stars, gotStars)
	}
}

func TestResolvePointerTypedef(t *testing.T) {
	require := require.New(t)

	typedefs := typedefMap{
		"FooRef":    "Foo*",
		"FooRefRef": "FooRef*",
		"byte_t":    "uint8",
		"bytes_t":   "byte_t*",
	}
	got, err := Resolve("FooRefRef*", typedefs)
	require.NoError(err)
	require.Equal("Foo***", got)

	got, err = Resolve("const bytes_t", typedefs)
	require.NoError(err)
	require.Equal("uint8*", got)
}

func TestResolveCycle(t *testing.T) {
	require := require.New(t)

	typedefs := typedefMap{"A": "B", "B": "A"}
	_, err := Resolve("A*", typedefs)
	var cycErr *CycleError
	require.True(errors.As(err, &cycErr))
	require.Equal([]string{"A", "B", "A"}, cycErr.Chain)

	_, err = Resolve("Self", typedefMap{"Self": "Self"})
	require.Error(err)
}

func TestBasicTable(t *testing.T) {
	require := require.New(t)

	v, ok := Basic("unsigned long long")
	require.True(ok)
	require.Equal(Uint64, v)
	_, ok = Basic("long double")
	require.False(ok)
	require.True(IsGoType("float32"))
	require.False(IsGoType("float"))
	require.Equal(8, Size(Uintptr))
	require.Equal(0, Size(Void))
}
